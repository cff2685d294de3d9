package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"superchat/internal/client"
	"superchat/internal/config"
	"superchat/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	server := flag.String("server", "localhost:8080", "Server address (e.g., localhost:8080)")
	flag.Parse()

	// The terminal belongs to the UI, so logs go to a file instead of
	// stderr.
	logger := openLogger(cfg)

	stores, err := store.Open(cfg.Store.Backend, cfg.Store.Dir, cfg.Store.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer stores.Close()

	ui := NewChatUI()
	c, err := client.Dial(*server, ui.Display, stores.Bans, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to %s: %v\n", *server, err)
		os.Exit(1)
	}
	defer c.Close()

	if err := registerNickname(c); err != nil {
		fmt.Fprintf(os.Stderr, "registration failed: %v\n", err)
		os.Exit(1)
	}
	ui.client = c

	if err := ui.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ui error: %v\n", err)
		os.Exit(1)
	}
}

// registerNickname prompts on stdin until the server accepts a name. It
// runs before the UI takes the terminal over.
func registerNickname(c *client.Client) error {
	reader := bufio.NewReader(os.Stdin)
	prompt := "WELCOME TO SUPERCHAT\nEnter Nickname: "
	for {
		fmt.Print(prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}

		accepted, err := c.Register(name)
		if err != nil {
			return err
		}
		if accepted {
			return nil
		}
		prompt = "ERROR : Name already Exists\nEnter another Nickname: "
	}
}

func openLogger(cfg *config.Config) *slog.Logger {
	level, _ := cfg.Log.SlogLevel()

	var w io.Writer = io.Discard
	if f, err := os.OpenFile("superchat_client.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
		w = f
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
