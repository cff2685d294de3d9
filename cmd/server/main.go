package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"superchat/internal/config"
	"superchat/internal/server"
	"superchat/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Flags override the environment.
	addr := flag.String("addr", cfg.Server.Addr, "Address to listen on for both TCP and WebSocket (e.g., :8080)")
	backend := flag.String("store", cfg.Store.Backend, "Persistence backend: file or sqlite")
	flag.Parse()

	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	stores, err := store.Open(*backend, cfg.Store.Dir, cfg.Store.DBPath)
	if err != nil {
		logger.Error("failed to open store", "backend", *backend, "error", err)
		os.Exit(1)
	}
	defer stores.Close()

	srv := server.New(*addr, stores.Replies, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", *addr, "store", *backend)
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig.String())
		srv.Stop()
	}
}
