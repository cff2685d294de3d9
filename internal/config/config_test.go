package config_test

import (
	"log/slog"
	"testing"

	"superchat/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("Store.Backend = %q, want file", cfg.Store.Backend)
	}
	if level, err := cfg.Log.SlogLevel(); err != nil || level != slog.LevelInfo {
		t.Errorf("Log.SlogLevel() = %v, %v; want info", level, err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SUPERCHAT_ADDR", "127.0.0.1:9000")
	t.Setenv("SUPERCHAT_STORE_BACKEND", "sqlite")
	t.Setenv("SUPERCHAT_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("Store.Backend = %q", cfg.Store.Backend)
	}
	if level, _ := cfg.Log.SlogLevel(); level != slog.LevelDebug {
		t.Errorf("Log.SlogLevel() = %v, want debug", level)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("SUPERCHAT_STORE_BACKEND", "redis")
	if _, err := config.Load(); err == nil {
		t.Error("Load() accepted unknown store backend")
	}

	t.Setenv("SUPERCHAT_STORE_BACKEND", "file")
	t.Setenv("SUPERCHAT_LOG_LEVEL", "loud")
	if _, err := config.Load(); err == nil {
		t.Error("Load() accepted unknown log level")
	}
}
