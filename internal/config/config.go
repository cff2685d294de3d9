// Package config loads the runtime configuration from environment
// variables, with a .env file as a development convenience.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"superchat/internal/store"
)

// Config carries all settings for both binaries.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Log    LogConfig
}

// ServerConfig holds the listening (server) or target (client) address.
type ServerConfig struct {
	Addr string
}

// StoreConfig selects and locates the persistence backend.
type StoreConfig struct {
	Backend string // "file" or "sqlite"
	Dir     string // file backend: directory for the flat records
	DBPath  string // sqlite backend: database file
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Level string // "debug", "info", "warn" or "error"
}

// Load reads the configuration. A missing .env file is not an error;
// production deployments set real environment variables instead.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr: getEnv("SUPERCHAT_ADDR", ":8080"),
		},
		Store: StoreConfig{
			Backend: getEnv("SUPERCHAT_STORE_BACKEND", store.BackendFile),
			Dir:     getEnv("SUPERCHAT_STORE_DIR", "."),
			DBPath:  getEnv("SUPERCHAT_DB_PATH", "./data/superchat.db"),
		},
		Log: LogConfig{
			Level: getEnv("SUPERCHAT_LOG_LEVEL", "info"),
		},
	}

	if cfg.Store.Backend != store.BackendFile && cfg.Store.Backend != store.BackendSQLite {
		return nil, fmt.Errorf("invalid SUPERCHAT_STORE_BACKEND: %q", cfg.Store.Backend)
	}
	if _, err := cfg.Log.SlogLevel(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SlogLevel maps the configured level name onto slog's levels.
func (c *LogConfig) SlogLevel() (slog.Level, error) {
	switch c.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid SUPERCHAT_LOG_LEVEL: %q", c.Level)
	}
}

// getEnv reads an environment variable, falling back when unset.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
