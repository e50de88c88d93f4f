package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

type Config struct {
	Environment    string        `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelName   string        `env:"LOG_LEVEL" envDefault:"info"`
	StorageBackend string        `env:"STORAGE_BACKEND" envDefault:"redis"`
	RedisURL       string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	RedisAttempts  int           `env:"REDIS_WAIT_ATTEMPTS" envDefault:"5"`
	RedisDelay     time.Duration `env:"REDIS_WAIT_DELAY" envDefault:"1s"`
	SQLitePath     string        `env:"SQLITE_PATH" envDefault:"./data/saves.db"`
	DataDir        string        `env:"DATA_DIR" envDefault:"./data"`
	AssetDir       string        `env:"ASSET_DIR" envDefault:"./data/assets"`
	SaveTTL        time.Duration `env:"SAVE_TTL" envDefault:"0s"`

	LogLevel slog.Level
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))

	switch cfg.StorageBackend {
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required for the redis backend")
		}
	case BackendSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	default:
		return nil, fmt.Errorf("unsupported storage backend %q (supported: %s, %s)", cfg.StorageBackend, BackendRedis, BackendSQLite)
	}

	if cfg.RedisAttempts < 1 {
		return nil, fmt.Errorf("REDIS_WAIT_ATTEMPTS must be at least 1")
	}

	if cfg.SaveTTL < 0 {
		return nil, fmt.Errorf("SAVE_TTL must not be negative")
	}

	return &cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
