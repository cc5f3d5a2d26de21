package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// config is loaded from QUILL_* environment variables.
type config struct {
	RegistryID     string   `env:"QUILL_REGISTRY_ID" envDefault:"registry"`
	Blogs          []string `env:"QUILL_BLOGS" envSeparator:","`
	MaxBulkSize    int      `env:"QUILL_MAX_BULK_SIZE" envDefault:"100"`
	MailboxSize    int      `env:"QUILL_MAILBOX_SIZE" envDefault:"256"`
	ResyncSchedule string   `env:"QUILL_RESYNC_SCHEDULE"`

	CacheTTL time.Duration `env:"QUILL_CACHE_TTL" envDefault:"0s"`

	RedisAddr     string `env:"QUILL_REDIS_ADDR"`
	RedisPassword string `env:"QUILL_REDIS_PASSWORD"`
	RedisDB       int    `env:"QUILL_REDIS_DB" envDefault:"0"`
	Queue         string `env:"QUILL_QUEUE" envDefault:"quill"`
	Concurrency   int    `env:"QUILL_WORKER_CONCURRENCY" envDefault:"5"`

	MetricsAddr string `env:"QUILL_METRICS_ADDR"`
	LogLevel    string `env:"QUILL_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"QUILL_LOG_FORMAT" envDefault:"json"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxBulkSize < 0 {
		return cfg, fmt.Errorf("QUILL_MAX_BULK_SIZE must not be negative")
	}
	return cfg, nil
}

func (c config) newLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
