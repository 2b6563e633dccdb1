package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Format selects the handler output style.
type Format string

const (
	// FormatJSON outputs structured logs for aggregation systems.
	FormatJSON Format = "json"
	// FormatText outputs human-readable logs for development.
	FormatText Format = "text"
)

// Config carries logger settings, loadable from the environment.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format Format `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads logger settings from environment variables, loading a .env file
// first when one exists.
func Load() (Config, error) {
	// The .env file is optional.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("logger: parse config: %w", err)
	}
	if _, err := parseLevel(cfg.Level); err != nil {
		return Config{}, err
	}
	switch cfg.Format {
	case FormatJSON, FormatText:
	default:
		return Config{}, fmt.Errorf("logger: invalid format %q: must be %q or %q", cfg.Format, FormatJSON, FormatText)
	}
	return cfg, nil
}

// New builds a logger for the config, writing to stderr, with the given
// static attributes attached to every record.
func New(cfg Config, attrs ...slog.Attr) *slog.Logger {
	return NewWithOutput(cfg, os.Stderr, attrs...)
}

// NewWithOutput is New with an explicit output destination.
func NewWithOutput(cfg Config, w io.Writer, attrs ...slog.Attr) *slog.Logger {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	if len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}
	return slog.New(handler)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logger: unknown level %q", s)
	}
}
