// Package logger builds slog loggers from environment-driven configuration.
//
// The grid components accept *slog.Logger through options and default to
// slog.Default(); this package is for hosts that want a consistently
// configured logger without writing the handler plumbing themselves.
//
// # Usage
//
//	cfg, err := logger.Load()
//	if err != nil { ... }
//	log := logger.New(cfg, slog.String("component", "grid"))
package logger
