package gridkit

import (
	"log/slog"

	"github.com/dmitrymomot/gridkit/pkg/throttle"
)

// Option configures a Grid at construction time.
type Option func(*Grid)

// WithLogger sets the logger shared by the grid, engine, and scheduler.
func WithLogger(log *slog.Logger) Option {
	return func(g *Grid) {
		if log != nil {
			g.log = log
		}
	}
}

// WithThrottling replaces the default throttling configuration. The config
// is validated during Initialize.
func WithThrottling(cfg throttle.Config) Option {
	return func(g *Grid) {
		g.cfg = cfg
	}
}

// WithEventBuffer sets the per-subscriber buffer of the error-notification
// channel.
func WithEventBuffer(n int) Option {
	return func(g *Grid) {
		if n > 0 {
			g.eventBuffer = n
		}
	}
}
