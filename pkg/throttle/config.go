package throttle

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DelayKind selects which configured delay a scheduled validation waits for.
type DelayKind int

const (
	// DelayTyping is the debounce window for interactive keystrokes.
	DelayTyping DelayKind = iota
	// DelayPaste is the window applied to cells written by a paste.
	DelayPaste
	// DelayBatch is the window applied during programmatic bulk updates.
	DelayBatch
)

// complexRuleThreshold is the per-column rule count at or above which the
// complex-validation delay replaces a shorter kind delay.
const complexRuleThreshold = 3

// Config carries the throttling parameters. It is validated once at grid
// initialization and treated as immutable afterwards; only the concurrency
// bound can be changed later, through Scheduler.SetMaxConcurrent.
type Config struct {
	TypingDelay   time.Duration `env:"GRID_TYPING_DELAY" envDefault:"300ms"`
	PasteDelay    time.Duration `env:"GRID_PASTE_DELAY" envDefault:"500ms"`
	BatchDelay    time.Duration `env:"GRID_BATCH_DELAY" envDefault:"100ms"`
	ComplexDelay  time.Duration `env:"GRID_COMPLEX_DELAY" envDefault:"800ms"`
	MaxConcurrent int           `env:"GRID_MAX_CONCURRENT" envDefault:"3"`
	Enabled       bool          `env:"GRID_THROTTLING_ENABLED" envDefault:"true"`
}

// DefaultConfig returns the stock throttling parameters.
func DefaultConfig() Config {
	return Config{
		TypingDelay:   300 * time.Millisecond,
		PasteDelay:    500 * time.Millisecond,
		BatchDelay:    100 * time.Millisecond,
		ComplexDelay:  800 * time.Millisecond,
		MaxConcurrent: 3,
		Enabled:       true,
	}
}

// LoadConfig reads the throttling parameters from environment variables,
// loading a .env file first when one exists.
func LoadConfig() (Config, error) {
	// The .env file is optional.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every delay is non-negative and the concurrency bound
// is at least 1.
func (c Config) Validate() error {
	if c.TypingDelay < 0 || c.PasteDelay < 0 || c.BatchDelay < 0 || c.ComplexDelay < 0 {
		return ErrNegativeDelay
	}
	if c.MaxConcurrent < 1 {
		return ErrInvalidConcurrency
	}
	return nil
}

// delayFor returns the base delay for a kind.
func (c Config) delayFor(kind DelayKind) time.Duration {
	switch kind {
	case DelayPaste:
		return c.PasteDelay
	case DelayBatch:
		return c.BatchDelay
	default:
		return c.TypingDelay
	}
}
