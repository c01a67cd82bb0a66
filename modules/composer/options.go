package composer

import (
	"errors"
	"log/slog"
)

// Option configures a Composer.
type Option func(*config) error

type config struct {
	score      Score
	resetOnRun bool
	logger     *slog.Logger
}

func defaultConfig() config {
	return config{
		score:      DefaultScore(),
		resetOnRun: true,
		logger:     slog.Default(),
	}
}

// WithScore sets the initial score. It is parsed on the first Process call.
func WithScore(s Score) Option {
	return func(cfg *config) error {
		cfg.score = s
		return nil
	}
}

// WithResetOnRun controls whether starting the sequencer also performs a full
// run reset (cursor, latched note and clock detector). Default true.
func WithResetOnRun(enabled bool) Option {
	return func(cfg *config) error {
		cfg.resetOnRun = enabled
		return nil
	}
}

// WithLogger sets the logger for parse failures and pattern dumps.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errors.New("composer: logger must not be nil")
		}

		cfg.logger = l

		return nil
	}
}
