package station

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-acid/dsp/filter/moog"
)

const (
	defaultParamDivision = 8
	lightDivision        = 512
	levelDivision        = 64
)

// Option configures a Station.
type Option func(*config) error

type config struct {
	paramDivision int
	variant       moog.Variant
	oversampling  int
	seed          int64
	logger        *slog.Logger
}

func defaultConfig() config {
	return config{
		paramDivision: defaultParamDivision,
		variant:       moog.VariantHuovilainen,
		oversampling:  1,
		seed:          1,
		logger:        slog.Default(),
	}
}

// WithParamDivision sets how many samples pass between knob polls.
func WithParamDivision(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("station: param division must be >= 1: %d", n)
		}

		cfg.paramDivision = n

		return nil
	}
}

// WithLadderVariant selects the ladder model.
func WithLadderVariant(v moog.Variant) Option {
	return func(cfg *config) error {
		cfg.variant = v
		return nil
	}
}

// WithOversampling sets the ladder oversampling factor (1, 2, 4 or 8).
func WithOversampling(factor int) Option {
	return func(cfg *config) error {
		cfg.oversampling = factor
		return nil
	}
}

// WithSeed seeds the input dither so renders are reproducible.
func WithSeed(seed int64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		return nil
	}
}

// WithLogger sets the logger for hold and accent transitions.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errors.New("station: logger must not be nil")
		}

		cfg.logger = l

		return nil
	}
}
