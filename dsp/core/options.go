package core

// ProcessorConfig defines the processing rates shared by the modules.
type ProcessorConfig struct {
	SampleRate float64
	// ControlDivision is the number of audio samples per control-rate update.
	ControlDivision int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the host defaults: 44.1 kHz audio and a
// control update every 8 samples.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate:      44100,
		ControlDivision: 8,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 && IsFinite(sampleRate) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithControlDivision sets how many samples pass between control updates.
func WithControlDivision(division int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if division > 0 {
			cfg.ControlDivision = division
		}
	}
}

// SampleTime returns the duration of one sample in seconds.
func (c ProcessorConfig) SampleTime() float64 {
	return 1 / c.SampleRate
}

// ControlRate returns the control update rate in Hz.
func (c ProcessorConfig) ControlRate() float64 {
	return c.SampleRate / float64(c.ControlDivision)
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
