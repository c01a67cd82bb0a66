package delay

import (
	"fmt"

	"github.com/cwbudde/algo-acid/dsp/core"
	"github.com/cwbudde/algo-acid/dsp/filter/biquad"
)

const (
	MaxEchoTime     = 2.0
	MaxEchoFeedback = 0.95

	defaultEchoTime     = 0.375
	defaultEchoFeedback = 0.4
	defaultEchoMix      = 0.3
	defaultEchoToneHz   = 3000.0
)

// EchoOption configures an Echo.
type EchoOption func(*echoConfig) error

type echoConfig struct {
	time     float64
	feedback float64
	mix      float64
	toneHz   float64
}

// WithEchoTime sets the repeat time in seconds, (0, MaxEchoTime].
func WithEchoTime(seconds float64) EchoOption {
	return func(cfg *echoConfig) error {
		if !core.IsFinite(seconds) || seconds <= 0 || seconds > MaxEchoTime {
			return fmt.Errorf("delay: echo time must be in (0, %g]: %f", MaxEchoTime, seconds)
		}

		cfg.time = seconds

		return nil
	}
}

// WithEchoFeedback sets the repeat gain in [0, MaxEchoFeedback].
func WithEchoFeedback(feedback float64) EchoOption {
	return func(cfg *echoConfig) error {
		if !core.IsFinite(feedback) || feedback < 0 || feedback > MaxEchoFeedback {
			return fmt.Errorf("delay: echo feedback must be in [0, %g]: %f", MaxEchoFeedback, feedback)
		}

		cfg.feedback = feedback

		return nil
	}
}

// WithEchoMix sets the wet share in [0, 1].
func WithEchoMix(mix float64) EchoOption {
	return func(cfg *echoConfig) error {
		if !core.IsFinite(mix) || mix < 0 || mix > 1 {
			return fmt.Errorf("delay: echo mix must be in [0, 1]: %f", mix)
		}

		cfg.mix = mix

		return nil
	}
}

// WithEchoTone sets the cutoff of the lowpass in the feedback path, so each
// repeat is darker than the last.
func WithEchoTone(hz float64) EchoOption {
	return func(cfg *echoConfig) error {
		if !core.IsFinite(hz) || hz < 20 {
			return fmt.Errorf("delay: echo tone must be >= 20 Hz: %f", hz)
		}

		cfg.toneHz = hz

		return nil
	}
}

// Echo is a feedback delay with a darkening repeat path.
type Echo struct {
	line     *Line
	tone     *biquad.Section
	samples  int
	feedback float64
	mix      float64
}

// NewEcho creates an echo at sampleRate.
func NewEcho(sampleRate float64, opts ...EchoOption) (*Echo, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("delay: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := echoConfig{
		time:     defaultEchoTime,
		feedback: defaultEchoFeedback,
		mix:      defaultEchoMix,
		toneHz:   defaultEchoToneHz,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	samples := max(1, int(cfg.time*sampleRate+0.5))

	line, err := NewLine(samples)
	if err != nil {
		return nil, err
	}

	return &Echo{
		line:     line,
		tone:     biquad.NewSection(biquad.Lowpass(cfg.toneHz, biquad.ButterworthQ, sampleRate)),
		samples:  samples,
		feedback: cfg.feedback,
		mix:      cfg.mix,
	}, nil
}

// DelaySamples returns the repeat time in samples.
func (e *Echo) DelaySamples() int { return e.samples }

// ProcessSample processes one sample.
func (e *Echo) ProcessSample(x float64) float64 {
	x = core.Sanitize(x)
	wet := e.line.Read(e.samples)
	e.line.Write(core.FlushDenormals(x + e.feedback*e.tone.ProcessSample(wet)))

	return x*(1-e.mix) + wet*e.mix
}

// Reset clears the repeats.
func (e *Echo) Reset() {
	e.line.Reset()
	e.tone.Reset()
}
