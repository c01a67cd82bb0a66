package signal

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-acid/dsp/core"
	"github.com/cwbudde/algo-acid/dsp/fastmath"
)

// Waveform selects the oscillator shape.
type Waveform int

const (
	// Saw is a descending ramp that jumps back up once per period.
	Saw Waveform = iota
	// Square is a 50% pulse.
	Square
)

func (w Waveform) String() string {
	switch w {
	case Saw:
		return "saw"
	case Square:
		return "square"
	default:
		return fmt.Sprintf("waveform(%d)", int(w))
	}
}

// ParseWaveform maps "saw" or "square" to a Waveform.
func ParseWaveform(name string) (Waveform, error) {
	switch name {
	case "saw":
		return Saw, nil
	case "square":
		return Square, nil
	}

	return 0, fmt.Errorf("signal: unknown waveform %q", name)
}

// DefaultAmplitude is the peak output voltage of an audio-rate oscillator.
const DefaultAmplitude = 5.0

// Oscillator is a polyBLEP band-limited oscillator driven by a 1V/octave
// pitch voltage (0 V = C4).
type Oscillator struct {
	cfg       core.ProcessorConfig
	waveform  Waveform
	amplitude float64
	phase     float64
}

// NewOscillator creates an oscillator at the configured sample rate.
func NewOscillator(waveform Waveform, opts ...core.ProcessorOption) *Oscillator {
	return &Oscillator{
		cfg:       core.ApplyProcessorOptions(opts...),
		waveform:  waveform,
		amplitude: DefaultAmplitude,
	}
}

// SetWaveform switches the output shape without resetting phase.
func (o *Oscillator) SetWaveform(w Waveform) { o.waveform = w }

// Waveform returns the current output shape.
func (o *Oscillator) Waveform() Waveform { return o.waveform }

// SetAmplitude sets the peak output voltage.
func (o *Oscillator) SetAmplitude(a float64) { o.amplitude = a }

// Reset returns the phase to zero.
func (o *Oscillator) Reset() { o.phase = 0 }

// Process advances one sample at the given pitch voltage.
func (o *Oscillator) Process(pitch float64) float64 {
	if !core.IsFinite(pitch) {
		pitch = 0
	}

	freq := core.FreqC4 * fastmath.Exp2(core.Clamp(pitch, -5, 5))
	dt := core.Clamp(freq/o.cfg.SampleRate, 0, 0.5)

	var y float64
	switch o.waveform {
	case Square:
		y = 1
		if o.phase >= 0.5 {
			y = -1
		}

		y += polyBLEP(o.phase, dt)
		y -= polyBLEP(math.Mod(o.phase+0.5, 1), dt)
	default:
		y = 1 - 2*o.phase
		y += polyBLEP(o.phase, dt)
	}

	o.phase += dt
	if o.phase >= 1 {
		o.phase -= 1
	}

	return o.amplitude * y
}

// polyBLEP returns the band-limited step residual for a discontinuity at
// phase 0.
func polyBLEP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}

	switch {
	case t < dt:
		t /= dt
		return t + t - t*t - 1
	case t > 1-dt:
		t = (t - 1) / dt
		return t*t + t + t + 1
	default:
		return 0
	}
}
