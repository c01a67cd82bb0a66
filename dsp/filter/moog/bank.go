package moog

import (
	"fmt"

	"github.com/cwbudde/algo-acid/dsp/core"
)

// MaxChannels is the number of independent ladders a Bank holds.
const MaxChannels = 16

// Bank runs one ladder per polyphony channel. Every channel owns its own
// cutoff, resonance and state.
type Bank struct {
	filters [MaxChannels]*Filter
}

// NewBank constructs MaxChannels ladders sharing the same options.
func NewBank(sampleRate float64, opts ...Option) (*Bank, error) {
	b := &Bank{}

	for ch := range b.filters {
		f, err := New(sampleRate, opts...)
		if err != nil {
			return nil, err
		}

		b.filters[ch] = f
	}

	return b, nil
}

// Channel returns the ladder for channel ch.
func (b *Bank) Channel(ch int) *Filter {
	return b.filters[ch]
}

// SetCutoffHz sets the cutoff of channel ch. Out-of-range requests are
// clamped to [1 Hz, MaxCutoffRatio*sampleRate]; non-finite values are
// ignored.
func (b *Bank) SetCutoffHz(ch int, hz float64) {
	if !core.IsFinite(hz) {
		return
	}

	f := b.filters[ch]
	f.cutoffHz = hz
	f.updateCoefficients()
}

// SetResonance sets resonance on every channel, clamped to [0, 4].
func (b *Bank) SetResonance(resonance float64) {
	if !core.IsFinite(resonance) {
		return
	}

	resonance = core.Clamp(resonance, 0, maxResonance)
	for _, f := range b.filters {
		if f.resonance == resonance {
			continue
		}

		f.resonance = resonance
		f.updateCoefficients()
	}
}

// SetSampleRate rebuilds every channel for a new sample rate.
func (b *Bank) SetSampleRate(sampleRate float64) error {
	for _, f := range b.filters {
		if err := f.SetSampleRate(sampleRate); err != nil {
			return err
		}
	}

	return nil
}

// ProcessSample filters x through channel ch.
func (b *Bank) ProcessSample(ch int, x float64) float64 {
	if ch < 0 || ch >= MaxChannels {
		panic(fmt.Sprintf("moog: channel %d out of range [0,%d)", ch, MaxChannels))
	}

	return b.filters[ch].ProcessSample(x)
}

// Reset clears the state of every channel.
func (b *Bank) Reset() {
	for _, f := range b.filters {
		f.Reset()
	}
}
