package station

import (
	"math"

	"github.com/cwbudde/algo-acid/dsp/core"
	"github.com/cwbudde/algo-acid/dsp/filter/moog"
)

// MaxChannels is the highest polyphony the voice processes.
const MaxChannels = moog.MaxChannels

// Knob ranges. Frequency is in octaves above 20 Hz; decays are log10 seconds.
const (
	MaxFrequency     = 3 * log2Of10 // 20 kHz
	DefaultFrequency = 1.5 * log2Of10
	MaxResonance     = 1.2
	MinDecay         = -3.0
	MaxDecay         = 1.0
	DefaultVCADecay  = 0.919078
	DefaultVCFDecay  = -0.187086
	DefaultAccent    = 0.5

	// HoldDecay replaces the VCA decay while Hold is on (10 s).
	HoldDecay = 1.0
	// AccentDecay replaces the VCF decay while accent is latched (200 ms).
	AccentDecay = -0.7
	// AttackTime is the fixed attack of both envelopes, in log10 seconds.
	AttackTime = -2.522878

	// BaseFrequency is the cutoff at Frequency 0.
	BaseFrequency = 20.0

	log2Of10 = 3.321928094887362
)

// Params are the knob and switch values.
type Params struct {
	Frequency float64 `json:"frequency"` // [0, MaxFrequency]
	Resonance float64 `json:"resonance"` // [0, MaxResonance]
	FMAmount  float64 `json:"fmAmount"`  // [-1, 1]
	VCADecay  float64 `json:"vcaDecay"`  // [MinDecay, MaxDecay]
	VCFDecay  float64 `json:"vcfDecay"`  // [MinDecay, MaxDecay]
	EnvMod    float64 `json:"envMod"`    // [0, 1]
	Accent    float64 `json:"accent"`    // [0, 1]
	Hold      bool    `json:"hold"`
	Drive     float64 `json:"drive"` // [0, 1]
}

// DefaultParams returns the panel defaults.
func DefaultParams() Params {
	return Params{
		Frequency: DefaultFrequency,
		VCADecay:  DefaultVCADecay,
		VCFDecay:  DefaultVCFDecay,
		Accent:    DefaultAccent,
	}
}

// Clamped returns p with every value inside its range. Non-finite values
// become the lower bound.
func (p Params) Clamped() Params {
	p.Frequency = clampKnob(p.Frequency, 0, MaxFrequency)
	p.Resonance = clampKnob(p.Resonance, 0, MaxResonance)
	p.FMAmount = clampKnob(p.FMAmount, -1, 1)
	p.VCADecay = clampKnob(p.VCADecay, MinDecay, MaxDecay)
	p.VCFDecay = clampKnob(p.VCFDecay, MinDecay, MaxDecay)
	p.EnvMod = clampKnob(p.EnvMod, 0, 1)
	p.Accent = clampKnob(p.Accent, 0, 1)
	p.Drive = clampKnob(p.Drive, 0, 1)

	return p
}

// CutoffHz returns the knob cutoff without modulation.
func (p Params) CutoffHz() float64 {
	return BaseFrequency * math.Exp2(clampKnob(p.Frequency, 0, MaxFrequency))
}

func clampKnob(v, lo, hi float64) float64 {
	if !core.IsFinite(v) {
		return lo
	}

	return core.Clamp(v, lo, hi)
}

// Inputs are the per-sample input voltages. Frequency, FM and Signal are
// polyphonic: the channel count is the longest of the three, and a
// single-channel input is applied to every channel.
type Inputs struct {
	Frequency []float64 // cutoff CV, octaves
	FM        []float64 // cutoff CV scaled by FMAmount
	Signal    []float64 // audio
	Accent    float64
	Gate      float64
}

// Outputs are the per-sample output voltages.
type Outputs struct {
	Channels int
	Signal   [MaxChannels]float64
}

// Lights are the indicator brightnesses in [0, 1].
type Lights struct {
	Drive    float64
	VCADecay float64
	VCFDecay float64
}

// channelCount returns the polyphony implied by the inputs.
func (in *Inputs) channelCount() int {
	n := max(len(in.Signal), len(in.Frequency), len(in.FM))

	return max(1, min(n, MaxChannels))
}

// voltage reads channel ch of a polyphonic input.
func voltage(v []float64, ch int) float64 {
	switch {
	case len(v) == 1:
		return core.Sanitize(v[0])
	case ch < len(v):
		return core.Sanitize(v[ch])
	default:
		return 0
	}
}
