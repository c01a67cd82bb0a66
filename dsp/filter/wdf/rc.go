package wdf

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-acid/dsp/core"
)

// Component ranges of the slide network. A knob value m in [-1, 1] maps to
// base + span*m.
const (
	BaseResistance  = 100.0e3
	SpanResistance  = 99.9e3
	BaseCapacitance = 220e-9
	SpanCapacitance = 219.9e-9
)

// RCLowpass is a one-pole RC lowpass: a series resistor and capacitor driven
// by an ideal voltage source, read out across the capacitor.
//
// Prepare must be called once before the first ProcessSample.
type RCLowpass struct {
	r1     *Resistor
	c1     *Capacitor
	s1     *Series
	source *IdealVoltageSource

	prepared   bool
	lastSample float64
}

// NewRCLowpass returns a lowpass with the centre component values
// (100 kΩ, 220 nF, τ = 22 ms).
func NewRCLowpass() *RCLowpass {
	f := &RCLowpass{
		r1: NewResistor(BaseResistance),
		c1: NewCapacitor(BaseCapacitance),
	}
	f.s1 = NewSeries(f.r1, f.c1)
	f.source = NewIdealVoltageSource(f.s1)

	return f
}

// Prepare sets the sample rate. It must be called exactly once before the
// first ProcessSample; calling it again changes the rate and clears the state.
func (f *RCLowpass) Prepare(sampleRate float64) error {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return fmt.Errorf("wdf: sample rate must be > 0 and finite: %f", sampleRate)
	}

	f.c1.Prepare(sampleRate)
	f.lastSample = 0
	f.prepared = true

	return nil
}

// Prepared reports whether Prepare has been called.
func (f *RCLowpass) Prepared() bool { return f.prepared }

// SetParameters maps the resistor and capacitor knob values, each clamped to
// [-1, 1], onto the component values.
func (f *RCLowpass) SetParameters(rMod, cMod float64) {
	rMod = core.Clamp(rMod, -1, 1)
	cMod = core.Clamp(cMod, -1, 1)

	f.r1.SetResistance(BaseResistance + SpanResistance*rMod)
	f.c1.SetCapacitance(BaseCapacitance + SpanCapacitance*cMod)
}

// Resistance returns the current resistance in ohms.
func (f *RCLowpass) Resistance() float64 { return f.r1.r }

// Capacitance returns the current capacitance in farads.
func (f *RCLowpass) Capacitance() float64 { return f.c1.c }

// TimeConstant returns RC in seconds.
func (f *RCLowpass) TimeConstant() float64 { return f.r1.r * f.c1.c }

// CutoffHz returns the -3 dB frequency 1 / (2πRC).
func (f *RCLowpass) CutoffHz() float64 { return 1 / (2 * math.Pi * f.TimeConstant()) }

// ProcessSample runs one scattering step with input x and returns the
// capacitor voltage. The reflection convention yields the voltage with
// inverted sign, so it is negated here.
func (f *RCLowpass) ProcessSample(x float64) float64 {
	if !core.IsFinite(x) {
		x = 0
	}

	f.source.Process(x)
	f.lastSample = core.FlushDenormals(-Voltage(f.c1))

	return f.lastSample
}

// LastSample returns the most recent output.
func (f *RCLowpass) LastSample() float64 { return f.lastSample }

// Reset clears the capacitor charge.
func (f *RCLowpass) Reset() {
	f.c1.Reset()
	f.lastSample = 0
}
