package moog

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-acid/dsp/core"
	"github.com/cwbudde/algo-acid/dsp/fastmath"
	"github.com/cwbudde/algo-acid/dsp/filter/biquad"
)

const (
	defaultCutoffHz       = 1000.0
	defaultResonance      = 0.0
	defaultDrive          = 1.0
	defaultThermalVoltage = 5.0
	defaultOversampling   = 1

	minCutoffHz       = 1.0
	maxResonance      = 4.0
	minDrive          = 0.1
	maxDrive          = 24.0
	minThermalVoltage = 0.1
	maxThermalVoltage = 10.0

	stateLimit = 32.0
)

// MaxCutoffRatio is the highest cutoff accepted, as a fraction of the sample
// rate. Requests above it are clamped.
const MaxCutoffRatio = 0.45

// Variant selects the nonlinear ladder processing model.
type Variant int

const (
	// VariantClassic uses exact tanh in every stage.
	VariantClassic Variant = iota
	// VariantLightweight replaces tanh with fastmath.TanhRational5.
	VariantLightweight
	// VariantHuovilainen applies Huovilainen tuning and resonance
	// compensation with a half-sample feedback estimate.
	VariantHuovilainen
)

func (v Variant) String() string {
	switch v {
	case VariantClassic:
		return "classic"
	case VariantLightweight:
		return "lightweight"
	case VariantHuovilainen:
		return "huovilainen"
	default:
		return "unknown"
	}
}

// ParseVariant maps a variant name back to its Variant.
func ParseVariant(name string) (Variant, error) {
	for v := VariantClassic; v <= VariantHuovilainen; v++ {
		if v.String() == name {
			return v, nil
		}
	}

	return 0, fmt.Errorf("moog: unknown variant %q", name)
}

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	variant        Variant
	cutoffHz       float64
	resonance      float64
	drive          float64
	thermalVoltage float64
	overSampling   int
}

func defaultConfig() config {
	return config{
		variant:        VariantHuovilainen,
		cutoffHz:       defaultCutoffHz,
		resonance:      defaultResonance,
		drive:          defaultDrive,
		thermalVoltage: defaultThermalVoltage,
		overSampling:   defaultOversampling,
	}
}

// WithVariant selects the nonlinear ladder variant.
func WithVariant(variant Variant) Option {
	return func(cfg *config) error {
		if !validVariant(variant) {
			return fmt.Errorf("moog: invalid variant: %d", variant)
		}

		cfg.variant = variant

		return nil
	}
}

// WithCutoffHz sets the initial cutoff in Hz. Must be finite and >= 1.
func WithCutoffHz(cutoffHz float64) Option {
	return func(cfg *config) error {
		if err := validateFiniteRange(cutoffHz, minCutoffHz, math.Inf(1), "cutoff"); err != nil {
			return err
		}

		cfg.cutoffHz = cutoffHz

		return nil
	}
}

// WithResonance sets feedback resonance in [0, 4]. Self-oscillation starts
// near 4.
func WithResonance(resonance float64) Option {
	return func(cfg *config) error {
		if err := validateFiniteRange(resonance, 0, maxResonance, "resonance"); err != nil {
			return err
		}

		cfg.resonance = resonance

		return nil
	}
}

// WithDrive sets nonlinear drive in [0.1, 24].
func WithDrive(drive float64) Option {
	return func(cfg *config) error {
		if err := validateFiniteRange(drive, minDrive, maxDrive, "drive"); err != nil {
			return err
		}

		cfg.drive = drive

		return nil
	}
}

// WithThermalVoltage sets the stage saturation scale in [0.1, 10]. The
// default of 5 matches a ±5 V audio signal.
func WithThermalVoltage(thermalVoltage float64) Option {
	return func(cfg *config) error {
		if err := validateFiniteRange(thermalVoltage, minThermalVoltage, maxThermalVoltage, "thermal voltage"); err != nil {
			return err
		}

		cfg.thermalVoltage = thermalVoltage

		return nil
	}
}

// WithOversampling sets the nonlinear oversampling factor: 1, 2, 4 or 8.
func WithOversampling(factor int) Option {
	return func(cfg *config) error {
		if !validOversampling(factor) {
			return fmt.Errorf("moog: oversampling factor must be one of {1,2,4,8}: %d", factor)
		}

		cfg.overSampling = factor

		return nil
	}
}

// State contains explicit ladder runtime state for save/restore workflows.
type State struct {
	Stage      [4]float64
	TanhLast   [3]float64
	PrevInput  float64
	PrevOutput float64
}

// Filter is a nonlinear four-stage Moog ladder lowpass.
type Filter struct {
	sampleRate float64

	variant        Variant
	cutoffHz       float64
	resonance      float64
	drive          float64
	thermalVoltage float64
	overSampling   int

	coefficient float64
	feedback    float64
	driveScale  float64
	outputScale float64
	tanh        func(float64) float64

	state State

	antiAliasUp   *biquad.Section
	antiAliasDown *biquad.Section
}

// New constructs a nonlinear Moog ladder filter.
func New(sampleRate float64, opts ...Option) (*Filter, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("moog: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	f := &Filter{
		sampleRate:     sampleRate,
		variant:        cfg.variant,
		cutoffHz:       cfg.cutoffHz,
		resonance:      cfg.resonance,
		drive:          cfg.drive,
		thermalVoltage: cfg.thermalVoltage,
		overSampling:   cfg.overSampling,
	}

	f.rebuild()

	return f, nil
}

// SampleRate returns the sample rate in Hz.
func (f *Filter) SampleRate() float64 { return f.sampleRate }

// Variant returns the nonlinear ladder variant.
func (f *Filter) Variant() Variant { return f.variant }

// CutoffHz returns the effective cutoff frequency in Hz, after clamping.
func (f *Filter) CutoffHz() float64 { return f.cutoffHz }

// Resonance returns the feedback resonance.
func (f *Filter) Resonance() float64 { return f.resonance }

// Drive returns nonlinear drive.
func (f *Filter) Drive() float64 { return f.drive }

// Oversampling returns the nonlinear oversampling factor.
func (f *Filter) Oversampling() int { return f.overSampling }

// SetSampleRate updates the sample rate and rebuilds the anti-alias stage.
func (f *Filter) SetSampleRate(sampleRate float64) error {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return fmt.Errorf("moog: sample rate must be > 0 and finite: %f", sampleRate)
	}

	f.sampleRate = sampleRate
	f.rebuild()

	return nil
}

// SetVariant switches the ladder variant.
func (f *Filter) SetVariant(variant Variant) error {
	if !validVariant(variant) {
		return fmt.Errorf("moog: invalid variant: %d", variant)
	}

	f.variant = variant
	f.updateCoefficients()

	return nil
}

// SetCutoffHz updates the cutoff. Values above MaxCutoffRatio of the sample
// rate are clamped; non-finite values and values below 1 Hz are rejected.
func (f *Filter) SetCutoffHz(cutoffHz float64) error {
	if err := validateFiniteRange(cutoffHz, minCutoffHz, math.Inf(1), "cutoff"); err != nil {
		return err
	}

	f.cutoffHz = cutoffHz
	f.updateCoefficients()

	return nil
}

// SetResonance updates the feedback resonance in [0, 4].
func (f *Filter) SetResonance(resonance float64) error {
	if err := validateFiniteRange(resonance, 0, maxResonance, "resonance"); err != nil {
		return err
	}

	f.resonance = resonance
	f.updateCoefficients()

	return nil
}

// SetDrive updates nonlinear drive.
func (f *Filter) SetDrive(drive float64) error {
	if err := validateFiniteRange(drive, minDrive, maxDrive, "drive"); err != nil {
		return err
	}

	f.drive = drive
	f.driveScale = 0.5 * f.drive / f.thermalVoltage

	return nil
}

// SetOversampling updates the oversampling factor and rebuilds the
// anti-alias stage.
func (f *Filter) SetOversampling(factor int) error {
	if !validOversampling(factor) {
		return fmt.Errorf("moog: oversampling factor must be one of {1,2,4,8}: %d", factor)
	}

	f.overSampling = factor
	f.rebuild()

	return nil
}

// Reset clears ladder and anti-alias state.
func (f *Filter) Reset() {
	f.state = State{}

	if f.antiAliasUp != nil {
		f.antiAliasUp.Reset()
		f.antiAliasDown.Reset()
	}
}

// State returns a copy of the current ladder state.
func (f *Filter) State() State {
	return f.state
}

// SetState restores an externally saved ladder state.
func (f *Filter) SetState(state State) error {
	if !stateIsFinite(state) {
		return fmt.Errorf("moog: state contains NaN or Inf")
	}

	f.state = state

	return nil
}

// ProcessSample filters one sample. Non-finite input is treated as silence.
func (f *Filter) ProcessSample(input float64) float64 {
	if !core.IsFinite(input) {
		input = 0
	}

	if f.overSampling <= 1 {
		out := f.processCore(input)
		f.state.PrevInput = input

		return core.Sanitize(out)
	}

	prev := f.state.PrevInput
	delta := (input - prev) / float64(f.overSampling)

	var out float64
	for i := range f.overSampling {
		sub := f.antiAliasUp.ProcessSample(prev + delta*float64(i+1))
		out = f.antiAliasDown.ProcessSample(f.processCore(sub))
	}

	f.state.PrevInput = input

	return core.Sanitize(out)
}

// ProcessInPlace filters a mono buffer in place.
func (f *Filter) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = f.ProcessSample(buf[i])
	}
}

func (f *Filter) processCore(input float64) float64 {
	if f.variant == VariantHuovilainen {
		return f.processHuovilainen(input)
	}

	return f.processClassic(input)
}

func (f *Filter) processClassic(input float64) float64 {
	s := &f.state
	th := f.tanh
	shape := f.driveScale
	g := f.coefficient

	x := th(shape * (input - f.feedback*s.Stage[3]))

	s.Stage[0] = clipState(s.Stage[0] + g*(x-s.TanhLast[0]))
	s.TanhLast[0] = th(shape * s.Stage[0])

	s.Stage[1] = clipState(s.Stage[1] + g*(s.TanhLast[0]-s.TanhLast[1]))
	s.TanhLast[1] = th(shape * s.Stage[1])

	s.Stage[2] = clipState(s.Stage[2] + g*(s.TanhLast[1]-s.TanhLast[2]))
	s.TanhLast[2] = th(shape * s.Stage[2])

	s.Stage[3] = clipState(s.Stage[3] + g*(s.TanhLast[2]-th(shape*s.Stage[3])))
	s.PrevOutput = s.Stage[3]

	return f.outputScale * s.Stage[3]
}

func (f *Filter) processHuovilainen(input float64) float64 {
	s := &f.state
	shape := f.driveScale
	g := f.coefficient

	fb := 0.5 * (s.Stage[3] + s.PrevOutput)
	t0 := math.Tanh(shape * (input - f.feedback*fb))
	tS0 := math.Tanh(shape * s.Stage[0])
	tS1 := math.Tanh(shape * s.Stage[1])
	tS2 := math.Tanh(shape * s.Stage[2])
	tS3 := math.Tanh(shape * s.Stage[3])

	s.Stage[0] = clipState(s.Stage[0] + g*(t0-tS0))
	s.TanhLast[0] = math.Tanh(shape * s.Stage[0])

	s.Stage[1] = clipState(s.Stage[1] + g*(s.TanhLast[0]-tS1))
	s.TanhLast[1] = math.Tanh(shape * s.Stage[1])

	s.Stage[2] = clipState(s.Stage[2] + g*(s.TanhLast[1]-tS2))
	s.TanhLast[2] = math.Tanh(shape * s.Stage[2])

	s.PrevOutput = s.Stage[3]
	s.Stage[3] = clipState(s.Stage[3] + g*(s.TanhLast[2]-tS3))

	return f.outputScale * s.Stage[3]
}

// rebuild recomputes everything that depends on the sample rate.
func (f *Filter) rebuild() {
	f.updateCoefficients()
	f.buildAntiAliasFilters()
}

// updateCoefficients recomputes the cutoff and resonance dependent terms.
// It allocates nothing and is safe to call per sample.
func (f *Filter) updateCoefficients() {
	f.cutoffHz = core.Clamp(f.cutoffHz, minCutoffHz, MaxCutoffRatio*f.sampleRate)

	fc := f.cutoffHz / (f.sampleRate * float64(f.overSampling))
	f.driveScale = 0.5 * f.drive / f.thermalVoltage
	vt2 := 2 * f.thermalVoltage

	switch f.variant {
	case VariantHuovilainen:
		fcr := math.Max(1.8730*fc*fc*fc+0.4955*fc*fc-0.6490*fc+0.9988, 0)
		comp := math.Max(-3.9364*fc*fc+1.8409*fc+0.9968, 0)
		f.coefficient = vt2 * (1 - math.Exp(-2*math.Pi*fcr*fc))
		f.feedback = f.resonance * comp
		f.tanh = math.Tanh
	case VariantLightweight:
		f.coefficient = vt2 * (1 - math.Exp(-2*math.Pi*fc))
		f.feedback = f.resonance
		f.tanh = fastmath.TanhRational5
	default:
		f.coefficient = vt2 * (1 - math.Exp(-2*math.Pi*fc))
		f.feedback = f.resonance
		f.tanh = math.Tanh
	}

	// Feedback k leaves a DC gain of 1/(1+k); restore half of the loss so
	// resonance still thins the low end.
	f.outputScale = 1 + 0.5*f.resonance
}

func (f *Filter) buildAntiAliasFilters() {
	if f.overSampling <= 1 {
		f.antiAliasUp = nil
		f.antiAliasDown = nil

		return
	}

	osRate := f.sampleRate * float64(f.overSampling)
	coeff := biquad.Lowpass(f.sampleRate*0.225, biquad.ButterworthQ, osRate)
	f.antiAliasUp = biquad.NewSection(coeff)
	f.antiAliasDown = biquad.NewSection(coeff)
}

func validVariant(variant Variant) bool {
	return variant >= VariantClassic && variant <= VariantHuovilainen
}

func validOversampling(factor int) bool {
	return factor == 1 || factor == 2 || factor == 4 || factor == 8
}

func validateFiniteRange(value, min, max float64, name string) error {
	if !core.IsFinite(value) {
		return fmt.Errorf("moog: %s must be finite: %v", name, value)
	}

	if value < min || value > max {
		return fmt.Errorf("moog: %s must be in [%g, %g]: %f", name, min, max, value)
	}

	return nil
}

func clipState(value float64) float64 {
	return core.Clamp(value, -stateLimit, stateLimit)
}

func stateIsFinite(state State) bool {
	for _, v := range state.Stage {
		if !core.IsFinite(v) {
			return false
		}
	}

	for _, v := range state.TanhLast {
		if !core.IsFinite(v) {
			return false
		}
	}

	return core.IsFinite(state.PrevInput) && core.IsFinite(state.PrevOutput)
}
