package station

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/algo-acid/dsp/core"
	"github.com/cwbudde/algo-acid/dsp/cv"
	"github.com/cwbudde/algo-acid/dsp/envelope"
	"github.com/cwbudde/algo-acid/dsp/fastmath"
	"github.com/cwbudde/algo-acid/dsp/filter/moog"
	"github.com/cwbudde/algo-acid/dsp/signal"
)

const (
	memoryRetention = 0.999
	envelopeOffset  = 0.3137
	resonanceScale  = 3.3 // knob range onto the ladder's [0, 4]
	ditherAmplitude = 1e-6
	clipLevel       = 9.0
	maxDrive        = 9.5
	driveSpan       = 9.0
	levelLambda     = 5.0
	lightSlowdown   = 0.1
)

// Station is the acid voice.
type Station struct {
	sampleRate float64
	sampleTime float64
	logger     *slog.Logger

	eg1, eg2 *envelope.Generator
	ladder   *moog.Bank
	noise    *signal.Noise

	gateTrigger   cv.SchmittTrigger
	accentTrigger cv.SchmittTrigger
	holdTrigger   cv.SchmittTrigger

	paramDivider cv.ClockDivider
	lightDivider cv.ClockDivider
	levelDivider cv.ClockDivider
	level        cv.PeakFilter

	eg1Decay float64 // log10 seconds currently applied
	eg2Decay float64
	memory   float64
	drive    float64
	accent   bool

	driveLight cv.Light
	vcaLight   cv.Light
	vcfLight   cv.Light
}

// New creates a voice at the given sample rate.
func New(sampleRate float64, opts ...Option) (*Station, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("station: sample rate must be > 0 and finite: %f", sampleRate)
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

	ladder, err := moog.NewBank(sampleRate,
		moog.WithVariant(cfg.variant),
		moog.WithOversampling(cfg.oversampling),
		moog.WithCutoffHz(DefaultParams().CutoffHz()))
	if err != nil {
		return nil, fmt.Errorf("station: %w", err)
	}

	s := &Station{
		sampleRate:    sampleRate,
		sampleTime:    1 / sampleRate,
		logger:        cfg.logger,
		eg1:           envelope.New(),
		eg2:           envelope.New(),
		ladder:        ladder,
		noise:         signal.NewNoise(cfg.seed),
		gateTrigger:   cv.NewSchmittTrigger(),
		accentTrigger: cv.NewSchmittTrigger(),
		holdTrigger:   cv.NewSchmittTrigger(),
		paramDivider:  cv.NewClockDivider(cfg.paramDivision),
		lightDivider:  cv.NewClockDivider(lightDivision),
		levelDivider:  cv.NewClockDivider(levelDivision),
		level:         cv.PeakFilter{Lambda: levelLambda},
	}

	s.Reset()

	return s, nil
}

// SampleRate returns the sample rate in Hz.
func (s *Station) SampleRate() float64 { return s.sampleRate }

// Reset clears filters, envelopes, accent and meters, like a module reset.
// The first knob poll afterwards re-applies every decay time.
func (s *Station) Reset() {
	s.ladder.Reset()
	s.level.Reset()
	s.paramDivider.Reset()
	s.lightDivider.Reset()
	s.levelDivider.Reset()

	attack := math.Pow(10, AttackTime)
	for _, eg := range []*envelope.Generator{s.eg1, s.eg2} {
		eg.SetAttackTime(attack)
		eg.Reset()
	}

	s.gateTrigger.Reset()
	s.accentTrigger.Reset()
	s.holdTrigger.Reset()

	// Out-of-range values force the next poll to apply the knobs.
	s.eg1Decay = math.Inf(1)
	s.eg2Decay = math.Inf(1)
	s.memory = 0
	s.drive = maxDrive
	s.accent = false

	s.driveLight = cv.Light{}
	s.vcaLight = cv.Light{}
	s.vcfLight = cv.Light{}
}

// Accent reports whether accent is latched.
func (s *Station) Accent() bool { return s.accent }

// Envelopes returns the VCA and VCF envelope generators for inspection.
func (s *Station) Envelopes() (vca, vcf *envelope.Generator) { return s.eg1, s.eg2 }

// Ladder returns the filter bank.
func (s *Station) Ladder() *moog.Bank { return s.ladder }

// Lights returns the indicator brightnesses.
func (s *Station) Lights() Lights {
	return Lights{
		Drive:    s.driveLight.Brightness(),
		VCADecay: s.vcaLight.Brightness(),
		VCFDecay: s.vcfLight.Brightness(),
	}
}

// Process advances the voice by one sample.
func (s *Station) Process(in Inputs, params Params) Outputs {
	p := params.Clamped()
	out := Outputs{Channels: in.channelCount()}

	if s.paramDivider.Process() {
		s.pollParams(p)
	}

	s.accentTrigger.Process(2 * core.Sanitize(in.Accent))
	s.gateTrigger.Process(2 * core.Sanitize(in.Gate))

	if s.gateTrigger.IsRising() {
		s.gateOn(p)
	}

	if s.gateTrigger.IsFalling() {
		hold := s.holdTrigger.IsHigh()
		if !hold {
			s.eg1.Release()
		}

		if !s.accent && !hold {
			s.eg2.Release()
		}
	}

	s.eg1.Process(s.sampleTime)
	eg2 := s.eg2.Process(s.sampleTime)

	latched, accentAmount := 0.0, 0.0
	if s.accent {
		latched, accentAmount = 1, p.Accent
	}

	s.memory = core.FlushDenormals(eg2*latched*(1-memoryRetention) + s.memory*memoryRetention)

	if s.paramDivider.Clock() == 0 || !s.eg2.IsIdle() {
		mix := eg2 - envelopeOffset
		if s.accent {
			mix += eg2*accentAmount*(1-p.Resonance) + s.memory*1.5*accentAmount*p.Resonance
		}

		for ch := range out.Channels {
			pitch := p.Frequency + mix*2*p.EnvMod + voltage(in.Frequency, ch) + p.FMAmount*voltage(in.FM, ch)
			pitch = core.Clamp(pitch, 0, MaxFrequency)
			s.ladder.SetCutoffHz(ch, BaseFrequency*fastmath.Exp2(pitch))
		}
	}

	eg1v := s.eg1.Value()
	vca := eg1v*eg1v + eg2*eg2*accentAmount

	var dry0, wet0 float64

	for ch := range out.Channels {
		x := voltage(in.Signal, ch) + s.noise.Next(ditherAmplitude)
		dry := s.ladder.ProcessSample(ch, x) * vca
		wet := clipLevel * fastmath.TanhRational5(dry/s.drive)
		out.Signal[ch] = core.Sanitize(wet)

		if ch == 0 {
			dry0, wet0 = dry, wet
		}
	}

	if s.levelDivider.Process() {
		s.level.Process(s.sampleTime*levelDivision, math.Abs(wet0-dry0))
	}

	if s.lightDivider.Process() {
		dt := s.sampleTime * lightDivision * lightSlowdown
		s.vcaLight.SetSmooth(decayLit(s.eg1), dt)
		s.vcfLight.SetSmooth(decayLit(s.eg2), dt)
		s.driveLight.Set(s.level.Out() - 1)
	}

	return out
}

// pollParams applies knob values at control rate.
func (s *Station) pollParams(p Params) {
	holdIn := 0.0
	if p.Hold {
		holdIn = 2
	}

	s.holdTrigger.Process(holdIn)

	switch {
	case s.holdTrigger.IsRising():
		s.logger.Debug("station: hold on")
		s.setVCADecay(HoldDecay)
	case s.holdTrigger.IsFalling():
		s.logger.Debug("station: hold off")
		s.setVCADecay(p.VCADecay)
	case !s.holdTrigger.IsHigh() && s.eg1Decay != p.VCADecay:
		s.setVCADecay(p.VCADecay)
	}

	if s.eg2Decay != p.VCFDecay && !s.accent {
		s.setVCFDecay(p.VCFDecay)
	}

	s.ladder.SetResonance(p.Resonance * resonanceScale)
	s.drive = maxDrive - driveSpan*p.Drive
}

// gateOn handles a gate rising edge: latch or clear accent, then retrigger
// both envelopes.
func (s *Station) gateOn(p Params) {
	if s.accentTrigger.IsRising() && !s.accent {
		s.accent = true
		s.setVCFDecay(AccentDecay)
		s.logger.Debug("station: accent latched")
	}

	if !s.accentTrigger.IsHigh() && s.accent {
		s.accent = false
		s.eg2.Release()
		s.setVCFDecay(p.VCFDecay)
		s.logger.Debug("station: accent cleared")
	}

	s.eg1.Trigger()
	s.eg2.Trigger()
}

func (s *Station) setVCADecay(v float64) {
	s.eg1Decay = v
	s.eg1.SetDecayTime(math.Pow(10, v))
}

func (s *Station) setVCFDecay(v float64) {
	s.eg2Decay = v
	s.eg2.SetDecayTime(math.Pow(10, v))
}

func decayLit(eg *envelope.Generator) float64 {
	if eg.DecayWasTriggered() || eg.Stage() == envelope.StageDecay {
		return 1
	}

	return 0
}
