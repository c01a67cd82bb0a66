package composer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-acid/dsp/core"
	"github.com/cwbudde/algo-acid/dsp/cv"
	"github.com/cwbudde/algo-acid/dsp/filter/wdf"
)

const (
	// ClockIgnoreDuration is how long clock edges are ignored after a run
	// start or reset, so a clock pulse coinciding with it plays step 1.
	ClockIgnoreDuration = 0.001

	// clockThreshold is the level above which the clock counts as high for
	// gate copying.
	clockThreshold = 0.1
)

// Inputs are the per-sample input voltages.
type Inputs struct {
	Clock float64
	Reset float64
}

// Params are the per-sample control values. Run and Reset are buttons
// (0 or 1); the slide knobs are in [-1, 1].
type Params struct {
	Run            float64
	Reset          float64
	SlideResistor  float64
	SlideCapacitor float64
}

// Outputs are the per-sample output voltages. CV is 1V/octave; Gate and
// Accent are 0 or core.LogicHigh.
type Outputs struct {
	CV     float64
	Gate   float64
	Accent float64
}

// Lights are the indicator brightnesses in [0, 1].
type Lights struct {
	Run   float64
	Reset float64
}

type parsed struct {
	pattern Pattern
	err     error
}

// Composer is the pattern engine.
type Composer struct {
	sampleRate float64
	sampleTime float64
	logger     *slog.Logger

	score        atomic.Pointer[Score]
	dirty        atomic.Bool
	resetOnRun   atomic.Bool
	pendingRun   atomic.Int32 // -1 none, 0 stop, 1 run
	runningShown atomic.Bool
	last         atomic.Pointer[parsed]

	pattern Pattern

	slide        *wdf.RCLowpass
	rMod, cMod   float64
	clockTrigger cv.SchmittTrigger
	runTrigger   cv.SchmittTrigger
	resetTrigger cv.SchmittTrigger

	running       bool
	step          int
	ignoreSamples int
	clockIgnore   int
	currentCV     float64
	currentAccent bool
	currentSlide  bool
	resetFlash    float64
	runLight      cv.Light
	resetLight    cv.Light
}

// New creates a stopped engine at the given sample rate.
func New(sampleRate float64, opts ...Option) (*Composer, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("composer: sample rate must be > 0 and finite: %f", sampleRate)
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

	c := &Composer{
		sampleRate:    sampleRate,
		sampleTime:    1 / sampleRate,
		logger:        cfg.logger,
		slide:         wdf.NewRCLowpass(),
		rMod:          math.NaN(),
		cMod:          math.NaN(),
		clockTrigger:  cv.NewSchmittTrigger(),
		runTrigger:    cv.NewSchmittTrigger(),
		resetTrigger:  cv.NewSchmittTrigger(),
		ignoreSamples: int(ClockIgnoreDuration * sampleRate),
	}

	if err := c.slide.Prepare(sampleRate); err != nil {
		return nil, err
	}

	c.resetOnRun.Store(cfg.resetOnRun)
	c.pendingRun.Store(-1)
	c.clockIgnore = c.ignoreSamples
	c.SetScore(cfg.score)

	return c, nil
}

// SampleRate returns the sample rate in Hz.
func (c *Composer) SampleRate() float64 { return c.sampleRate }

// SetScore publishes a new score. It is parsed at the start of the next
// Process call.
func (c *Composer) SetScore(s Score) {
	c.score.Store(&s)
	c.dirty.Store(true)
}

// Score returns the most recently published score.
func (c *Composer) Score() Score {
	return *c.score.Load()
}

// Pattern returns the pattern derived by the most recent parse, and that
// parse's error.
func (c *Composer) Pattern() (Pattern, error) {
	p := c.last.Load()
	if p == nil {
		return Pattern{}, nil
	}

	return p.pattern, p.err
}

// SetResetOnRun toggles the full reset performed when the sequencer starts.
func (c *Composer) SetResetOnRun(enabled bool) { c.resetOnRun.Store(enabled) }

// ResetOnRun reports whether starting the sequencer performs a full reset.
func (c *Composer) ResetOnRun() bool { return c.resetOnRun.Load() }

// SetRunning starts or stops the sequencer from outside the audio path. It
// takes effect on the next Process call and always rewinds to step 1.
func (c *Composer) SetRunning(running bool) {
	v := int32(0)
	if running {
		v = 1
	}

	c.pendingRun.Store(v)
}

// Running reports whether the sequencer is running, as of the last Process
// call.
func (c *Composer) Running() bool { return c.runningShown.Load() }

// Step returns the zero-based cursor. Call it from the processing goroutine.
func (c *Composer) Step() int { return c.step }

// Ignoring reports whether the post-reset clock ignore window is active.
func (c *Composer) Ignoring() bool { return c.clockIgnore > 0 }

// Lights returns the current indicator brightnesses.
func (c *Composer) Lights() Lights {
	return Lights{Run: c.runLight.Brightness(), Reset: c.resetLight.Brightness()}
}

// Reset re-arms the clock ignore window, like a host-level module reset.
// The cursor, run state and score are kept.
func (c *Composer) Reset() {
	c.clockIgnore = c.ignoreSamples
}

// Process advances the engine by one sample.
func (c *Composer) Process(in Inputs, params Params) Outputs {
	if c.dirty.Swap(false) {
		c.reparse()
	}

	if v := c.pendingRun.Swap(-1); v >= 0 {
		c.running = v == 1
		c.initRun()
	}

	if c.runTrigger.Process(params.Run) {
		c.running = !c.running
		if c.running {
			c.step = 0
			c.clockIgnore = c.ignoreSamples

			if c.resetOnRun.Load() {
				c.initRun()
			}
		}
	}

	// The clock detector tracks the input even while edges are ignored, so a
	// pulse overlapping the ignore window cannot fire once it closes.
	if c.clockTrigger.Process(in.Clock) && c.running && c.clockIgnore == 0 {
		c.step = (c.step + 1) % Steps
	}

	if c.resetTrigger.Process(params.Reset + in.Reset) {
		c.initRun()
		c.resetFlash = 1
	}

	if r, cp := core.Sanitize(params.SlideResistor), core.Sanitize(params.SlideCapacitor); r != c.rMod || cp != c.cMod {
		c.rMod, c.cMod = r, cp
		c.slide.SetParameters(r, cp)
	}

	var out Outputs

	if c.running {
		if attr := c.pattern.Attributes[c.step]; attr.Gate() {
			c.currentCV = c.pattern.CV(c.step)
			c.currentAccent = attr.Accent()
			c.currentSlide = attr.Slide()
		}

		gate := resolveGate(&c.pattern, c.step, in.Clock > clockThreshold)

		c.slide.ProcessSample(c.currentCV)

		out.CV = c.currentCV
		if c.currentSlide {
			out.CV = c.slide.LastSample()
		}

		out.Gate = core.Gate(gate && c.clockIgnore == 0)
		out.Accent = core.Gate(c.currentAccent)
	}

	c.runningShown.Store(c.running)
	if c.running {
		c.runLight.Set(1)
	} else {
		c.runLight.Set(0)
	}

	c.resetLight.SetSmooth(c.resetFlash, c.sampleTime)
	c.resetFlash = 0

	if c.clockIgnore > 0 {
		c.clockIgnore--
	}

	return out
}

// initRun rewinds to step 1 and forgets the latched note.
func (c *Composer) initRun() {
	c.step = 0
	c.clockIgnore = c.ignoreSamples
	c.currentCV = 0
	c.currentAccent = false
	c.currentSlide = false
	c.clockTrigger.Reset()
}

func (c *Composer) reparse() {
	s := c.Score()

	p, err := Parse(s)
	c.pattern = p
	c.last.Store(&parsed{pattern: p, err: err})

	if err != nil {
		c.logger.Warn("composer: score parse failed",
			slog.String("header", s.Header),
			slog.Any("err", err))
	}

	if c.logger.Enabled(context.Background(), slog.LevelDebug) {
		c.dumpPattern(&p)
	}
}

func (c *Composer) dumpPattern(p *Pattern) {
	c.logger.Debug("composer: pattern",
		slog.String("letter", string(rune(p.Letter))),
		slog.Int("length", p.Length),
		slog.Float64("transpose", p.Transpose))

	for i := range p.Length {
		c.logger.Debug("composer: step",
			slog.Int("step", i+1),
			slog.Float64("hz", core.VoltsToHz(p.CV(i))),
			slog.Float64("octave", p.Octaves[i]),
			slog.String("attr", p.Attributes[i].String()))
	}
}
