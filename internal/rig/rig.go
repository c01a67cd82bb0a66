// Package rig wires a clock, the composer, an oscillator and the station
// into a playable acid line. The CLIs and the integration tests drive it.
package rig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-acid/dsp/core"
	"github.com/cwbudde/algo-acid/dsp/delay"
	"github.com/cwbudde/algo-acid/dsp/signal"
	"github.com/cwbudde/algo-acid/modules/composer"
	"github.com/cwbudde/algo-acid/modules/station"
)

const (
	DefaultBPM        = 120.0
	DefaultGateLength = 0.5
	// StepsPerBeat is the clock resolution: sixteenth notes.
	StepsPerBeat = 4
	// OutputGain scales station volts to full-scale float audio.
	OutputGain = 0.1
)

// Option configures a Rig.
type Option func(*config) error

type config struct {
	processor  core.ProcessorConfig
	bpm        float64
	gateLength float64
	score      composer.Score
	params     station.Params
	waveform   signal.Waveform
	slideR     float64
	slideC     float64
	seed       int64
	steps      int
	echoSteps  float64
	echoFB     float64
	echoMix    float64
	logger     *slog.Logger
}

func defaultConfig() config {
	return config{
		processor:  core.DefaultProcessorConfig(),
		bpm:        DefaultBPM,
		gateLength: DefaultGateLength,
		score:      composer.DefaultScore(),
		params:     station.DefaultParams(),
		waveform:   signal.Saw,
		seed:       1,
		logger:     slog.Default(),
	}
}

// WithProcessor sets the sample rate and control division.
func WithProcessor(opts ...core.ProcessorOption) Option {
	return func(cfg *config) error {
		cfg.processor = core.ApplyProcessorOptions(opts...)
		return nil
	}
}

// WithTempo sets the clock tempo in beats per minute.
func WithTempo(bpm float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(bpm) || bpm < 20 || bpm > 400 {
			return fmt.Errorf("rig: tempo must be in [20, 400] BPM: %f", bpm)
		}

		cfg.bpm = bpm

		return nil
	}
}

// WithGateLength sets the clock pulse width as a fraction of a step.
func WithGateLength(fraction float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(fraction) || fraction <= 0 || fraction >= 1 {
			return fmt.Errorf("rig: gate length must be in (0, 1): %f", fraction)
		}

		cfg.gateLength = fraction

		return nil
	}
}

// WithScore sets the pattern.
func WithScore(s composer.Score) Option {
	return func(cfg *config) error {
		cfg.score = s
		return nil
	}
}

// WithParams sets the initial voice knobs.
func WithParams(p station.Params) Option {
	return func(cfg *config) error {
		cfg.params = p
		return nil
	}
}

// WithWaveform selects the oscillator waveform.
func WithWaveform(w signal.Waveform) Option {
	return func(cfg *config) error {
		cfg.waveform = w
		return nil
	}
}

// WithSlide sets the glide resistor and capacitor knobs in [-1, 1].
func WithSlide(resistor, capacitor float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(resistor) || !core.IsFinite(capacitor) ||
			math.Abs(resistor) > 1 || math.Abs(capacitor) > 1 {
			return fmt.Errorf("rig: slide knobs must be in [-1, 1]: %f, %f", resistor, capacitor)
		}

		cfg.slideR, cfg.slideC = resistor, capacitor

		return nil
	}
}

// WithSeed seeds the voice dither.
func WithSeed(seed int64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		return nil
	}
}

// WithLength stops the rig after the given number of clock steps. Zero runs
// forever.
func WithLength(steps int) Option {
	return func(cfg *config) error {
		if steps < 0 {
			return fmt.Errorf("rig: length must be >= 0: %d", steps)
		}

		cfg.steps = steps

		return nil
	}
}

// WithEcho adds a feedback echo after the voice, repeating every steps clock
// steps. The resulting time must not exceed delay.MaxEchoTime.
func WithEcho(steps, feedback, mix float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(steps) || steps <= 0 {
			return fmt.Errorf("rig: echo steps must be > 0: %f", steps)
		}

		cfg.echoSteps, cfg.echoFB, cfg.echoMix = steps, feedback, mix

		return nil
	}
}

// WithLogger sets the logger shared by the modules.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errors.New("rig: logger must not be nil")
		}

		cfg.logger = l

		return nil
	}
}

// Frame is one processed sample.
type Frame struct {
	Sample int64
	Step   int
	Clock  float64
	CV     float64
	Gate   float64
	Accent float64
	Audio  float64
}

// Rig is a running acid line. Process and Next must be called from one
// goroutine; SetParams and the composer's score setters may be called from
// any.
type Rig struct {
	cfg            config
	samplesPerStep float64
	pulseSamples   float64
	endSample      int64

	composer *composer.Composer
	osc      *signal.Oscillator
	voice    *station.Station
	echo     *delay.Echo // nil without WithEcho
	params   atomic.Pointer[station.Params]

	phase   float64
	wrapped bool // the last Next ended a clock period
	sample  int64
	signal  [1]float64
}

// New builds a running rig.
func New(opts ...Option) (*Rig, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	sr := cfg.processor.SampleRate

	comp, err := composer.New(sr, composer.WithScore(cfg.score), composer.WithLogger(cfg.logger))
	if err != nil {
		return nil, fmt.Errorf("rig: %w", err)
	}

	voice, err := station.New(sr,
		station.WithParamDivision(cfg.processor.ControlDivision),
		station.WithSeed(cfg.seed),
		station.WithLogger(cfg.logger))
	if err != nil {
		return nil, fmt.Errorf("rig: %w", err)
	}

	r := &Rig{
		cfg:            cfg,
		samplesPerStep: sr * 60 / cfg.bpm / StepsPerBeat,
		composer:       comp,
		osc:            signal.NewOscillator(cfg.waveform, core.WithSampleRate(sr)),
		voice:          voice,
	}

	if cfg.echoSteps > 0 {
		r.echo, err = delay.NewEcho(sr,
			delay.WithEchoTime(cfg.echoSteps*r.samplesPerStep/sr),
			delay.WithEchoFeedback(cfg.echoFB),
			delay.WithEchoMix(cfg.echoMix))
		if err != nil {
			return nil, fmt.Errorf("rig: %w", err)
		}
	}

	r.pulseSamples = r.samplesPerStep * cfg.gateLength
	if cfg.steps > 0 {
		r.endSample = int64(math.Ceil(r.samplesPerStep * float64(cfg.steps)))
	}

	r.SetParams(cfg.params)
	comp.SetRunning(true)

	return r, nil
}

// SampleRate returns the processing rate in Hz.
func (r *Rig) SampleRate() float64 { return r.cfg.processor.SampleRate }

// SamplesPerStep returns the clock period in samples.
func (r *Rig) SamplesPerStep() float64 { return r.samplesPerStep }

// Composer returns the pattern engine, e.g. to edit the score while playing.
func (r *Rig) Composer() *composer.Composer { return r.composer }

// Station returns the voice.
func (r *Rig) Station() *station.Station { return r.voice }

// Params returns the voice knobs in effect.
func (r *Rig) Params() station.Params { return *r.params.Load() }

// SetParams publishes new voice knobs; they apply from the next sample.
func (r *Rig) SetParams(p station.Params) {
	p = p.Clamped()
	r.params.Store(&p)
}

// Finished reports whether a configured length has been played.
func (r *Rig) Finished() bool {
	return r.endSample > 0 && r.sample >= r.endSample
}

// Next processes one sample.
func (r *Rig) Next() Frame {
	clock := 0.0
	if r.phase < r.pulseSamples {
		clock = core.LogicHigh
	}

	seq := r.composer.Process(composer.Inputs{Clock: clock}, composer.Params{
		SlideResistor:  r.cfg.slideR,
		SlideCapacitor: r.cfg.slideC,
	})

	r.signal[0] = r.osc.Process(seq.CV)
	voice := r.voice.Process(station.Inputs{
		Signal: r.signal[:],
		Gate:   seq.Gate,
		Accent: seq.Accent,
	}, *r.params.Load())

	audio := voice.Signal[0]
	if r.echo != nil {
		audio = r.echo.ProcessSample(audio)
	}

	f := Frame{
		Sample: r.sample,
		Step:   r.composer.Step(),
		Clock:  clock,
		CV:     seq.CV,
		Gate:   seq.Gate,
		Accent: seq.Accent,
		Audio:  audio,
	}

	r.sample++
	r.phase++

	r.wrapped = r.phase >= r.samplesPerStep
	if r.wrapped {
		r.phase -= r.samplesPerStep
	}

	return f
}

// Process fills dst with interleaved stereo float32 audio. Past the
// configured length it writes silence.
func (r *Rig) Process(dst []float32) {
	for i := 0; i+1 < len(dst); i += 2 {
		var v float32
		if !r.Finished() {
			v = float32(r.Next().Audio * OutputGain)
		}

		dst[i], dst[i+1] = v, v
	}
}

// Render processes n samples and returns the mono audio in volts.
func (r *Rig) Render(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = r.Next().Audio
	}

	return out
}

// StepSummary describes one clock period.
type StepSummary struct {
	Index  int     // clock periods since start
	Step   int     // composer cursor
	Start  int64   // first sample
	CV     float64 // at the end of the period
	Gate   bool    // gate was high at some point
	Tied   bool    // gate still high at the end
	Accent bool
	Peak   float64 // audio, volts
}

// Run plays steps clock periods, passing every frame to visit (which may be
// nil), and returns one summary per period. It stops early with ctx's error
// when ctx is cancelled, checked at each period boundary.
func (r *Rig) Run(ctx context.Context, steps int, visit func(Frame)) ([]StepSummary, error) {
	summaries := make([]StepSummary, 0, steps)

	for i := range steps {
		if err := ctx.Err(); err != nil {
			return summaries, err
		}

		s := StepSummary{Index: i, Start: r.sample}

		var f Frame

		for k := 0; ; k++ {
			f = r.Next()
			if visit != nil {
				visit(f)
			}

			if k == 0 {
				s.Step = f.Step
			}

			s.Gate = s.Gate || f.Gate > 0
			s.Accent = s.Accent || f.Accent > 0
			s.Peak = max(s.Peak, math.Abs(f.Audio))

			if r.wrapped {
				break
			}
		}

		s.CV = f.CV
		s.Tied = f.Gate > 0
		summaries = append(summaries, s)
	}

	return summaries, nil
}
