package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-acid/dsp/core"
	"github.com/cwbudde/algo-acid/dsp/window"
	"github.com/cwbudde/algo-acid/internal/rig"
	"github.com/cwbudde/algo-acid/measure/tone"
	"github.com/cwbudde/algo-acid/modules/composer"
	"github.com/cwbudde/algo-acid/modules/cvmidi"
	"github.com/cwbudde/algo-acid/modules/station"
)

// session is the editable state behind one acidtrace invocation or REPL.
type session struct {
	score   composer.Score
	params  station.Params
	rate    float64
	bpm     float64
	steps   int
	seed    int64
	analyze bool
	window  window.Type
	logger  *slog.Logger
}

func newSession(logger *slog.Logger) *session {
	return &session{
		score:  composer.DefaultScore(),
		params: station.DefaultParams(),
		rate:   48000,
		bpm:    rig.DefaultBPM,
		steps:  composer.Steps,
		seed:   1,
		window: window.TypeHann,
		logger: logger,
	}
}

// knobs maps CLI knob names onto the station parameters.
func (s *session) knobs() map[string]*float64 {
	return map[string]*float64{
		"cutoff":    &s.params.Frequency,
		"res":       &s.params.Resonance,
		"fm":        &s.params.FMAmount,
		"vca-decay": &s.params.VCADecay,
		"vcf-decay": &s.params.VCFDecay,
		"envmod":    &s.params.EnvMod,
		"accent":    &s.params.Accent,
		"drive":     &s.params.Drive,
	}
}

func (s *session) knobNames() []string {
	names := make([]string, 0, 8)
	for name := range s.knobs() {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (s *session) setKnob(name, value string) error {
	if name == "hold" {
		on, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("hold: %w", err)
		}

		s.params.Hold = on

		return nil
	}

	dst, ok := s.knobs()[name]
	if !ok {
		return fmt.Errorf("unknown knob %q (have %s, hold)", name, strings.Join(s.knobNames(), ", "))
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	*dst = v
	s.params = s.params.Clamped()

	return nil
}

func (s *session) setField(name, value string) error {
	score, err := s.score.WithField(name, value)
	if err != nil {
		return err
	}

	s.score = score

	if _, err := composer.Parse(score); err != nil {
		return fmt.Errorf("score kept, but it does not parse: %w", err)
	}

	return nil
}

// loadPattern overlays a composer state document onto the score.
func (s *session) loadPattern(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var st composer.State
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	s.score, _ = st.ApplyScore(s.score)

	return nil
}

func (s *session) savePattern(path string) error {
	data, err := json.MarshalIndent(composer.ScoreState(s.score), "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func (s *session) loadKnobs(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	p, err := station.LoadState(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	s.params = p

	return nil
}

func (s *session) saveKnobs(path string) error {
	data, err := station.MarshalState(s.params)
	if err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// trace renders the session and prints the step table, and optionally the
// spectrum summary. When rec is non-nil the note stream is recorded into it.
func (s *session) trace(ctx context.Context, w io.Writer, rec *cvmidi.Recorder) error {
	r, err := rig.New(
		rig.WithProcessor(core.WithSampleRate(s.rate)),
		rig.WithTempo(s.bpm),
		rig.WithScore(s.score),
		rig.WithParams(s.params),
		rig.WithSeed(s.seed),
		rig.WithLogger(s.logger),
	)
	if err != nil {
		return err
	}

	var (
		conv  *cvmidi.Converter
		audio []float64
	)

	if rec != nil {
		if conv, err = cvmidi.New(); err != nil {
			return err
		}
	}

	visit := func(f rig.Frame) {
		if conv != nil {
			conv.Process(f.CV, f.Gate, f.Accent, rec.Add)
		}

		if s.analyze {
			audio = append(audio, f.Audio)
		}
	}

	sums, err := r.Run(ctx, s.steps, visit)
	if err != nil {
		return err
	}

	if conv != nil {
		conv.Flush(rec.Add)
	}

	if err := printTable(w, sums); err != nil {
		return err
	}

	if !s.analyze {
		return nil
	}

	res, err := tone.Analyze(audio, tone.Config{SampleRate: s.rate, WindowType: s.window})
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	_, err = fmt.Fprintf(w, "\npeak %.1f Hz (%.3f V)  centroid %.1f Hz  rms %.3f V  resolution %.2f Hz\n",
		res.PeakHz, res.PeakLevel, res.CentroidHz, res.RMS, res.ResolutionHz)

	return err
}

func (s *session) writeMIDI(path string, rec *cvmidi.Recorder) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := rec.WriteSMF(f, s.rate, s.bpm); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
