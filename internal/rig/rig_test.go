package rig

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/cwbudde/algo-acid/dsp/core"
	"github.com/cwbudde/algo-acid/internal/testutil"
	"github.com/cwbudde/algo-acid/modules/composer"
	"github.com/cwbudde/algo-acid/modules/station"
)

const testRate = 48000.0

func testScore() composer.Score {
	return composer.Score{
		Header:      "C 4 +0",
		Notes:       "C E G C ",
		Octave:      "   U",
		SlideAccent: "    A   ",
		Time:        "oooo",
	}
}

func newRig(t *testing.T, opts ...Option) *Rig {
	t.Helper()

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	base := []Option{
		WithProcessor(core.WithSampleRate(testRate)),
		WithScore(testScore()),
		WithLogger(quiet),
	}

	r, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return r
}

func TestOptionValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"tempo low", WithTempo(5)},
		{"tempo nan", WithTempo(math.NaN())},
		{"gate length", WithGateLength(1)},
		{"slide", WithSlide(2, 0)},
		{"length", WithLength(-1)},
		{"logger", WithLogger(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opt); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	r, err := New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatal(err)
	}

	if r.SampleRate() != core.DefaultProcessorConfig().SampleRate {
		t.Fatalf("sample rate = %v", r.SampleRate())
	}

	testutil.RequireNearlyEqual(t, "samples per step", r.SamplesPerStep(), 44100*60/DefaultBPM/StepsPerBeat, 1e-9)

	if r.Finished() {
		t.Fatal("unbounded rig finished")
	}
}

func TestRunPlaysPattern(t *testing.T) {
	r := newRig(t)

	sums, err := r.Run(context.Background(), 8, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(sums) != 8 {
		t.Fatalf("summaries = %d", len(sums))
	}

	wantCV := []float64{0, 4.0 / 12, 7.0 / 12, 1, 1, 1, 1, 1}

	for i, s := range sums {
		if s.Index != i || s.Step != i {
			t.Fatalf("period %d: index %d step %d", i, s.Index, s.Step)
		}

		if want := int64(i) * 6000; s.Start != want {
			t.Fatalf("period %d starts at %d, want %d", i, s.Start, want)
		}

		testutil.RequireNearlyEqual(t, "cv", s.CV, wantCV[i], 1e-12)

		if gated := i < 4; s.Gate != gated {
			t.Fatalf("period %d: gate %v", i, s.Gate)
		}

		if s.Tied {
			t.Fatalf("period %d: staccato step held its gate", i)
		}

		if accent := i == 2; s.Accent != accent {
			t.Fatalf("period %d: accent %v", i, s.Accent)
		}
	}

	if sums[0].Peak < 0.1 {
		t.Fatalf("first note silent: peak %v", sums[0].Peak)
	}
}

func TestRunVisitsEveryFrame(t *testing.T) {
	r := newRig(t, WithTempo(240))

	var frames int64

	sums, err := r.Run(context.Background(), 3, func(f Frame) {
		if f.Sample != frames {
			t.Fatalf("frame %d out of order", f.Sample)
		}

		frames++
	})
	if err != nil {
		t.Fatal(err)
	}

	if frames != 3*3000 || len(sums) != 3 {
		t.Fatalf("frames = %d, summaries = %d", frames, len(sums))
	}
}

func TestRunCancelled(t *testing.T) {
	r := newRig(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sums, err := r.Run(ctx, 4, nil)
	if !errors.Is(err, context.Canceled) || len(sums) != 0 {
		t.Fatalf("Run = %d summaries, %v", len(sums), err)
	}
}

func TestLengthAndStereoProcess(t *testing.T) {
	r := newRig(t, WithLength(1))

	buf := make([]float32, 2*6000)
	r.Process(buf)

	if !r.Finished() {
		t.Fatal("rig not finished after its length")
	}

	for i := 0; i < len(buf); i += 2 {
		if buf[i] != buf[i+1] {
			t.Fatalf("frame %d: channels differ", i/2)
		}
	}

	tail := make([]float32, 64)
	r.Process(tail)

	for i, v := range tail {
		if v != 0 {
			t.Fatalf("sample %d after end = %v", i, v)
		}
	}
}

func TestSetParamsClamps(t *testing.T) {
	r := newRig(t)

	p := station.DefaultParams()
	p.Resonance = 5
	r.SetParams(p)

	if got := r.Params().Resonance; got != station.MaxResonance {
		t.Fatalf("resonance = %v", got)
	}
}

func TestScoreEditWhilePlaying(t *testing.T) {
	r := newRig(t)

	if _, err := r.Run(context.Background(), 1, nil); err != nil {
		t.Fatal(err)
	}

	s := testScore()
	s.Time = "----"
	r.Composer().SetScore(s)

	sums, err := r.Run(context.Background(), 3, nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, sum := range sums {
		if sum.Gate {
			t.Fatalf("step %d gated after the score was cleared", sum.Step)
		}
	}
}

func TestEcho(t *testing.T) {
	if _, err := New(WithEcho(0, 0.5, 0.5)); err == nil {
		t.Fatal("expected steps error")
	}

	// 32 steps at 120 BPM is 4 s, beyond the echo's reach.
	if _, err := New(WithEcho(32, 0.5, 0.5)); err == nil {
		t.Fatal("expected time error")
	}

	dry := newRig(t, WithScore(composer.Score{Header: "C 1", Notes: "C ", Time: "o"}))
	wet := newRig(t, WithScore(composer.Score{Header: "C 1", Notes: "C ", Time: "o"}), WithEcho(3, 0.5, 0.5))

	drySums, err := dry.Run(context.Background(), 4, nil)
	if err != nil {
		t.Fatal(err)
	}

	wetSums, err := wet.Run(context.Background(), 4, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Only step 1 plays; the echo repeats it three steps later.
	if wetSums[3].Peak <= 10*drySums[3].Peak {
		t.Fatalf("echo step peak %v vs dry %v", wetSums[3].Peak, drySums[3].Peak)
	}
}
