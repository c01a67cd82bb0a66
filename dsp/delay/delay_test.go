package delay

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-acid/internal/testutil"
)

func TestLine(t *testing.T) {
	if _, err := NewLine(0); err == nil {
		t.Fatal("expected error for size 0")
	}

	l, err := NewLine(4)
	if err != nil {
		t.Fatal(err)
	}

	for v := 1.0; v <= 5; v++ {
		l.Write(v)
	}

	tests := []struct {
		delay int
		want  float64
	}{
		{1, 5},
		{2, 4},
		{4, 2},
		{0, 5},
		{9, 2},
	}

	for _, tt := range tests {
		if got := l.Read(tt.delay); got != tt.want {
			t.Errorf("Read(%d) = %v, want %v", tt.delay, got, tt.want)
		}
	}

	l.Reset()

	if l.Read(1) != 0 || l.Len() != 4 {
		t.Fatal("reset left data behind")
	}
}

func TestEchoValidation(t *testing.T) {
	if _, err := NewEcho(0); err == nil {
		t.Fatal("expected sample rate error")
	}

	for _, opt := range []EchoOption{
		WithEchoTime(0),
		WithEchoTime(3),
		WithEchoFeedback(1),
		WithEchoMix(-0.1),
		WithEchoTone(math.NaN()),
	} {
		if _, err := NewEcho(48000, opt); err == nil {
			t.Fatal("expected option error")
		}
	}
}

func TestEchoRepeats(t *testing.T) {
	const sr = 48000.0

	e, err := NewEcho(sr, WithEchoTime(0.01), WithEchoFeedback(0.5), WithEchoMix(0.5), nil)
	if err != nil {
		t.Fatal(err)
	}

	n := e.DelaySamples()
	if n != 480 {
		t.Fatalf("delay = %d samples", n)
	}

	out := make([]float64, 4*n)
	for i := range out {
		x := 0.0
		if i == 0 {
			x = 1
		}

		out[i] = e.ProcessSample(x)
	}

	testutil.RequireNearlyEqual(t, "dry", out[0], 0.5, 1e-12)
	testutil.RequireNearlyEqual(t, "first repeat", out[n], 0.5, 1e-12)
	testutil.RequireNearlyEqual(t, "gap", testutil.PeakAbs(out[1:n]), 0, 0)

	second := testutil.PeakAbs(out[2*n : 3*n])
	if second <= 0 || second >= 0.25 {
		t.Fatalf("second repeat peak = %v, want in (0, 0.25)", second)
	}

	e.Reset()

	if got := e.ProcessSample(0); got != 0 {
		t.Fatalf("output after reset = %v", got)
	}
}

func TestEchoSanitizesInput(t *testing.T) {
	e, err := NewEcho(48000)
	if err != nil {
		t.Fatal(err)
	}

	out := make([]float64, 2*e.DelaySamples())
	for i := range out {
		out[i] = e.ProcessSample(math.NaN())
	}

	testutil.RequireFinite(t, out)
}
