package station

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/cwbudde/algo-acid/dsp/core"
	"github.com/cwbudde/algo-acid/dsp/envelope"
	"github.com/cwbudde/algo-acid/dsp/filter/moog"
	"github.com/cwbudde/algo-acid/internal/testutil"
)

const testRate = 48000.0

func newStation(t testing.TB, opts ...Option) *Station {
	t.Helper()

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := New(testRate, append([]Option{WithLogger(quiet)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return s
}

// run processes n samples with constant inputs and returns channel 0.
func run(s *Station, n int, in Inputs, p Params) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = s.Process(in, p).Signal[0]
	}

	return out
}

func TestNewValidation(t *testing.T) {
	for _, sr := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := New(sr); err == nil {
			t.Fatalf("sample rate %v: expected error", sr)
		}
	}

	tests := []struct {
		name string
		opt  Option
	}{
		{"param division", WithParamDivision(0)},
		{"logger", WithLogger(nil)},
		{"oversampling", WithOversampling(3)},
		{"variant", WithLadderVariant(moog.Variant(99))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(testRate, tt.opt); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	s, err := New(testRate, nil, WithLadderVariant(moog.VariantLightweight), WithOversampling(2))
	if err != nil {
		t.Fatal(err)
	}

	if got := s.Ladder().Channel(0).Oversampling(); got != 2 {
		t.Fatalf("oversampling = %d", got)
	}

	vca, vcf := s.Envelopes()
	wantAttack := math.Pow(10, AttackTime)

	testutil.RequireNearlyEqual(t, "vca attack", vca.AttackTime(), wantAttack, 1e-12)
	testutil.RequireNearlyEqual(t, "vcf attack", vcf.AttackTime(), wantAttack, 1e-12)
}

func TestChannelCount(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
		want int
	}{
		{"none", Inputs{}, 1},
		{"signal", Inputs{Signal: make([]float64, 3)}, 3},
		{"frequency", Inputs{Signal: []float64{0}, Frequency: make([]float64, 5)}, 5},
		{"fm", Inputs{FM: make([]float64, 7)}, 7},
		{"capped", Inputs{Signal: make([]float64, 20)}, MaxChannels},
	}

	s := newStation(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Process(tt.in, DefaultParams()).Channels; got != tt.want {
				t.Fatalf("channels = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSilentWithoutGate(t *testing.T) {
	s := newStation(t)
	saw := testutil.DeterministicSaw(110, testRate, 5, 4800)

	for i, x := range saw {
		out := s.Process(Inputs{Signal: []float64{x}}, DefaultParams())
		if out.Signal[0] != 0 {
			t.Fatalf("sample %d: output %v with gate low", i, out.Signal[0])
		}
	}
}

func TestGatedOutputIsBounded(t *testing.T) {
	s := newStation(t)
	saw := testutil.DeterministicSaw(110, testRate, 5, 9600)
	p := DefaultParams()
	p.Resonance = MaxResonance
	p.EnvMod = 1

	out := make([]float64, len(saw))
	for i, x := range saw {
		out[i] = s.Process(Inputs{Signal: []float64{x}, Gate: core.LogicHigh}, p).Signal[0]
	}

	testutil.RequireFinite(t, out)
	testutil.RequireWithin(t, out, -clipLevel, clipLevel)

	if testutil.PeakAbs(out) < 0.1 {
		t.Fatalf("gated voice is silent: peak %v", testutil.PeakAbs(out))
	}
}

func TestMonoInputsBroadcast(t *testing.T) {
	s := newStation(t)
	saw := testutil.DeterministicSaw(220, testRate, 5, 2400)
	freq := []float64{0.5, 0.5, 0.5, 0.5}

	for _, x := range saw {
		out := s.Process(Inputs{Signal: []float64{x}, Frequency: freq, Gate: core.LogicHigh}, DefaultParams())
		if out.Channels != len(freq) {
			t.Fatalf("channels = %d", out.Channels)
		}

		for ch := 1; ch < out.Channels; ch++ {
			if d := math.Abs(out.Signal[ch] - out.Signal[0]); d > 1e-3 {
				t.Fatalf("channel %d differs from channel 0 by %v", ch, d)
			}
		}
	}
}

func TestCutoffFollowsKnobAndCV(t *testing.T) {
	s := newStation(t)
	p := DefaultParams()
	p.Frequency = 5

	run(s, 8, Inputs{}, p)
	testutil.RequireNearlyEqual(t, "knob cutoff", s.Ladder().Channel(0).CutoffHz(), 640, 1)
	testutil.RequireNearlyEqual(t, "resonance", s.Ladder().Channel(0).Resonance(), 0, 0)

	p.Resonance = 1
	run(s, 8, Inputs{Frequency: []float64{1}}, p)
	testutil.RequireNearlyEqual(t, "cv cutoff", s.Ladder().Channel(0).CutoffHz(), 1280, 2)
	testutil.RequireNearlyEqual(t, "resonance", s.Ladder().Channel(0).Resonance(), resonanceScale, 1e-12)

	p.FMAmount = -1
	run(s, 8, Inputs{Frequency: []float64{1}, FM: []float64{2}}, p)
	testutil.RequireNearlyEqual(t, "fm cutoff", s.Ladder().Channel(0).CutoffHz(), 320, 0.5)
}

func TestEnvelopeModulatesCutoff(t *testing.T) {
	p := DefaultParams()
	p.Frequency = 5
	p.EnvMod = 1
	p.Resonance = 1
	p.Accent = 1

	knob := p.CutoffHz()
	// With eg2 idle only the fixed offset remains: pitch 5 - 2*0.3137.
	rest := knob * math.Exp2(-2*envelopeOffset)

	tests := []struct {
		name   string
		accent float64
	}{
		{"plain", 0},
		{"accented", core.LogicHigh},
	}

	peaks := make(map[string]float64)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStation(t)
			in := Inputs{Gate: core.LogicHigh, Accent: tt.accent}
			_, vcf := s.Envelopes()

			var peak, maxMemory float64

			for range int(testRate / 2) {
				s.Process(in, p)
				peak = max(peak, s.Ladder().Channel(0).CutoffHz())
				maxMemory = max(maxMemory, s.memory)
			}

			if peak < 2*knob {
				t.Fatalf("cutoff peak %v Hz, want above %v Hz", peak, 2*knob)
			}

			if tt.accent == 0 && maxMemory != 0 {
				t.Fatalf("memory tap %v without accent", maxMemory)
			}

			if tt.accent != 0 && maxMemory <= 0.1 {
				t.Fatalf("memory tap %v with accent", maxMemory)
			}

			run(s, int(testRate), in, p)

			if !vcf.IsIdle() {
				t.Fatalf("VCF envelope still %v", vcf.Stage())
			}

			testutil.RequireNearlyEqual(t, "settled cutoff", s.Ladder().Channel(0).CutoffHz(), rest, 1)

			peaks[tt.name] = peak
		})
	}

	if peaks["accented"] <= peaks["plain"] {
		t.Fatalf("accented peak %v <= plain peak %v", peaks["accented"], peaks["plain"])
	}
}

func TestCutoffUpdateRate(t *testing.T) {
	s := newStation(t)
	p := DefaultParams()
	p.Frequency = 5
	p.EnvMod = 1

	cutoff := func() float64 { return s.Ladder().Channel(0).CutoffHz() }

	// While eg2 runs the knob is followed on the very next sample, well
	// before the first divider tick.
	s.Process(Inputs{Gate: core.LogicHigh}, p)

	before := cutoff()
	p.Frequency = 6
	s.Process(Inputs{Gate: core.LogicHigh}, p)

	if s.paramDivider.Clock() == 0 {
		t.Fatal("knob change landed on a divider tick")
	}

	if got := cutoff(); got < 1.8*before {
		t.Fatalf("active envelope: cutoff %v Hz after knob change from %v Hz", got, before)
	}

	// Once eg2 is idle the cutoff only moves on divider ticks.
	_, vcf := s.Envelopes()
	run(s, 2*int(testRate), Inputs{}, p)

	if !vcf.IsIdle() {
		t.Fatalf("VCF envelope still %v", vcf.Stage())
	}

	for s.paramDivider.Clock() != 0 {
		s.Process(Inputs{}, p)
	}

	settled := cutoff()
	p.Frequency = 7

	for i := 1; i < defaultParamDivision; i++ {
		s.Process(Inputs{}, p)

		if got := cutoff(); got != settled {
			t.Fatalf("sample %d between ticks: cutoff %v Hz, want %v Hz", i, got, settled)
		}
	}

	s.Process(Inputs{}, p)

	if s.paramDivider.Clock() != 0 {
		t.Fatalf("divider clock = %d, want a tick", s.paramDivider.Clock())
	}

	testutil.RequireNearlyEqual(t, "ticked cutoff", cutoff(), 2*settled, 2)
}

func TestAccentLatchesOnGateEdge(t *testing.T) {
	s := newStation(t)
	p := DefaultParams()
	_, vcf := s.Envelopes()

	s.Process(Inputs{Gate: core.LogicHigh, Accent: core.LogicHigh}, p)

	if !s.Accent() {
		t.Fatal("accent did not latch on a coincident gate edge")
	}

	testutil.RequireNearlyEqual(t, "accent decay", vcf.DecayTime(), math.Pow(10, AccentDecay), 1e-12)

	// Knob polls and the gate falling edge keep the accent decay.
	run(s, 100, Inputs{Gate: core.LogicHigh, Accent: core.LogicHigh}, p)
	run(s, 100, Inputs{}, p)

	if !s.Accent() {
		t.Fatal("accent cleared without a gate edge")
	}

	if vcf.Stage() == envelope.StageRelease {
		t.Fatal("accented VCF envelope released on gate fall")
	}

	testutil.RequireNearlyEqual(t, "held accent decay", vcf.DecayTime(), math.Pow(10, AccentDecay), 1e-12)

	// Next gate edge with accent low clears it and restores the knob.
	s.Process(Inputs{Gate: core.LogicHigh}, p)

	if s.Accent() {
		t.Fatal("accent still latched after an unaccented gate edge")
	}

	testutil.RequireNearlyEqual(t, "knob decay", vcf.DecayTime(), math.Pow(10, DefaultVCFDecay), 1e-12)
}

func TestAccentNeedsCoincidentEdge(t *testing.T) {
	s := newStation(t)
	p := DefaultParams()

	run(s, 10, Inputs{Accent: core.LogicHigh}, p)
	s.Process(Inputs{Gate: core.LogicHigh, Accent: core.LogicHigh}, p)

	if s.Accent() {
		t.Fatal("accent latched without rising with the gate")
	}
}

func TestAccentIsLouder(t *testing.T) {
	saw := testutil.DeterministicSaw(110, testRate, 5, 4800)
	p := DefaultParams()
	p.Accent = 1

	render := func(accent float64) float64 {
		s := newStation(t)

		out := make([]float64, len(saw))
		for i, x := range saw {
			out[i] = s.Process(Inputs{Signal: []float64{x}, Gate: core.LogicHigh, Accent: accent}, p).Signal[0]
		}

		return testutil.PeakAbs(out)
	}

	if plain, accented := render(0), render(core.LogicHigh); accented <= plain {
		t.Fatalf("accented peak %v <= plain peak %v", accented, plain)
	}
}

func TestHold(t *testing.T) {
	s := newStation(t)
	p := DefaultParams()
	p.Hold = true
	vca, _ := s.Envelopes()

	run(s, 8, Inputs{}, p)
	testutil.RequireNearlyEqual(t, "hold decay", vca.DecayTime(), math.Pow(10, HoldDecay), 1e-9)

	// Gate falls during the attack: held envelopes keep running.
	run(s, 20, Inputs{Gate: core.LogicHigh}, p)
	run(s, 4, Inputs{}, p)

	if vca.Stage() == envelope.StageRelease {
		t.Fatal("VCA envelope released while hold is on")
	}

	p.Hold = false
	run(s, 8, Inputs{}, p)
	testutil.RequireNearlyEqual(t, "knob decay", vca.DecayTime(), math.Pow(10, DefaultVCADecay), 1e-9)

	s.Process(Inputs{Gate: core.LogicHigh}, p)
	s.Process(Inputs{}, p)

	if vca.Stage() != envelope.StageRelease {
		t.Fatalf("VCA stage = %v after gate fall without hold", vca.Stage())
	}
}

func TestDecayKnobUpdatesAtControlRate(t *testing.T) {
	s := newStation(t, WithParamDivision(4))
	vca, vcf := s.Envelopes()
	p := DefaultParams()
	p.VCADecay = -1
	p.VCFDecay = -2

	run(s, 3, Inputs{}, p)

	if vca.DecayTime() == 0.1 {
		t.Fatal("decay applied before the first control tick")
	}

	s.Process(Inputs{}, p)
	testutil.RequireNearlyEqual(t, "vca decay", vca.DecayTime(), 0.1, 1e-12)
	testutil.RequireNearlyEqual(t, "vcf decay", vcf.DecayTime(), 0.01, 1e-12)
}

func TestDriveSaturatesAndLights(t *testing.T) {
	saw := testutil.DeterministicSaw(110, testRate, 2.5, 9600)

	render := func(drive float64) (float64, Lights) {
		s := newStation(t)
		p := DefaultParams()
		p.Drive = drive

		out := make([]float64, len(saw))
		for i, x := range saw {
			out[i] = s.Process(Inputs{Signal: []float64{x}, Gate: core.LogicHigh}, p).Signal[0]
		}

		return testutil.PeakAbs(out[4800:]), s.Lights()
	}

	cleanPeak, clean := render(0)
	hotPeak, hot := render(1)

	if hotPeak <= cleanPeak {
		t.Fatalf("full drive peak %v <= clean peak %v", hotPeak, cleanPeak)
	}

	if clean.Drive != 0 {
		t.Fatalf("drive light lit without drive: %v", clean.Drive)
	}

	if hot.Drive <= 0 {
		t.Fatal("drive light dark at full drive")
	}
}

func TestDecayLights(t *testing.T) {
	s := newStation(t)
	p := DefaultParams()

	run(s, 2048, Inputs{Gate: core.LogicHigh}, p)

	if l := s.Lights(); l.VCADecay != 1 || l.VCFDecay != 1 {
		t.Fatalf("decay lights = %+v while decaying", l)
	}

	run(s, int(testRate), Inputs{}, p)

	if l := s.Lights(); l.VCADecay > 0.2 || l.VCFDecay > 0.2 {
		t.Fatalf("decay lights = %+v after release", l)
	}
}

func TestReset(t *testing.T) {
	s := newStation(t)
	p := DefaultParams()
	saw := testutil.DeterministicSaw(110, testRate, 5, 2048)

	for _, x := range saw {
		s.Process(Inputs{Signal: []float64{x}, Gate: core.LogicHigh, Accent: core.LogicHigh}, p)
	}

	s.Reset()

	vca, vcf := s.Envelopes()
	if s.Accent() || !vca.IsIdle() || !vcf.IsIdle() {
		t.Fatal("reset left voice active")
	}

	if s.Lights() != (Lights{}) {
		t.Fatalf("lights after reset = %+v", s.Lights())
	}

	if st := s.Ladder().Channel(0).State(); st != (moog.State{}) {
		t.Fatalf("ladder state after reset = %+v", st)
	}
}

func TestNonFiniteInputs(t *testing.T) {
	s := newStation(t)
	p := DefaultParams()
	p.Frequency = math.NaN()
	p.Drive = math.Inf(1)

	out := run(s, 1024, Inputs{Signal: []float64{math.NaN()}, Frequency: []float64{math.Inf(-1)}, Gate: core.LogicHigh}, p)
	testutil.RequireFinite(t, out)
}

func TestSeedIsReproducible(t *testing.T) {
	saw := testutil.DeterministicSaw(110, testRate, 5, 1024)

	render := func(seed int64) []float64 {
		s := newStation(t, WithSeed(seed))

		out := make([]float64, len(saw))
		for i, x := range saw {
			out[i] = s.Process(Inputs{Signal: []float64{x}, Gate: core.LogicHigh}, DefaultParams()).Signal[0]
		}

		return out
	}

	testutil.RequireSliceNearlyEqual(t, render(7), render(7), 0)
}

func BenchmarkStationMono(b *testing.B) {
	s := newStation(b)
	p := DefaultParams()
	in := Inputs{Signal: []float64{1}, Gate: core.LogicHigh}

	b.ReportAllocs()

	for range b.N {
		s.Process(in, p)
	}
}

func BenchmarkStationSixteenChannels(b *testing.B) {
	s := newStation(b)
	p := DefaultParams()
	in := Inputs{Signal: make([]float64, MaxChannels), Gate: core.LogicHigh}

	b.ReportAllocs()

	for range b.N {
		s.Process(in, p)
	}
}
