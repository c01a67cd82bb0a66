package cv

import (
	"math"
	"testing"
)

func TestSchmittTriggerEdges(t *testing.T) {
	tr := NewSchmittTrigger()

	inputs := []float64{0, 0.5, 1, 10, 0.5, 0, 0, 2}
	wantRise := []bool{false, false, true, false, false, false, false, true}
	wantFall := []bool{false, false, false, false, false, true, false, false}
	wantHigh := []bool{false, false, true, true, true, false, false, true}

	for i, in := range inputs {
		got := tr.Process(in)
		if got != wantRise[i] || tr.IsRising() != wantRise[i] {
			t.Fatalf("sample %d: rising = %v, want %v", i, got, wantRise[i])
		}
		if tr.IsFalling() != wantFall[i] {
			t.Fatalf("sample %d: falling = %v, want %v", i, tr.IsFalling(), wantFall[i])
		}
		if tr.IsHigh() != wantHigh[i] {
			t.Fatalf("sample %d: high = %v, want %v", i, tr.IsHigh(), wantHigh[i])
		}
	}
}

func TestSchmittTriggerResetRearms(t *testing.T) {
	tr := NewSchmittTrigger()
	if !tr.Process(10) {
		t.Fatal("expected first rising edge")
	}
	if tr.Process(10) {
		t.Fatal("held input must not retrigger")
	}

	tr.Reset()
	if !tr.Process(10) {
		t.Fatal("expected rising edge after reset")
	}
}

func TestSchmittTriggerCustomThresholds(t *testing.T) {
	tr := NewSchmittTriggerThresholds(2, 0.5)
	if tr.Process(1) {
		t.Fatal("1 is below the high threshold of 2")
	}
	if !tr.Process(2) {
		t.Fatal("expected rising edge at 2")
	}
	if tr.Process(0.6); !tr.IsHigh() {
		t.Fatal("0.6 is above the low threshold, trigger must stay high")
	}
	if tr.Process(0.5); tr.IsHigh() {
		t.Fatal("trigger must re-arm at the low threshold")
	}
}

func TestClockDivider(t *testing.T) {
	d := NewClockDivider(4)

	fired := 0
	for i := 1; i <= 12; i++ {
		if d.Process() {
			fired++
			if i%4 != 0 {
				t.Fatalf("fired at call %d", i)
			}
			if d.Clock() != 0 {
				t.Fatalf("clock = %d after firing", d.Clock())
			}
		}
	}
	if fired != 3 {
		t.Fatalf("fired %d times, want 3", fired)
	}

	d.SetDivision(0)
	if d.Division() != 1 {
		t.Fatalf("division = %d, want 1", d.Division())
	}
	if !d.Process() {
		t.Fatal("division 1 fires every call")
	}
}

func TestPeakFilter(t *testing.T) {
	p := PeakFilter{Lambda: 5}
	if got := p.Process(0.001, 2); got != 2 {
		t.Fatalf("peak = %v, want instant rise to 2", got)
	}

	prev := p.Out()
	for range 1000 {
		cur := p.Process(0.001, 0)
		if cur > prev {
			t.Fatal("peak must decay monotonically on zero input")
		}
		prev = cur
	}

	want := 2 * math.Pow(1-0.005, 1000)
	if math.Abs(prev-want) > 1e-9 {
		t.Fatalf("decayed peak = %v, want %v", prev, want)
	}

	p.Reset()
	if p.Out() != 0 {
		t.Fatal("reset must clear the follower")
	}
}

func TestLightSmooth(t *testing.T) {
	var l Light
	l.SetSmooth(1, 1e-3)
	if l.Brightness() != 1 {
		t.Fatalf("brightness = %v, want instant rise", l.Brightness())
	}

	l.SetSmooth(0, 1e-3)
	if got := l.Brightness(); math.Abs(got-0.97) > 1e-12 {
		t.Fatalf("brightness = %v, want 0.97", got)
	}

	l.Set(3)
	if l.Brightness() != 1 {
		t.Fatalf("brightness = %v, want clamp to 1", l.Brightness())
	}
}
