package cvmidi

import "testing"

type note struct {
	sample   int64
	on       bool
	key, vel uint8
}

func notes(events []Event) []note {
	var out []note

	for _, e := range events {
		var ch, key, vel uint8

		switch {
		case e.Message.GetNoteOn(&ch, &key, &vel):
			out = append(out, note{e.Sample, true, key, vel})
		case e.Message.GetNoteOff(&ch, &key, &vel):
			out = append(out, note{e.Sample, false, key, 0})
		}
	}

	return out
}

func feed(t *testing.T, c *Converter, pitch, gate, accent []float64) []Event {
	t.Helper()

	var rec Recorder
	for i := range gate {
		c.Process(pitch[i], gate[i], accent[i], rec.Add)
	}

	return rec.Events()
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"channel", WithChannel(16)},
		{"velocity", WithVelocity(0, 127)},
		{"accent velocity", WithVelocity(100, 128)},
		{"root", WithRootNote(-1)},
		{"bend", WithPitchBend(48)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opt); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	c, err := New(nil, WithChannel(9))
	if err != nil {
		t.Fatal(err)
	}

	if c.Channel() != 9 {
		t.Fatalf("channel = %d", c.Channel())
	}
}

func TestGateEdgesMakeNotes(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatal(err)
	}

	pitch := []float64{0, 0, 0, 0, 1, 1, 1, -0.25}
	gate := []float64{0, 10, 10, 0, 10, 0, 0, 10}
	accent := []float64{0, 0, 0, 0, 10, 10, 0, 0}

	got := notes(feed(t, c, pitch, gate, accent))
	want := []note{
		{1, true, 60, DefaultVelocity},
		{3, false, 60, 0},
		{4, true, 72, DefaultAccentVelocity},
		{5, false, 72, 0},
		{7, true, 57, DefaultVelocity},
	}

	if len(got) != len(want) {
		t.Fatalf("got %d notes %+v, want %d", len(got), got, len(want))
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("note %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	if !c.Sounding() {
		t.Fatal("last note should still sound")
	}

	var rec Recorder
	c.Flush(rec.Add)

	if n := notes(rec.Events()); len(n) != 1 || n[0].on || n[0].key != 57 {
		t.Fatalf("flush = %+v", n)
	}
}

func TestLegatoPitchChange(t *testing.T) {
	c, err := New(WithRootNote(48))
	if err != nil {
		t.Fatal(err)
	}

	pitch := []float64{0, 0, 2.0 / 12, 2.0 / 12}
	gate := []float64{10, 10, 10, 0}
	accent := make([]float64, len(gate))

	got := notes(feed(t, c, pitch, gate, accent))
	want := []note{
		{0, true, 48, DefaultVelocity},
		{2, true, 50, DefaultVelocity},
		{2, false, 48, 0},
		{3, false, 50, 0},
	}

	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("note %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPitchBendGlide(t *testing.T) {
	c, err := New(WithPitchBend(2))
	if err != nil {
		t.Fatal(err)
	}

	pitch := []float64{0, 1.0 / 12, 2.0 / 12, 5.0 / 12}
	gate := []float64{10, 10, 10, 10}
	accent := make([]float64, len(gate))

	events := feed(t, c, pitch, gate, accent)

	var bends []int16

	for _, e := range events {
		var ch uint8
		var rel int16
		var abs uint16

		if e.Message.GetPitchBend(&ch, &rel, &abs) {
			bends = append(bends, rel)
		}
	}

	// +1 and +2 semitones bend; +5 retriggers with the bend recentred.
	want := []int16{maxBend / 2, maxBend, 0}
	if len(bends) != len(want) {
		t.Fatalf("bends = %v, want %v", bends, want)
	}

	for i := range want {
		if d := int(bends[i]) - int(want[i]); d < -1 || d > 1 {
			t.Fatalf("bend %d = %d, want %d", i, bends[i], want[i])
		}
	}

	n := notes(events)
	if len(n) != 3 || n[1].key != 65 || n[2].on || n[2].key != 60 {
		t.Fatalf("notes = %+v", n)
	}
}

func TestResetIsSilent(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatal(err)
	}

	c.Process(0, 10, 0, nil)
	c.Reset()

	if c.Sounding() {
		t.Fatal("reset kept the note")
	}

	var rec Recorder
	c.Process(0, 10, 0, rec.Add)

	if rec.Len() != 1 || rec.Events()[0].Sample != 0 {
		t.Fatalf("events after reset = %+v", rec.Events())
	}
}
