package cvmidi

import (
	"bytes"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestWriteSMF(t *testing.T) {
	const (
		sampleRate = 48000.0
		bpm        = 120.0
	)

	c, err := New()
	if err != nil {
		t.Fatal(err)
	}

	// One beat at 120 BPM is 24000 samples; gate for the first half beat.
	var rec Recorder
	for n := range 48000 {
		gate := 0.0
		if n%24000 < 12000 {
			gate = 10
		}

		c.Process(0, gate, 0, rec.Add)
	}

	c.Flush(rec.Add)

	var buf bytes.Buffer
	if err := rec.WriteSMF(&buf, sampleRate, bpm); err != nil {
		t.Fatalf("WriteSMF: %v", err)
	}

	sm, err := smf.ReadFrom(&buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	if len(sm.Tracks) != 1 {
		t.Fatalf("tracks = %d", len(sm.Tracks))
	}

	var (
		tick uint32
		ons  []uint32
	)

	for _, ev := range sm.Tracks[0] {
		tick += ev.Delta

		var ch, key, vel uint8
		if midi.Message(ev.Message).GetNoteOn(&ch, &key, &vel) {
			ons = append(ons, tick)
		}
	}

	if len(ons) != 2 || ons[0] != 0 || ons[1] != DefaultResolution {
		t.Fatalf("note-on ticks = %v, want [0 %d]", ons, DefaultResolution)
	}
}

func TestWriteSMFValidation(t *testing.T) {
	var rec Recorder

	var buf bytes.Buffer
	if err := rec.WriteSMF(&buf, 0, 120); err == nil {
		t.Fatal("expected sample rate error")
	}

	if err := rec.WriteSMF(&buf, 48000, -1); err == nil {
		t.Fatal("expected bpm error")
	}

	if err := rec.WriteSMF(nil, 48000, 120); err == nil {
		t.Fatal("expected writer error")
	}

	rec.Add(Event{})
	rec.Reset()

	if rec.Len() != 0 {
		t.Fatal("reset kept events")
	}
}
