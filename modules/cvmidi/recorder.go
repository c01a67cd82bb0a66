package cvmidi

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-acid/dsp/core"
	"gitlab.com/gomidi/midi/v2/smf"
)

// DefaultResolution is the SMF resolution in ticks per quarter note.
const DefaultResolution = 960

// Recorder collects events for export.
type Recorder struct {
	events []Event
}

// Add appends e. It has the signature expected by Converter.Process.
func (r *Recorder) Add(e Event) { r.events = append(r.events, e) }

// Events returns the recorded events in order.
func (r *Recorder) Events() []Event { return r.events }

// Len returns the number of recorded events.
func (r *Recorder) Len() int { return len(r.events) }

// Reset drops all events.
func (r *Recorder) Reset() { r.events = r.events[:0] }

// WriteSMF writes the events as a single-track Standard MIDI File. Sample
// stamps are converted to ticks at sampleRate and bpm.
func (r *Recorder) WriteSMF(w io.Writer, sampleRate, bpm float64) error {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return fmt.Errorf("cvmidi: sample rate must be > 0 and finite: %f", sampleRate)
	}

	if !core.IsFinite(bpm) || bpm <= 0 {
		return fmt.Errorf("cvmidi: bpm must be > 0 and finite: %f", bpm)
	}

	if w == nil {
		return errors.New("cvmidi: nil writer")
	}

	ticksPerSample := DefaultResolution * bpm / 60 / sampleRate

	var track smf.Track
	track.Add(0, smf.MetaMeter(4, 4))
	track.Add(0, smf.MetaTempo(bpm))

	var last uint32

	for _, e := range r.events {
		tick := uint32(math.Round(float64(e.Sample) * ticksPerSample))
		if tick < last {
			tick = last
		}

		track.Add(tick-last, e.Message)
		last = tick
	}

	track.Close(0)

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(DefaultResolution)

	if err := sm.Add(track); err != nil {
		return fmt.Errorf("cvmidi: add track: %w", err)
	}

	if _, err := sm.WriteTo(w); err != nil {
		return fmt.Errorf("cvmidi: write smf: %w", err)
	}

	return nil
}
