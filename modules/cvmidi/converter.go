package cvmidi

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-acid/dsp/core"
	"github.com/cwbudde/algo-acid/dsp/cv"
	"gitlab.com/gomidi/midi/v2"
)

const (
	DefaultVelocity       = 100
	DefaultAccentVelocity = 127
	// DefaultRootNote is the key played at 0 V (middle C).
	DefaultRootNote = 60

	maxBend = 8191
)

// Event is a MIDI message stamped with the sample it was produced on.
type Event struct {
	Sample  int64
	Message midi.Message
}

// Option configures a Converter.
type Option func(*config) error

type config struct {
	channel        uint8
	velocity       uint8
	accentVelocity uint8
	root           int
	bendRange      float64
}

// WithChannel sets the MIDI channel (0-15).
func WithChannel(ch int) Option {
	return func(cfg *config) error {
		if ch < 0 || ch > 15 {
			return fmt.Errorf("cvmidi: channel must be in [0, 15]: %d", ch)
		}

		cfg.channel = uint8(ch)

		return nil
	}
}

// WithVelocity sets the velocities of plain and accented notes (1-127).
func WithVelocity(normal, accent int) Option {
	return func(cfg *config) error {
		for _, v := range []int{normal, accent} {
			if v < 1 || v > 127 {
				return fmt.Errorf("cvmidi: velocity must be in [1, 127]: %d", v)
			}
		}

		cfg.velocity = uint8(normal)
		cfg.accentVelocity = uint8(accent)

		return nil
	}
}

// WithRootNote sets the key played at 0 V.
func WithRootNote(note int) Option {
	return func(cfg *config) error {
		if note < 0 || note > 127 {
			return fmt.Errorf("cvmidi: root note must be in [0, 127]: %d", note)
		}

		cfg.root = note

		return nil
	}
}

// WithPitchBend sends pitch changes under a held gate as pitch bend with the
// given receiver range in semitones. Zero disables bending.
func WithPitchBend(semitones float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(semitones) || semitones < 0 || semitones > 24 {
			return fmt.Errorf("cvmidi: pitch bend range must be in [0, 24]: %f", semitones)
		}

		cfg.bendRange = semitones

		return nil
	}
}

// Converter produces note messages from CV, gate and accent voltages.
type Converter struct {
	cfg    config
	gate   cv.SchmittTrigger
	sample int64

	note     uint8
	bend     int16
	sounding bool
}

// New creates a converter.
func New(opts ...Option) (*Converter, error) {
	cfg := config{
		velocity:       DefaultVelocity,
		accentVelocity: DefaultAccentVelocity,
		root:           DefaultRootNote,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &Converter{cfg: cfg, gate: cv.NewSchmittTrigger()}, nil
}

// Channel returns the MIDI channel.
func (c *Converter) Channel() uint8 { return c.cfg.channel }

// Sounding reports whether a note is held.
func (c *Converter) Sounding() bool { return c.sounding }

// Process consumes one sample of pitch (V/oct), gate and accent voltages and
// passes any resulting messages to emit.
func (c *Converter) Process(pitch, gate, accent float64, emit func(Event)) {
	defer func() { c.sample++ }()

	c.gate.Process(core.Sanitize(gate))

	key := float64(c.cfg.root) + 12*core.Sanitize(pitch)

	switch {
	case c.gate.IsRising():
		if c.sounding {
			c.noteOff(emit)
		}

		c.noteOn(key, accent >= 1, emit)
	case c.gate.IsFalling():
		if c.sounding {
			c.noteOff(emit)
		}
	case c.sounding:
		c.follow(key, accent >= 1, emit)
	}
}

// Flush releases a held note.
func (c *Converter) Flush(emit func(Event)) {
	if c.sounding {
		c.noteOff(emit)
	}
}

// Reset forgets the held note and rewinds the sample counter without
// emitting anything.
func (c *Converter) Reset() {
	c.gate.Reset()
	c.sample = 0
	c.sounding = false
	c.bend = 0
}

// follow tracks pitch changes while the gate stays high.
func (c *Converter) follow(key float64, accented bool, emit func(Event)) {
	offset := key - float64(c.note)

	if c.cfg.bendRange > 0 && math.Abs(offset) <= c.cfg.bendRange {
		bend := int16(math.Round(core.Clamp(offset/c.cfg.bendRange, -1, 1) * maxBend))
		if bend != c.bend {
			c.bend = bend
			c.send(midi.Pitchbend(c.cfg.channel, bend), emit)
		}

		return
	}

	if quantize(key) == c.note {
		return
	}

	// Legato: the new key sounds before the old one is released.
	old := c.note
	c.noteOn(key, accented, emit)
	c.send(midi.NoteOff(c.cfg.channel, old), emit)
}

func (c *Converter) noteOn(key float64, accented bool, emit func(Event)) {
	velocity := c.cfg.velocity
	if accented {
		velocity = c.cfg.accentVelocity
	}

	if c.bend != 0 {
		c.bend = 0
		c.send(midi.Pitchbend(c.cfg.channel, 0), emit)
	}

	c.note = quantize(key)
	c.sounding = true
	c.send(midi.NoteOn(c.cfg.channel, c.note, velocity), emit)
}

func (c *Converter) noteOff(emit func(Event)) {
	c.sounding = false
	c.send(midi.NoteOff(c.cfg.channel, c.note), emit)
}

func (c *Converter) send(msg midi.Message, emit func(Event)) {
	if emit != nil {
		emit(Event{Sample: c.sample, Message: msg})
	}
}

func quantize(key float64) uint8 {
	return uint8(core.Clamp(math.Round(key), 0, 127))
}
