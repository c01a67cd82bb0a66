package composer

import (
	"fmt"
	"math"
	"strings"
)

// Track widths written by Format and used for the default score.
const (
	NotesWidth       = 64
	OctaveWidth      = 32
	SlideAccentWidth = 64
	TimeWidth        = 32
)

// DefaultHeader is the header of an empty score.
const DefaultHeader = "A 16 +0"

// Score is the textual form of a pattern.
//
//	Header       "<LETTER> <LENGTH>[ <+|-><SEMITONES>]", e.g. "A 16 +0"
//	Notes        2 chars per step: letter A-G (any case) or space, then '#', 'b' or space
//	Octave       1 char per step: 'U'/'u' up, 'D'/'d' down, anything else stays
//	SlideAccent  2 chars per step: 'S'/'s' and 'A'/'a' in either position
//	Time         1 char per step: 'o'/'O' gate, '_' tie, ' '/'-' rest
type Score struct {
	Header      string
	Notes       string
	Octave      string
	SlideAccent string
	Time        string
}

// DefaultScore returns the score a new engine starts with: 16 silent steps.
func DefaultScore() Score {
	blank := strings.Repeat(" ", NotesWidth)

	return Score{
		Header:      DefaultHeader,
		Notes:       blank,
		Octave:      blank,
		SlideAccent: blank,
		Time:        blank,
	}
}

// Field returns the track with the given persisted key.
func (s Score) Field(name string) (string, error) {
	switch name {
	case fieldHeader:
		return s.Header, nil
	case fieldNotes:
		return s.Notes, nil
	case fieldOctave:
		return s.Octave, nil
	case fieldSlideAccent:
		return s.SlideAccent, nil
	case fieldTime:
		return s.Time, nil
	}

	return "", fmt.Errorf("composer: unknown score field %q", name)
}

// WithField returns a copy of s with one track replaced.
func (s Score) WithField(name, value string) (Score, error) {
	switch name {
	case fieldHeader:
		s.Header = value
	case fieldNotes:
		s.Notes = value
	case fieldOctave:
		s.Octave = value
	case fieldSlideAccent:
		s.SlideAccent = value
	case fieldTime:
		s.Time = value
	default:
		return s, fmt.Errorf("composer: unknown score field %q", name)
	}

	return s, nil
}

// FieldNames lists the score tracks in display order.
func FieldNames() []string {
	return []string{fieldHeader, fieldNotes, fieldOctave, fieldSlideAccent, fieldTime}
}

var sharpNames = [12]string{"C ", "C#", "D ", "D#", "E ", "F ", "F#", "G ", "G#", "A ", "A#", "B "}

// Format renders p back into text. Accidentals are spelled with sharps, except
// for the two values only a flat or sharp on the octave edge can produce
// ("Cb" and "B#"). Parsing the result yields p again, apart from SharpFlats
// which follow the new spelling.
func Format(p Pattern) Score {
	letter := p.Letter
	if letter < 'A' || letter > 'Z' {
		letter = DefaultHeader[0]
	}

	length := max(0, min(p.Length, Steps))
	transpose := int(math.Round(p.Transpose * 12))

	notes := make([]byte, 0, NotesWidth)
	octave := make([]byte, 0, OctaveWidth)
	sa := make([]byte, 0, SlideAccentWidth)
	tm := make([]byte, 0, TimeWidth)

	for i := range length {
		notes = append(notes, noteName(p.Notes[i])...)

		switch {
		case p.Octaves[i] > 0.5:
			octave = append(octave, 'U')
		case p.Octaves[i] < -0.5:
			octave = append(octave, 'D')
		default:
			octave = append(octave, ' ')
		}

		attr := p.Attributes[i]
		cell := [2]byte{' ', ' '}
		if attr.Accent() {
			cell[0] = 'A'
		}

		if attr.Slide() {
			if attr.Accent() {
				cell[1] = 'S'
			} else {
				cell[0] = 'S'
			}
		}

		sa = append(sa, cell[:]...)

		switch {
		case attr.Tie():
			tm = append(tm, '_')
		case attr.Gate():
			tm = append(tm, 'o')
		default:
			tm = append(tm, '-')
		}
	}

	return Score{
		Header:      fmt.Sprintf("%c %d %+d", letter, length, transpose),
		Notes:       pad(notes, NotesWidth),
		Octave:      pad(octave, OctaveWidth),
		SlideAccent: pad(sa, SlideAccentWidth),
		Time:        pad(tm, TimeWidth),
	}
}

func noteName(v float64) string {
	semi := int(math.Round(v * 12))

	switch {
	case semi < 0:
		return "Cb"
	case semi >= 12:
		return "B#"
	default:
		return sharpNames[semi]
	}
}

func pad(b []byte, width int) string {
	if len(b) >= width {
		return string(b)
	}

	return string(b) + strings.Repeat(" ", width-len(b))
}
