package composer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

const (
	fieldHeader      = "header"
	fieldNotes       = "notes"
	fieldOctave      = "octave"
	fieldSlideAccent = "slideAccent"
	fieldTime        = "time"
)

var (
	// ErrInvalidHeader reports a header that does not match
	// "<LETTER> <LENGTH>[<+|-><SEMITONES>]".
	ErrInvalidHeader = errors.New("invalid header")
	// ErrInvalidTimeValue reports a character other than 'o', 'O', '_', '-'
	// or space in the time track.
	ErrInvalidTimeValue = errors.New("invalid time value")
)

// ParseError locates a score parse failure.
type ParseError struct {
	Field string
	Step  int  // -1 for header errors
	Char  byte // offending character, 0 for header errors
	Err   error
}

func (e *ParseError) Error() string {
	if e.Step < 0 {
		return fmt.Sprintf("composer: %s: %v", e.Field, e.Err)
	}

	return fmt.Sprintf("composer: %s step %d (%q): %v", e.Field, e.Step+1, e.Char, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var headerPattern = regexp.MustCompile(`^([A-Z])\s+([0-9]+)\s*([+-][0-9]{1,2})?`)

// semitones of the natural notes, indexed by letter - 'A'
var naturalNotes = [7]float64{9, 11, 0, 2, 4, 5, 7}

// Parse derives a Pattern from s. It never modifies s.
//
// On ErrInvalidHeader the returned pattern is cleared. On ErrInvalidTimeValue
// the pattern holds everything parsed before the offending step, and that
// step carries no attributes; later time steps are not applied.
func Parse(s Score) (Pattern, error) {
	var p Pattern

	m := headerPattern.FindStringSubmatch(s.Header)
	if m == nil {
		return p, &ParseError{Field: fieldHeader, Step: -1, Err: ErrInvalidHeader}
	}

	length, err := strconv.Atoi(m[2])
	if err != nil {
		return p, &ParseError{Field: fieldHeader, Step: -1, Err: fmt.Errorf("%w: length %q", ErrInvalidHeader, m[2])}
	}

	transpose := 0
	if m[3] != "" {
		// The grammar limits this to a sign and two digits.
		transpose, _ = strconv.Atoi(m[3])
	}

	length = max(0, min(length, Steps))

	for step := range length {
		letter, ok := charAt(s.Notes, 2*step)
		if !ok || letter == ' ' {
			continue
		}

		p.Notes[step] = noteValue(letter)

		switch accidental, _ := charAt(s.Notes, 2*step+1); accidental {
		case '#':
			p.SharpFlats[step] = 1.0 / 12
		case 'b':
			p.SharpFlats[step] = -1.0 / 12
		}

		p.Notes[step] += p.SharpFlats[step]
	}

	for step := range length {
		switch c, _ := charAt(s.Octave, step); c {
		case 'U', 'u':
			p.Octaves[step] = 1
		case 'D', 'd':
			p.Octaves[step] = -1
		}
	}

	for step := range length {
		a, _ := charAt(s.SlideAccent, 2*step)
		b, _ := charAt(s.SlideAccent, 2*step+1)

		if isFlag(a, 'S') || isFlag(b, 'S') {
			p.Attributes[step].SetSlide(true)
		}

		if isFlag(a, 'A') || isFlag(b, 'A') {
			p.Attributes[step].SetAccent(true)
		}
	}

	p.Letter = m[1][0]
	p.Length = length
	p.Transpose = float64(transpose) / 12

	// Steps past the end of the time track are rests.
	for step := range length {
		c, ok := charAt(s.Time, step)
		if !ok {
			p.Attributes[step].Clear()
			continue
		}

		switch c {
		case 'o', 'O':
			p.Attributes[step].SetGate(true)
		case '_':
			p.Attributes[step].SetTie(true)
		case ' ', '-':
			p.Attributes[step].Clear()
		default:
			p.Attributes[step].Clear()
			return p, &ParseError{Field: fieldTime, Step: step, Char: c, Err: ErrInvalidTimeValue}
		}
	}

	return p, nil
}

func noteValue(letter byte) float64 {
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}

	if letter < 'A' || letter > 'G' {
		return 0
	}

	return naturalNotes[letter-'A'] / 12
}

func isFlag(c, flag byte) bool {
	return c == flag || c == flag+('a'-'A')
}

func charAt(s string, i int) (byte, bool) {
	if i < 0 || i >= len(s) {
		return 0, false
	}

	return s[i], true
}
