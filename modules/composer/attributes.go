package composer

import "strings"

// Attributes is the per-step flag set.
type Attributes uint16

// Step flags. Bit 0x02 is unused.
const (
	AttrGate   Attributes = 0x01
	AttrAccent Attributes = 0x04
	AttrSlide  Attributes = 0x08
	AttrTie    Attributes = 0x10

	// AttrInit is the state of a freshly initialized step.
	AttrInit = AttrGate
)

// Gate reports whether the step starts a note.
func (a Attributes) Gate() bool { return a&AttrGate != 0 }

// Accent reports whether the step is accented.
func (a Attributes) Accent() bool { return a&AttrAccent != 0 }

// Slide reports whether the step glides into the next one.
func (a Attributes) Slide() bool { return a&AttrSlide != 0 }

// Tie reports whether the step sustains the previous note.
func (a Attributes) Tie() bool { return a&AttrTie != 0 }

// Clear removes every flag.
func (a *Attributes) Clear() { *a = 0 }

// Init restores AttrInit.
func (a *Attributes) Init() { *a = AttrInit }

// SetGate sets or clears the gate flag.
func (a *Attributes) SetGate(on bool) { a.set(AttrGate, on) }

// SetAccent sets or clears the accent flag.
func (a *Attributes) SetAccent(on bool) { a.set(AttrAccent, on) }

// SetSlide sets or clears the slide flag.
func (a *Attributes) SetSlide(on bool) { a.set(AttrSlide, on) }

// SetTie sets or clears the tie flag. A tied step carries no gate, accent or
// slide of its own.
func (a *Attributes) SetTie(on bool) {
	a.set(AttrTie, on)
	if on {
		*a &^= AttrGate | AttrAccent | AttrSlide
	}
}

// ToggleGate flips the gate flag.
func (a *Attributes) ToggleGate() { *a ^= AttrGate }

// ToggleAccent flips the accent flag.
func (a *Attributes) ToggleAccent() { *a ^= AttrAccent }

// ToggleSlide flips the slide flag.
func (a *Attributes) ToggleSlide() { *a ^= AttrSlide }

func (a *Attributes) set(flag Attributes, on bool) {
	*a &^= flag
	if on {
		*a |= flag
	}
}

// String renders the flags as a four-character mask, e.g. "G.S." or "...T".
func (a Attributes) String() string {
	var b strings.Builder

	for _, f := range []struct {
		flag Attributes
		c    byte
	}{{AttrGate, 'G'}, {AttrAccent, 'A'}, {AttrSlide, 'S'}, {AttrTie, 'T'}} {
		if a&f.flag != 0 {
			b.WriteByte(f.c)
		} else {
			b.WriteByte('.')
		}
	}

	return b.String()
}
