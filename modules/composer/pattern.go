package composer

// Steps is the fixed capacity of a pattern.
const Steps = 16

// Pattern is the parsed, playable form of a Score. All pitch values are in
// 1V/octave units, so a semitone is 1/12.
type Pattern struct {
	Notes      [Steps]float64
	SharpFlats [Steps]float64 // accidental applied to Notes, for display only
	Octaves    [Steps]float64 // -1, 0 or +1
	Transpose  float64
	Letter     byte // display-only root tag from the header
	Length     int  // active steps in [0, Steps]
	Attributes [Steps]Attributes
}

// Clear zeroes every per-step array and the header fields.
func (p *Pattern) Clear() {
	*p = Pattern{}
}

// At returns the attributes of step i, wrapping around the pattern
// capacity in both directions.
func (p *Pattern) At(i int) Attributes {
	return p.Attributes[wrapStep(i)]
}

// CV returns the pitch voltage a gate on step i latches.
func (p *Pattern) CV(i int) float64 {
	i = wrapStep(i)
	return p.Notes[i] + p.Octaves[i] + p.Transpose
}

func wrapStep(i int) int {
	i %= Steps
	if i < 0 {
		i += Steps
	}

	return i
}
