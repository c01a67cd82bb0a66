package cv

// ClockDivider fires once every Division calls to Process.
type ClockDivider struct {
	division int
	clock    int
}

// NewClockDivider returns a divider firing every division calls. Divisions
// below 1 are treated as 1.
func NewClockDivider(division int) ClockDivider {
	d := ClockDivider{}
	d.SetDivision(division)

	return d
}

// SetDivision changes the division without resetting the counter.
func (d *ClockDivider) SetDivision(division int) {
	if division < 1 {
		division = 1
	}

	d.division = division
}

// Division returns the configured division.
func (d *ClockDivider) Division() int { return d.division }

// Clock returns the current counter. It is 0 right after the divider fired.
func (d *ClockDivider) Clock() int { return d.clock }

// Reset rewinds the counter.
func (d *ClockDivider) Reset() { d.clock = 0 }

// Process advances the counter and reports whether the divider fired.
func (d *ClockDivider) Process() bool {
	d.clock++
	if d.clock >= d.division {
		d.clock = 0
		return true
	}

	return false
}
