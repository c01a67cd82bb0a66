package cv

const (
	// DefaultLowThreshold is the level at or below which a trigger re-arms.
	DefaultLowThreshold = 0.0
	// DefaultHighThreshold is the level at or above which a trigger fires.
	DefaultHighThreshold = 1.0
)

// SchmittTrigger detects edges with hysteresis.
//
// The trigger goes high once the input reaches the high threshold and only
// re-arms after the input falls to the low threshold. Besides the rising edge
// returned by Process, the edges seen on the most recent call are available
// through IsRising and IsFalling.
type SchmittTrigger struct {
	low, high float64

	state   bool
	rising  bool
	falling bool
}

// NewSchmittTrigger returns a trigger with the host default thresholds 0 and 1.
func NewSchmittTrigger() SchmittTrigger {
	return SchmittTrigger{low: DefaultLowThreshold, high: DefaultHighThreshold}
}

// NewSchmittTriggerThresholds returns a trigger with custom thresholds. The
// thresholds are swapped when low > high.
func NewSchmittTriggerThresholds(low, high float64) SchmittTrigger {
	if low > high {
		low, high = high, low
	}

	return SchmittTrigger{low: low, high: high}
}

// Process advances the trigger by one sample and reports a rising edge.
func (t *SchmittTrigger) Process(in float64) bool {
	t.rising = false
	t.falling = false

	if t.state {
		if in <= t.low {
			t.state = false
			t.falling = true
		}

		return false
	}

	if in >= t.high {
		t.state = true
		t.rising = true
	}

	return t.rising
}

// IsHigh reports whether the trigger is currently high.
func (t *SchmittTrigger) IsHigh() bool { return t.state }

// IsRising reports whether the last Process call saw a rising edge.
func (t *SchmittTrigger) IsRising() bool { return t.rising }

// IsFalling reports whether the last Process call saw a falling edge.
func (t *SchmittTrigger) IsFalling() bool { return t.falling }

// Reset returns the trigger to the low state and forgets pending edges, so the
// next input at or above the high threshold fires again.
func (t *SchmittTrigger) Reset() {
	t.state = false
	t.rising = false
	t.falling = false
}
