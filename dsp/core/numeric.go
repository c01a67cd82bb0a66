package core

import "math"

const defaultEpsilon = 1e-12

// Voltage conventions shared with the modular host ecosystem.
const (
	// LogicHigh is the voltage of an active gate, trigger or accent output.
	LogicHigh = 10.0
	// Semitone is one equal-tempered semitone in 1V/octave units.
	Semitone = 1.0 / 12.0
	// FreqC4 is the frequency in Hz of 0 V on a 1V/octave pitch input.
	FreqC4 = 261.6256
)

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// FlushDenormals converts tiny denormal-like values to exact zero.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// IsFinite reports whether x is neither NaN nor Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Sanitize maps non-finite values to zero. Per-sample paths use it instead of
// returning errors.
func Sanitize(x float64) float64 {
	if !IsFinite(x) {
		return 0
	}

	return x
}

// Gate converts a boolean to a logic voltage.
func Gate(on bool) float64 {
	if on {
		return LogicHigh
	}

	return 0
}

// VoltsToHz converts a 1V/octave pitch voltage to Hz (0 V = C4).
func VoltsToHz(volts float64) float64 {
	return FreqC4 * math.Exp2(volts)
}

// HzToVolts converts a frequency to a 1V/octave pitch voltage (C4 = 0 V).
// Returns NaN for non-positive frequencies.
func HzToVolts(hz float64) float64 {
	if hz <= 0 {
		return math.NaN()
	}

	return math.Log2(hz / FreqC4)
}
