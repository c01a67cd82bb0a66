package biquad

import "math"

// ButterworthQ is the quality factor of a maximally flat second-order section.
const ButterworthQ = 0.7071067811865476

// Lowpass designs an RBJ cookbook lowpass at freq (Hz) with quality factor q.
// Invalid frequencies (<= 0 or >= Nyquist) yield a passthrough section and
// q <= 0 falls back to ButterworthQ.
func Lowpass(freq, q, sampleRate float64) Coefficients {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) ||
		freq <= 0 || freq >= sampleRate/2 || math.IsNaN(freq) {
		return Coefficients{B0: 1}
	}

	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		q = ButterworthQ
	}

	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	a0 := 1 + alpha

	return Coefficients{
		B0: (1 - cw) / 2 / a0,
		B1: (1 - cw) / a0,
		B2: (1 - cw) / 2 / a0,
		A1: -2 * cw / a0,
		A2: (1 - alpha) / a0,
	}
}
