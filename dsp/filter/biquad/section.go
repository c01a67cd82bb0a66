package biquad

import "math"

// Coefficients of a second-order section with a0 normalized to 1.
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Section runs one set of Coefficients in Direct Form II Transposed.
type Section struct {
	c      Coefficients
	z1, z2 float64
}

// NewSection returns a Section with cleared state.
func NewSection(c Coefficients) *Section {
	return &Section{c: c}
}

// Coefficients returns the active coefficients.
func (s *Section) Coefficients() Coefficients { return s.c }

// SetCoefficients swaps the transfer function without clearing the state, so
// a retuned section continues from where it was.
func (s *Section) SetCoefficients(c Coefficients) { s.c = c }

// ProcessSample filters one sample. A non-finite result clears the state and
// yields 0 so a single bad input cannot latch the section.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.c.B0*x + s.z1
	s.z1 = s.c.B1*x - s.c.A1*y + s.z2
	s.z2 = s.c.B2*x - s.c.A2*y

	if math.IsNaN(y) || math.IsInf(y, 0) {
		s.Reset()
		return 0
	}

	return y
}

// Reset clears the delay line.
func (s *Section) Reset() {
	s.z1, s.z2 = 0, 0
}

// Idle reports whether the delay line is empty.
func (s *Section) Idle() bool {
	return s.z1 == 0 && s.z2 == 0
}
