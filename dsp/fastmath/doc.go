// Package fastmath provides the transcendental functions used on per-sample
// control paths: Exp2 for pitch-to-frequency conversion and TanhRational5 for
// soft clipping.
//
// # Build tags
//
// By default Exp2 uses the standard library. Building with -tags fastmath
// switches it to the algo-approx polynomial, trading <0.1% relative error for
// speed in cutoff modulation loops.
//
// TanhRational5 is a rational approximation in every build; it is the
// transfer curve of the voice saturator, not a stand-in for math.Tanh.
package fastmath
