// Package moog provides a nonlinear four-pole Moog ladder lowpass and a
// per-channel Bank of independent ladders for polyphonic voices.
//
// Supported variants:
//   - VariantClassic: four cascaded one-pole stages with exact tanh
//     saturation and unit-delay feedback.
//   - VariantLightweight: the same topology using the rational tanh from
//     package fastmath.
//   - VariantHuovilainen: Huovilainen tuning and resonance compensation with
//     a half-sample feedback estimate; stays stable near self-oscillation.
//
// Cutoff changes are cheap (coefficients only) so callers may modulate
// them every sample. Sample-rate and oversampling changes additionally
// rebuild the biquad anti-alias stage.
package moog
