// Package station implements the acid voice: a polyphonic four-pole ladder
// lowpass shaped by two envelopes, an accent latch and a rational-tanh
// saturator.
//
// Envelope 1 drives the VCA through its squared value. Envelope 2 moves the
// cutoff, mixed with a slow "memory" tap while accent is latched. Accent only
// registers when the accent input rises on the same sample as the gate, and
// it shortens envelope 2's decay until a later gate edge arrives without it.
//
// Knob values and input voltages are passed to Process on every sample; the
// envelope and resonance settings are polled on a control-rate divider, while
// the cutoff follows every sample as long as envelope 2 is moving.
package station
