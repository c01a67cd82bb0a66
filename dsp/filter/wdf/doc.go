// Package wdf provides wave digital filter elements and the RC lowpass built
// from them.
//
// Wave digital filters model an analog circuit by exchanging incident (a) and
// reflected (b) waves between one-port elements through adaptors. Each port
// carries a port resistance R; the Kirchhoff quantities follow from
//
//	v = (a + b) / 2
//	i = (a - b) / (2R)
//
// The elements here cover what a first-order RC network needs: Resistor,
// Capacitor (bilinear discretization), Series adaptor and the unadapted
// IdealVoltageSource used as the tree root.
//
// RCLowpass is the portamento ("slide") filter of the composer: a series
// resistor/capacitor driven by an ideal voltage source, read out across the
// capacitor.
package wdf
