// Package signal provides the sources that feed the voice: a band-limited
// 1V/octave oscillator and a seeded noise source.
package signal
