// Package composer implements the acid pattern engine: a 16-step sequencer
// whose pattern is projected from five fixed-width text tracks (header,
// notes, octave, slide/accent and time).
//
// The text tracks are the only editable source of truth. Any edit marks the
// score dirty and the next Process call re-derives the Pattern from scratch.
// Per sample, the engine follows a clock input, latches pitch, accent and
// slide on gated steps, resolves legato gates across ties and slides, and
// routes slid pitch through a wave-digital RC glide.
//
// Process is meant to be called from a single audio goroutine. SetScore,
// LoadState and MarshalState may be called from any goroutine; score edits
// are published with a single pointer swap and picked up by the next
// Process call.
package composer
