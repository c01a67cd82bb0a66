// Package cvmidi turns the composer's CV, gate and accent voltages into MIDI
// note messages.
//
// A Converter watches the gate for edges and quantizes the 1V/oct pitch to
// the nearest key, with 0 V on the configured root note. Accented notes use a
// separate velocity. When a pitch-bend range is configured, glides under a
// held gate are sent as pitch bend instead of new notes.
//
// A Recorder collects the converter's output with sample timestamps and writes
// it as a Standard MIDI File.
package cvmidi
