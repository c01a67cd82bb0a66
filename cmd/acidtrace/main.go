// Command acidtrace renders an acid pattern through the composer and the
// station and prints what every step did.
//
// Usage:
//
//	acidtrace [flags]
//
// The score comes from -pattern (a composer state document) with the
// per-track flags applied on top. Knobs come from -knobs (a station state
// document) with the per-knob flags applied on top.
//
// Examples:
//
//	acidtrace -header "A 4 +0" -notes "C   " -time "o-o-"
//	acidtrace -pattern line.json -steps 32 -analyze -window blackman
//	acidtrace -pattern line.json -midi line.mid
//	acidtrace -i
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/cwbudde/algo-acid/dsp/window"
	"github.com/cwbudde/algo-acid/modules/composer"
	"github.com/cwbudde/algo-acid/modules/cvmidi"
)

func main() {
	os.Exit(run())
}

func run() int {
	pattern := flag.String("pattern", "", "composer state JSON to load the score from")
	knobsFile := flag.String("knobs", "", "station state JSON to load the knobs from")
	header := flag.String("header", "", "score header, e.g. \"A 16 +0\"")
	notes := flag.String("notes", "", "notes track, 2 characters per step")
	octave := flag.String("octave", "", "octave track, 1 character per step")
	slide := flag.String("slide-accent", "", "slide/accent track, 2 characters per step")
	timeTrack := flag.String("time", "", "time track, 1 character per step")
	steps := flag.Int("steps", 16, "clock steps to render")
	bpm := flag.Float64("bpm", 120, "tempo in beats per minute (4 steps per beat)")
	rate := flag.Float64("rate", 48000, "sample rate in Hz")
	seed := flag.Int64("seed", 1, "dither seed")
	analyze := flag.Bool("analyze", false, "print a spectrum summary of the render")
	windowName := flag.String("window", "hann", "analysis window: hann, blackman or blackman-harris")
	midiOut := flag.String("midi", "", "write the note stream as a Standard MIDI File")
	savePattern := flag.String("save-pattern", "", "write the final score as composer state JSON")
	saveKnobs := flag.String("save-knobs", "", "write the final knobs as station state JSON")
	interactive := flag.Bool("i", false, "edit and trace interactively")
	verbose := flag.Bool("v", false, "log parse details")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: acidtrace [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Renders an acid pattern and prints one row per step.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKnob flags: -knob name=value, repeatable (cutoff, res, fm, vca-decay,\n")
		fmt.Fprintf(os.Stderr, "vcf-decay, envmod, accent, drive, hold).\n")
	}

	var knobArgs knobList
	flag.Var(&knobArgs, "knob", "set a knob, name=value (repeatable)")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	s := newSession(logger)
	s.rate, s.bpm, s.steps, s.seed, s.analyze = *rate, *bpm, *steps, *seed, *analyze

	w, err := window.ParseType(*windowName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	s.window = w

	if err := configure(s, *pattern, *knobsFile, knobArgs, map[string]string{
		"header":      *header,
		"notes":       *notes,
		"octave":      *octave,
		"slideAccent": *slide,
		"time":        *timeTrack,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *interactive {
		if err := repl(ctx, s, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	} else {
		var rec *cvmidi.Recorder
		if *midiOut != "" {
			rec = &cvmidi.Recorder{}
		}

		if err := s.trace(ctx, os.Stdout, rec); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}

		if rec != nil {
			if err := s.writeMIDI(*midiOut, rec); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				return 1
			}
		}
	}

	if *savePattern != "" {
		if err := s.savePattern(*savePattern); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	}

	if *saveKnobs != "" {
		if err := s.saveKnobs(*saveKnobs); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	}

	return 0
}

// configure loads the state files and applies the flag overrides. Empty
// track values are left alone.
func configure(s *session, patternFile, knobsFile string, knobs knobList, tracks map[string]string) error {
	if patternFile != "" {
		if err := s.loadPattern(patternFile); err != nil {
			return err
		}
	}

	if knobsFile != "" {
		if err := s.loadKnobs(knobsFile); err != nil {
			return err
		}
	}

	for _, name := range composer.FieldNames() {
		if v := tracks[name]; v != "" {
			score, err := s.score.WithField(name, v)
			if err != nil {
				return err
			}

			s.score = score
		}
	}

	for _, kv := range knobs {
		if err := s.setKnob(kv[0], kv[1]); err != nil {
			return err
		}
	}

	return nil
}
