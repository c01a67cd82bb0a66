// Command acidplay plays an acid pattern through the station on the default
// audio device.
//
// Usage:
//
//	acidplay [flags]
//
// Examples:
//
//	acidplay -pattern line.json
//	acidplay -pattern line.json -knobs squelch.json -bpm 132 -bars 8
//	acidplay -wave square -slide-r 0.5 -echo 3
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/cwbudde/algo-acid/dsp/core"
	dspsignal "github.com/cwbudde/algo-acid/dsp/signal"
	"github.com/cwbudde/algo-acid/internal/playback"
	"github.com/cwbudde/algo-acid/internal/rig"
	"github.com/cwbudde/algo-acid/modules/composer"
	"github.com/cwbudde/algo-acid/modules/station"
)

const pollInterval = 50 * time.Millisecond

func main() {
	os.Exit(run())
}

func run() int {
	pattern := flag.String("pattern", "", "composer state JSON with the score")
	knobsFile := flag.String("knobs", "", "station state JSON with the knobs")
	bpm := flag.Float64("bpm", rig.DefaultBPM, "tempo in beats per minute")
	bars := flag.Int("bars", 0, "bars to play (16 steps each); 0 plays until interrupted")
	rate := flag.Int("rate", 48000, "sample rate in Hz")
	wave := flag.String("wave", "saw", "oscillator waveform: saw or square")
	slideR := flag.Float64("slide-r", 0, "glide resistor knob in [-1, 1]")
	slideC := flag.Float64("slide-c", 0, "glide capacitor knob in [-1, 1]")
	division := flag.Int("control-division", 8, "samples between knob polls")
	echo := flag.Float64("echo", 0, "echo repeat time in steps; 0 disables")
	echoFB := flag.Float64("echo-feedback", 0.4, "echo feedback in [0, 0.95]")
	echoMix := flag.Float64("echo-mix", 0.3, "echo wet share in [0, 1]")
	verbose := flag.Bool("v", false, "log state transitions")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: acidplay [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Plays an acid pattern in real time. Ctrl-C stops.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := play(logger, options{
		pattern:  *pattern,
		knobs:    *knobsFile,
		bpm:      *bpm,
		bars:     *bars,
		rate:     *rate,
		wave:     *wave,
		slideR:   *slideR,
		slideC:   *slideC,
		division: *division,
		echo:     *echo,
		echoFB:   *echoFB,
		echoMix:  *echoMix,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	return 0
}

type options struct {
	pattern, knobs string
	bpm            float64
	bars           int
	rate           int
	wave           string
	slideR, slideC float64
	division       int
	echo           float64
	echoFB         float64
	echoMix        float64
}

// rigOptions translates the command line into rig options.
func rigOptions(logger *slog.Logger, o options) ([]rig.Option, error) {
	w, err := dspsignal.ParseWaveform(o.wave)
	if err != nil {
		return nil, err
	}

	score := composer.DefaultScore()

	if o.pattern != "" {
		data, err := os.ReadFile(o.pattern)
		if err != nil {
			return nil, err
		}

		var st composer.State
		if err := json.Unmarshal(data, &st); err != nil {
			return nil, fmt.Errorf("%s: %w", o.pattern, err)
		}

		score, _ = st.ApplyScore(score)
	}

	params := station.DefaultParams()

	if o.knobs != "" {
		data, err := os.ReadFile(o.knobs)
		if err != nil {
			return nil, err
		}

		if params, err = station.LoadState(data); err != nil {
			return nil, fmt.Errorf("%s: %w", o.knobs, err)
		}
	}

	if o.bars < 0 {
		return nil, errors.New("bars must be >= 0")
	}

	opts := []rig.Option{
		rig.WithProcessor(core.WithSampleRate(float64(o.rate)), core.WithControlDivision(o.division)),
		rig.WithTempo(o.bpm),
		rig.WithScore(score),
		rig.WithParams(params),
		rig.WithWaveform(w),
		rig.WithSlide(o.slideR, o.slideC),
		rig.WithLength(o.bars * composer.Steps),
		rig.WithLogger(logger),
	}

	if o.echo > 0 {
		opts = append(opts, rig.WithEcho(o.echo, o.echoFB, o.echoMix))
	}

	return opts, nil
}

func play(logger *slog.Logger, o options) error {
	opts, err := rigOptions(logger, o)
	if err != nil {
		return err
	}

	r, err := rig.New(opts...)
	if err != nil {
		return err
	}

	if _, err := composer.Parse(r.Composer().Score()); err != nil {
		logger.Warn("acidplay: score does not parse; playing what was read", slog.Any("err", err))
	}

	player, err := playback.NewPlayer(o.rate, r)
	if err != nil {
		return err
	}
	defer func() { _ = player.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	player.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !player.IsPlaying() {
				return nil
			}
		}
	}
}
