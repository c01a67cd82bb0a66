package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/cwbudde/algo-acid/modules/composer"
)

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, s *session, w io.Writer, args []string) error

	minArgs, maxArgs int
}

var errQuit = errors.New("quit")

var commands []command

func init() {
	commands = []command{
		{"show", "show", showCommand, 0, 0},
		{"set", "set <field> <text>", setCommand, 2, 2},
		{"knob", "knob <name> <value>", knobCommand, 2, 2},
		{"knobs", "knobs", knobsCommand, 0, 0},
		{"tempo", "tempo <bpm>", tempoCommand, 1, 1},
		{"trace", "trace [steps]", traceCommand, 0, 1},
		{"save", "save <pattern.json>", saveCommand, 1, 1},
		{"load", "load <pattern.json>", loadCommand, 1, 1},
		{"help", "help", helpCommand, 0, 0},
		{"quit", "quit", quitCommand, 0, 0},
	}
}

// eval runs one REPL line. Score text keeps its spacing: everything after
// "set <field> " is the value, and may be double-quoted.
func eval(ctx context.Context, s *session, w io.Writer, line string) error {
	line = strings.TrimLeft(line, " \t")

	name, rest, _ := strings.Cut(line, " ")
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}

		args := strings.Fields(rest)
		if cmd.name == "set" {
			args = splitSet(rest)
		}

		if len(args) < cmd.minArgs || len(args) > cmd.maxArgs {
			return fmt.Errorf("usage: %s", cmd.usage)
		}

		return cmd.run(ctx, s, w, args)
	}

	return fmt.Errorf("unknown command: %s (try help)", name)
}

func splitSet(rest string) []string {
	field, value, ok := strings.Cut(strings.TrimLeft(rest, " "), " ")
	if field == "" {
		return nil
	}

	if !ok {
		return []string{field, ""}
	}

	if unq, err := strconv.Unquote(value); err == nil {
		value = unq
	}

	return []string{field, value}
}

func repl(ctx context.Context, s *session, w io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "acid> ",
		InterruptPrompt: "^C",
		Stdout:          w,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}

		if err != nil {
			return err
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		err = eval(ctx, s, w, line)
		if errors.Is(err, errQuit) {
			return nil
		}

		if err != nil {
			fmt.Fprintln(w, err)
		}
	}
}

func showCommand(_ context.Context, s *session, w io.Writer, _ []string) error {
	for _, name := range composer.FieldNames() {
		v, err := s.score.Field(name)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%-12s %q\n", name, v)
	}

	return nil
}

func setCommand(_ context.Context, s *session, _ io.Writer, args []string) error {
	return s.setField(args[0], args[1])
}

func knobCommand(_ context.Context, s *session, _ io.Writer, args []string) error {
	return s.setKnob(args[0], args[1])
}

func knobsCommand(_ context.Context, s *session, w io.Writer, _ []string) error {
	knobs := s.knobs()
	for _, name := range s.knobNames() {
		fmt.Fprintf(w, "%-10s %8.4f\n", name, *knobs[name])
	}

	fmt.Fprintf(w, "%-10s %8v\n", "hold", s.params.Hold)

	return nil
}

func tempoCommand(_ context.Context, s *session, _ io.Writer, args []string) error {
	bpm, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("tempo: %w", err)
	}

	if bpm < 20 || bpm > 400 {
		return fmt.Errorf("tempo must be in [20, 400] BPM: %g", bpm)
	}

	s.bpm = bpm

	return nil
}

func traceCommand(ctx context.Context, s *session, w io.Writer, args []string) error {
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("trace: steps must be a positive integer: %q", args[0])
		}

		s.steps = n
	}

	return s.trace(ctx, w, nil)
}

func saveCommand(_ context.Context, s *session, _ io.Writer, args []string) error {
	return s.savePattern(args[0])
}

func loadCommand(_ context.Context, s *session, _ io.Writer, args []string) error {
	return s.loadPattern(args[0])
}

func helpCommand(_ context.Context, _ *session, w io.Writer, _ []string) error {
	for _, cmd := range commands {
		fmt.Fprintln(w, " ", cmd.usage)
	}

	return nil
}

func quitCommand(context.Context, *session, io.Writer, []string) error { return errQuit }
