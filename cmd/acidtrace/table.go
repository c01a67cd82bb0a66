package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-acid/dsp/core"
	"github.com/cwbudde/algo-acid/internal/rig"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// noteLabel spells a 1V/oct voltage (0 V = C4) with its octave.
func noteLabel(v float64) string {
	semi := int(math.Round(v * 12))
	octave := 4 + int(math.Floor(float64(semi)/12))
	idx := ((semi % 12) + 12) % 12

	return fmt.Sprintf("%s%d", noteNames[idx], octave)
}

// gateMark is the time-track character matching what the gate did.
func gateMark(s rig.StepSummary) string {
	switch {
	case s.Tied:
		return "_"
	case s.Gate:
		return "o"
	default:
		return "-"
	}
}

// printTable writes one row per clock period. Colours are used only when w is
// a terminal that supports them.
func printTable(w io.Writer, sums []rig.StepSummary) error {
	re := lipgloss.NewRenderer(w)
	header := re.NewStyle().Bold(true).Underline(true)
	rest := re.NewStyle().Faint(true)
	gated := re.NewStyle().Foreground(lipgloss.Color("#5fd75f"))
	tied := re.NewStyle().Foreground(lipgloss.Color("#d7d75f"))
	accent := re.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Bold(true)

	var b strings.Builder

	b.WriteString(header.Render(fmt.Sprintf("%-5s %-5s %-5s %9s %-4s %-3s %7s", "#", "step", "note", "Hz", "gate", "acc", "peak V")))
	b.WriteByte('\n')

	for _, s := range sums {
		row := fmt.Sprintf("%-5d %-5d %-5s %9.2f %-4s %-3s %7.3f",
			s.Index+1, s.Step+1, noteLabel(s.CV), core.VoltsToHz(s.CV), gateMark(s), accentMark(s), s.Peak)

		style := rest
		switch {
		case s.Accent && s.Gate:
			style = accent
		case s.Tied:
			style = tied
		case s.Gate:
			style = gated
		}

		b.WriteString(style.Render(row))
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())

	return err
}

func accentMark(s rig.StepSummary) string {
	if s.Accent {
		return "A"
	}

	return ""
}
