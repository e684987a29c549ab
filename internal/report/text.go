// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package report

import (
	"bytes"
	"fmt"
	"github.com/alvinbaena/pwd-advisor/pkg/advisor"
	"github.com/fatih/color"
	"io"
)

var (
	colorRed    = color.New(color.FgRed, color.Bold)
	colorGreen  = color.New(color.FgGreen, color.Bold)
	colorYellow = color.New(color.FgYellow)
	colorCyan   = color.New(color.FgCyan)
)

// TextWriter prints a colored report for terminals. Colors are disabled
// when stdout is not a terminal.
type TextWriter struct {
	out io.Writer
}

func (w *TextWriter) Write(r *advisor.Report) error {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, r.Message)
	colorForScore(r.Score).Fprintf(&buf, "  Score:   %d/%d\n", r.Score, advisor.MaxScore)
	breachColor(r).Fprintf(&buf, "  Breach:  %s\n", breachText(r))
	fmt.Fprintf(&buf, "  Entropy: %d/4, crack time %s\n", r.Entropy.Score, r.Entropy.CrackTimeDisplay)

	colorCyan.Fprintln(&buf, "Checks")
	for _, rule := range advisor.Rules {
		if r.Checks.Satisfied(rule) {
			colorGreen.Fprintf(&buf, "  [x] %s\n", rule)
		} else {
			colorRed.Fprintf(&buf, "  [ ] %s\n", rule)
		}
	}

	colorCyan.Fprintln(&buf, "Recommendations")
	for _, rec := range r.Recommendations {
		fmt.Fprintf(&buf, "  - %s\n", rec)
	}

	_, err := w.out.Write(buf.Bytes())
	return err
}

func colorForScore(score int) *color.Color {
	switch {
	case score >= advisor.StrongScore:
		return colorGreen
	case score >= advisor.ModerateScore:
		return colorYellow
	default:
		return colorRed
	}
}

func breachColor(r *advisor.Report) *color.Color {
	switch {
	case r.Breach.Unknown:
		return colorYellow
	case r.Breach.Leaked:
		return colorRed
	default:
		return colorGreen
	}
}
