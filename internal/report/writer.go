// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package report

import (
	"fmt"
	"github.com/alvinbaena/pwd-advisor/pkg/advisor"
	"io"
	"strings"
)

// Formats lists the accepted values of New.
var Formats = []string{"text", "json", "markdown"}

// Writer renders an evaluation report.
type Writer interface {
	Write(report *advisor.Report) error
}

// New returns the writer for format: text, json or markdown.
func New(format string, out io.Writer) (Writer, error) {
	switch strings.ToLower(format) {
	case "text", "":
		return &TextWriter{out: out}, nil
	case "json":
		return &JSONWriter{out: out}, nil
	case "markdown", "md":
		return &MarkdownWriter{out: out}, nil
	}

	return nil, fmt.Errorf("unknown format %q, use one of [%s]", format, strings.Join(Formats, ", "))
}

func breachText(r *advisor.Report) string {
	switch {
	case r.Breach.Unknown:
		return "unknown (breach service unavailable)"
	case r.Breach.Leaked && r.Breach.Count != nil:
		return fmt.Sprintf("found in breach data %d times", *r.Breach.Count)
	case r.Breach.Leaked:
		return "found in breach data"
	default:
		return "not found in breach data"
	}
}
