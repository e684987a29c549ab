// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package report

import (
	"fmt"
	"github.com/alvinbaena/pwd-advisor/pkg/advisor"
	"github.com/nao1215/markdown"
	"io"
	"strconv"
)

// MarkdownWriter writes the report as GitHub flavored markdown.
type MarkdownWriter struct {
	out io.Writer
}

func (w *MarkdownWriter) Write(r *advisor.Report) error {
	md := markdown.NewMarkdown(w.out)

	md.H1("Password Evaluation")
	md.PlainText("")

	switch {
	case r.Breach.Leaked && !r.Breach.Unknown:
		md.Caution(r.Message)
	case r.Score >= advisor.StrongScore:
		md.Tip(r.Message)
	case r.Score >= advisor.ModerateScore:
		md.Note(r.Message)
	default:
		md.Warning(r.Message)
	}
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Score", fmt.Sprintf("%d/%d", r.Score, advisor.MaxScore)},
			{"Breach", breachText(r)},
			{"Entropy", fmt.Sprintf("%d/4", r.Entropy.Score)},
			{"Crack Time", r.Entropy.CrackTimeDisplay},
		},
	})
	md.PlainText("")

	md.H2("Checks")
	md.PlainText("")
	rows := make([][]string, 0, len(advisor.Rules))
	for _, rule := range advisor.Rules {
		status := "✅"
		if !r.Checks.Satisfied(rule) {
			status = "❌"
		}
		rows = append(rows, []string{"`" + string(rule) + "`", strconv.FormatBool(r.Checks.Value(rule)), status})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rule", "Value", "Status"},
		Rows:   rows,
	})
	md.PlainText("")

	md.H2("Recommendations")
	md.PlainText("")
	md.BulletList(r.Recommendations...)

	return md.Build()
}
