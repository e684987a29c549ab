// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package report

import (
	"encoding/json"
	"github.com/alvinbaena/pwd-advisor/pkg/advisor"
	"io"
)

type jsonEntropy struct {
	Score            int    `json:"score"`
	CrackTimeDisplay string `json:"crack_time_display"`
}

// jsonReport has the same shape as the evaluate endpoint response.
type jsonReport struct {
	Leaked          bool                `json:"leaked"`
	LeakedCount     *int                `json:"leaked_count"`
	Unknown         bool                `json:"unknown"`
	Score           int                 `json:"score"`
	Checks          advisor.CheckResult `json:"checks"`
	Recommendations []string            `json:"recommendations"`
	Message         string              `json:"message"`
	Entropy         jsonEntropy         `json:"entropy"`
}

// JSONWriter writes the report as indented JSON.
type JSONWriter struct {
	out io.Writer
}

func (w *JSONWriter) Write(r *advisor.Report) error {
	view := jsonReport{
		Leaked:          r.Breach.Leaked,
		Unknown:         r.Breach.Unknown,
		Score:           r.Score,
		Checks:          r.Checks,
		Recommendations: r.Recommendations,
		Message:         r.Message,
		Entropy:         jsonEntropy{Score: r.Entropy.Score, CrackTimeDisplay: r.Entropy.CrackTimeDisplay},
	}
	if !r.Breach.Unknown {
		view.LeakedCount = r.Breach.Count
	}

	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}
