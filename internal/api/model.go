// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

import (
	"github.com/alvinbaena/pwd-advisor/pkg/advisor"
)

type evaluateRequest struct {
	Password advisor.Password `json:"password"`
}

type entropyResponse struct {
	Score            int    `json:"score"`
	CrackTimeDisplay string `json:"crack_time_display"`
}

type evaluateResponse struct {
	Leaked          bool                `json:"leaked"`
	LeakedCount     *int                `json:"leaked_count"`
	Unknown         bool                `json:"unknown"`
	Score           int                 `json:"score"`
	Checks          advisor.CheckResult `json:"checks"`
	Recommendations []string            `json:"recommendations"`
	Message         string              `json:"message"`
	Entropy         entropyResponse     `json:"entropy"`
}

func newEvaluateResponse(r *advisor.Report) evaluateResponse {
	resp := evaluateResponse{
		Leaked:          r.Breach.Leaked,
		Unknown:         r.Breach.Unknown,
		Score:           r.Score,
		Checks:          r.Checks,
		Recommendations: r.Recommendations,
		Message:         r.Message,
		Entropy: entropyResponse{
			Score:            r.Entropy.Score,
			CrackTimeDisplay: r.Entropy.CrackTimeDisplay,
		},
	}
	if !r.Breach.Unknown {
		resp.LeakedCount = r.Breach.Count
	}

	return resp
}

type checkRequest struct {
	Password string `json:"password"`
}

type hashRequest struct {
	Hash string `json:"hash" binding:"required"`
}

type checkResponse struct {
	Leaked bool `json:"leaked"`
	Count  *int `json:"count,omitempty"`
}

type healthResponse struct {
	Status      string `json:"status"`
	LeakedCount *int64 `json:"leaked_count,omitempty"`
}
