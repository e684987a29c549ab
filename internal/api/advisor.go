// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"errors"
	"github.com/alvinbaena/pwd-advisor/pkg/advisor"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"net/http"
)

// Evaluator produces the evaluation report of a password.
type Evaluator interface {
	Evaluate(ctx context.Context, password advisor.Password) (*advisor.Report, error)
}

type advisorApi struct {
	evaluator Evaluator
}

func (a *advisorApi) evaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object with a password field"})
		return
	}

	report, err := a.evaluator.Evaluate(c.Request.Context(), req.Password)
	if err != nil {
		if errors.Is(err, advisor.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		log.Error().Err(err).Msg("error evaluating password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not evaluate the password"})
		return
	}

	c.JSON(http.StatusOK, newEvaluateResponse(report))
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

// RegisterAdvisorApi adds the evaluate and health endpoints to the group.
func RegisterAdvisorApi(group gin.IRoutes, evaluator Evaluator) {
	a := &advisorApi{evaluator: evaluator}

	group.POST("/evaluate", a.evaluate)
	group.GET("/health", health)
}
