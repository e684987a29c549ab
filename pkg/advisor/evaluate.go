// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package advisor

import (
	"context"
	"errors"
	"fmt"
	"github.com/alvinbaena/pwd-advisor/pkg/breach"
	"github.com/nbutton23/zxcvbn-go"
	"github.com/rs/zerolog/log"
)

// ErrInvalidInput is returned when the password is missing.
var ErrInvalidInput = errors.New("invalid input")

const (
	MessageLeaked   = "This password has been breached. Change it immediately and use a unique, long passphrase."
	MessageStrong   = "Strong password, well done!"
	MessageModerate = "Moderately strong. Follow recommendations to improve security."
	MessageWeak     = "Weak password. Switch to a longer, more complex passphrase."

	StrongScore   = 80
	ModerateScore = 50
)

// BreachChecker looks a password up in a breach corpus. Implementations
// must not fail, lookup errors are returned as a degraded breach.Result.
type BreachChecker interface {
	Lookup(ctx context.Context, password string) breach.Result
}

// Entropy is the zxcvbn estimate, reported next to the rule based score.
type Entropy struct {
	Score            int
	CrackTimeDisplay string
}

// Report is the outcome of one evaluation. It is not modified once returned.
type Report struct {
	Breach          breach.Verdict
	Score           int
	Checks          CheckResult
	Recommendations []string
	Message         string
	Entropy         Entropy
}

// Evaluator scores passwords and merges the breach status in. It holds no
// per-request state and can be shared between goroutines.
type Evaluator struct {
	breach BreachChecker
}

func NewEvaluator(checker BreachChecker) *Evaluator {
	if checker == nil {
		checker = breach.Offline{}
	}

	return &Evaluator{breach: checker}
}

// Evaluate runs the whole pipeline for one password. The only error it
// returns is ErrInvalidInput.
func (e *Evaluator) Evaluate(ctx context.Context, password Password) (*Report, error) {
	if password.Empty() {
		return nil, fmt.Errorf("%w: password required", ErrInvalidInput)
	}

	result := e.breach.Lookup(ctx, string(password))
	if result.Degraded() && result.Reason() != breach.ReasonDisabled {
		log.Warn().Err(result.Err()).Stringer("reason", result.Reason()).Msg("breach lookup degraded, continuing with local checks")
	}

	checks := Check(string(password))
	score := Score(checks)
	verdict := result.Verdict()

	entropy := zxcvbn.PasswordStrength(string(password), nil)

	return &Report{
		Breach:          verdict,
		Score:           score,
		Checks:          checks,
		Recommendations: Recommendations(checks),
		Message:         Summary(verdict, score),
		Entropy: Entropy{
			Score:            entropy.Score,
			CrackTimeDisplay: entropy.CrackTimeDisplay,
		},
	}, nil
}

// Summary picks the user facing message. A confirmed leak always wins over
// the score; an unknown breach status does not change the tier.
func Summary(verdict breach.Verdict, score int) string {
	switch {
	case verdict.Leaked && !verdict.Unknown:
		return MessageLeaked
	case score >= StrongScore:
		return MessageStrong
	case score >= ModerateScore:
		return MessageModerate
	default:
		return MessageWeak
	}
}
