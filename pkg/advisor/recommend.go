// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package advisor

const (
	AdviceLength     = "Use at least 12 characters (longer is better)."
	AdviceUpper      = "Include uppercase letters (A-Z)."
	AdviceLower      = "Include lowercase letters (a-z)."
	AdviceDigit      = "Include digits (0-9)."
	AdviceSpecial    = "Include special characters (e.g., !@#$%)."
	AdviceCommon     = "Avoid common words or sequences (e.g., '123456', 'password')."
	AdviceRepeated   = "Avoid long repeated characters (e.g., 'aaaa')."
	AdviceSequential = "Avoid simple sequences (e.g., 'abcd', '1234')."
	AdviceNone       = "Great job, your password meets basic security requirements."
)

// advice is applied in order; an entry is emitted when the rule outcome
// differs from ok.
var advice = []struct {
	rule Rule
	ok   bool
	text string
}{
	{Length12, true, AdviceLength},
	{HasUpper, true, AdviceUpper},
	{HasLower, true, AdviceLower},
	{HasDigit, true, AdviceDigit},
	{HasSpecial, true, AdviceSpecial},
	{ContainsCommon, false, AdviceCommon},
	{NoRepeatedChars, true, AdviceRepeated},
	{NoSequentialRun, true, AdviceSequential},
}

// Recommendations returns the improvement tips for every failed check, in
// priority order. It never returns an empty slice.
func Recommendations(checks CheckResult) []string {
	recs := make([]string, 0, len(advice))
	for _, a := range advice {
		if checks.Value(a.rule) != a.ok {
			recs = append(recs, a.text)
		}
	}

	if len(recs) == 0 {
		recs = append(recs, AdviceNone)
	}

	return recs
}
