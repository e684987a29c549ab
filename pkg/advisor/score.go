// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package advisor

const (
	MinScore = 0
	MaxScore = 100
)

type weight struct {
	rule   Rule
	want   bool
	points int
}

// Character class and pattern weights. Length is tiered and handled apart.
var weights = []weight{
	{HasLower, true, 10},
	{HasUpper, true, 10},
	{HasDigit, true, 10},
	{HasSpecial, true, 10},
	{NoRepeatedChars, true, 5},
	{NoSequentialRun, true, 5},
	{ContainsCommon, false, 5},
}

// Score computes a strength score in [MinScore, MaxScore] from the checks alone.
func Score(checks CheckResult) int {
	score := 0
	if checks.Value(Length12) {
		score += 35
	} else if checks.Value(Length8) {
		score += 15
	}

	for _, w := range weights {
		if checks.Value(w.rule) == w.want {
			score += w.points
		}
	}

	return clamp(score)
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}

	return score
}
