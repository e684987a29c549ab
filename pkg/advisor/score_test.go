package advisor

import (
	"testing"
)

func allPassing() CheckResult {
	return CheckResult{
		Length8: true, Length12: true, HasLower: true, HasUpper: true, HasDigit: true,
		HasSpecial: true, ContainsCommon: false, NoRepeatedChars: true, NoSequentialRun: true,
	}
}

func TestScore(t *testing.T) {
	cases := []struct {
		password string
		want     int
	}{
		{"", 15},
		{"Xk9#mP2$vL7!", 90},
		{"P@ssw0rd123!", 90},
		{"aaaaaaaaaaaa", 55},
		{"password", 35},
		{"abc", 25},
		{"Tr0ub4dor&3", 70},
	}

	for _, tc := range cases {
		if got := Score(Check(tc.password)); got != tc.want {
			t.Errorf("Score(%q): %d, want: %d", tc.password, got, tc.want)
		}
	}
}

func TestScore_LengthTiers(t *testing.T) {
	checks := allPassing()
	if got := Score(checks); got != 90 {
		t.Errorf("Score should be 90, have %d", got)
	}

	checks[Length12] = false
	if got := Score(checks); got != 70 {
		t.Errorf("Score without the 12 character tier should be 70, have %d", got)
	}

	checks[Length8] = false
	if got := Score(checks); got != 55 {
		t.Errorf("Score without any length tier should be 55, have %d", got)
	}
}

func TestScore_Bounds(t *testing.T) {
	highest := MinScore
	// Every combination of rule outcomes.
	for mask := 0; mask < 1<<len(Rules); mask++ {
		checks := CheckResult{}
		for i, rule := range Rules {
			checks[rule] = mask&(1<<i) != 0
		}

		got := Score(checks)
		if got < MinScore || got > MaxScore {
			t.Fatalf("Score(%v): %d is out of bounds", checks, got)
		}
		if got > highest {
			highest = got
		}
	}

	// The weights top out below MaxScore.
	if highest != 90 {
		t.Errorf("Highest attainable score should be 90, have %d", highest)
	}

	if got := Score(CheckResult{}); got != 5 {
		t.Errorf("Score of an empty result should be 5, have %d", got)
	}
}

func TestClamp(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{-20, 0},
		{0, 0},
		{55, 55},
		{100, 100},
		{135, 100},
	}

	for _, tc := range cases {
		if got := clamp(tc.in); got != tc.want {
			t.Errorf("clamp(%d): %d, want: %d", tc.in, got, tc.want)
		}
	}
}

func TestScore_PureFunctionOfChecks(t *testing.T) {
	// Same rule outcomes, different passwords.
	a, b := Check("Zebra#77river"), Check("Otter!22creek")
	for _, rule := range Rules {
		if a[rule] != b[rule] {
			t.Fatalf("Test passwords should share check results, differ on %s", rule)
		}
	}

	if Score(a) != Score(b) {
		t.Errorf("Score should only depend on the checks: %d != %d", Score(a), Score(b))
	}

	ra, rb := Recommendations(a), Recommendations(b)
	if len(ra) != len(rb) {
		t.Fatalf("Recommendations should only depend on the checks: %v != %v", ra, rb)
	}
	for i := range ra {
		if ra[i] != rb[i] {
			t.Errorf("Recommendations should only depend on the checks: %v != %v", ra, rb)
		}
	}
}
