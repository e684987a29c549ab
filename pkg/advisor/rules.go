// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package advisor

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rule is the stable identifier of a single password check. The values are
// the keys used on the wire.
type Rule string

const (
	Length8    Rule = "length_8"
	Length12   Rule = "length_12"
	HasLower   Rule = "has_lower"
	HasUpper   Rule = "has_upper"
	HasDigit   Rule = "has_digit"
	HasSpecial Rule = "has_special"

	// ContainsCommon is true when the password contains a deny-listed substring.
	ContainsCommon Rule = "contains_common"

	// NoRepeatedChars is true when no character repeats 4 or more times in a row.
	NoRepeatedChars Rule = "repeated_chars"

	// NoSequentialRun is true when none of the sequential substrings are present.
	NoSequentialRun Rule = "sequential"
)

// Rules lists every rule in a fixed order.
var Rules = []Rule{
	Length8, Length12, HasLower, HasUpper, HasDigit, HasSpecial, ContainsCommon, NoRepeatedChars, NoSequentialRun,
}

var commonSubstrings = []string{
	"1234", "12345", "123456", "password", "qwerty", "admin", "letmein", "1111", "0000", "abcd", "solo",
}

var sequentialSubstrings = []string{
	"0123", "1234", "2345", "3456", "4567", "5678", "6789", "abcd", "bcde", "cdef", "qwer", "wert",
}

// CheckResult holds the outcome of every rule for one password.
type CheckResult map[Rule]bool

// Value is the raw outcome of r, as sent on the wire. Unknown rules are false.
func (c CheckResult) Value(r Rule) bool {
	return c[r]
}

// Satisfied reports whether the password is good on r. ContainsCommon is the
// only rule where true is bad.
func (c CheckResult) Satisfied(r Rule) bool {
	if r == ContainsCommon {
		return !c[r]
	}
	return c[r]
}

// Check runs every rule against the password. It is total: the empty string
// yields a result with every key present.
func Check(password string) CheckResult {
	length := utf8.RuneCountInString(password)
	lower := strings.ToLower(password)

	return CheckResult{
		Length8:         length >= 8,
		Length12:        length >= 12,
		HasLower:        containsRune(password, func(r rune) bool { return r >= 'a' && r <= 'z' }),
		HasUpper:        containsRune(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }),
		HasDigit:        containsRune(password, func(r rune) bool { return r >= '0' && r <= '9' }),
		HasSpecial:      containsRune(password, isSpecial),
		ContainsCommon:  containsAny(lower, commonSubstrings),
		NoRepeatedChars: !hasRun(password, 4),
		NoSequentialRun: !containsAny(lower, sequentialSubstrings),
	}
}

// isSpecial matches anything that is not a letter, digit or whitespace.
func isSpecial(r rune) bool {
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r))
}

func containsRune(s string, f func(rune) bool) bool {
	return strings.IndexFunc(s, f) >= 0
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}

// hasRun reports whether any rune repeats n or more times consecutively.
func hasRun(s string, n int) bool {
	var prev rune
	count := 0
	for i, r := range s {
		if i > 0 && r == prev {
			count++
		} else {
			count = 1
		}
		if count >= n {
			return true
		}
		prev = r
	}

	return false
}
