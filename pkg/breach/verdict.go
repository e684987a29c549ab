// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package breach

import "fmt"

// Verdict is the breach status of one password.
type Verdict struct {
	Leaked bool
	// Count is nil when the service did not report one or the lookup failed.
	Count *int
	// Unknown is set when the lookup failed and Leaked is indeterminate.
	Unknown bool
}

// Reason explains why a lookup was degraded.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonUnavailable
	ReasonTimeout
	ReasonCancelled
	ReasonStatus
	ReasonMalformed
	ReasonDisabled
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonUnavailable:
		return "unavailable"
	case ReasonTimeout:
		return "timeout"
	case ReasonCancelled:
		return "cancelled"
	case ReasonStatus:
		return "bad status"
	case ReasonMalformed:
		return "malformed response"
	case ReasonDisabled:
		return "disabled"
	}

	return fmt.Sprintf("reason(%d)", int(r))
}

// Result is either a found verdict or a degraded lookup. The zero value is a
// degraded lookup with ReasonNone and should not be used.
type Result struct {
	verdict  Verdict
	reason   Reason
	err      error
	degraded bool
}

// Found is a successful lookup.
func Found(leaked bool, count *int) Result {
	return Result{verdict: Verdict{Leaked: leaked, Count: count}}
}

// Degraded is a failed lookup. The verdict is unknown and never leaked.
func Degraded(reason Reason, err error) Result {
	return Result{
		verdict:  Verdict{Unknown: true},
		reason:   reason,
		err:      err,
		degraded: true,
	}
}

func (r Result) Degraded() bool {
	return r.degraded
}

func (r Result) Verdict() Verdict {
	return r.verdict
}

func (r Result) Reason() Reason {
	return r.reason
}

// Err is the underlying failure of a degraded lookup, if any.
func (r Result) Err() error {
	return r.err
}
