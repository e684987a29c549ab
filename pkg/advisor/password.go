// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package advisor

import "github.com/rs/zerolog"

const redacted = "[REDACTED]"

// Password is a candidate password. It never prints its value, so it is safe
// to pass to loggers and fmt by mistake.
type Password string

func (p Password) String() string {
	return redacted
}

func (p Password) GoString() string {
	return redacted
}

func (p Password) MarshalZerologObject(e *zerolog.Event) {
	e.Str("password", redacted)
}

func (p Password) Empty() bool {
	return len(p) == 0
}
