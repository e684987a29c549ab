// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package migrations embeds the SQL migrations of the breach database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
