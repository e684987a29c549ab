// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidHash is returned for anything that is not a 40 character hex SHA1.
var ErrInvalidHash = errors.New("input is not a valid SHA1 Hexadecimal hash")

var sha1Pattern = regexp.MustCompile(`^[A-F\d]{40}$`)

// Entry is the breach status of one hash.
type Entry struct {
	Leaked bool
	// Count is nil when the backend does not track occurrences.
	Count *int
}

// Store answers membership queries against a breach corpus of SHA1 hashes.
type Store interface {
	// Lookup expects an uppercase hex SHA1 hash, see NormalizeHash.
	Lookup(ctx context.Context, hash string) (Entry, error)
	// Len is the number of hashes in the corpus.
	Len(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// HashPassword returns the uppercase hex SHA1 of the UTF-8 password.
func HashPassword(password string) string {
	sum := sha1.Sum([]byte(password))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// NormalizeHash trims and uppercases a hex SHA1 hash, and validates it.
func NormalizeHash(hash string) (string, error) {
	h := strings.ToUpper(strings.TrimSpace(hash))
	if !sha1Pattern.MatchString(h) {
		return "", ErrInvalidHash
	}

	return h, nil
}

// Open creates the store for kind: gcs, postgres or sqlite. source is the
// file path or the database URL.
func Open(ctx context.Context, kind string, source string) (Store, error) {
	switch kind {
	case "gcs":
		return NewGCSStore(source)
	case "postgres":
		return NewPostgresStore(ctx, source)
	case "sqlite":
		return NewSQLiteStore(ctx, source)
	}

	return nil, fmt.Errorf("unknown store %q", kind)
}
