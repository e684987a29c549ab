// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore keeps the breach corpus in a local SQLite file, for running
// the checker without a database server.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{db: db}
	if err = s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) createTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS leaked_passwords (
			sha1  TEXT PRIMARY KEY,
			count INTEGER NOT NULL DEFAULT 0
		)`)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Lookup(ctx context.Context, hash string) (Entry, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT count FROM leaked_passwords WHERE sha1 = ?`, hash).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			zero := 0
			return Entry{Leaked: false, Count: &zero}, nil
		}
		return Entry{}, fmt.Errorf("looking up hash: %w", err)
	}

	return Entry{Leaked: true, Count: &count}, nil
}

func (s *SQLiteStore) Len(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM leaked_passwords`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting hashes: %w", err)
	}

	return n, nil
}

// Insert adds a batch in a single transaction, ignoring known hashes.
// Returns the number of new rows.
func (s *SQLiteStore) Insert(ctx context.Context, records []Record) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO leaked_passwords (sha1, count) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := int64(0)
	for _, r := range records {
		res, err := stmt.ExecContext(ctx, r.Hash, r.Count)
		if err != nil {
			return 0, fmt.Errorf("inserting hash: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing batch: %w", err)
	}

	return inserted, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
