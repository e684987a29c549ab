// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/alvinbaena/pwd-advisor/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
)

// PostgresStore keeps the breach corpus in the leaked_passwords table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database and applies pending migrations.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if err := RunMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// RunMigrations applies all pending database migrations using embedded SQL files.
func RunMigrations(databaseURL string) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("sql.Open for migrations: %w", err)
	}
	defer func() { _ = db.Close() }()

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

func (s *PostgresStore) Lookup(ctx context.Context, hash string) (Entry, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT count FROM leaked_passwords WHERE sha1 = $1`, hash).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			zero := 0
			return Entry{Leaked: false, Count: &zero}, nil
		}
		return Entry{}, fmt.Errorf("looking up hash: %w", err)
	}

	return Entry{Leaked: true, Count: &count}, nil
}

func (s *PostgresStore) Len(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM leaked_passwords`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting hashes: %w", err)
	}

	return n, nil
}

// Insert loads a batch through a staging table, so duplicates in the batch or
// already in the table are ignored. Returns the number of new rows.
func (s *PostgresStore) Insert(ctx context.Context, records []Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, `CREATE TEMP TABLE leaked_passwords_staging (sha1 TEXT, count INTEGER) ON COMMIT DROP`); err != nil {
		return 0, fmt.Errorf("creating staging table: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"leaked_passwords_staging"},
		[]string{"sha1", "count"},
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			return []any{records[i].Hash, records[i].Count}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copying batch: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO leaked_passwords (sha1, count)
		SELECT sha1, max(count) FROM leaked_passwords_staging GROUP BY sha1
		ON CONFLICT (sha1) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("inserting batch: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing batch: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
