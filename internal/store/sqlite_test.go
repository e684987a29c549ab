package store

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "breach.db"))
	if err != nil {
		t.Fatalf("Should not fail opening the database: %s", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Should not fail closing the database: %s", err)
		}
	})
	return s
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	inserted, err := s.Insert(ctx, []Record{
		{Hash: HashPassword("password"), Count: 10},
		{Hash: HashPassword("123456"), Count: 0},
		{Hash: HashPassword("password"), Count: 99},
	})
	if err != nil {
		t.Fatalf("Should not fail inserting: %s", err)
	}
	if inserted != 2 {
		t.Errorf("Should insert 2 new rows, inserted %d", inserted)
	}

	entry, err := s.Lookup(ctx, HashPassword("password"))
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}
	if !entry.Leaked || entry.Count == nil || *entry.Count != 10 {
		t.Errorf("password should be leaked with count 10, have %+v", entry)
	}

	entry, err = s.Lookup(ctx, HashPassword("Xk9#mP2$vL7!"))
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}
	if entry.Leaked || entry.Count == nil || *entry.Count != 0 {
		t.Errorf("Unknown password should not be leaked with count 0, have %+v", entry)
	}

	n, err := s.Len(ctx)
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}
	if n != 2 {
		t.Errorf("Store should have 2 hashes, have %d", n)
	}

	if err = s.Ping(ctx); err != nil {
		t.Errorf("Should not fail ping: %s", err)
	}
}

type memorySink struct {
	mu      sync.Mutex
	hashes  map[string]int
	batches int
}

func (m *memorySink) Insert(_ context.Context, records []Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++

	inserted := int64(0)
	for _, r := range records {
		if _, ok := m.hashes[r.Hash]; !ok {
			m.hashes[r.Hash] = r.Count
			inserted++
		}
	}
	return inserted, nil
}

func TestLoader(t *testing.T) {
	input := strings.Join([]string{
		HashPassword("password") + ":3",
		"",
		strings.ToLower(HashPassword("letmein")),
		"not a hash",
		HashPassword("password"),
		HashPassword("qwerty") + ":1",
		HashPassword("admin"),
	}, "\n")

	sink := &memorySink{hashes: map[string]int{}}
	stats, err := NewLoader(sink, 2, 2).Load(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}

	if stats.Lines != 6 {
		t.Errorf("Should read 6 non blank lines, read %d", stats.Lines)
	}
	if stats.Invalid != 1 {
		t.Errorf("Should find 1 invalid line, found %d", stats.Invalid)
	}
	if stats.Inserted != 4 {
		t.Errorf("Should insert 4 hashes, inserted %d", stats.Inserted)
	}
	if sink.batches != 3 {
		t.Errorf("Should insert in 3 batches, inserted in %d", sink.batches)
	}
	if _, ok := sink.hashes[HashPassword("letmein")]; !ok {
		t.Errorf("Lowercase hashes should be normalized")
	}
}

func TestLoader_SQLite(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	input := HashPassword("password") + ":5\n" + HashPassword("solo") + "\n"
	for i := 0; i < 2; i++ {
		if _, err := NewLoader(s, 0, 1).Load(ctx, strings.NewReader(input)); err != nil {
			t.Fatalf("Should not fail loading: %s", err)
		}
	}

	n, err := s.Len(ctx)
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}
	if n != 2 {
		t.Errorf("Loading twice should not duplicate hashes, have %d", n)
	}
}
