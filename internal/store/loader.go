// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package store

import (
	"bufio"
	"context"
	"fmt"
	"github.com/alvinbaena/pwd-advisor/internal/util"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
	"unicode"
)

// Record is one line of a hash list: "HASH" or "HASH:COUNT".
type Record struct {
	Hash  string
	Count int
}

// Sink receives batches of records. Known hashes must be ignored.
type Sink interface {
	Insert(ctx context.Context, records []Record) (int64, error)
}

type LoadStats struct {
	Lines    int64
	Invalid  int64
	Inserted int64
}

// Loader reads a hash list in chunks and inserts them concurrently.
type Loader struct {
	sink        Sink
	chunkLen    int
	concurrency int
}

func NewLoader(sink Sink, chunkLen int, concurrency int) *Loader {
	if chunkLen <= 0 {
		chunkLen = 10 * 1024
	}
	if concurrency <= 0 {
		concurrency = 4
	}

	return &Loader{sink: sink, chunkLen: chunkLen, concurrency: concurrency}
}

// ParseRecord parses a hash list line. Invisible characters are dropped.
func ParseRecord(line string) (Record, error) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsGraphic(r) {
			return r
		}

		return -1
	}, line)

	hashPart, countPart, hasCount := strings.Cut(clean, ":")
	hash, err := NormalizeHash(hashPart)
	if err != nil {
		return Record{}, err
	}

	record := Record{Hash: hash}
	if hasCount {
		count, err := strconv.Atoi(strings.TrimSpace(countPart))
		if err != nil || count < 0 {
			return Record{}, fmt.Errorf("invalid count %q", countPart)
		}
		record.Count = count
	}

	return record, nil
}

// Load inserts every valid line of in. Blank lines are skipped, malformed
// ones are counted as invalid.
func (l *Loader) Load(ctx context.Context, in io.Reader) (LoadStats, error) {
	log.Info().Msg("loading leaked password hashes. This might take a while")
	s := util.Stats()
	defer s()

	var stats LoadStats
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	scanner := bufio.NewScanner(in)
	lines := make([]string, 0, l.chunkLen)

	flush := func(chunk []string) {
		g.Go(func() error {
			records := make([]Record, 0, len(chunk))
			for _, line := range chunk {
				record, err := ParseRecord(line)
				if err != nil {
					atomic.AddInt64(&stats.Invalid, 1)
					continue
				}
				records = append(records, record)
			}

			n, err := l.sink.Insert(ctx, records)
			if err != nil {
				return err
			}

			atomic.AddInt64(&stats.Inserted, n)
			return nil
		})
	}

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		stats.Lines++
		lines = append(lines, line)
		if len(lines) == l.chunkLen {
			flush(lines)
			lines = make([]string, 0, l.chunkLen)
		}
	}
	if len(lines) > 0 {
		flush(lines)
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}
	if err := scanner.Err(); err != nil {
		return stats, err
	}

	log.Info().Msgf("read %d lines, inserted %d new hashes, %d invalid lines", stats.Lines, stats.Inserted, stats.Invalid)
	return stats, nil
}
