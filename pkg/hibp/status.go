// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package hibp

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"net/http"
	"sync/atomic"
	"time"
)

// status tracks a download. Every counter is updated from the worker pool.
type status struct {
	totalRanges uint64
	step        uint64
	ranges      uint64
	failed      uint64
	hashes      uint64
	requests    uint64
	cacheHits   uint64
	requestTime uint64
	start       time.Time
}

func newStatus(totalRanges int) *status {
	total := uint64(totalRanges)
	return &status{
		totalRanges: total,
		step:        total / 20,
		start:       time.Now(),
	}
}

// RangeDone counts a written range and logs progress every 5%.
func (s *status) RangeDone(hashes uint64) {
	atomic.AddUint64(&s.hashes, hashes)
	done := atomic.AddUint64(&s.ranges, 1)
	if s.step > 0 && done%s.step == 0 {
		s.printStatus(done)
	}
}

func (s *status) RangeFailed() {
	atomic.AddUint64(&s.failed, 1)
}

func (s *status) Failed() uint64 {
	return atomic.LoadUint64(&s.failed)
}

func (s *status) Hashes() uint64 {
	return atomic.LoadUint64(&s.hashes)
}

// RequestComplete records the response time and the CDN cache status of a range request.
func (s *status) RequestComplete(res *http.Response, elapsed time.Duration) {
	atomic.AddUint64(&s.requestTime, uint64(elapsed.Milliseconds()))
	atomic.AddUint64(&s.requests, 1)
	if res.Header.Get("CF-Cache-Status") == "HIT" {
		atomic.AddUint64(&s.cacheHits, 1)
	}
}

func (s *status) hashesPerSecond() float64 {
	elapsed := time.Since(s.start).Seconds()
	if elapsed <= 0 {
		return float64(s.Hashes())
	}

	return float64(s.Hashes()) / elapsed
}

func (s *status) printStatus(done uint64) {
	log.Info().Msgf(
		"ranges: %d of %d, %.2f%%, %.0f hashes/s",
		done,
		s.totalRanges,
		float64(done)/float64(s.totalRanges)*100,
		s.hashesPerSecond(),
	)
}

func (s *status) Done() {
	p := message.NewPrinter(language.English)
	log.Info().Msgf("downloaded %s ranges (%s hashes) in %v, %s failed",
		p.Sprintf("%d", atomic.LoadUint64(&s.ranges)),
		p.Sprintf("%d", s.Hashes()),
		time.Since(s.start),
		p.Sprintf("%d", s.Failed()),
	)

	requests := atomic.LoadUint64(&s.requests)
	if requests == 0 {
		return
	}

	hits := atomic.LoadUint64(&s.cacheHits)
	log.Debug().Msgf("made %s requests. Average response time %.2f ms, cache hits %.2f%%",
		p.Sprintf("%d", requests),
		float64(atomic.LoadUint64(&s.requestTime))/float64(requests),
		float64(hits*100)/float64(requests),
	)
}
