// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package gcs

import (
	"github.com/rs/zerolog/log"
	"sync/atomic"
	"time"
)

type status struct {
	stageName  string
	workCount  uint64
	doneCount  uint64
	step       uint64
	start      time.Time
	stageStart time.Time
}

func newStatus() *status {
	return &status{start: time.Now()}
}

func (s *status) Stage(stage string) {
	s.FinishStage()

	s.stageName = stage
	log.Info().Msgf("%s starting...", s.stageName)

	s.stageStart = time.Now()
	atomic.StoreUint64(&s.doneCount, 0)
	s.workCount = 0
	s.step = 0
}

func (s *status) SetWork(count uint64) {
	s.workCount = count
	s.step = count / 20
}

func (s *status) StageWork(name string, work uint64) {
	s.Stage(name)
	s.SetWork(work)
}

func (s *status) PrintStatus(done uint64) {
	elapsed := time.Since(s.stageStart)
	log.Info().Msgf(
		"%s: %d of %d, %.2f%%, %.0f/s",
		s.stageName,
		done,
		s.workCount,
		float64(done)/float64(s.workCount)*100,
		float64(done)/elapsed.Seconds(),
	)
}

func (s *status) AddWork(count uint64) {
	done := atomic.AddUint64(&s.doneCount, count)
	// Report every 5%
	if s.step > 0 && (done-count)/s.step != done/s.step {
		s.PrintStatus(done)
	}
}

func (s *status) Incr() {
	s.AddWork(1)
}

func (s *status) FinishStage() {
	if s.stageName != "" {
		log.Info().Msgf("%s complete in %v", s.stageName, time.Since(s.stageStart))
	}

	s.stageName = ""
}

func (s *status) Done() {
	s.FinishStage()
	log.Info().Msgf("complete in %v", time.Since(s.start))
}
