// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package gcs

import (
	"bufio"
	"errors"
	"github.com/alvinbaena/pwd-advisor/internal/util"
	"github.com/jfcg/sorty/v2"
	"github.com/rs/zerolog/log"
	"io"
	"os"
	"sync"
)

// https://github.com/rasky/gcs
// https://github.com/Freaky/gcstool
// https://giovanni.bajo.it/post/47119962313/golomb-coded-sets-smaller-than-bloom-filters

const gcsMagic = "[GCS:v0]"

// footerLen is N, P, end of data, index length and the magic, 8 bytes each.
const footerLen = 5 * 8

type indexPair struct {
	value  uint64
	bitPos uint64
}

type Builder struct {
	in               io.Reader
	out              io.Writer
	num              uint64
	probability      uint64
	indexGranularity uint64
	values           []uint64
	skipped          uint64
	stat             *status
}

// NewBuilder builder for a new GCS file database. The input holds one SHA1
// hex hash per line, optionally followed by ":count".
//
// probability is the False positive rate for queries, 1-in-p.
// indexGranularity is the entries per index point (16 bytes each).
func NewBuilder(in io.Reader, out io.Writer, probability uint64, indexGranularity uint64) *Builder {
	// Estimate the amount of lines in the passwords file. It's pretty accurate, <= 1% error rate.
	estimatedLines := uint64(0)
	if f, ok := in.(*os.File); ok {
		if lines, err := estimateFileLines(f); err == nil {
			estimatedLines = lines
		} else {
			log.Warn().Err(err).Msg("could not estimate the number of lines of the input file")
		}
	}

	return &Builder{
		in:               in,
		out:              out,
		num:              estimatedLines,
		probability:      probability,
		indexGranularity: indexGranularity,
		values:           make([]uint64, 0, estimatedLines),
	}
}

// Process creates the gcs file using the inputs in the builder
// Concurrent file read inspired by https://marcellanz.com/post/file-read-challenge/
func (b *Builder) Process(skipWait bool) error {
	if b.probability < 2 {
		return errors.New("false positive rate must be at least 2")
	}

	// Stop the process if not enough ram to actually hold all the entries read.
	if err := util.CheckRam(b.num, skipWait); err != nil {
		return err
	}

	s := util.Stats()
	defer s()

	b.stat = newStatus()
	log.Info().Msg("starting process. This might take a while, be patient :)")

	scanner := bufio.NewScanner(b.in)

	// Pool to store the read lines from the file, in 64k line chunks
	linesChunkLen := 64 * 1024
	linesPool := sync.Pool{New: func() interface{} {
		lines := make([]string, 0, linesChunkLen)
		return lines
	}}
	lines := linesPool.Get().([]string)[:0]

	recordsPool := sync.Pool{New: func() interface{} {
		entries := make([]uint64, 0, linesChunkLen)
		return entries
	}}

	// Mutex needed to avoid resource contention between the goroutines
	mutex := &sync.Mutex{}
	wg := sync.WaitGroup{}

	b.stat.StageWork("Read", b.num)
	willScan := scanner.Scan()
	for willScan {
		lines = append(lines, scanner.Text())
		willScan = scanner.Scan()

		if len(lines) == linesChunkLen || !willScan {
			linesToProcess := lines
			wg.Add(1)

			go func() {
				defer wg.Done()
				records := recordsPool.Get().([]uint64)[:0]
				skipped := uint64(0)

				for _, line := range linesToProcess {
					hash, err := U64FromHex([]byte(line))
					if err != nil {
						skipped++
						continue
					}
					records = append(records, hash)
				}

				linesPool.Put(linesToProcess[:0])

				mutex.Lock()
				for _, hash := range records {
					b.add(hash)
				}
				b.skipped += skipped
				mutex.Unlock()

				b.stat.AddWork(uint64(len(records)))
				recordsPool.Put(records)
			}()

			lines = linesPool.Get().([]string)[:0]
		}
	}
	wg.Wait()

	if err := scanner.Err(); err != nil {
		return err
	}

	if b.skipped > 0 {
		log.Warn().Msgf("skipped %d lines that do not start with a SHA1 hash", b.skipped)
	}

	if err := b.finalize(); err != nil {
		return err
	}

	b.stat.Done()
	return nil
}

func (b *Builder) add(entry uint64) {
	b.values = append(b.values, entry)
}

// finalize normalises, sorts and encodes the values, then writes the index
// and the footer.
func (b *Builder) finalize() error {
	// Adjust with the actual number of items, not the estimate
	b.num = uint64(len(b.values))
	if b.num == 0 {
		return errors.New("no hashes found in the input")
	}
	log.Debug().Msgf("database will have %d items", b.num)

	np := b.num * b.probability

	b.stat.Stage("Normalise")
	for i, v := range b.values {
		b.values[i] = v % np
	}

	b.stat.Stage("Sort")
	sorty.SortSlice(b.values)

	b.stat.Stage("Deduplicate")
	b.values = dedup(b.values)
	// A zero delta marks the end of data, and 0 always matches the first
	// index point anyway.
	if b.values[0] == 0 {
		b.values = b.values[1:]
	}

	index := make([]indexPair, 0, 1+uint64(len(b.values))/max(b.indexGranularity, 1))
	index = append(index, indexPair{0, 0})

	encoder := newEncoder(b.out, b.probability)
	b.stat.StageWork("Encode", uint64(len(b.values)))

	totalBits := uint64(0)
	prev := uint64(0)
	for i, v := range b.values {
		d, err := encoder.Encode(v - prev)
		if err != nil {
			return err
		}
		totalBits += d
		prev = v

		if b.indexGranularity > 0 && uint64(i+1)%b.indexGranularity == 0 {
			index = append(index, indexPair{value: v, bitPos: totalBits})
		}

		b.stat.Incr()
	}

	// encode a delimiting zero
	d, err := encoder.Encode(0)
	if err != nil {
		return err
	}
	totalBits += d

	wr, err := encoder.Finalize()
	if err != nil {
		return err
	}

	endOfData := (totalBits + wr) / 8
	log.Debug().Msgf("end of data: %d", endOfData)
	b.stat.Stage("Write Index")
	log.Debug().Msgf("index will have %d items", len(index))

	// Write the index: pairs of u64's (value, bit index)
	for _, pair := range index {
		if _, err = b.out.Write(toFixedBytes(pair.value)); err != nil {
			return err
		}
		if _, err = b.out.Write(toFixedBytes(pair.bitPos)); err != nil {
			return err
		}
	}

	// Write our footer
	// N, P, index position in bytes, index size in entries [magic]
	for _, v := range []uint64{b.num, b.probability, endOfData, uint64(len(index))} {
		if _, err = b.out.Write(toFixedBytes(v)); err != nil {
			return err
		}
	}
	if _, err = b.out.Write([]byte(gcsMagic)); err != nil {
		return err
	}

	return nil
}
