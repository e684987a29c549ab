// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package gcs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"io"
	"os"
)

// ErrNotGCS is returned when a file does not end with a GCS footer.
var ErrNotGCS = errors.New("not a GCS File")

type Reader struct {
	fileName    string
	num         uint64
	probability uint64
	endOfData   uint64
	indexLen    uint64
	index       []indexPair
}

func NewReader(fileName string) *Reader {
	return &Reader{
		fileName: fileName,
		index:    make([]indexPair, 0),
	}
}

// Initialize only loads the database index into memory. This does not load the whole file in RAM.
func (r *Reader) Initialize() error {
	// Only open the file for initialization.
	file, err := os.Open(r.fileName)
	if err != nil {
		return err
	}

	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			log.Error().Err(err).Msg("error closing GCS file")
		}
	}(file)

	if err = r.readFooter(file); err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	log.Info().Msgf("ready for queries on %s items with a 1 in %s false-positive rate.", p.Sprintf("%d", r.num), p.Sprintf("%d", r.probability))
	return nil
}

func (r *Reader) readFooter(file io.ReadSeeker) error {
	// Reads the footer that the file should have. 40 bytes.
	if _, err := file.Seek(-footerLen, io.SeekEnd); err != nil {
		return fmt.Errorf("%w: %s", ErrNotGCS, err)
	}

	footer := make([]byte, footerLen)
	if _, err := io.ReadFull(file, footer); err != nil {
		return err
	}

	if !bytes.Equal(footer[32:], []byte(gcsMagic)) {
		return ErrNotGCS
	}

	r.num = binary.BigEndian.Uint64(footer[0:8])
	r.probability = binary.BigEndian.Uint64(footer[8:16])
	r.endOfData = binary.BigEndian.Uint64(footer[16:24])
	r.indexLen = binary.BigEndian.Uint64(footer[24:32])
	log.Debug().Msgf("items: %d, probability: %d, end of data: %d, index length: %d", r.num, r.probability, r.endOfData, r.indexLen)

	if r.num == 0 || r.probability < 2 || r.indexLen == 0 {
		return fmt.Errorf("%w: corrupt footer", ErrNotGCS)
	}

	// Move the file pointer where the index starts
	if _, err := file.Seek(int64(r.endOfData), io.SeekStart); err != nil {
		return err
	}

	// slurp in the index.
	raw := make([]byte, r.indexLen*16)
	if _, err := io.ReadFull(file, raw); err != nil {
		return fmt.Errorf("reading GCS index: %w", err)
	}

	r.index = make([]indexPair, 0, r.indexLen)
	for i := uint64(0); i < r.indexLen; i++ {
		r.index = append(r.index, indexPair{
			value:  binary.BigEndian.Uint64(raw[i*16 : i*16+8]),
			bitPos: binary.BigEndian.Uint64(raw[i*16+8 : i*16+16]),
		})
	}

	return nil
}

// Len is the number of hashes the set was built from.
func (r *Reader) Len() uint64 {
	return r.num
}

// Exists reports whether the hash, the first 8 bytes of a SHA1, is probably
// in the set. False positives happen at the configured rate.
func (r *Reader) Exists(target uint64) (bool, error) {
	if len(r.index) == 0 {
		return false, errors.New("reader is not initialized")
	}

	// By opening a file pointer everytime we check if a password is pwned, we improve performance
	// by *a lot*. The tradeoff is the cost in CPU cycles.
	//
	// With a single shared file pointer, 500 concurrent requests spent most of their time waiting
	// on the synchronization of file access.
	file, err := os.Open(r.fileName)
	if err != nil {
		return false, err
	}

	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			log.Error().Err(err).Msg("error closing GCS file")
		}
	}(file)

	return r.exists(file, target)
}

func (r *Reader) exists(file io.ReadSeeker, target uint64) (bool, error) {
	h := target % (r.num * r.probability)

	entry := r.index[closestIndex(r.index, h)]
	if entry.value == h {
		return true, nil
	}

	decoder := newDecoder(file, r.probability)
	if err := decoder.SeekBit(entry.bitPos); err != nil {
		return false, err
	}

	// Walk forward from the closest index point.
	last := entry.value
	for last < h {
		diff, err := decoder.Decode()
		if err != nil {
			return false, err
		}

		// End of data
		if diff == 0 {
			break
		}
		last += diff
	}

	return last == h, nil
}
