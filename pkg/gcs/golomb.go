// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package gcs

import (
	"fmt"
	"io"
	"math"
)

// golombEncoder writes Golomb-Rice coded values: the quotient in unary
// followed by log2(p) bits of remainder.
type golombEncoder struct {
	inner       *bitWriter
	probability uint64
	log2p       uint8
}

func newEncoder(w io.Writer, probability uint64) *golombEncoder {
	return &golombEncoder{
		inner:       newBitWriter(w),
		probability: probability,
		log2p:       log2(probability),
	}
}

// Encode writes value and returns the number of bits used.
func (e *golombEncoder) Encode(value uint64) (uint64, error) {
	q := value / e.probability
	r := value % e.probability

	// q ones and a terminating zero
	if q+1 > 64 {
		return 0, fmt.Errorf("value %d is too far from the previous one for probability %d", value, e.probability)
	}
	if err := e.inner.WriteBits(uint8(q+1), (1<<(q+1))-2); err != nil {
		return 0, err
	}

	if err := e.inner.WriteBits(e.log2p, r); err != nil {
		return q + 1, err
	}

	return q + 1 + uint64(e.log2p), nil
}

// Finalize pads to a byte boundary and returns the padding bits written.
func (e *golombEncoder) Finalize() (uint64, error) {
	return e.inner.Flush()
}

// golombDecoder reads values written by golombEncoder.
type golombDecoder struct {
	inner       *bitReader
	probability uint64
	log2p       uint8
}

func newDecoder(r io.ReadSeeker, probability uint64) *golombDecoder {
	return &golombDecoder{
		inner:       newBitReader(r),
		probability: probability,
		log2p:       log2(probability),
	}
}

// SeekBit moves the decoder to an absolute bit position.
func (d *golombDecoder) SeekBit(pos uint64) error {
	_, err := d.inner.Seek(int64(pos), io.SeekStart)
	return err
}

func (d *golombDecoder) Decode() (uint64, error) {
	value := uint64(0)
	for {
		bit, err := d.inner.ReadBit()
		if err != nil {
			return 0, err
		}
		if bit == 0 {
			break
		}
		value += d.probability
	}

	r, err := d.inner.ReadBits(d.log2p)
	if err != nil {
		return 0, err
	}

	return value + r, nil
}

func log2(probability uint64) uint8 {
	return uint8(math.Ceil(math.Log2(float64(probability))))
}
