// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package gcs

import (
	"bufio"
	"fmt"
	"io"
)

// bitReader adds bit-level reading to any io.ReadSeeker.
type bitReader struct {
	inner  io.ReadSeeker
	buffer []byte
	unused uint8
}

func newBitReader(r io.ReadSeeker) *bitReader {
	return &bitReader{inner: r, buffer: make([]byte, 1), unused: 0}
}

// Reset the internal state of the bitReader. The next read will load fresh
// data from the current position of the reader and start from the beginning
// of the first byte returned.
func (r *bitReader) Reset() {
	r.buffer[0] = 0
	r.unused = 0
}

// ReadBit reads a single bit from the reader.
func (r *bitReader) ReadBit() (uint8, error) {
	bit, err := r.ReadBits(1)
	return uint8(bit), err
}

// ReadBits reads up to 64 bits from the reader.
func (r *bitReader) ReadBits(n uint8) (uint64, error) {
	if n > 64 {
		return 0, fmt.Errorf("cannot read more than 64 bits at a time")
	}

	ret := uint64(0)
	rBits := n

	for rBits > r.unused {
		ret |= uint64(r.buffer[0]) << (rBits - r.unused)
		rBits -= r.unused

		if _, err := io.ReadFull(r.inner, r.buffer); err != nil {
			return 0, err
		}

		r.unused = 8
	}

	if rBits > 0 {
		ret |= uint64(r.buffer[0]) >> (r.unused - rBits)
		r.buffer[0] &= (1 << (r.unused - rBits)) - 1
		r.unused -= rBits
	}

	return ret, nil
}

// Seek to the given *bit* position. Only io.SeekStart is supported.
func (r *bitReader) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekStart {
		return 0, fmt.Errorf("only seeking from the start is supported")
	}
	if offset < 0 {
		return 0, fmt.Errorf("cannot seek to negative bit position %d", offset)
	}

	r.Reset()
	if _, err := r.inner.Seek(offset/8, io.SeekStart); err != nil {
		return 0, err
	}
	if _, err := r.ReadBits(uint8(offset % 8)); err != nil {
		return 0, err
	}

	return offset, nil
}

// An io.Writer and io.ByteWriter at the same time.
type writerAndByteWriter interface {
	io.Writer
	io.ByteWriter
}

// bitWriter adds bit-level writing to any io.Writer.
type bitWriter struct {
	inner   writerAndByteWriter
	wrapper *bufio.Writer // wrapper bufio.Writer if the target does not implement io.ByteWriter
	buffer  uint8         // unwritten bits are stored here
	unused  uint8         // number of unwritten bits in cache
}

func newBitWriter(out io.Writer) *bitWriter {
	w := &bitWriter{}
	var ok bool
	w.inner, ok = out.(writerAndByteWriter)
	if !ok {
		w.wrapper = bufio.NewWriter(out)
		w.inner = w.wrapper
	}
	return w
}

// WriteBits writes the n lowest bits of r, up to 64.
func (w *bitWriter) WriteBits(n uint8, r uint64) error {
	if n > 64 {
		return fmt.Errorf("cannot write more than 64 bits at a time")
	}

	return w.writeBitsInternal(n, r&(1<<n-1))
}

// writeBitsInternal writes the n lowest bits of r. r must not have bits set
// at n or higher positions, use WriteBits when that is not guaranteed.
func (w *bitWriter) writeBitsInternal(n uint8, r uint64) error {
	newBits := w.unused + n
	if newBits < 8 {
		// r fits into buffer, no write will occur
		w.buffer |= byte(r) << (8 - newBits)
		w.unused = newBits
		return nil
	}
	if newBits > 8 {
		// fill the buffer and write it, then write the whole bytes left
		free := 8 - w.unused
		if err := w.inner.WriteByte(w.buffer | uint8(r>>(n-free))); err != nil {
			return err
		}
		n -= free

		for n >= 8 {
			n -= 8
			// converting to byte masks the higher bits
			if err := w.inner.WriteByte(uint8(r >> n)); err != nil {
				return err
			}
		}
		// n < 8 here, 1<<n cannot overflow a byte
		if n > 0 {
			w.buffer, w.unused = (uint8(r)&((1<<n)-1))<<(8-n), n
		} else {
			w.buffer, w.unused = 0, 0
		}
		return nil
	}

	// buffer will be filled exactly with the bits to be written
	bb := w.buffer | uint8(r)
	w.buffer, w.unused = 0, 0
	return w.inner.WriteByte(bb)
}

// Flush aligns the bit stream to a byte boundary, writing any cached bits
// padded with zeroes, and flushes the wrapped writer. Returns the number of
// padding bits written.
func (w *bitWriter) Flush() (skipped uint64, err error) {
	if w.unused > 0 {
		if err = w.inner.WriteByte(w.buffer); err != nil {
			return 0, err
		}

		skipped = uint64(8 - w.unused)
		w.buffer, w.unused = 0, 0
	}
	if w.wrapper != nil {
		err = w.wrapper.Flush()
	}
	return
}
