// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package gcs

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// U64FromHex parses the first 16 hex characters of a SHA1 hash, the part of
// the hash the set is built from.
func U64FromHex(src []byte) (uint64, error) {
	if len(src) < 16 {
		return 0, fmt.Errorf("hash prefix %q is shorter than 16 characters", src)
	}

	return strconv.ParseUint(string(src[0:16]), 16, 64)
}

// estimateFileLines samples up to 16MiB of the file and scales the line
// count to its size. The file is rewound afterwards.
func estimateFileLines(f *os.File) (uint64, error) {
	const estimateLimit = 1024 * 1024 * 16

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	size := info.Size()
	if size == 0 {
		return 0, nil
	}

	sampleSize := int64(math.Min(float64(size), estimateLimit))
	buffer := make([]byte, sampleSize)
	if _, err = io.ReadFull(f, buffer); err != nil {
		return 0, err
	}
	// Reset the file pointer so the actual read does not miss the sample
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	sample := uint64(0)
	for _, b := range buffer {
		if b == '\n' {
			sample++
		}
	}

	return sample * uint64(size) / uint64(sampleSize), nil
}

func toFixedBytes(content uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, content)
	return buf
}

// dedup removes consecutive duplicates of a sorted slice in place.
func dedup(slice []uint64) []uint64 {
	if len(slice) < 2 {
		return slice
	}

	var e = 1
	for i := 1; i < len(slice); i++ {
		if slice[i] == slice[i-1] {
			continue
		}
		slice[e] = slice[i]
		e++
	}

	return slice[:e]
}

// closestIndex returns the position of the last index entry whose value is
// not greater than value. index[0] is always {0, 0}.
func closestIndex(index []indexPair, value uint64) int {
	lo, hi := 0, len(index)-1
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if index[mid].value <= value {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	return lo
}
