// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"github.com/alvinbaena/pwd-advisor/pkg/gcs"
)

// GCSStore is a read only, probabilistic store backed by a Golomb Coded Set
// file. It knows membership only, counts are never reported.
type GCSStore struct {
	reader *gcs.Reader
}

func NewGCSStore(fileName string) (*GCSStore, error) {
	reader := gcs.NewReader(fileName)
	if err := reader.Initialize(); err != nil {
		return nil, err
	}

	return &GCSStore{reader: reader}, nil
}

func (s *GCSStore) Lookup(_ context.Context, hash string) (Entry, error) {
	value, err := gcs.U64FromHex([]byte(hash))
	if err != nil {
		return Entry{}, ErrInvalidHash
	}

	exists, err := s.reader.Exists(value)
	if err != nil {
		return Entry{}, err
	}

	return Entry{Leaked: exists}, nil
}

func (s *GCSStore) Len(context.Context) (int64, error) {
	return int64(s.reader.Len()), nil
}

func (s *GCSStore) Ping(context.Context) error {
	return nil
}

func (s *GCSStore) Close() error {
	return nil
}
