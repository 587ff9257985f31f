/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package catalogstore

import (
	"context"
	"errors"
	"fmt"

	redisapi "github.com/redis/go-redis/v9"

	"github.com/trustbloc/wallet/pkg/storage"
	"github.com/trustbloc/wallet/pkg/storage/redis"
)

const keyPrefix = "wallet"

// Store keeps every catalog in a redis hash, one field per entry.
type Store struct {
	redisClient *redis.Client
	prefix      string
}

// New creates Store. Catalog keys are namespaced with prefix when it is not empty.
func New(redisClient *redis.Client, prefix string) *Store {
	return &Store{
		redisClient: redisClient,
		prefix:      prefix,
	}
}

// List returns every entry of the catalog.
func (s *Store) List(ctx context.Context, catalog string) ([][]byte, error) {
	ctxWithTimeout, cancel := s.redisClient.ContextWithTimeout(ctx)
	defer cancel()

	values, err := s.redisClient.API().HVals(ctxWithTimeout, s.key(catalog)).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", catalog, err)
	}

	entries := make([][]byte, 0, len(values))

	for _, v := range values {
		entries = append(entries, []byte(v))
	}

	return entries, nil
}

// Get returns an entry, or storage.ErrDataNotFound.
func (s *Store) Get(ctx context.Context, catalog, id string) ([]byte, error) {
	ctxWithTimeout, cancel := s.redisClient.ContextWithTimeout(ctx)
	defer cancel()

	b, err := s.redisClient.API().HGet(ctxWithTimeout, s.key(catalog), id).Bytes()
	if err != nil {
		if errors.Is(err, redisapi.Nil) {
			return nil, storage.ErrDataNotFound
		}

		return nil, fmt.Errorf("get %s entry: %w", catalog, err)
	}

	return b, nil
}

// Save writes an entry, replacing any entry with the same id.
func (s *Store) Save(ctx context.Context, catalog, id string, value []byte) error {
	ctxWithTimeout, cancel := s.redisClient.ContextWithTimeout(ctx)
	defer cancel()

	if err := s.redisClient.API().HSet(ctxWithTimeout, s.key(catalog), id, value).Err(); err != nil {
		return fmt.Errorf("save %s entry: %w", catalog, err)
	}

	return nil
}

// Delete removes an entry. Deleting a missing entry is not an error.
func (s *Store) Delete(ctx context.Context, catalog, id string) error {
	ctxWithTimeout, cancel := s.redisClient.ContextWithTimeout(ctx)
	defer cancel()

	if err := s.redisClient.API().HDel(ctxWithTimeout, s.key(catalog), id).Err(); err != nil {
		return fmt.Errorf("delete %s entry: %w", catalog, err)
	}

	return nil
}

func (s *Store) key(catalog string) string {
	if s.prefix == "" {
		return fmt.Sprintf("%s-%s", keyPrefix, catalog)
	}

	return fmt.Sprintf("%s-%s-%s", keyPrefix, s.prefix, catalog)
}
