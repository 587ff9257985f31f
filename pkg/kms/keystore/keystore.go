/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keystore

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/wallet/pkg/storage"
)

var logger = log.New("wallet-keystore")

const (
	// Catalog is the store namespace holding keys.
	Catalog = "keys"
	// SeedSize is the size of every key held by the store.
	SeedSize = 32
)

// ErrKeyNotFound is returned by Lookup when no key exists for an id and purpose.
var ErrKeyNotFound = errors.New("key not found")

type store interface {
	Get(ctx context.Context, catalog, id string) ([]byte, error)
	Save(ctx context.Context, catalog, id string, value []byte) error
}

// KeyStore keeps the holder's private key seeds in a catalog of the wallet store.
type KeyStore struct {
	store  store
	random io.Reader
	mu     sync.Mutex
}

// Opt configures a KeyStore.
type Opt func(ks *KeyStore)

// WithRandom sets the source of new seeds, crypto/rand by default.
func WithRandom(random io.Reader) Opt {
	return func(ks *KeyStore) {
		ks.random = random
	}
}

// New returns a key store over the store.
func New(store store, opts ...Opt) *KeyStore {
	ks := &KeyStore{
		store:  store,
		random: rand.Reader,
	}

	for _, opt := range opts {
		opt(ks)
	}

	return ks
}

// Get returns the key for the id and purpose, generating and saving a new seed on first use.
func (ks *KeyStore) Get(ctx context.Context, id, purpose string) ([]byte, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	key, err := ks.Lookup(ctx, id, purpose)
	if err == nil {
		return key, nil
	}

	if !errors.Is(err, ErrKeyNotFound) {
		return nil, err
	}

	seed := make([]byte, SeedSize)

	if _, err = io.ReadFull(ks.random, seed); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	if err = ks.store.Save(ctx, Catalog, entryID(id, purpose), seed); err != nil {
		return nil, fmt.Errorf("save key: %w", err)
	}

	logger.Infoc(ctx, "Key created", log.WithID(id))

	return seed, nil
}

// Lookup returns the key for the id and purpose, or ErrKeyNotFound.
func (ks *KeyStore) Lookup(ctx context.Context, id, purpose string) ([]byte, error) {
	key, err := ks.store.Get(ctx, Catalog, entryID(id, purpose))
	if err != nil {
		if errors.Is(err, storage.ErrDataNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, entryID(id, purpose))
		}

		return nil, fmt.Errorf("get key: %w", err)
	}

	if len(key) != SeedSize {
		return nil, fmt.Errorf("stored key %s has %d bytes", entryID(id, purpose), len(key))
	}

	return key, nil
}

func entryID(id, purpose string) string {
	return id + ":" + purpose
}
