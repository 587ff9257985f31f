/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ariesprovider

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ariesstorage "github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/trustbloc/wallet/pkg/storage"
)

// entryTag marks every entry so that a catalog can be listed with a tag query.
const entryTag = "entry"

// Store is a generic wallet store that works with any Aries storage.Provider implementation. Each
// catalog is an Aries store.
type Store struct {
	provider ariesstorage.Provider

	mu     sync.Mutex
	stores map[string]ariesstorage.Store
}

// New returns a store over the provider.
func New(provider ariesstorage.Provider) *Store {
	return &Store{
		provider: provider,
		stores:   map[string]ariesstorage.Store{},
	}
}

// GetAriesProvider returns the underlying Aries storage provider.
func (s *Store) GetAriesProvider() ariesstorage.Provider {
	return s.provider
}

// List returns every entry of the catalog.
func (s *Store) List(_ context.Context, catalog string) ([][]byte, error) {
	store, err := s.open(catalog)
	if err != nil {
		return nil, err
	}

	iter, err := store.Query(entryTag)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", catalog, err)
	}

	defer func() {
		_ = iter.Close() //nolint:errcheck
	}()

	var entries [][]byte

	for {
		more, nextErr := iter.Next()
		if nextErr != nil {
			return nil, fmt.Errorf("iterate %s: %w", catalog, nextErr)
		}

		if !more {
			return entries, nil
		}

		value, valueErr := iter.Value()
		if valueErr != nil {
			return nil, fmt.Errorf("read %s entry: %w", catalog, valueErr)
		}

		entries = append(entries, value)
	}
}

// Get returns an entry, or storage.ErrDataNotFound.
func (s *Store) Get(_ context.Context, catalog, id string) ([]byte, error) {
	store, err := s.open(catalog)
	if err != nil {
		return nil, err
	}

	value, err := store.Get(id)
	if err != nil {
		if errors.Is(err, ariesstorage.ErrDataNotFound) {
			return nil, storage.ErrDataNotFound
		}

		return nil, fmt.Errorf("get %s entry: %w", catalog, err)
	}

	return value, nil
}

// Save writes an entry, replacing any entry with the same id.
func (s *Store) Save(_ context.Context, catalog, id string, value []byte) error {
	store, err := s.open(catalog)
	if err != nil {
		return err
	}

	if err = store.Put(id, value, ariesstorage.Tag{Name: entryTag}); err != nil {
		return fmt.Errorf("put %s entry: %w", catalog, err)
	}

	return nil
}

// Delete removes an entry. Deleting a missing entry is not an error.
func (s *Store) Delete(_ context.Context, catalog, id string) error {
	store, err := s.open(catalog)
	if err != nil {
		return err
	}

	if err = store.Delete(id); err != nil {
		return fmt.Errorf("delete %s entry: %w", catalog, err)
	}

	return nil
}

func (s *Store) open(catalog string) (ariesstorage.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if store, ok := s.stores[catalog]; ok {
		return store, nil
	}

	store, err := s.provider.OpenStore(catalog)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", catalog, err)
	}

	err = s.provider.SetStoreConfig(catalog, ariesstorage.StoreConfiguration{TagNames: []string{entryTag}})
	if err != nil {
		return nil, fmt.Errorf("set store config %s: %w", catalog, err)
	}

	s.stores[catalog] = store

	return store, nil
}
