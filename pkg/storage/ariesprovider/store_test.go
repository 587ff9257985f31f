/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ariesprovider_test

import (
	"context"
	"errors"
	"testing"

	ariesmemstorage "github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	storagemock "github.com/hyperledger/aries-framework-go/component/storageutil/mock"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/wallet/pkg/storage"
	"github.com/trustbloc/wallet/pkg/storage/ariesprovider"
)

const catalog = "credential"

func TestStore(t *testing.T) {
	provider := ariesmemstorage.NewProvider()

	store := ariesprovider.New(provider)
	require.Equal(t, provider, store.GetAriesProvider())

	ctx := context.Background()

	entries, err := store.List(ctx, catalog)
	require.NoError(t, err)
	require.Empty(t, entries)

	require.NoError(t, store.Save(ctx, catalog, "urn:uuid:1", []byte(`{"id":"urn:uuid:1"}`)))
	require.NoError(t, store.Save(ctx, catalog, "urn:uuid:2", []byte(`{"id":"urn:uuid:2"}`)))
	require.NoError(t, store.Save(ctx, "keys", "credential:signing", []byte("seed")))

	entries, err = store.List(ctx, catalog)
	require.NoError(t, err)
	require.ElementsMatch(t, [][]byte{[]byte(`{"id":"urn:uuid:1"}`), []byte(`{"id":"urn:uuid:2"}`)}, entries)

	value, err := store.Get(ctx, catalog, "urn:uuid:2")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"id":"urn:uuid:2"}`), value)

	require.NoError(t, store.Delete(ctx, catalog, "urn:uuid:2"))

	_, err = store.Get(ctx, catalog, "urn:uuid:2")
	require.ErrorIs(t, err, storage.ErrDataNotFound)

	entries, err = store.List(ctx, catalog)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("open store", func(t *testing.T) {
		store := ariesprovider.New(&storagemock.Provider{ErrOpenStore: errors.New("open failed")})

		_, err := store.List(ctx, catalog)
		require.ErrorContains(t, err, "open store credential: open failed")

		_, err = store.Get(ctx, catalog, "1")
		require.ErrorContains(t, err, "open failed")

		require.ErrorContains(t, store.Save(ctx, catalog, "1", nil), "open failed")
		require.ErrorContains(t, store.Delete(ctx, catalog, "1"), "open failed")
	})

	t.Run("store config", func(t *testing.T) {
		store := ariesprovider.New(&storagemock.Provider{
			OpenStoreReturn:   &storagemock.Store{},
			ErrSetStoreConfig: errors.New("config failed"),
		})

		_, err := store.List(ctx, catalog)
		require.ErrorContains(t, err, "set store config credential: config failed")
	})

	t.Run("store operations", func(t *testing.T) {
		store := ariesprovider.New(&storagemock.Provider{OpenStoreReturn: &storagemock.Store{
			ErrPut:    errors.New("put failed"),
			ErrGet:    errors.New("get failed"),
			ErrDelete: errors.New("delete failed"),
			ErrQuery:  errors.New("query failed"),
		}})

		require.ErrorContains(t, store.Save(ctx, catalog, "1", nil), "put credential entry: put failed")
		require.ErrorContains(t, store.Delete(ctx, catalog, "1"), "delete credential entry: delete failed")

		_, err := store.Get(ctx, catalog, "1")
		require.ErrorContains(t, err, "get credential entry: get failed")

		_, err = store.List(ctx, catalog)
		require.ErrorContains(t, err, "query credential: query failed")
	})

	t.Run("iterator", func(t *testing.T) {
		store := ariesprovider.New(&storagemock.Provider{OpenStoreReturn: &storagemock.Store{
			QueryReturn: &storagemock.Iterator{ErrNext: errors.New("next failed")},
		}})

		_, err := store.List(ctx, catalog)
		require.ErrorContains(t, err, "iterate credential: next failed")
	})
}
