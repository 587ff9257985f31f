/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package catalogstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	dctest "github.com/ory/dockertest/v3"
	dc "github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/wallet/pkg/storage"
	"github.com/trustbloc/wallet/pkg/storage/mongodb"
	"github.com/trustbloc/wallet/pkg/storage/mongodb/catalogstore"
)

const (
	mongoDBConnString  = "mongodb://localhost:27040"
	dockerMongoDBImage = "mongo"
	dockerMongoDBTag   = "4.0.0"
	catalog            = "credential"
)

func TestStore(t *testing.T) {
	pool, mongoDBResource := startMongoDBContainer(t)
	defer func() {
		require.NoError(t, pool.Purge(mongoDBResource), "failed to purge MongoDB resource")
	}()

	client, err := mongodb.New(mongoDBConnString, "wallet", mongodb.WithTimeout(5*time.Second))
	require.NoError(t, err)

	defer func() {
		require.NoError(t, client.Close())
	}()

	store := catalogstore.New(client)
	ctx := context.Background()

	entries, err := store.List(ctx, catalog)
	require.NoError(t, err)
	require.Empty(t, entries)

	require.NoError(t, store.Save(ctx, catalog, "urn:uuid:1", []byte(`{"id":"urn:uuid:1"}`)))
	require.NoError(t, store.Save(ctx, catalog, "urn:uuid:2", []byte(`{"id":"urn:uuid:2"}`)))
	require.NoError(t, store.Save(ctx, catalog, "urn:uuid:2", []byte(`{"id":"urn:uuid:2","v":2}`)))

	entries, err = store.List(ctx, catalog)
	require.NoError(t, err)
	require.ElementsMatch(t, [][]byte{[]byte(`{"id":"urn:uuid:1"}`), []byte(`{"id":"urn:uuid:2","v":2}`)}, entries)

	value, err := store.Get(ctx, catalog, "urn:uuid:1")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"id":"urn:uuid:1"}`), value)

	require.NoError(t, store.Delete(ctx, catalog, "urn:uuid:1"))
	require.NoError(t, store.Delete(ctx, catalog, "urn:uuid:1"))

	_, err = store.Get(ctx, catalog, "urn:uuid:1")
	require.ErrorIs(t, err, storage.ErrDataNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	_, err = store.List(cancelled, catalog)
	require.ErrorContains(t, err, "find credential")

	require.ErrorContains(t, store.Save(cancelled, catalog, "1", nil), "save credential entry")
	require.ErrorContains(t, store.Delete(cancelled, catalog, "1"), "delete credential entry")

	_, err = store.Get(cancelled, catalog, "1")
	require.ErrorContains(t, err, "find credential entry")
}

func startMongoDBContainer(t *testing.T) (*dctest.Pool, *dctest.Resource) {
	t.Helper()

	pool, err := dctest.NewPool("")
	require.NoError(t, err)

	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker is not available: %v", err)
	}

	mongoDBResource, err := pool.RunWithOptions(&dctest.RunOptions{
		Repository: dockerMongoDBImage,
		Tag:        dockerMongoDBTag,
		PortBindings: map[dc.Port][]dc.PortBinding{
			"27017/tcp": {{HostIP: "", HostPort: "27040"}},
		},
	})
	require.NoError(t, err)

	require.NoError(t, backoff.Retry(func() error {
		client, connErr := mongodb.New(mongoDBConnString, "wallet", mongodb.WithTimeout(3*time.Second))
		if connErr != nil {
			return connErr
		}

		return client.Close()
	}, backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), 30)))

	return pool, mongoDBResource
}
