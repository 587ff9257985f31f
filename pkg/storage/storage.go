/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package storage

import (
	"context"
	"errors"
)

// ErrDataNotFound is returned when an entry does not exist in its catalog.
var ErrDataNotFound = errors.New("data not found")

// Store keeps catalogs of opaque entries keyed by id. Entries of a catalog are listed in no
// particular order.
type Store interface {
	List(ctx context.Context, catalog string) ([][]byte, error)
	Get(ctx context.Context, catalog, id string) ([]byte, error)
	Save(ctx context.Context, catalog, id string, value []byte) error
	Delete(ctx context.Context, catalog, id string) error
}
