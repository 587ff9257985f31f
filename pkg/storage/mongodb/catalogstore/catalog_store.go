/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package catalogstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trustbloc/wallet/pkg/storage"
	"github.com/trustbloc/wallet/pkg/storage/mongodb"
)

const (
	collectionPrefix           = "wallet_"
	mongoDBDocumentIDFieldName = "_id"
	valueFieldName             = "value"
)

type entryDocument struct {
	ID    string `bson:"_id"`
	Value []byte `bson:"value"`
}

// Store keeps every catalog in its own collection, one document per entry.
type Store struct {
	mongoClient *mongodb.Client
}

// New creates Store.
func New(mongoClient *mongodb.Client) *Store {
	return &Store{mongoClient: mongoClient}
}

// List returns every entry of the catalog.
func (s *Store) List(ctx context.Context, catalog string) ([][]byte, error) {
	ctxWithTimeout, cancel := s.mongoClient.ContextWithTimeout(ctx)
	defer cancel()

	cursor, err := s.collection(catalog).Find(ctxWithTimeout, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", catalog, err)
	}

	var docs []entryDocument

	if err = cursor.All(ctxWithTimeout, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", catalog, err)
	}

	entries := make([][]byte, 0, len(docs))

	for _, doc := range docs {
		entries = append(entries, doc.Value)
	}

	return entries, nil
}

// Get returns an entry, or storage.ErrDataNotFound.
func (s *Store) Get(ctx context.Context, catalog, id string) ([]byte, error) {
	ctxWithTimeout, cancel := s.mongoClient.ContextWithTimeout(ctx)
	defer cancel()

	var doc entryDocument

	err := s.collection(catalog).FindOne(ctxWithTimeout, bson.M{mongoDBDocumentIDFieldName: id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrDataNotFound
		}

		return nil, fmt.Errorf("find %s entry: %w", catalog, err)
	}

	return doc.Value, nil
}

// Save writes an entry, replacing any entry with the same id.
func (s *Store) Save(ctx context.Context, catalog, id string, value []byte) error {
	ctxWithTimeout, cancel := s.mongoClient.ContextWithTimeout(ctx)
	defer cancel()

	_, err := s.collection(catalog).UpdateByID(ctxWithTimeout, id,
		bson.M{"$set": bson.M{valueFieldName: value}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save %s entry: %w", catalog, err)
	}

	return nil
}

// Delete removes an entry. Deleting a missing entry is not an error.
func (s *Store) Delete(ctx context.Context, catalog, id string) error {
	ctxWithTimeout, cancel := s.mongoClient.ContextWithTimeout(ctx)
	defer cancel()

	_, err := s.collection(catalog).DeleteOne(ctxWithTimeout, bson.M{mongoDBDocumentIDFieldName: id})
	if err != nil {
		return fmt.Errorf("delete %s entry: %w", catalog, err)
	}

	return nil
}

func (s *Store) collection(catalog string) *mongo.Collection {
	return s.mongoClient.Database().Collection(collectionPrefix + catalog)
}
