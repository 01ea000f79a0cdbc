package store

import (
	"context"
	"fmt"

	driver "github.com/arangodb/go-driver/v2/arangodb"

	"github.com/wayfarerhq/wayfarer/common/arangodb"
)

// Stores provides typed accessors over the underlying ArangoDB client.
type Stores struct {
	client     arangodb.Client
	collection string

	col driver.Collection
}

func NewStores(client arangodb.Client, collection string) *Stores {
	return &Stores{client: client, collection: collection}
}

// EnsureSchema creates the database, the jobs collection, and its indexes
// if they do not exist, and caches the collection handle. It must run
// before any store returned by Jobs() is used.
func (s *Stores) EnsureSchema(ctx context.Context) error {
	if err := s.client.EnsureDatabase(ctx); err != nil {
		return fmt.Errorf("ensure database: %w", err)
	}
	if err := s.client.EnsureCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}

	col, err := s.client.Collection(ctx, s.collection)
	if err != nil {
		return err
	}
	s.col = col

	for _, fields := range [][]string{{"createdAt"}, {"status"}, {"destination"}} {
		if _, _, err := col.EnsurePersistentIndex(ctx, fields, nil); err != nil {
			return fmt.Errorf("ensure index on %v: %w", fields, err)
		}
	}

	return nil
}

// Ping reports whether the document store is reachable.
func (s *Stores) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *Stores) Jobs() JobStore {
	return newJobStore(s)
}

func (s *Stores) handle() (driver.Collection, error) {
	if s.col == nil {
		return nil, fmt.Errorf("store schema not initialized, call EnsureSchema first")
	}
	return s.col, nil
}
