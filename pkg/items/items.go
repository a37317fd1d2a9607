// Package items defines the demo items store: a single-table row-insert
// round trip backed by the managed Postgres database, with an in-memory
// driver for development and tests.
package items

import (
	"context"
	"time"
)

// Item is one row of the demo_items table.
type Item struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists demo items.
type Store interface {
	// Insert stores a new item with the given name and returns the
	// inserted row.
	Insert(ctx context.Context, name string) (*Item, error)

	// Close releases any resources held by the store.
	Close() error
}
