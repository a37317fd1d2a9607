// Package inmemory provides an in-memory items store for development and
// tests.
package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/checkeredai/flexpolicy/pkg/items"
)

// Store implements items.Store in process memory.
type Store struct {
	mu   sync.Mutex
	rows []items.Item
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Insert(_ context.Context, name string) (*items.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := items.Item{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	s.rows = append(s.rows, row)

	return &row, nil
}

// Items returns a copy of every inserted row, in insertion order.
func (s *Store) Items() []items.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]items.Item, len(s.rows))
	copy(out, s.rows)
	return out
}

func (s *Store) Close() error {
	return nil
}
