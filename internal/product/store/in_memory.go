package store

import (
	"context"
	"slices"
	"sync"
)

// inMemory implements ProductStore by keeping the last saved snapshot in memory.
// Nothing survives a restart.
type inMemory struct {
	mu       sync.RWMutex
	products []Product
}

// NewInMemoryStore creates a new instance of ProductStore seeded with products.
func NewInMemoryStore(products ...Product) ProductStore {
	return &inMemory{
		products: slices.Clone(products),
	}
}

// Load returns a copy of the current snapshot.
func (s *inMemory) Load(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, len(s.products))
	copy(list, s.products)
	return list, nil
}

// Save replaces the snapshot with a copy of products.
func (s *inMemory) Save(_ context.Context, products []Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = slices.Clone(products)
	return nil
}

// Ping always succeeds.
func (s *inMemory) Ping(_ context.Context) error {
	return nil
}
