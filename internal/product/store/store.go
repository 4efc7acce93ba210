// Package store provides whole-collection persistence for products.
package store

import "context"

// ProductStore is an interface for product storage operations.
// Implementations persist the product collection as a single snapshot: every Load reads
// the whole collection and every Save overwrites it.
type ProductStore interface {
	// Load returns the persisted collection in stored order.
	// Returns an empty slice if nothing has been persisted yet, and an error wrapping
	// ErrCorruptStore if the snapshot exists but cannot be decoded.
	Load(ctx context.Context) ([]Product, error)

	// Save replaces the persisted collection with products.
	Save(ctx context.Context, products []Product) error

	// Ping reports whether the backing medium is reachable.
	Ping(ctx context.Context) error
}

// Product represents a product entity in the store.
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}
