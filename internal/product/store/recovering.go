package store

import (
	"context"
	"errors"
	"log/slog"

	perrors "github.com/abgdnv/techstore/internal/product/errors"
)

// recovering wraps a ProductStore and treats a corrupt snapshot as an empty collection.
type recovering struct {
	ProductStore
	logger *slog.Logger
}

// WithSilentRecovery returns a ProductStore whose Load never fails with ErrCorruptStore:
// the corruption is logged and an empty collection is returned instead.
// The next Save overwrites the corrupt snapshot.
func WithSilentRecovery(next ProductStore, logger *slog.Logger) ProductStore {
	return &recovering{
		ProductStore: next,
		logger:       logger.With("component", "store"),
	}
}

// Load delegates to the wrapped store and swallows ErrCorruptStore.
func (s *recovering) Load(ctx context.Context) ([]Product, error) {
	products, err := s.ProductStore.Load(ctx)
	if err != nil {
		if errors.Is(err, perrors.ErrCorruptStore) {
			s.logger.WarnContext(ctx, "Corrupt products snapshot, starting from an empty collection", "error", err)
			return []Product{}, nil
		}
		return nil, err
	}
	return products, nil
}
