package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	perrors "github.com/abgdnv/techstore/internal/product/errors"
	"github.com/go-playground/validator/v10"
)

// snapshotRecord mirrors Product with pointer fields so that missing keys can be told apart from zero values.
type snapshotRecord struct {
	ID       *int64   `json:"id" validate:"required"`
	Name     *string  `json:"name" validate:"required"`
	Price    *float64 `json:"price" validate:"required"`
	Quantity *int64   `json:"quantity" validate:"required"`
}

var recordValidator = validator.New()

// decodeSnapshot decodes a persisted collection. Any content that is not a JSON array of
// complete product objects is reported as ErrCorruptStore.
func decodeSnapshot(data []byte) ([]Product, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: empty snapshot", perrors.ErrCorruptStore)
	}

	var records []snapshotRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", perrors.ErrCorruptStore, err)
	}

	products := make([]Product, 0, len(records))
	for i, rec := range records {
		if err := recordValidator.Struct(rec); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", perrors.ErrCorruptStore, i, err)
		}
		products = append(products, Product{
			ID:       *rec.ID,
			Name:     *rec.Name,
			Price:    *rec.Price,
			Quantity: *rec.Quantity,
		})
	}
	return products, nil
}

// encodeSnapshot renders the collection as a JSON array indented with two spaces.
func encodeSnapshot(products []Product) ([]byte, error) {
	if products == nil {
		products = []Product{}
	}
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode products: %w", err)
	}
	return data, nil
}
