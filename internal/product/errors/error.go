// Package errors provides custom error types for product-related operations.
package errors

import "errors"

// ErrProductNotFound is returned when no product exists with the requested ID.
var ErrProductNotFound = errors.New("product not found")

// ErrCorruptStore is returned when the persisted collection exists but cannot be decoded.
var ErrCorruptStore = errors.New("product store is corrupt")
