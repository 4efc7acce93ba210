// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/abgdnv/techstore/internal/platform/messaging"
	perrors "github.com/abgdnv/techstore/internal/product/errors"
	"github.com/abgdnv/techstore/internal/product/events"
	"github.com/abgdnv/techstore/internal/product/store"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*ProductDto, error)

	// FindAll returns all products in stored order.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// Create adds a new product with the next free ID.
	// Returns error if the product cannot be persisted.
	Create(ctx context.Context, product ProductInput) (*ProductDto, error)

	// Update replaces every field of an existing product except its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int64, product ProductInput) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error

	// Ready reports whether the underlying store is reachable.
	Ready(ctx context.Context) error
}

// Service implements ProductService on top of a whole-collection store.
// mu serializes every load-modify-save sequence so that concurrent requests
// handled by this process cannot overwrite each other's changes.
type Service struct {
	mu         sync.Mutex
	repository store.ProductStore
	publisher  messaging.Publisher
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher makes the service publish a change event after every persisted mutation.
// A failed publish is logged and does not fail the request.
func WithPublisher(p messaging.Publisher, logger *slog.Logger) Option {
	return func(s *Service) {
		s.publisher = p
		s.logger = logger.With("component", "service")
	}
}

// NewService creates a new instance of ProductService with the provided repository.
func NewService(repo store.ProductStore, opts ...Option) *Service {
	s := &Service{
		repository: repo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProductInput carries the client-supplied fields of a product.
type ProductInput struct {
	Name     string
	Price    float64
	Quantity int64
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
func (s *Service) FindByID(ctx context.Context, id int64) (*ProductDto, error) {
	products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOf(products, id)
	if idx < 0 {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, perrors.ErrProductNotFound)
	}
	return toDto(&products[idx]), nil
}

// FindAll retrieves all products and returns them as ProductDTOs.
func (s *Service) FindAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	productDTOs := make([]ProductDto, len(products))
	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}
	return productDTOs, nil
}

// Create appends a new product and returns it as a ProductDto.
// The ID is one more than the highest ID currently stored, or 1 for an empty collection,
// so the ID of a deleted product with the highest ID is handed out again.
func (s *Service) Create(ctx context.Context, product ProductInput) (*ProductDto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.repository.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	created := store.Product{
		ID:       nextID(products),
		Name:     product.Name,
		Price:    product.Price,
		Quantity: product.Quantity,
	}
	products = append(products, created)

	if err := s.repository.Save(ctx, products); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.publish(ctx, events.NewProductCreated(toEventProduct(&created)))
	return toDto(&created), nil
}

// Update replaces the product with the given ID and returns the result as a ProductDto.
func (s *Service) Update(ctx context.Context, id int64, product ProductInput) (*ProductDto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.repository.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	idx := indexOf(products, id)
	if idx < 0 {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, perrors.ErrProductNotFound)
	}
	products[idx] = store.Product{
		ID:       id,
		Name:     product.Name,
		Price:    product.Price,
		Quantity: product.Quantity,
	}

	if err := s.repository.Save(ctx, products); err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}
	s.publish(ctx, events.NewProductUpdated(toEventProduct(&products[idx])))
	return toDto(&products[idx]), nil
}

// DeleteByID removes the product with the given ID.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.repository.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}

	idx := indexOf(products, id)
	if idx < 0 {
		return fmt.Errorf("failed to delete product with ID %d: %w", id, perrors.ErrProductNotFound)
	}
	products = slices.Delete(products, idx, idx+1)

	if err := s.repository.Save(ctx, products); err != nil {
		return fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}
	s.publish(ctx, events.NewProductDeleted(id))
	return nil
}

// Ready pings the underlying store.
func (s *Service) Ready(ctx context.Context) error {
	return s.repository.Ping(ctx)
}

// load reads the collection under the lock so readers never interleave with a save.
func (s *Service) load(ctx context.Context) ([]store.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.repository.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

// publish sends event if a publisher is configured. Called with mu held so events keep mutation order.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish product event", "subject", event.Subject(), "error", err)
	}
}

// nextID returns max(existing IDs)+1, or 1 if there are no products.
func nextID(products []store.Product) int64 {
	if len(products) == 0 {
		return 1
	}
	maxID := products[0].ID
	for _, p := range products[1:] {
		maxID = max(maxID, p.ID)
	}
	return maxID + 1
}

// indexOf returns the position of the product with the given ID, or -1.
func indexOf(products []store.Product, id int64) int {
	return slices.IndexFunc(products, func(p store.Product) bool { return p.ID == id })
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		Quantity: product.Quantity,
	}
}

func toEventProduct(product *store.Product) events.Product {
	return events.Product{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		Quantity: product.Quantity,
	}
}
