package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	perrors "github.com/abgdnv/techstore/internal/product/errors"
	"github.com/sony/gobreaker/v2"
)

// BreakerSettings configures the circuit breaker guarding a remote backend.
type BreakerSettings struct {
	// ConsecutiveFailures trips the breaker once exceeded.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before letting a probe through.
	OpenTimeout time.Duration
}

// breaking wraps a ProductStore with a circuit breaker.
type breaking struct {
	next ProductStore
	cb   *gobreaker.CircuitBreaker[[]Product]
}

// WithCircuitBreaker returns a ProductStore whose Load and Save fail fast while the breaker is open.
// Corrupt snapshots and cancelled requests do not count as backend failures. Ping bypasses the breaker.
func WithCircuitBreaker(next ProductStore, name string, settings BreakerSettings) ProductStore {
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > settings.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, perrors.ErrCorruptStore) ||
				errors.Is(err, context.Canceled)
		},
	}
	return &breaking{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[[]Product](st),
	}
}

func (s *breaking) Load(ctx context.Context) ([]Product, error) {
	products, err := s.cb.Execute(func() ([]Product, error) {
		return s.next.Load(ctx)
	})
	if err != nil {
		return nil, s.wrap(err)
	}
	return products, nil
}

func (s *breaking) Save(ctx context.Context, products []Product) error {
	_, err := s.cb.Execute(func() ([]Product, error) {
		return nil, s.next.Save(ctx, products)
	})
	return s.wrap(err)
}

func (s *breaking) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *breaking) wrap(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("store %s unavailable: %w", s.cb.Name(), err)
	}
	return err
}
