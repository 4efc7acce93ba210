package store

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/abgdnv/techstore/internal/product/store"

// traced wraps a ProductStore and records a span per call.
type traced struct {
	next    ProductStore
	backend string
	tracer  trace.Tracer
}

// WithTracing returns a ProductStore that records spans using the global tracer provider.
func WithTracing(next ProductStore, backend string) ProductStore {
	return &traced{
		next:    next,
		backend: backend,
		tracer:  otel.Tracer(tracerName),
	}
}

func (s *traced) Load(ctx context.Context) ([]Product, error) {
	ctx, span := s.tracer.Start(ctx, "store.Load", trace.WithAttributes(attribute.String("store.backend", s.backend)))
	defer span.End()

	products, err := s.next.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("store.products", len(products)))
	return products, nil
}

func (s *traced) Save(ctx context.Context, products []Product) error {
	ctx, span := s.tracer.Start(ctx, "store.Save", trace.WithAttributes(
		attribute.String("store.backend", s.backend),
		attribute.Int("store.products", len(products)),
	))
	defer span.End()

	if err := s.next.Save(ctx, products); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s *traced) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}
