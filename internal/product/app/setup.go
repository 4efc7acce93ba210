// Package app contains the application setup for the product service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/techstore/internal/config"
	"github.com/abgdnv/techstore/internal/platform/bootstrap"
	"github.com/abgdnv/techstore/internal/platform/messaging"
	pnats "github.com/abgdnv/techstore/internal/platform/nats"
	"github.com/abgdnv/techstore/internal/platform/server"
	"github.com/abgdnv/techstore/internal/platform/web"
	"github.com/abgdnv/techstore/internal/product/events"
	"github.com/abgdnv/techstore/internal/product/service"
	"github.com/abgdnv/techstore/internal/product/store"
	"github.com/abgdnv/techstore/internal/product/transport/rest"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

const serviceName = "product"

type Dependencies struct {
	ProductService service.ProductService
	Logger         *slog.Logger
	// Metrics and Registry are nil when metrics are disabled.
	Metrics     *web.Metrics
	Registry    *prometheus.Registry
	MetricsPath string
	Health      *health.Server
}

// SetupDependencies wires the service on top of productStore.
func SetupDependencies(productStore store.ProductStore, logger *slog.Logger, metricsCfg config.MetricsConfig, opts ...service.Option) *Dependencies {
	deps := &Dependencies{
		ProductService: service.NewService(productStore, opts...),
		Logger:         logger,
		Health:         health.NewServer(),
	}
	if metricsCfg.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		deps.Registry = reg
		deps.Metrics = web.NewMetrics(reg)
		deps.MetricsPath = metricsCfg.Path
	}
	return deps
}

// NewStore opens the backend selected by cfg.Driver and applies the strictness and tracing decorators.
// The returned cleanup func releases the backend's connections and is never nil.
func NewStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (store.ProductStore, func(), error) {
	var (
		backend store.ProductStore
		cleanup = func() {}
	)

	switch cfg.Driver {
	case config.DriverFile:
		backend = store.NewJSONFileStore(cfg.File.Path)
	case config.DriverMemory:
		backend = store.NewInMemoryStore()
	case config.DriverPostgres:
		if cfg.Database.Migrate {
			if err := store.Migrate(cfg.Database.URL); err != nil {
				return nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
			}
			logger.Info("Database migrations applied")
		}
		dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return nil, nil, err
		}
		backend = store.NewPgStore(dbPool)
		cleanup = dbPool.Close
	case config.DriverRedis:
		client, err := bootstrap.NewRedisClient(ctx, cfg.Redis.URL, cfg.Redis.Timeout)
		if err != nil {
			return nil, nil, err
		}
		backend = store.NewRedisStore(client, cfg.Redis.Key)
		cleanup = func() { _ = client.Close() }
	default:
		return nil, nil, fmt.Errorf("unknown store driver: %q", cfg.Driver)
	}

	remote := cfg.Driver == config.DriverPostgres || cfg.Driver == config.DriverRedis
	if remote && cfg.Breaker.Enabled {
		backend = store.WithCircuitBreaker(backend, cfg.Driver, store.BreakerSettings{
			ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
			OpenTimeout:         cfg.Breaker.OpenTimeout,
		})
	}
	if !cfg.Strict {
		backend = store.WithSilentRecovery(backend, logger)
	}
	return store.WithTracing(backend, cfg.Driver), cleanup, nil
}

// NewPublisher connects to NATS, ensures the product stream exists and returns a JetStream publisher.
// It returns a nil publisher when events are disabled. The returned cleanup func is never nil.
func NewPublisher(ctx context.Context, cfg config.EventsConfig) (messaging.Publisher, func(), error) {
	if !cfg.Enabled {
		return nil, func() {}, nil
	}
	nc, err := pnats.NewClient(cfg.Nats.Url, cfg.Nats.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := pnats.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	if err := pnats.EnsureStream(ctx, js, events.StreamName, events.StreamSubjects); err != nil {
		nc.Close()
		return nil, nil, err
	}
	return pnats.NewNatsPublisher(js), nc.Close, nil
}

// SetupHttpHandler initializes the HTTP routes and middleware of the product service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	var extra []func(http.Handler) http.Handler
	if deps.Metrics != nil {
		extra = append(extra, deps.Metrics.Middleware(serviceName))
	}
	mux := server.NewChiRouter(deps.Logger, extra...)
	wireRoutes(mux, deps)
	return otelhttp.NewHandler(mux, "product.http")
}

// wireRoutes sets up the HTTP routes for the product service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)

	if deps.Registry != nil {
		mux.Handle(deps.MetricsPath, promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}
}

// SetupHttpServer creates and configures an HTTP server for the product service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}

// SetupGrpcServer initializes the gRPC server exposing the standard health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, server.HealthRegistration(deps.Health))
}
