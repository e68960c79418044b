package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/elecmate/materials-compare/config"
	httpDelivery "github.com/elecmate/materials-compare/internal/delivery/http"
	"github.com/elecmate/materials-compare/internal/domain"
	"github.com/elecmate/materials-compare/internal/infrastructure/cache"
	"github.com/elecmate/materials-compare/internal/infrastructure/catalog"
	"github.com/elecmate/materials-compare/internal/infrastructure/expansion"
	"github.com/elecmate/materials-compare/internal/infrastructure/logging"
	"github.com/elecmate/materials-compare/internal/infrastructure/metrics"
	"github.com/elecmate/materials-compare/internal/infrastructure/postgres"
	"github.com/elecmate/materials-compare/internal/usecase"
)

const serviceName = "materials-compare"

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// A local .env only matters outside production; real env vars always win.
	if os.Getenv("MATCOMP_SERVER_ENVIRONMENT") != "production" {
		if err := config.LoadEnvFile(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Options{
		ServiceName: serviceName,
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		File:        cfg.Log.File,
	})

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("catalog_provider", cfg.Catalog.Provider).
		Str("expansion_provider", cfg.Expansion.Provider).
		Str("cache_type", cfg.Cache.Type).
		Msg("starting server")

	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			err = multierr.Append(err, c.Close())
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.New(registry)

	searcher, closer, err := buildCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	searchCache, closer, err := buildCache(ctx, cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		closers = append(closers, closer)
	}
	if searchCache != nil {
		searcher = usecase.NewCachedCatalog(searcher, searchCache, cfg.Cache.TTL, logger)
	}

	expander := buildExpander(cfg, logger)

	delivery := usecase.NewDeliveryTable(deliveryOverrides(cfg.Delivery))

	matcher := usecase.NewMatchingService(
		searcher,
		expander,
		delivery,
		usecase.MatchConfig{
			PrimaryLimit:       cfg.Matching.PrimaryLimit,
			AlternateLimit:     cfg.Matching.AlternateLimit,
			MinSuppliers:       cfg.Matching.MinSuppliers,
			MaxAlternates:      cfg.Matching.MaxAlternates,
			EnableDebugLogging: cfg.Matching.EnableDebugLogging,
		},
		logger,
	).WithRecorder(recorder)

	comparison := usecase.NewComparisonService(
		matcher,
		usecase.NewBasketOptimiser(delivery, cfg.Matching.CoverageFloor),
		usecase.ComparisonConfig{
			BatchSize: cfg.Matching.BatchSize,
			MaxItems:  cfg.Matching.MaxItems,
		},
		logger,
	).WithRecorder(recorder)

	handler := httpDelivery.NewHandler(comparison, httpDelivery.HandlerConfig{
		ServiceName:     serviceName,
		Version:         version,
		CatalogProvider: cfg.Catalog.Provider,
		RequestTimeout:  cfg.Server.RequestTimeout,
	})

	router := httpDelivery.SetupRouter(cfg, handler, httpDelivery.RouterOptions{
		Logger:   logger,
		Recorder: recorder,
		Gatherer: registry,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Leave room for the comparison timeout plus response encoding
		WriteTimeout: cfg.Server.RequestTimeout + 10*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

// buildCatalog selects the catalog provider named in the configuration
func buildCatalog(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (domain.CatalogSearcher, io.Closer, error) {
	switch cfg.Catalog.Provider {
	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.Catalog.DSN, cfg.Catalog.MaxConns)
		if err != nil {
			return nil, nil, fmt.Errorf("connect catalog database: %w", err)
		}
		if cfg.Catalog.EnsureSchema {
			if err := postgres.EnsureSchema(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("ensure catalog schema: %w", err)
			}
		}
		logger.Info().Int32("max_conns", cfg.Catalog.MaxConns).Msg("postgres catalog connected")
		return postgres.NewCatalogRepository(pool), closerFunc(func() error {
			pool.Close()
			return nil
		}), nil
	default:
		client := catalog.NewClient(catalog.Config{
			BaseURL:       cfg.Catalog.BaseURL,
			APIKey:        cfg.Catalog.APIKey,
			RatePerSecond: cfg.Catalog.RatePerSecond,
			Burst:         cfg.Catalog.Burst,
			Timeout:       cfg.Catalog.Timeout,
			MaxAttempts:   cfg.Catalog.MaxAttempts,
		}, logger)
		logger.Info().Str("base_url", cfg.Catalog.BaseURL).Msg("http catalog configured")
		return client, nil, nil
	}
}

// buildCache returns nil when search caching is disabled
func buildCache(ctx context.Context, cfg *config.Config) (domain.CacheRepository, io.Closer, error) {
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return redisCache, redisCache, nil
	case "memory":
		memoryCache := cache.NewMemoryCache(0)
		return memoryCache, memoryCache, nil
	default:
		return nil, nil, nil
	}
}

// buildExpander returns nil when alternate phrasings are disabled
func buildExpander(cfg *config.Config, logger zerolog.Logger) domain.TermExpander {
	switch cfg.Expansion.Provider {
	case "gemini":
		return expansion.NewGeminiExpander(expansion.GeminiConfig{
			APIKey:  cfg.Expansion.Gemini.APIKey,
			Model:   cfg.Expansion.Gemini.Model,
			BaseURL: cfg.Expansion.Gemini.BaseURL,
			Timeout: cfg.Expansion.Gemini.Timeout,
		}, logger)
	case "synonyms":
		return expansion.NewSynonymExpander()
	default:
		return nil
	}
}

func deliveryOverrides(entries map[string]config.DeliveryConfig) map[string]domain.DeliveryTiers {
	if len(entries) == 0 {
		return nil
	}
	overrides := make(map[string]domain.DeliveryTiers, len(entries))
	for slug, d := range entries {
		overrides[slug] = domain.DeliveryTiers{
			ClickCollect: d.ClickCollect,
			Standard:     d.Standard,
			NextDay:      d.NextDay,
		}
	}
	return overrides
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
