package app

import (
	"context"
	"fmt"
	"io"

	"github.com/samalsubrat/mk-price-tracker/config"
	"github.com/samalsubrat/mk-price-tracker/internal/domain"
	"github.com/samalsubrat/mk-price-tracker/internal/infrastructure/cache"
	"github.com/samalsubrat/mk-price-tracker/internal/infrastructure/feed"
	"github.com/samalsubrat/mk-price-tracker/internal/infrastructure/metrics"
	"github.com/samalsubrat/mk-price-tracker/internal/infrastructure/storage"
	"github.com/samalsubrat/mk-price-tracker/internal/usecase"
	logx "github.com/samalsubrat/mk-price-tracker/pkg/logger"
)

// App is the wired dependency graph shared by the server and the CLI
type App struct {
	Config        *config.Config
	Store         *storage.SQLiteStore
	Cache         domain.CacheRepository
	Metrics       *metrics.Collector
	Canonicalizer *usecase.Canonicalizer
	Catalog       *usecase.CatalogService
	Similarity    *usecase.SimilarityService

	closers []func() error
}

// New opens storage and cache and builds the usecase layer from cfg
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}
	debug := cfg.Server.Environment == logx.Development

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.addCloser(store.Close)

	cacheRepo, err := newCache(ctx, cfg.Cache)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Cache = cacheRepo
	if closer, ok := cacheRepo.(io.Closer); ok {
		a.addCloser(closer.Close)
	}

	canonicalizer, err := usecase.NewCanonicalizer(cfg.Catalog.NoiseTable(), debug)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("invalid noise token table: %w", err)
	}
	a.Canonicalizer = canonicalizer

	a.Metrics = metrics.NewCollector("mkprice")
	aggregator := usecase.NewAggregator(canonicalizer, usecase.NewVendorResolver(cfg.Catalog.VendorTable()))
	a.Catalog = usecase.NewCatalogService(
		NewSources(cfg),
		aggregator,
		store,
		cacheRepo,
		a.Metrics,
		usecase.CatalogServiceConfig{
			CacheTTL:       cfg.Cache.TTL,
			SourceTimeout:  cfg.Feeds.SourceTimeout,
			RefreshTimeout: cfg.Feeds.RefreshTimeout,
		},
	)

	a.Similarity = usecase.NewSimilarityService(usecase.SimilarityConfig{
		MinSimilarity:      cfg.Similarity.Threshold,
		MaxLengthDelta:     cfg.Similarity.MaxLengthDelta,
		EnableDebugLogging: debug,
	})

	return a, nil
}

// Close releases storage and cache resources in reverse order
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func (a *App) addCloser(fn func() error) {
	a.closers = append(a.closers, fn)
}

// newCache builds the configured cache backend
func newCache(ctx context.Context, cfg config.CacheConfig) (domain.CacheRepository, error) {
	switch cfg.Type {
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			URL:       cfg.RedisURL,
			KeyPrefix: "mkprice:",
		})
	default:
		return cache.NewMemoryCache(), nil
	}
}

// NewSources creates one feed client per configured vendor
func NewSources(cfg *config.Config) []domain.ProductSource {
	endpoints := make([]feed.Endpoint, 0, len(cfg.Feeds.Sources))
	for _, source := range cfg.Feeds.Sources {
		endpoints = append(endpoints, feed.Endpoint{Name: source.Name, Path: source.Path})
	}

	return feed.NewSources(cfg.Feeds.BaseURL, endpoints, feed.Options{
		Timeout:           cfg.Feeds.Timeout,
		RequestsPerSecond: cfg.Feeds.RequestsPerSecond,
		Burst:             cfg.Feeds.Burst,
		MaxRetries:        cfg.Feeds.MaxRetries,
		Debug:             cfg.Server.Environment == logx.Development,
		Breaker: feed.BreakerSettings{
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: cfg.Breaker.FailureThreshold,
			MinRequests:      cfg.Breaker.MinRequests,
		},
	})
}
