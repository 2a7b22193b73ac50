package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
	logx "github.com/samalsubrat/mk-price-tracker/pkg/logger"
)

// snapshotCacheKey holds the JSON-encoded grouped catalog
const snapshotCacheKey = "catalog:groups"

// Refresh outcome labels reported to metrics
const (
	refreshStatusSuccess = "success"
	refreshStatusFailure = "failure"
)

// MetricsRecorder receives pipeline measurements
type MetricsRecorder interface {
	ObserveRefresh(status string, duration time.Duration)
	ObserveSource(report domain.SourceReport)
	SetCatalogSize(groups, listings int)
	AddDuplicatesDropped(n int)
}

type noopMetrics struct{}

func (noopMetrics) ObserveRefresh(string, time.Duration) {}
func (noopMetrics) ObserveSource(domain.SourceReport)    {}
func (noopMetrics) SetCatalogSize(int, int)              {}
func (noopMetrics) AddDuplicatesDropped(int)             {}

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	CacheTTL       time.Duration
	SourceTimeout  time.Duration
	RefreshTimeout time.Duration // bounds a whole run, independent of the caller
}

// CatalogService runs the aggregation pipeline and serves the grouped catalog
type CatalogService struct {
	sources        []domain.ProductSource
	collector      *Collector
	aggregator     *Aggregator
	store          domain.CatalogRepository
	cache          domain.CacheRepository
	metrics        MetricsRecorder
	cacheTTL       time.Duration
	refreshTimeout time.Duration
	refreshes      singleflight.Group
	logger         zerolog.Logger
}

// NewCatalogService creates a new catalog service with dependencies.
// metrics may be nil.
func NewCatalogService(
	sources []domain.ProductSource,
	aggregator *Aggregator,
	store domain.CatalogRepository,
	cache domain.CacheRepository,
	metrics MetricsRecorder,
	config CatalogServiceConfig,
) *CatalogService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour // Default 1 day
	}

	refreshTimeout := config.RefreshTimeout
	if refreshTimeout == 0 {
		refreshTimeout = 5 * time.Minute
	}

	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &CatalogService{
		sources:        sources,
		collector:      NewCollector(config.SourceTimeout),
		aggregator:     aggregator,
		store:          store,
		cache:          cache,
		metrics:        metrics,
		cacheTTL:       cacheTTL,
		refreshTimeout: refreshTimeout,
		logger:         logx.Component("catalog"),
	}
}

// Refresh collects every source, aggregates, persists and caches the catalog.
// Source failures degrade to empty results; only persistence errors are
// returned, wrapping domain.ErrGroupTableWrite or domain.ErrListingTableWrite.
// Concurrent calls share a single run. The run is detached from the
// caller's cancellation and bounded by the configured refresh timeout.
func (s *CatalogService) Refresh(ctx context.Context) (*domain.RefreshResult, error) {
	v, err, shared := s.refreshes.Do("refresh", func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refreshTimeout)
		defer cancel()
		return s.refresh(runCtx)
	})
	if shared {
		s.logger.Debug().Msg("joined in-flight refresh")
	}

	result, _ := v.(*domain.RefreshResult)
	return result, err
}

func (s *CatalogService) refresh(ctx context.Context) (*domain.RefreshResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := s.logger.With().Str("run", runID).Logger()

	// Step 1: Collect raw listings from every vendor
	products, reports := s.collector.Collect(ctx, s.sources)
	for _, report := range reports {
		s.metrics.ObserveSource(report)
	}

	// Step 2: Group and aggregate
	groups := s.aggregator.Aggregate(products)

	// Step 3: Flatten for persistence
	projection := Project(groups)

	result := &domain.RefreshResult{
		RunID:             runID,
		GroupsInserted:    len(projection.Groups),
		ProductsInserted:  len(projection.Listings),
		DuplicatesDropped: projection.DuplicatesDropped,
		Sources:           reports,
	}

	// Step 4: Replace the persisted catalog as a unit
	if err := s.store.ReplaceCatalog(ctx, runID, projection); err != nil {
		s.metrics.ObserveRefresh(refreshStatusFailure, time.Since(start))
		logger.Error().Err(err).Msg("persisting catalog failed")
		return result, fmt.Errorf("refresh %s: %w", runID, err)
	}

	// Step 5: Publish what was persisted, so cache hits and store rebuilds agree
	if err := s.setSnapshot(ctx, RebuildGroups(projection.Groups, projection.Listings)); err != nil {
		// Readers fall back to the store on a cache miss
		logger.Warn().Err(err).Msg("caching catalog snapshot failed")
	}

	s.metrics.AddDuplicatesDropped(projection.DuplicatesDropped)
	s.metrics.SetCatalogSize(len(projection.Groups), len(projection.Listings))
	s.metrics.ObserveRefresh(refreshStatusSuccess, time.Since(start))

	logger.Info().
		Int("products", len(products)).
		Int("groups", result.GroupsInserted).
		Int("listings", result.ProductsInserted).
		Int("duplicates", result.DuplicatesDropped).
		Dur("took", time.Since(start)).
		Msg("catalog refreshed")

	return result, nil
}

// ListGroups returns the grouped catalog, narrowed by the filter.
// An empty catalog is a normal result, not an error.
func (s *CatalogService) ListGroups(ctx context.Context, filter domain.GroupFilter) ([]domain.ProductGroup, error) {
	groups, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return FilterGroups(groups, filter), nil
}

// GetGroup returns the group whose display name matches name (case-insensitive)
func (s *CatalogService) GetGroup(ctx context.Context, name string) (*domain.ProductGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidRequest
	}

	groups, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	for i := range groups {
		if strings.EqualFold(groups[i].DisplayName, name) {
			group := groups[i]
			return &group, nil
		}
	}

	return nil, domain.ErrGroupNotFound
}

// Groups returns the full grouped catalog without filtering
func (s *CatalogService) Groups(ctx context.Context) ([]domain.ProductGroup, error) {
	return s.snapshot(ctx)
}

// snapshot reads the grouped catalog from cache, rebuilding it from the store on a miss
func (s *CatalogService) snapshot(ctx context.Context) ([]domain.ProductGroup, error) {
	// Try cache first
	if groups, err := s.getSnapshot(ctx); err == nil {
		return groups, nil
	}

	// Cache miss - rebuild from the persisted rows
	groupRows, listingRows, err := s.store.LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	groups := RebuildGroups(groupRows, listingRows)

	if err := s.setSnapshot(ctx, groups); err != nil {
		s.logger.Warn().Err(err).Msg("caching rebuilt snapshot failed")
	}

	return groups, nil
}

func (s *CatalogService) getSnapshot(ctx context.Context) ([]domain.ProductGroup, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := s.cache.Get(ctx, snapshotCacheKey)
	if err != nil {
		return nil, err
	}

	var groups []domain.ProductGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("%w: decode snapshot: %v", domain.ErrCacheMiss, err)
	}

	return groups, nil
}

func (s *CatalogService) setSnapshot(ctx context.Context, groups []domain.ProductGroup) error {
	if s.cache == nil {
		return nil
	}

	if groups == nil {
		groups = []domain.ProductGroup{}
	}

	data, err := json.Marshal(groups)
	if err != nil {
		return err
	}

	return s.cache.Set(ctx, snapshotCacheKey, data, s.cacheTTL)
}

// RebuildGroups turns persisted rows back into product groups. Rows are
// expected in catalog order; listings are placed by their stored position.
func RebuildGroups(groupRows []domain.GroupRow, listingRows []domain.ListingRow) []domain.ProductGroup {
	members := make(map[string][]domain.ListingRow, len(groupRows))
	for _, listing := range listingRows {
		members[listing.GroupKey] = append(members[listing.GroupKey], listing)
	}

	groups := make([]domain.ProductGroup, 0, len(groupRows))
	for _, row := range groupRows {
		group := domain.ProductGroup{
			Key:           row.GroupKey,
			DisplayName:   row.BaseName,
			Price:         row.Price,
			CheapestPrice: ParsePrice(row.Price),
			Stock:         row.Stock,
			Category:      row.Category,
			Members:       []domain.RawProduct{},
		}

		listings := members[row.GroupKey]
		sortListingsByPosition(listings)
		for _, listing := range listings {
			group.Members = append(group.Members, domain.RawProduct{
				Name:     listing.Name,
				Link:     listing.Link,
				Price:    listing.Price,
				Stock:    listing.Stock,
				Image:    listing.Image,
				Category: listing.Category,
				Vendor:   listing.Vendor,
			})
		}

		groups = append(groups, group)
	}

	return groups
}

func sortListingsByPosition(listings []domain.ListingRow) {
	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].Position < listings[j].Position
	})
}

// FilterGroups keeps groups whose category contains any of the filter
// categories and whose display name contains the query, both case-insensitive.
func FilterGroups(groups []domain.ProductGroup, filter domain.GroupFilter) []domain.ProductGroup {
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	var categories []string
	for _, c := range filter.Categories {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			categories = append(categories, c)
		}
	}

	result := make([]domain.ProductGroup, 0, len(groups))
	for _, group := range groups {
		if query != "" && !strings.Contains(strings.ToLower(group.DisplayName), query) {
			continue
		}
		if len(categories) > 0 && !containsAny(strings.ToLower(group.Category), categories) {
			continue
		}
		result = append(result, group)
	}

	return result
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
