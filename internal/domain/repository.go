package domain

import (
	"context"
	"time"
)

// ProductSource produces the raw listings of one vendor.
// Implementations may return an error; callers are expected to degrade it to
// an empty result.
type ProductSource interface {
	Name() string
	Fetch(ctx context.Context) ([]RawProduct, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogRepository persists the projected catalog.
// ReplaceCatalog must make the new groups and listings visible together or not at all.
type CatalogRepository interface {
	ReplaceCatalog(ctx context.Context, runID string, projection Projection) error
	LoadCatalog(ctx context.Context) ([]GroupRow, []ListingRow, error)
	Close() error
}
