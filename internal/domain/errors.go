package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrGroupNotFound is returned when no product group has the requested name
	ErrGroupNotFound = errors.New("product group not found")

	// ErrSourceFailure is returned when a product source cannot be fetched or decoded
	ErrSourceFailure = errors.New("product source request failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrGroupTableWrite is returned when writing the product_groups table fails
	ErrGroupTableWrite = errors.New("writing product groups failed")

	// ErrListingTableWrite is returned when writing the products table fails
	ErrListingTableWrite = errors.New("writing product listings failed")

	// ErrStorageUnavailable is returned when the catalog store cannot be read or opened
	ErrStorageUnavailable = errors.New("catalog storage unavailable")
)
