package usecase

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samalsubrat/mk-price-tracker/internal/domain"
	logx "github.com/samalsubrat/mk-price-tracker/pkg/logger"
)

// Aggregator groups raw listings from every vendor into product groups.
// It holds no per-run state, so one instance can serve concurrent runs.
type Aggregator struct {
	canonicalizer *Canonicalizer
	vendors       *VendorResolver
	logger        zerolog.Logger
}

// NewAggregator creates an aggregator from its pure collaborators
func NewAggregator(canonicalizer *Canonicalizer, vendors *VendorResolver) *Aggregator {
	return &Aggregator{
		canonicalizer: canonicalizer,
		vendors:       vendors,
		logger:        logx.Component("aggregate"),
	}
}

// memberEntry caches the per-listing values used while grouping
type memberEntry struct {
	product   domain.RawProduct
	canonical domain.Canonical
	stock     domain.StockStatus
	price     domain.Price
	nameLower string
}

// Aggregate groups products by canonical key and computes group aggregates.
// The result depends only on the multiset of input products, never on their order:
//   - members are ordered in-stock first, then by name (case-insensitive)
//   - groups are ordered by display name (case-insensitive)
//
// The input slice is not modified.
func (a *Aggregator) Aggregate(products []domain.RawProduct) []domain.ProductGroup {
	buckets := make(map[string][]memberEntry)

	for _, product := range products {
		// Step 1: Attribute vendor before grouping
		if product.Vendor == "" {
			product.Vendor = a.vendors.ResolveVendor(product.Link)
		}

		// Step 2: Bucket by canonical key
		canonical := a.canonicalizer.Canonicalize(product.Name)
		buckets[canonical.Key] = append(buckets[canonical.Key], memberEntry{
			product:   product,
			canonical: canonical,
			stock:     ResolveStock(product.Stock),
			price:     ParsePrice(product.Price),
			nameLower: strings.ToLower(product.Name),
		})
	}

	// Step 3: Compute per-group aggregates
	groups := make([]domain.ProductGroup, 0, len(buckets))
	for key, entries := range buckets {
		groups = append(groups, buildGroup(key, entries))
	}

	// Step 4: Order groups by display name
	sort.Slice(groups, func(i, j int) bool {
		return lessGroup(groups[i], groups[j])
	})

	a.logger.Debug().
		Int("products", len(products)).
		Int("groups", len(groups)).
		Msg("aggregation complete")

	return groups
}

// buildGroup computes the aggregates of one bucket
func buildGroup(key string, entries []memberEntry) domain.ProductGroup {
	sort.Slice(entries, func(i, j int) bool {
		return lessMember(entries[i], entries[j])
	})

	group := domain.ProductGroup{
		Key:           key,
		CheapestPrice: UnknownPrice,
		Stock:         domain.OutOfStock,
		Members:       make([]domain.RawProduct, 0, len(entries)),
	}

	var cheapest *memberEntry
	for i := range entries {
		entry := &entries[i]
		group.Members = append(group.Members, entry.product)

		// Stock is an OR over members
		if entry.stock == domain.InStock {
			group.Stock = domain.InStock
		}

		// Strict comparison keeps the first member in sorted order on ties
		if cheapest == nil || entry.price < cheapest.price {
			cheapest = entry
		}

		if group.DisplayName == "" || lessDisplayName(entry.canonical.DisplayName, group.DisplayName) {
			group.DisplayName = entry.canonical.DisplayName
		}
	}

	if cheapest != nil {
		group.CheapestPrice = cheapest.price
		group.Category = cheapest.product.Category
		if cheapest.price.IsKnown() {
			group.Price = cheapest.product.Price
		}
	}

	return group
}

// lessMember orders in-stock listings first, then by case-insensitive name.
// The remaining keys only break exact ties so the order is total.
func lessMember(a, b memberEntry) bool {
	if a.stock != b.stock {
		return a.stock == domain.InStock
	}
	if a.nameLower != b.nameLower {
		return a.nameLower < b.nameLower
	}
	if a.product.Name != b.product.Name {
		return a.product.Name < b.product.Name
	}
	if a.product.Link != b.product.Link {
		return a.product.Link < b.product.Link
	}
	if a.product.Price != b.product.Price {
		return a.product.Price < b.product.Price
	}
	if a.product.Stock != b.product.Stock {
		return a.product.Stock < b.product.Stock
	}
	if a.product.Category != b.product.Category {
		return a.product.Category < b.product.Category
	}
	if a.product.Image != b.product.Image {
		return a.product.Image < b.product.Image
	}
	return a.product.Vendor < b.product.Vendor
}

func lessGroup(a, b domain.ProductGroup) bool {
	if lessDisplayName(a.DisplayName, b.DisplayName) {
		return true
	}
	if lessDisplayName(b.DisplayName, a.DisplayName) {
		return false
	}
	return a.Key < b.Key
}

// lessDisplayName compares case-insensitively, falling back to the exact text
func lessDisplayName(a, b string) bool {
	al, bl := strings.ToLower(a), strings.ToLower(b)
	if al != bl {
		return al < bl
	}
	return a < b
}
