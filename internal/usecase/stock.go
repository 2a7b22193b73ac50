package usecase

import (
	"strings"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
)

// ResolveStock maps a free-form stock token to a stock status.
// Only "instock" and "in stock" (any case) count as available.
func ResolveStock(token string) domain.StockStatus {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "instock", "in stock":
		return domain.InStock
	default:
		return domain.OutOfStock
	}
}
