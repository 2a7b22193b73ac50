package feed

import (
	"strings"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
)

// Item is one listing as served by a vendor feed
type Item struct {
	Name     string `json:"name"`
	Link     string `json:"link"`
	Price    string `json:"price"`
	Stock    string `json:"stock"`
	Image    string `json:"image"`
	Category string `json:"category"`
	Vendor   string `json:"vendor,omitempty"`
}

// MapToRawProducts converts feed items to raw products. Items without a
// name and without a link carry nothing to group on and are skipped.
func MapToRawProducts(items []Item) []domain.RawProduct {
	products := make([]domain.RawProduct, 0, len(items))
	for _, item := range items {
		product := MapToRawProduct(item)
		if product.Name == "" && product.Link == "" {
			continue
		}
		products = append(products, product)
	}
	return products
}

// MapToRawProduct converts a single feed item to our domain RawProduct
func MapToRawProduct(item Item) domain.RawProduct {
	return domain.RawProduct{
		Name:     strings.TrimSpace(item.Name),
		Link:     strings.TrimSpace(item.Link),
		Price:    collapseSpaces(item.Price),
		Stock:    strings.TrimSpace(item.Stock),
		Image:    normalizeImageURL(item.Image),
		Category: strings.TrimSpace(item.Category),
		Vendor:   strings.TrimSpace(item.Vendor),
	}
}

// normalizeImageURL turns protocol-relative image URLs ("//cdn...") into https URLs
func normalizeImageURL(image string) string {
	image = strings.TrimSpace(image)
	if strings.HasPrefix(image, "//") {
		return "https:" + image
	}
	return image
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
