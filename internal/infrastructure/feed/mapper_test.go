package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
)

func TestMapToRawProduct(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want domain.RawProduct
	}{
		{
			name: "trims every field",
			item: Item{
				Name:     " Keychron Q1 Pro ",
				Link:     " https://neomacro.in/q1 ",
				Price:    "  Rs.   17,999 ",
				Stock:    " instock ",
				Image:    " https://cdn.neomacro.in/q1.png ",
				Category: " keyboard ",
				Vendor:   " NeoMacro ",
			},
			want: domain.RawProduct{
				Name:     "Keychron Q1 Pro",
				Link:     "https://neomacro.in/q1",
				Price:    "Rs. 17,999",
				Stock:    "instock",
				Image:    "https://cdn.neomacro.in/q1.png",
				Category: "keyboard",
				Vendor:   "NeoMacro",
			},
		},
		{
			name: "protocol-relative image",
			item: Item{Name: "GMK Olivia", Link: "https://thockshop.in/o", Image: "//cdn.shopify.com/olivia.jpg"},
			want: domain.RawProduct{Name: "GMK Olivia", Link: "https://thockshop.in/o", Image: "https://cdn.shopify.com/olivia.jpg"},
		},
		{
			name: "empty item",
			item: Item{},
			want: domain.RawProduct{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapToRawProduct(tt.item))
		})
	}
}

func TestMapToRawProducts(t *testing.T) {
	items := []Item{
		{Name: "Aula F75", Link: "https://meckeys.com/a"},
		{Name: "  ", Link: " "},
		{Name: "", Link: "https://meckeys.com/nameless"},
		{Name: "Linkless", Link: ""},
	}

	products := MapToRawProducts(items)

	assert.Len(t, products, 3)
	assert.Equal(t, "https://meckeys.com/nameless", products[1].Link)
	assert.Equal(t, "Linkless", products[2].Name)

	assert.NotNil(t, MapToRawProducts(nil))
}
