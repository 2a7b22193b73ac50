package domain

import (
	"encoding/json"
	"math"
)

// RawProduct represents one vendor listing as emitted by a product source.
// Link is the listing identity.
type RawProduct struct {
	Name     string `json:"name"`
	Link     string `json:"link"`
	Price    string `json:"price"`
	Stock    string `json:"stock"`
	Image    string `json:"image"`
	Category string `json:"category"`
	Vendor   string `json:"vendor,omitempty"`
}

// Canonical holds the grouping identity and display form of a product name
type Canonical struct {
	Key         string `json:"key"`
	DisplayName string `json:"displayName"`
}

// StockStatus is the resolved availability of a listing or group
type StockStatus string

const (
	InStock    StockStatus = "instock"
	OutOfStock StockStatus = "outofstock"
)

// Price is a comparable numeric price. The positive infinity value means
// the price is unknown; it marshals to JSON null.
type Price float64

// IsKnown reports whether the price is finite
func (p Price) IsKnown() bool {
	return !math.IsInf(float64(p), 0) && !math.IsNaN(float64(p))
}

// MarshalJSON renders unknown prices as null
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.IsKnown() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(p))
}

// UnmarshalJSON maps null back to the unknown price
func (p *Price) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Price(math.Inf(1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*p = Price(f)
	return nil
}

// ProductGroup is the aggregate view of every listing sharing a canonical key
type ProductGroup struct {
	Key           string       `json:"groupKey"`
	DisplayName   string       `json:"baseName"`
	Price         string       `json:"price"` // raw price string of the cheapest member
	CheapestPrice Price        `json:"cheapestPrice"`
	Stock         StockStatus  `json:"stock"`
	Category      string       `json:"category"`
	Members       []RawProduct `json:"products"`
}

// GroupRow is the persisted form of a ProductGroup
type GroupRow struct {
	GroupKey string      `json:"group_key"`
	BaseName string      `json:"base_name"`
	Price    string      `json:"price"`
	Stock    StockStatus `json:"stock"`
	Category string      `json:"category"`
}

// ListingRow is the persisted form of a single vendor listing
type ListingRow struct {
	GroupKey string `json:"group_key"`
	Position int    `json:"position"` // member order within the group
	Name     string `json:"name"`
	Link     string `json:"link"`
	Image    string `json:"image"`
	Price    string `json:"price"`
	Stock    string `json:"stock"`
	Category string `json:"category"`
	Vendor   string `json:"vendor"`
}

// Projection is the flattened, deduplicated output handed to persistence
type Projection struct {
	Groups            []GroupRow   `json:"groups"`
	Listings          []ListingRow `json:"listings"`
	DuplicatesDropped int          `json:"duplicatesDropped"`
}

// GroupFilter holds read-side filters applied to the grouped catalog.
// An empty filter matches every group.
type GroupFilter struct {
	Categories []string `form:"category"` // any-of, case-insensitive substring
	Query      string   `form:"q"`        // case-insensitive substring of the display name
}

// SourceReport describes the outcome of fetching one product source
type SourceReport struct {
	Source   string `json:"source"`
	Products int    `json:"products"`
	Failed   bool   `json:"failed"`
	Error    string `json:"error,omitempty"`
}

// RefreshResult summarizes one aggregation run
type RefreshResult struct {
	RunID             string         `json:"runId"`
	GroupsInserted    int            `json:"groupsInserted"`
	ProductsInserted  int            `json:"productsInserted"`
	DuplicatesDropped int            `json:"duplicatesDropped"`
	Sources           []SourceReport `json:"sources"`
}

// SimilarPair is a pair of distinct groups whose keys look alike
type SimilarPair struct {
	LeftKey      string  `json:"leftKey"`
	LeftName     string  `json:"leftName"`
	RightKey     string  `json:"rightKey"`
	RightName    string  `json:"rightName"`
	Similarity   float64 `json:"similarity"`
	EditDistance int     `json:"editDistance"`
}
