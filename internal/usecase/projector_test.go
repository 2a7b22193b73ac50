package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
)

func TestProject(t *testing.T) {
	groups := newTestAggregator().Aggregate(sampleProducts())
	projection := Project(groups)

	require.Len(t, projection.Groups, 3)
	require.Len(t, projection.Listings, 5)
	assert.Zero(t, projection.DuplicatesDropped)

	t.Run("group rows follow group order", func(t *testing.T) {
		for i, g := range groups {
			row := projection.Groups[i]
			assert.Equal(t, g.Key, row.GroupKey)
			assert.Equal(t, g.DisplayName, row.BaseName)
			assert.Equal(t, g.Stock, row.Stock)
			assert.Equal(t, g.Category, row.Category)
		}
	})

	t.Run("unknown cheapest price renders empty", func(t *testing.T) {
		assert.Equal(t, "Rs. 5,499", projection.Groups[0].Price)
		assert.Equal(t, "", projection.Groups[1].Price)
	})

	t.Run("listings reference projected groups", func(t *testing.T) {
		keys := make(map[string]bool)
		for _, row := range projection.Groups {
			keys[row.GroupKey] = true
		}
		for _, listing := range projection.Listings {
			assert.True(t, keys[listing.GroupKey], "listing %s has no group", listing.Link)
		}
	})

	t.Run("listing positions follow member order", func(t *testing.T) {
		aula := projection.Listings[:2]
		assert.Equal(t, "https://neomacro.in/b", aula[0].Link)
		assert.Equal(t, 0, aula[0].Position)
		assert.Equal(t, "https://meckeys.com/a", aula[1].Link)
		assert.Equal(t, 1, aula[1].Position)
		assert.Equal(t, "Meckeys", aula[1].Vendor)
		assert.Equal(t, "outofstock", aula[1].Stock)
	})
}

func TestProject_DeduplicatesLinks(t *testing.T) {
	groups := []domain.ProductGroup{
		{
			Key:           "aulaf75",
			DisplayName:   "Aula F75",
			Price:         "₹4,999",
			CheapestPrice: 4999,
			Stock:         domain.InStock,
			Members: []domain.RawProduct{
				{Name: "Aula F75", Link: "https://meckeys.com/a", Price: "₹4,999"},
				{Name: "Aula F75 Wireless", Link: "https://meckeys.com/a", Price: "₹5,999"},
			},
		},
		{
			Key:           "aulaf75pro",
			DisplayName:   "Aula F75 Pro",
			Price:         "₹6,999",
			CheapestPrice: 6999,
			Stock:         domain.OutOfStock,
			Members: []domain.RawProduct{
				{Name: "Aula F75 Pro", Link: "https://meckeys.com/a", Price: "₹6,999"},
				{Name: "Aula F75 Pro", Link: "https://neomacro.in/p", Price: "₹6,999"},
			},
		},
	}

	projection := Project(groups)

	assert.Len(t, projection.Groups, 2)
	require.Len(t, projection.Listings, 2)
	assert.Equal(t, 2, projection.DuplicatesDropped)

	// First occurrence wins, nothing is merged
	first := projection.Listings[0]
	assert.Equal(t, "aulaf75", first.GroupKey)
	assert.Equal(t, "Aula F75", first.Name)
	assert.Equal(t, "₹4,999", first.Price)

	second := projection.Listings[1]
	assert.Equal(t, "aulaf75pro", second.GroupKey)
	assert.Equal(t, "https://neomacro.in/p", second.Link)
	// Dropped duplicates leave no gap in positions
	assert.Equal(t, 0, second.Position)

	links := make(map[string]int)
	for _, l := range projection.Listings {
		links[l.Link]++
	}
	for link, count := range links {
		assert.Equal(t, 1, count, "link %s", link)
	}
}

func TestProject_Empty(t *testing.T) {
	projection := Project(nil)

	assert.NotNil(t, projection.Groups)
	assert.NotNil(t, projection.Listings)
	assert.Empty(t, projection.Groups)
	assert.Empty(t, projection.Listings)
}
