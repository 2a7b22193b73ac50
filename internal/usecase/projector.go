package usecase

import (
	"github.com/samalsubrat/mk-price-tracker/internal/domain"
)

// Project flattens product groups into persistable group and listing rows.
// Listings are deduplicated by link across the whole batch: the first
// occurrence is kept and later ones are dropped, never merged.
func Project(groups []domain.ProductGroup) domain.Projection {
	projection := domain.Projection{
		Groups:   make([]domain.GroupRow, 0, len(groups)),
		Listings: make([]domain.ListingRow, 0),
	}

	seenLinks := make(map[string]struct{})

	for _, group := range groups {
		// Step 1: One row per group
		projection.Groups = append(projection.Groups, groupRow(group))

		// Step 2: One row per listing not seen before, positions counted over kept rows
		position := 0
		for _, member := range group.Members {
			if _, seen := seenLinks[member.Link]; seen {
				projection.DuplicatesDropped++
				continue
			}
			seenLinks[member.Link] = struct{}{}

			projection.Listings = append(projection.Listings, domain.ListingRow{
				GroupKey: group.Key,
				Position: position,
				Name:     member.Name,
				Link:     member.Link,
				Image:    member.Image,
				Price:    member.Price,
				Stock:    member.Stock,
				Category: member.Category,
				Vendor:   member.Vendor,
			})
			position++
		}
	}

	return projection
}

// groupRow renders the group's price as the cheapest member's original
// string; an unknown cheapest price renders as an empty placeholder.
func groupRow(group domain.ProductGroup) domain.GroupRow {
	price := group.Price
	if !group.CheapestPrice.IsKnown() {
		price = ""
	}

	return domain.GroupRow{
		GroupKey: group.Key,
		BaseName: group.DisplayName,
		Price:    price,
		Stock:    group.Stock,
		Category: group.Category,
	}
}
