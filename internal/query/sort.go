package query

import (
	"cmp"
	"slices"

	"github.com/skshohagmiah/storefront/internal/catalog"
)

func comparator(key SortKey) func(a, b catalog.CatalogItem) int {
	switch key {
	case SortPriceLow:
		return func(a, b catalog.CatalogItem) int { return a.Price.Cmp(b.Price) }
	case SortPriceHigh:
		return func(a, b catalog.CatalogItem) int { return b.Price.Cmp(a.Price) }
	case SortRating:
		return func(a, b catalog.CatalogItem) int { return cmp.Compare(b.Rating, a.Rating) }
	case SortNewest:
		return func(a, b catalog.CatalogItem) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case SortPopularity, SortMostReviewed:
		return func(a, b catalog.CatalogItem) int { return cmp.Compare(b.ReviewCount, a.ReviewCount) }
	default:
		return nil
	}
}

// Sort returns a stably sorted copy of items. Equal keys keep their relative order; SortNone
// and unknown keys return the items in insertion order.
func Sort(items []catalog.CatalogItem, key SortKey) []catalog.CatalogItem {
	out := slices.Clone(items)
	if fn := comparator(key); fn != nil {
		slices.SortStableFunc(out, fn)
	}
	return out
}

// SortBy applies several keys, the first one most significant.
func SortBy(items []catalog.CatalogItem, keys ...SortKey) []catalog.CatalogItem {
	out := slices.Clone(items)
	// stable passes from least to most significant key
	for i := len(keys) - 1; i >= 0; i-- {
		if fn := comparator(keys[i]); fn != nil {
			slices.SortStableFunc(out, fn)
		}
	}
	return out
}
