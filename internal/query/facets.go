package query

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/skshohagmiah/storefront/internal/catalog"
)

// Count is one facet value and how many items carry it.
type Count struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
	Count int    `json:"count"`
}

// Facets summarizes a result set for a filter panel.
type Facets struct {
	Total      int             `json:"total"`
	MinPrice   decimal.Decimal `json:"minPrice"`
	MaxPrice   decimal.Decimal `json:"maxPrice"`
	Brands     []Count         `json:"brands"`
	Categories []Count         `json:"categories"`
	Sizes      []string        `json:"sizes"`
	InStock    int             `json:"inStock"`
	OutOfStock int             `json:"outOfStock"`
}

// ComputeFacets walks items once. Counts are ordered by count, then value.
func ComputeFacets(items []catalog.CatalogItem) Facets {
	f := Facets{Total: len(items), Brands: []Count{}, Categories: []Count{}, Sizes: []string{}}
	brands := map[string]int{}
	categories := map[string]int{}
	labels := map[string]string{}
	sizes := map[string]bool{}

	for i, it := range items {
		if i == 0 || it.Price.LessThan(f.MinPrice) {
			f.MinPrice = it.Price
		}
		if i == 0 || it.Price.GreaterThan(f.MaxPrice) {
			f.MaxPrice = it.Price
		}
		if it.Brand != "" {
			brands[it.Brand]++
		}
		categories[it.Category.ID]++
		if _, ok := labels[it.Category.ID]; !ok {
			labels[it.Category.ID] = it.Category.Name
		}
		for _, s := range it.Sizes {
			sizes[s] = true
		}
		if it.InStock {
			f.InStock++
		} else {
			f.OutOfStock++
		}
	}

	for b, n := range brands {
		f.Brands = append(f.Brands, Count{Value: b, Count: n})
	}
	for c, n := range categories {
		f.Categories = append(f.Categories, Count{Value: c, Label: labels[c], Count: n})
	}
	for s := range sizes {
		f.Sizes = append(f.Sizes, s)
	}
	sortCounts(f.Brands)
	sortCounts(f.Categories)
	slices.Sort(f.Sizes)
	return f
}

func sortCounts(c []Count) {
	slices.SortFunc(c, func(a, b Count) int {
		if n := cmp.Compare(b.Count, a.Count); n != 0 {
			return n
		}
		return cmp.Compare(a.Value, b.Value)
	})
}
