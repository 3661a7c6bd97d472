package query

import (
	"strings"

	"github.com/skshohagmiah/storefront/internal/catalog"
)

type predicate func(*catalog.CatalogItem) bool

// Filter returns the items accepted by every predicate of f, in their original order.
// The input slice is not modified.
func Filter(items []catalog.CatalogItem, f Filters) []catalog.CatalogItem {
	preds := f.predicates()
	out := make([]catalog.CatalogItem, 0, len(items))
	for i := range items {
		if matchesAll(&items[i], preds) {
			out = append(out, items[i])
		}
	}
	return out
}

// Matches reports whether a single item passes f.
func (f Filters) Matches(item catalog.CatalogItem) bool {
	return matchesAll(&item, f.predicates())
}

func matchesAll(item *catalog.CatalogItem, preds []predicate) bool {
	for _, p := range preds {
		if !p(item) {
			return false
		}
	}
	return true
}

// predicates compiles the supplied fields only; absent fields add nothing.
func (f Filters) predicates() []predicate {
	var preds []predicate

	if ids := union(f.CategoryID, f.CategoryIDs); len(ids) > 0 {
		preds = append(preds, func(it *catalog.CatalogItem) bool { return ids[it.Category.ID] })
	}
	if f.SellerID != "" {
		id := f.SellerID
		preds = append(preds, func(it *catalog.CatalogItem) bool { return it.Seller.ID == id })
	}
	if f.MinPrice != nil {
		lo := *f.MinPrice
		preds = append(preds, func(it *catalog.CatalogItem) bool { return it.Price.GreaterThanOrEqual(lo) })
	}
	if f.MaxPrice != nil {
		hi := *f.MaxPrice
		preds = append(preds, func(it *catalog.CatalogItem) bool { return it.Price.LessThanOrEqual(hi) })
	}
	if f.MinRating != nil {
		r := *f.MinRating
		preds = append(preds, func(it *catalog.CatalogItem) bool { return it.Rating >= r })
	}
	if f.InStock != nil {
		want := *f.InStock
		preds = append(preds, func(it *catalog.CatalogItem) bool { return it.InStock == want })
	}
	if f.OnSale != nil {
		want := *f.OnSale
		preds = append(preds, func(it *catalog.CatalogItem) bool { return it.IsOnSale == want })
	}
	if f.Featured != nil {
		want := *f.Featured
		preds = append(preds, func(it *catalog.CatalogItem) bool { return it.IsFeatured == want })
	}
	if f.New != nil {
		want := *f.New
		preds = append(preds, func(it *catalog.CatalogItem) bool { return it.IsNew == want })
	}
	if brands := union(f.Brand, f.Brands); len(brands) > 0 {
		preds = append(preds, func(it *catalog.CatalogItem) bool { return brands[it.Brand] })
	}
	if sizes := union(f.Size, f.Sizes); len(sizes) > 0 {
		preds = append(preds, func(it *catalog.CatalogItem) bool { return anyIn(it.Sizes, sizes) })
	}
	if tags := union("", f.Tags); len(tags) > 0 {
		preds = append(preds, func(it *catalog.CatalogItem) bool { return anyIn(it.Tags, tags) })
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		preds = append(preds, func(it *catalog.CatalogItem) bool { return containsFold(it, q) })
	}
	return preds
}

func union(one string, many []string) map[string]bool {
	if one == "" && len(many) == 0 {
		return nil
	}
	set := make(map[string]bool, len(many)+1)
	if one != "" {
		set[one] = true
	}
	for _, v := range many {
		if v != "" {
			set[v] = true
		}
	}
	return set
}

func anyIn(values []string, set map[string]bool) bool {
	for _, v := range values {
		if set[v] {
			return true
		}
	}
	return false
}

// q is already lower-cased.
func containsFold(it *catalog.CatalogItem, q string) bool {
	return strings.Contains(strings.ToLower(it.Name), q) ||
		strings.Contains(strings.ToLower(it.Description), q) ||
		strings.Contains(strings.ToLower(it.Brand), q)
}
