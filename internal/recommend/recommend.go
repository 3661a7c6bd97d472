// Package recommend ranks "you may also like" items for a product by layered relaxation:
// same category, then same brand, then a nearby price, then the same seller, then anything.
//
// There is no score. An earlier layer always outranks a later one, and inside a layer items
// keep their collection order.
package recommend

import (
	"github.com/shopspring/decimal"
	"github.com/skshohagmiah/storefront/internal/catalog"
)

var (
	priceLow  = decimal.RequireFromString("0.7")
	priceHigh = decimal.RequireFromString("1.3")
)

type layer func(target, candidate *catalog.CatalogItem) bool

// layers in strict priority order
var layers = []layer{
	func(t, c *catalog.CatalogItem) bool { return c.Category.ID == t.Category.ID },
	func(t, c *catalog.CatalogItem) bool { return c.Brand == t.Brand },
	func(t, c *catalog.CatalogItem) bool {
		lo, hi := t.Price.Mul(priceLow), t.Price.Mul(priceHigh)
		return c.Price.GreaterThanOrEqual(lo) && c.Price.LessThanOrEqual(hi)
	},
	func(t, c *catalog.CatalogItem) bool { return c.Seller.ID == t.Seller.ID },
}

// RelatedTo returns at most limit items related to targetID, never the target itself.
//
// When targetID is not in items the first limit items are returned instead: the caller always
// gets something to show.
func RelatedTo(items []catalog.CatalogItem, targetID string, limit int) []catalog.CatalogItem {
	if limit <= 0 || len(items) == 0 {
		return []catalog.CatalogItem{}
	}

	targetIdx := -1
	for i := range items {
		if items[i].ID == targetID {
			targetIdx = i
			break
		}
	}
	if targetIdx < 0 {
		return append([]catalog.CatalogItem{}, items[:min(limit, len(items))]...)
	}
	target := &items[targetIdx]

	// selected works on indices so duplicate ids elsewhere in the collection stay distinct
	selected := make([]bool, len(items))
	selected[targetIdx] = true
	picked := make([]int, 0, limit)

	take := func(match func(*catalog.CatalogItem) bool) {
		for i := range items {
			if len(picked) == limit {
				return
			}
			if selected[i] || items[i].ID == targetID || !match(&items[i]) {
				continue
			}
			selected[i] = true
			picked = append(picked, i)
		}
	}

	for _, l := range layers {
		take(func(c *catalog.CatalogItem) bool { return l(target, c) })
	}
	take(func(*catalog.CatalogItem) bool { return true })

	out := make([]catalog.CatalogItem, 0, len(picked))
	for _, i := range picked {
		out = append(out, items[i])
	}
	return out
}
