package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/skshohagmiah/storefront/internal/catalog"
	"github.com/skshohagmiah/storefront/internal/errs"
	"github.com/skshohagmiah/storefront/internal/kv"
	"github.com/skshohagmiah/storefront/internal/query"
	"github.com/skshohagmiah/storefront/internal/recommend"
)

// Catalog serves the products collection.
type Catalog struct {
	deps
	relatedLimit int
}

func (c *Catalog) products(ctx context.Context) ([]catalog.CatalogItem, error) {
	return kv.Load[catalog.CatalogItem](ctx, c.store, productsKey())
}

// Browse runs spec against the whole catalog. Page and Limit must both be at least 1.
func (c *Catalog) Browse(ctx context.Context, spec query.Spec) (query.PageResult, error) {
	items, err := c.products(ctx)
	if err != nil {
		return query.PageResult{}, err
	}
	return query.Run(items, spec)
}

// ByCategory narrows the catalog to one category before running spec.
func (c *Catalog) ByCategory(ctx context.Context, categoryID string, spec query.Spec) (query.PageResult, error) {
	if categoryID == "" {
		return query.PageResult{}, errs.InvalidArgument("empty category id")
	}
	return c.scoped(ctx, spec, func(it *catalog.CatalogItem) bool { return it.Category.ID == categoryID })
}

// BySeller narrows the catalog to one seller before running spec.
func (c *Catalog) BySeller(ctx context.Context, sellerID string, spec query.Spec) (query.PageResult, error) {
	if sellerID == "" {
		return query.PageResult{}, errs.InvalidArgument("empty seller id")
	}
	return c.scoped(ctx, spec, func(it *catalog.CatalogItem) bool { return it.Seller.ID == sellerID })
}

func (c *Catalog) scoped(ctx context.Context, spec query.Spec, keep func(*catalog.CatalogItem) bool) (query.PageResult, error) {
	items, err := c.products(ctx)
	if err != nil {
		return query.PageResult{}, err
	}
	scoped := make([]catalog.CatalogItem, 0, len(items))
	for i := range items {
		if keep(&items[i]) {
			scoped = append(scoped, items[i])
		}
	}
	return query.Run(scoped, spec)
}

// MostReviewed pages the catalog by review count, highest first.
func (c *Catalog) MostReviewed(ctx context.Context, page, limit int) (query.PageResult, error) {
	return c.Browse(ctx, query.Spec{SortBy: query.SortMostReviewed, Page: page, Limit: limit})
}

// MostPopular pages the catalog by rating, ties broken by review count.
func (c *Catalog) MostPopular(ctx context.Context, page, limit int) (query.PageResult, error) {
	items, err := c.products(ctx)
	if err != nil {
		return query.PageResult{}, err
	}
	return query.Paginate(query.SortBy(items, query.SortRating, query.SortMostReviewed), page, limit)
}

// Search matches keyword against name, description and brand. A blank keyword browses.
func (c *Catalog) Search(ctx context.Context, keyword string, spec query.Spec) (query.PageResult, error) {
	spec.Filters.Search = strings.TrimSpace(keyword)
	return c.Browse(ctx, spec)
}

// Featured returns up to limit featured items in catalog order.
func (c *Catalog) Featured(ctx context.Context, limit int) ([]catalog.CatalogItem, error) {
	featured := true
	res, err := c.Browse(ctx, query.Spec{Filters: query.Filters{Featured: &featured}, Page: 1, Limit: limit})
	return res.Items, err
}

// NewArrivals returns up to limit items flagged new, newest first.
func (c *Catalog) NewArrivals(ctx context.Context, limit int) ([]catalog.CatalogItem, error) {
	isNew := true
	res, err := c.Browse(ctx, query.Spec{
		Filters: query.Filters{New: &isNew},
		SortBy:  query.SortNewest,
		Page:    1,
		Limit:   limit,
	})
	return res.Items, err
}

// OnSale pages the items flagged on sale.
func (c *Catalog) OnSale(ctx context.Context, page, limit int) (query.PageResult, error) {
	onSale := true
	return c.Browse(ctx, query.Spec{Filters: query.Filters{OnSale: &onSale}, Page: page, Limit: limit})
}

// Facets summarizes the items matching filters.
func (c *Catalog) Facets(ctx context.Context, filters query.Filters) (query.Facets, error) {
	items, err := c.products(ctx)
	if err != nil {
		return query.Facets{}, err
	}
	return query.ComputeFacets(query.Filter(items, filters)), nil
}

// Related returns up to limit items to show next to product id. A limit of zero or less
// uses the configured default.
//
// A store failure is logged and yields an empty list.
func (c *Catalog) Related(ctx context.Context, id string, limit int) []catalog.CatalogItem {
	if limit <= 0 {
		limit = c.relatedLimit
	}
	items, err := c.products(ctx)
	if err != nil {
		c.log.WarnContext(ctx, "related items unavailable", "product", id, "error", err)
		return []catalog.CatalogItem{}
	}
	return recommend.RelatedTo(items, id, limit)
}

// Product returns the item with id, or nil when there is none.
func (c *Catalog) Product(ctx context.Context, id string) (*catalog.CatalogItem, error) {
	items, err := c.products(ctx)
	if err != nil {
		return nil, err
	}
	return findProduct(items, id), nil
}

func findProduct(items []catalog.CatalogItem, id string) *catalog.CatalogItem {
	i := slices.IndexFunc(items, func(it catalog.CatalogItem) bool { return it.ID == id })
	if i < 0 {
		return nil
	}
	return &items[i]
}

// Upsert validates item and replaces the stored item with the same id, or appends it.
// CreatedAt survives a replace; UpdatedAt is always set.
func (c *Catalog) Upsert(ctx context.Context, item catalog.CatalogItem) (catalog.CatalogItem, error) {
	if err := catalog.Validate(item); err != nil {
		return catalog.CatalogItem{}, err
	}
	now := c.now()
	item.UpdatedAt = now

	_, err := kv.Update(ctx, c.store, productsKey(), func(items []catalog.CatalogItem) ([]catalog.CatalogItem, error) {
		if existing := findProduct(items, item.ID); existing != nil {
			if item.CreatedAt.IsZero() {
				item.CreatedAt = existing.CreatedAt
			}
			*existing = item
			return items, nil
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		return append(items, item), nil
	})
	if err != nil {
		return catalog.CatalogItem{}, err
	}
	c.log.DebugContext(ctx, "product saved", "product", item.ID)
	return item, nil
}

// Remove deletes the item with id. Removing an absent id is a no-op.
func (c *Catalog) Remove(ctx context.Context, id string) error {
	_, err := kv.Update(ctx, c.store, productsKey(), func(items []catalog.CatalogItem) ([]catalog.CatalogItem, error) {
		return slices.DeleteFunc(items, func(it catalog.CatalogItem) bool { return it.ID == id }), nil
	})
	return err
}

// Seed replaces the whole catalog with items. Nothing is written unless every item is valid
// and ids are unique.
func (c *Catalog) Seed(ctx context.Context, items []catalog.CatalogItem) error {
	now := c.now()
	seen := make(map[string]bool, len(items))
	seeded := make([]catalog.CatalogItem, len(items))
	for i, it := range items {
		if err := catalog.Validate(it); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		if seen[it.ID] {
			return errs.InvalidArgument("duplicate product id %q", it.ID)
		}
		seen[it.ID] = true
		if it.CreatedAt.IsZero() {
			it.CreatedAt = now
		}
		if it.UpdatedAt.IsZero() {
			it.UpdatedAt = it.CreatedAt
		}
		seeded[i] = it
	}

	if err := kv.Save(ctx, c.store, productsKey(), seeded); err != nil {
		return err
	}
	c.log.InfoContext(ctx, "catalog seeded", "items", len(seeded))
	return nil
}
