package query

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const defaultLimit = 20

// Builder provides a fluent interface for building a Spec
type Builder struct {
	spec Spec
}

// NewBuilder starts a query for page 1 with the default limit.
func NewBuilder() *Builder {
	return &Builder{spec: Spec{Page: 1, Limit: defaultLimit}}
}

// Category restricts to one or more category ids
func (b *Builder) Category(ids ...string) *Builder {
	b.spec.Filters.CategoryIDs = append(b.spec.Filters.CategoryIDs, ids...)
	return b
}

// Seller restricts to a seller id
func (b *Builder) Seller(id string) *Builder {
	b.spec.Filters.SellerID = id
	return b
}

// Brands restricts to any of the brands
func (b *Builder) Brands(brands ...string) *Builder {
	b.spec.Filters.Brands = append(b.spec.Filters.Brands, brands...)
	return b
}

// Sizes restricts to items offered in any of the sizes
func (b *Builder) Sizes(sizes ...string) *Builder {
	b.spec.Filters.Sizes = append(b.spec.Filters.Sizes, sizes...)
	return b
}

// Tags restricts to items carrying any of the tags
func (b *Builder) Tags(tags ...string) *Builder {
	b.spec.Filters.Tags = append(b.spec.Filters.Tags, tags...)
	return b
}

// PriceBetween sets an inclusive price range
func (b *Builder) PriceBetween(min, max decimal.Decimal) *Builder {
	b.spec.Filters.MinPrice = &min
	b.spec.Filters.MaxPrice = &max
	return b
}

// MinPrice sets the lower price bound only
func (b *Builder) MinPrice(min decimal.Decimal) *Builder {
	b.spec.Filters.MinPrice = &min
	return b
}

// MaxPrice sets the upper price bound only
func (b *Builder) MaxPrice(max decimal.Decimal) *Builder {
	b.spec.Filters.MaxPrice = &max
	return b
}

// MinRating sets the minimum rating
func (b *Builder) MinRating(r float64) *Builder {
	b.spec.Filters.MinRating = &r
	return b
}

// InStockOnly keeps items that are in stock
func (b *Builder) InStockOnly() *Builder {
	inStock := true
	b.spec.Filters.InStock = &inStock
	return b
}

// OnSale keeps items flagged as on sale
func (b *Builder) OnSale() *Builder {
	onSale := true
	b.spec.Filters.OnSale = &onSale
	return b
}

// Featured keeps items flagged as featured
func (b *Builder) Featured() *Builder {
	featured := true
	b.spec.Filters.Featured = &featured
	return b
}

// New keeps items flagged as new
func (b *Builder) New() *Builder {
	isNew := true
	b.spec.Filters.New = &isNew
	return b
}

// Search sets the free-text substring
func (b *Builder) Search(q string) *Builder {
	b.spec.Filters.Search = q
	return b
}

// SortBy sets the sort key
func (b *Builder) SortBy(key SortKey) *Builder {
	b.spec.SortBy = key
	return b
}

// Page sets the 1-based page number
func (b *Builder) Page(n int) *Builder {
	b.spec.Page = n
	return b
}

// Limit sets the page size
func (b *Builder) Limit(n int) *Builder {
	b.spec.Limit = n
	return b
}

// Build returns the Spec for this query
func (b *Builder) Build() Spec {
	return b.spec
}

// String returns a string representation of the query
func (b *Builder) String() string {
	return fmt.Sprintf("Query{sort=%q, page=%d, limit=%d, search=%q}",
		b.spec.SortBy, b.spec.Page, b.spec.Limit, b.spec.Filters.Search)
}
