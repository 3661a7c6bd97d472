// Package query is the in-memory query engine over catalog collections: conjunctive filters,
// stable sorting and pagination.
package query

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/skshohagmiah/storefront/internal/catalog"
)

// SortKey selects the ordering of a result set.
type SortKey string

// Sort keys. SortNone keeps insertion order ("relevance").
const (
	SortNone         SortKey = ""
	SortPriceLow     SortKey = "price_low"
	SortPriceHigh    SortKey = "price_high"
	SortRating       SortKey = "rating"
	SortNewest       SortKey = "newest"
	SortPopularity   SortKey = "popularity"
	SortMostReviewed SortKey = "most_reviewed"
)

// ParseSortKey recognises a sort key case-insensitively. Unknown keys map to SortNone.
func ParseSortKey(s string) SortKey {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case SortPriceLow, SortPriceHigh, SortRating, SortNewest, SortPopularity, SortMostReviewed:
		return k
	}
	return SortNone
}

// Filters is a conjunction of optional predicates. A zero field means "no constraint".
// CategoryID/CategoryIDs, Brand/Brands and Size/Sizes each form one membership predicate
// over their union.
type Filters struct {
	CategoryID  string
	CategoryIDs []string
	SellerID    string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	MinRating   *float64
	InStock     *bool
	OnSale      *bool
	Featured    *bool
	New         *bool
	Brand       string
	Brands      []string
	Size        string
	Sizes       []string
	// Tags matches items carrying any of the tags.
	Tags []string
	// Search is a case-insensitive substring matched against name, description and brand.
	Search string
}

// Spec is a full query: filters, ordering and the requested page.
type Spec struct {
	Filters Filters
	SortBy  SortKey
	Page    int
	Limit   int
}

// Page is one page of a result set plus pagination metadata.
type Page[T any] struct {
	Items        []T  `json:"items"`
	Page         int  `json:"page"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNext      bool `json:"hasNext"`
	HasPrev      bool `json:"hasPrev"`
}

// PageResult is a page of catalog items.
type PageResult = Page[catalog.CatalogItem]
