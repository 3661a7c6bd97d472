package query

import (
	"github.com/skshohagmiah/storefront/internal/catalog"
	"github.com/skshohagmiah/storefront/internal/errs"
)

// Run filters, sorts and paginates a collection snapshot.
//
// Filters never fail: contradictory ones (MinPrice > MaxPrice) just match nothing. Only a
// Page or Limit below 1 is rejected, with errs.ErrInvalidArgument.
func Run(items []catalog.CatalogItem, spec Spec) (PageResult, error) {
	if err := validatePaging(spec.Page, spec.Limit); err != nil {
		return PageResult{}, err
	}
	matched := Filter(items, spec.Filters)
	sorted := Sort(matched, spec.SortBy)
	return Paginate(sorted, spec.Page, spec.Limit)
}

// Paginate slices [(page-1)*limit, page*limit) out of items. A page past the end is empty,
// not an error.
func Paginate[T any](items []T, page, limit int) (Page[T], error) {
	if err := validatePaging(page, limit); err != nil {
		return Page[T]{}, err
	}

	total := len(items)
	start := (page - 1) * limit
	end := start + limit
	pageItems := []T{}
	if start < total {
		if end > total {
			end = total
		}
		pageItems = items[start:end:end]
	}

	return Page[T]{
		Items:        pageItems,
		Page:         page,
		TotalPages:   (total + limit - 1) / limit,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNext:      page*limit < total,
		HasPrev:      page > 1,
	}, nil
}

func validatePaging(page, limit int) error {
	if limit < 1 {
		return errs.InvalidArgument("limit must be at least 1, got %d", limit)
	}
	if page < 1 {
		return errs.InvalidArgument("page must be at least 1, got %d", page)
	}
	return nil
}
