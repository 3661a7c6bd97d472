package service

import (
	"context"
	"math"
	"slices"

	"github.com/google/uuid"
	"github.com/skshohagmiah/storefront/internal/catalog"
	"github.com/skshohagmiah/storefront/internal/errs"
	"github.com/skshohagmiah/storefront/internal/kv"
)

// Reviews serves the global reviews collection.
type Reviews struct {
	deps
}

func reviewsKey() string {
	return string(catalog.Reviews)
}

// ForProduct returns the reviews of productID newest first.
func (r *Reviews) ForProduct(ctx context.Context, productID string) ([]catalog.Review, error) {
	all, err := kv.Load[catalog.Review](ctx, r.store, reviewsKey())
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Review, 0)
	for _, rv := range all {
		if rv.ProductID == productID {
			out = append(out, rv)
		}
	}
	slices.SortStableFunc(out, func(a, b catalog.Review) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// Add stores a review of an existing product and refreshes the product's Rating and
// ReviewCount from all of its reviews.
func (r *Reviews) Add(ctx context.Context, review catalog.Review) (catalog.Review, error) {
	if err := catalog.Validate(review); err != nil {
		return catalog.Review{}, err
	}
	products, err := kv.Load[catalog.CatalogItem](ctx, r.store, productsKey())
	if err != nil {
		return catalog.Review{}, err
	}
	if findProduct(products, review.ProductID) == nil {
		return catalog.Review{}, errs.InvalidArgument("unknown product %q", review.ProductID)
	}

	review.ID = uuid.New().String()
	review.Helpful = 0
	if review.CreatedAt.IsZero() {
		review.CreatedAt = r.now()
	}

	all, err := kv.Update(ctx, r.store, reviewsKey(), func(all []catalog.Review) ([]catalog.Review, error) {
		return append(all, review), nil
	})
	if err != nil {
		return catalog.Review{}, err
	}

	sum, count := 0, 0
	for _, rv := range all {
		if rv.ProductID == review.ProductID {
			sum += rv.Rating
			count++
		}
	}
	rating := math.Round(float64(sum)/float64(count)*10) / 10

	_, err = kv.Update(ctx, r.store, productsKey(), func(items []catalog.CatalogItem) ([]catalog.CatalogItem, error) {
		if p := findProduct(items, review.ProductID); p != nil {
			p.Rating = rating
			p.ReviewCount = count
			p.UpdatedAt = r.now()
		}
		return items, nil
	})
	if err != nil {
		return review, err
	}
	r.log.DebugContext(ctx, "review added", "product", review.ProductID, "rating", rating, "reviews", count)
	return review, nil
}

// MarkHelpful counts one more helpful vote on review id. It returns nil for an unknown id.
func (r *Reviews) MarkHelpful(ctx context.Context, id string) (*catalog.Review, error) {
	var marked *catalog.Review
	_, err := kv.Update(ctx, r.store, reviewsKey(), func(all []catalog.Review) ([]catalog.Review, error) {
		for i := range all {
			if all[i].ID == id {
				all[i].Helpful++
				rv := all[i]
				marked = &rv
				break
			}
		}
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	return marked, nil
}
