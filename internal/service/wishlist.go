package service

import (
	"context"
	"slices"

	"github.com/skshohagmiah/storefront/internal/catalog"
	"github.com/skshohagmiah/storefront/internal/errs"
	"github.com/skshohagmiah/storefront/internal/kv"
)

// Wishlist serves per-user wishlists.
type Wishlist struct {
	deps
}

func (w *Wishlist) Items(ctx context.Context, userID string) ([]catalog.WishlistItem, error) {
	key, err := userKey(catalog.Wishlists, userID)
	if err != nil {
		return nil, err
	}
	return kv.Load[catalog.WishlistItem](ctx, w.store, key)
}

// Add saves a product to the wishlist. Adding a product twice keeps the first entry.
func (w *Wishlist) Add(ctx context.Context, userID, productID string) error {
	key, err := userKey(catalog.Wishlists, userID)
	if err != nil {
		return err
	}
	products, err := kv.Load[catalog.CatalogItem](ctx, w.store, productsKey())
	if err != nil {
		return err
	}
	product := findProduct(products, productID)
	if product == nil {
		return errs.InvalidArgument("unknown product %q", productID)
	}

	_, err = kv.Update(ctx, w.store, key, func(items []catalog.WishlistItem) ([]catalog.WishlistItem, error) {
		if slices.ContainsFunc(items, func(it catalog.WishlistItem) bool { return it.ProductID == productID }) {
			return items, nil
		}
		return append(items, catalog.WishlistItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			AddedAt:   w.now(),
		}), nil
	})
	return err
}

// Remove drops a product from the wishlist. Removing an absent product is a no-op.
func (w *Wishlist) Remove(ctx context.Context, userID, productID string) error {
	key, err := userKey(catalog.Wishlists, userID)
	if err != nil {
		return err
	}
	_, err = kv.Update(ctx, w.store, key, func(items []catalog.WishlistItem) ([]catalog.WishlistItem, error) {
		return slices.DeleteFunc(items, func(it catalog.WishlistItem) bool { return it.ProductID == productID }), nil
	})
	return err
}

func (w *Wishlist) Contains(ctx context.Context, userID, productID string) (bool, error) {
	items, err := w.Items(ctx, userID)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(items, func(it catalog.WishlistItem) bool { return it.ProductID == productID }), nil
}

func (w *Wishlist) Clear(ctx context.Context, userID string) error {
	key, err := userKey(catalog.Wishlists, userID)
	if err != nil {
		return err
	}
	return w.store.Clear(ctx, key)
}
