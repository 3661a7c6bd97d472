package service

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/skshohagmiah/storefront/internal/catalog"
	"github.com/skshohagmiah/storefront/internal/errs"
	"github.com/skshohagmiah/storefront/internal/kv"
)

// Cart serves per-user carts.
type Cart struct {
	deps
}

// Items returns the user's cart lines in the order they were added.
func (c *Cart) Items(ctx context.Context, userID string) ([]catalog.CartItem, error) {
	key, err := userKey(catalog.Carts, userID)
	if err != nil {
		return nil, err
	}
	return kv.Load[catalog.CartItem](ctx, c.store, key)
}

// Add puts quantity of a product into the cart. A line with the same product, size and color
// has its quantity increased; otherwise a new line is appended. Name and price are copied
// from the catalog at this point.
func (c *Cart) Add(ctx context.Context, userID, productID string, quantity int, size, color string) (catalog.CartItem, error) {
	key, err := userKey(catalog.Carts, userID)
	if err != nil {
		return catalog.CartItem{}, err
	}
	if quantity < 1 {
		return catalog.CartItem{}, errs.InvalidArgument("quantity must be at least 1, got %d", quantity)
	}
	products, err := kv.Load[catalog.CatalogItem](ctx, c.store, productsKey())
	if err != nil {
		return catalog.CartItem{}, err
	}
	product := findProduct(products, productID)
	if product == nil {
		return catalog.CartItem{}, errs.InvalidArgument("unknown product %q", productID)
	}

	var line catalog.CartItem
	_, err = kv.Update(ctx, c.store, key, func(items []catalog.CartItem) ([]catalog.CartItem, error) {
		for i := range items {
			it := &items[i]
			if it.ProductID == productID && it.Size == size && it.Color == color {
				it.Quantity += quantity
				line = *it
				return items, nil
			}
		}
		line = catalog.CartItem{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
			Size:      size,
			Color:     color,
			AddedAt:   c.now(),
		}
		return append(items, line), nil
	})
	if err != nil {
		return catalog.CartItem{}, err
	}
	c.log.DebugContext(ctx, "cart line added", "user", userID, "product", productID, "quantity", line.Quantity)
	return line, nil
}

// UpdateQuantity sets the quantity of line id. A quantity of zero or less removes the line.
// An absent id is a no-op.
func (c *Cart) UpdateQuantity(ctx context.Context, userID, id string, quantity int) error {
	key, err := userKey(catalog.Carts, userID)
	if err != nil {
		return err
	}
	_, err = kv.Update(ctx, c.store, key, func(items []catalog.CartItem) ([]catalog.CartItem, error) {
		if quantity <= 0 {
			return slices.DeleteFunc(items, func(it catalog.CartItem) bool { return it.ID == id }), nil
		}
		for i := range items {
			if items[i].ID == id {
				items[i].Quantity = quantity
			}
		}
		return items, nil
	})
	return err
}

// Remove drops line id. Removing an absent line is a no-op.
func (c *Cart) Remove(ctx context.Context, userID, id string) error {
	return c.UpdateQuantity(ctx, userID, id, 0)
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context, userID string) error {
	key, err := userKey(catalog.Carts, userID)
	if err != nil {
		return err
	}
	return c.store.Clear(ctx, key)
}

// Count is the number of units in the cart.
func (c *Cart) Count(ctx context.Context, userID string) (int, error) {
	items, err := c.Items(ctx, userID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n, nil
}

// Total is the sum of the cart's line totals.
func (c *Cart) Total(ctx context.Context, userID string) (decimal.Decimal, error) {
	items, err := c.Items(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return cartTotal(items), nil
}

func cartTotal(items []catalog.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}
