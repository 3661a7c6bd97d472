package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/skshohagmiah/storefront/internal/catalog"
	"github.com/skshohagmiah/storefront/internal/errs"
	"github.com/skshohagmiah/storefront/internal/kv"
	"github.com/skshohagmiah/storefront/internal/query"
)

var (
	flatShipping          = decimal.RequireFromString("5.99")
	freeShippingThreshold = decimal.RequireFromString("50")
)

// Orders serves per-user order history.
type Orders struct {
	deps
	notifications *Notifications
}

func (o *Orders) load(ctx context.Context, userID string) ([]catalog.Order, error) {
	key, err := userKey(catalog.Orders, userID)
	if err != nil {
		return nil, err
	}
	return kv.Load[catalog.Order](ctx, o.store, key)
}

// List pages the user's orders newest first.
func (o *Orders) List(ctx context.Context, userID string, page, limit int) (query.Page[catalog.Order], error) {
	orders, err := o.load(ctx, userID)
	if err != nil {
		return query.Page[catalog.Order]{}, err
	}
	slices.SortStableFunc(orders, func(a, b catalog.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return query.Paginate(orders, page, limit)
}

// Get returns order id, or nil when the user has no such order.
func (o *Orders) Get(ctx context.Context, userID, id string) (*catalog.Order, error) {
	orders, err := o.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(orders, func(ord catalog.Order) bool { return ord.ID == id })
	if i < 0 {
		return nil, nil
	}
	return &orders[i], nil
}

// Place turns the user's cart into a pending order and empties the cart.
//
// The order is stored before the cart is cleared; a failure to clear is returned with the
// order already placed. The order notification is best effort.
func (o *Orders) Place(ctx context.Context, userID string, address catalog.Address) (catalog.Order, error) {
	key, err := userKey(catalog.Orders, userID)
	if err != nil {
		return catalog.Order{}, err
	}
	if err := catalog.Validate(address); err != nil {
		return catalog.Order{}, err
	}
	cartKey, err := userKey(catalog.Carts, userID)
	if err != nil {
		return catalog.Order{}, err
	}
	cart, err := kv.Load[catalog.CartItem](ctx, o.store, cartKey)
	if err != nil {
		return catalog.Order{}, err
	}
	if len(cart) == 0 {
		return catalog.Order{}, errs.InvalidArgument("cart is empty")
	}

	now := o.now()
	order := catalog.Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Items:           make([]catalog.OrderLine, 0, len(cart)),
		Subtotal:        cartTotal(cart),
		Status:          catalog.OrderPending,
		ShippingAddress: address,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, it := range cart {
		order.Items = append(order.Items, catalog.OrderLine{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
		})
	}
	order.Shipping = shippingFor(order.Subtotal)
	order.Total = order.Subtotal.Add(order.Shipping)

	_, err = kv.Update(ctx, o.store, key, func(orders []catalog.Order) ([]catalog.Order, error) {
		return append(orders, order), nil
	})
	if err != nil {
		return catalog.Order{}, err
	}
	o.log.InfoContext(ctx, "order placed", "user", userID, "order", order.ID, "total", order.Total.StringFixed(2))

	if err := o.store.Clear(ctx, cartKey); err != nil {
		return order, fmt.Errorf("order %s placed but cart not cleared: %w", order.ID, err)
	}

	_, err = o.notifications.Add(ctx, userID, catalog.Notification{
		Type:    catalog.NotificationOrder,
		Title:   "Order placed",
		Message: fmt.Sprintf("Your order of %s is being processed.", order.Total.StringFixed(2)),
		Data:    map[string]string{"orderId": order.ID},
	})
	if err != nil {
		o.log.WarnContext(ctx, "order notification not stored", "user", userID, "order", order.ID, "error", err)
	}
	return order, nil
}

func shippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(freeShippingThreshold) {
		return decimal.Zero
	}
	return flatShipping
}

// Cancel moves order id to cancelled. Only pending and processing orders can be cancelled.
// It returns nil when the user has no such order.
func (o *Orders) Cancel(ctx context.Context, userID, id string) (*catalog.Order, error) {
	key, err := userKey(catalog.Orders, userID)
	if err != nil {
		return nil, err
	}
	var cancelled *catalog.Order
	_, err = kv.Update(ctx, o.store, key, func(orders []catalog.Order) ([]catalog.Order, error) {
		i := slices.IndexFunc(orders, func(ord catalog.Order) bool { return ord.ID == id })
		if i < 0 {
			return orders, nil
		}
		ord := &orders[i]
		if !ord.Status.Cancellable() {
			return nil, errs.InvalidArgument("order %s is %s and cannot be cancelled", id, ord.Status)
		}
		ord.Status = catalog.OrderCancelled
		ord.UpdatedAt = o.now()
		c := *ord
		cancelled = &c
		return orders, nil
	})
	if err != nil {
		return nil, err
	}
	if cancelled != nil {
		o.log.InfoContext(ctx, "order cancelled", "user", userID, "order", id)
	}
	return cancelled, nil
}
