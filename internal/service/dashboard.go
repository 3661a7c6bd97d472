package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/skshohagmiah/storefront/internal/catalog"
	"golang.org/x/sync/errgroup"
)

const recentOrders = 5

// Summary is everything a user's landing page shows.
type Summary struct {
	Cart         []catalog.CartItem     `json:"cart"`
	CartTotal    decimal.Decimal        `json:"cartTotal"`
	Wishlist     []catalog.WishlistItem `json:"wishlist"`
	Unread       int                    `json:"unread"`
	RecentOrders []catalog.Order        `json:"recentOrders"`
}

// Dashboard reads a user's collections concurrently.
type Dashboard struct {
	cart          *Cart
	wishlist      *Wishlist
	notifications *Notifications
	orders        *Orders
}

// Summary loads the user's cart, wishlist, unread count and latest orders. The first failure
// cancels the remaining reads and is returned.
func (d *Dashboard) Summary(ctx context.Context, userID string) (Summary, error) {
	var s Summary
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := d.cart.Items(ctx, userID)
		if err != nil {
			return err
		}
		s.Cart, s.CartTotal = items, cartTotal(items)
		return nil
	})
	g.Go(func() error {
		items, err := d.wishlist.Items(ctx, userID)
		s.Wishlist = items
		return err
	})
	g.Go(func() error {
		n, err := d.notifications.UnreadCount(ctx, userID)
		s.Unread = n
		return err
	})
	g.Go(func() error {
		page, err := d.orders.List(ctx, userID, 1, recentOrders)
		s.RecentOrders = page.Items
		return err
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return s, nil
}
