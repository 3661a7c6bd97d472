// Package service exposes the storefront operations: catalog browsing, carts, wishlists,
// notifications, orders and reviews. Each operation composes snapshot reads and
// read-modify-write cycles of the kv store with the query engine.
//
// A service never runs one Update from inside another: cross-collection operations such as
// placing an order run their cycles one after the other and are not atomic as a whole.
package service

import (
	"log/slog"
	"time"

	"github.com/skshohagmiah/storefront/internal/catalog"
	"github.com/skshohagmiah/storefront/internal/kv"
)

const defaultRelatedLimit = 8

type Options struct {
	// RelatedLimit is used when Related is called with a limit of zero or less.
	RelatedLimit int
}

// Services bundles every service over one store.
type Services struct {
	Catalog       *Catalog
	Cart          *Cart
	Wishlist      *Wishlist
	Notifications *Notifications
	Orders        *Orders
	Reviews       *Reviews
	Dashboard     *Dashboard
}

// New wires all services on store. The store stays owned by the caller.
func New(store *kv.Store, logger *slog.Logger, opts Options) *Services {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.RelatedLimit < 1 {
		opts.RelatedLimit = defaultRelatedLimit
	}

	base := deps{store: store, log: logger, now: time.Now}
	cat := &Catalog{deps: base.named("catalog"), relatedLimit: opts.RelatedLimit}
	cart := &Cart{deps: base.named("cart")}
	wishlist := &Wishlist{deps: base.named("wishlist")}
	notifications := &Notifications{deps: base.named("notifications")}
	orders := &Orders{deps: base.named("orders"), notifications: notifications}
	reviews := &Reviews{deps: base.named("reviews")}

	return &Services{
		Catalog:       cat,
		Cart:          cart,
		Wishlist:      wishlist,
		Notifications: notifications,
		Orders:        orders,
		Reviews:       reviews,
		Dashboard:     &Dashboard{cart: cart, wishlist: wishlist, notifications: notifications, orders: orders},
	}
}

// deps is what every service needs.
type deps struct {
	store *kv.Store
	log   *slog.Logger
	now   func() time.Time
}

func (d deps) named(name string) deps {
	d.log = d.log.With("service", name)
	return d
}

func userKey(c catalog.Collection, userID string) (string, error) {
	return c.Key(userID)
}

func productsKey() string {
	return string(catalog.Products)
}
