package catalog

import (
	"strings"

	"github.com/skshohagmiah/storefront/internal/errs"
)

// Collection names a family of stored collections. Global collections live under their name;
// user-scoped ones under "<name>_<userID>".
type Collection string

const (
	Products      Collection = "products"
	Reviews       Collection = "reviews"
	Carts         Collection = "cart"
	Wishlists     Collection = "wishlist"
	Notifications Collection = "notifications"
	Orders        Collection = "orders"
)

var userScoped = map[Collection]bool{
	Carts:         true,
	Wishlists:     true,
	Notifications: true,
	Orders:        true,
}

// ParseCollection validates a collection name.
func ParseCollection(name string) (Collection, error) {
	c := Collection(strings.ToLower(strings.TrimSpace(name)))
	switch c {
	case Products, Reviews, Carts, Wishlists, Notifications, Orders:
		return c, nil
	}
	return "", errs.InvalidArgument("unknown collection %q", name)
}

// UserScoped reports whether the collection is kept per user.
func (c Collection) UserScoped() bool {
	return userScoped[c]
}

// Key returns the store key of the collection. owner is the user id for user-scoped
// collections and must be empty for global ones.
func (c Collection) Key(owner string) (string, error) {
	if _, err := ParseCollection(string(c)); err != nil {
		return "", err
	}
	if !c.UserScoped() {
		if owner != "" {
			return "", errs.InvalidArgument("collection %q is not user scoped", c)
		}
		return string(c), nil
	}
	if owner == "" {
		return "", errs.InvalidArgument("collection %q needs a user id", c)
	}
	return string(c) + "_" + owner, nil
}
