package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/skshohagmiah/storefront/internal/catalog"
	"github.com/skshohagmiah/storefront/internal/kv"
	"github.com/skshohagmiah/storefront/internal/storage"
	"github.com/stretchr/testify/require"
)

// steppingClock advances one minute per call.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

func setClock(s *Services, now func() time.Time) {
	s.Catalog.now = now
	s.Cart.now = now
	s.Wishlist.now = now
	s.Notifications.now = now
	s.Orders.now = now
	s.Reviews.now = now
}

func newTestServices(t *testing.T) (*Services, *kv.Store) {
	t.Helper()
	backend, err := storage.NewMemoryStorage()
	require.NoError(t, err)
	store := kv.New(backend)
	t.Cleanup(func() { _ = store.Close() })

	s := New(store, nil, Options{RelatedLimit: 3})
	clock := &steppingClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	setClock(s, clock.Now)
	return s, store
}

func product(id, cat, brand, seller, price string) catalog.CatalogItem {
	return catalog.CatalogItem{
		ID:       id,
		Name:     "Product " + id,
		Price:    decimal.RequireFromString(price),
		Category: catalog.Category{ID: cat, Name: "Category " + cat},
		Brand:    brand,
		Seller:   catalog.Seller{ID: seller, Name: "Seller " + seller},
		InStock:  true,
		Tags:     []string{},
	}
}

func seedFive(t *testing.T, s *Services) {
	t.Helper()
	items := []catalog.CatalogItem{
		product("A", "1", "X", "s1", "100"),
		product("B", "1", "Y", "s2", "500"),
		product("C", "2", "X", "s3", "105"),
		product("D", "2", "Z", "s4", "900"),
		product("E", "3", "W", "s5", "50"),
	}
	require.NoError(t, s.Catalog.Seed(context.Background(), items))
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func productIDs(items []catalog.CatalogItem) []string {
	return ids(items, func(it catalog.CatalogItem) string { return it.ID })
}

// brokenBackend fails every call.
type brokenBackend struct{}

var errBroken = errors.New("medium unavailable")

func (brokenBackend) Get(context.Context, string) ([]byte, error)    { return nil, errBroken }
func (brokenBackend) Set(context.Context, string, []byte) error      { return errBroken }
func (brokenBackend) Delete(context.Context, string) error           { return errBroken }
func (brokenBackend) Keys(context.Context, string) ([]string, error) { return nil, errBroken }
func (brokenBackend) Close() error                                   { return nil }

func newBrokenServices() *Services {
	return New(kv.New(brokenBackend{}), nil, Options{})
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
