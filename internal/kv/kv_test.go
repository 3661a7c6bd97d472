package kv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/skshohagmiah/storefront/internal/catalog"
	"github.com/skshohagmiah/storefront/internal/errs"
	"github.com/skshohagmiah/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	backend, err := storage.NewBadgerStorage(t.TempDir())
	require.NoError(t, err)
	s := New(backend)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// failingBackend fails every operation with err.
type failingBackend struct{ err error }

func (f failingBackend) Get(context.Context, string) ([]byte, error)    { return nil, f.err }
func (f failingBackend) Set(context.Context, string, []byte) error      { return f.err }
func (f failingBackend) Delete(context.Context, string) error           { return f.err }
func (f failingBackend) Keys(context.Context, string) ([]string, error) { return nil, f.err }
func (f failingBackend) Close() error                                   { return nil }

func TestLoad_MissingKeyIsEmpty(t *testing.T) {
	s := createTestStore(t)

	items, err := Load[catalog.CatalogItem](context.Background(), s, "products")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestSaveLoad_RoundTripsEveryField(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	original := decimal.RequireFromString("129.99")
	discount := 23.08
	created := time.Date(2025, 2, 14, 9, 30, 15, 123456789, time.UTC)
	items := []catalog.CatalogItem{{
		ID:                 "p1",
		Name:               "Trail Jacket",
		Description:        "Waterproof shell",
		Price:              decimal.RequireFromString("99.99"),
		OriginalPrice:      &original,
		DiscountPercentage: &discount,
		Category:           catalog.Category{ID: "outerwear", Name: "Outerwear", Slug: "outerwear", ParentID: "clothing"},
		Brand:              "Summit",
		Seller:             catalog.Seller{ID: "s1", Name: "Summit Outfitters", Rating: 4.7, Verified: true},
		Rating:             4.4,
		ReviewCount:        128,
		InStock:            false,
		StockCount:         3,
		Sizes:              []string{"S", "M", "L"},
		Tags:               []string{"rain", "hiking"},
		IsNew:              true,
		IsFeatured:         true,
		IsOnSale:           true,
		CreatedAt:          created,
		UpdatedAt:          created.Add(48 * time.Hour).In(time.FixedZone("CET", 3600)),
	}}

	require.NoError(t, Save(ctx, s, "products", items))
	got, err := Load[catalog.CatalogItem](ctx, s, "products")
	require.NoError(t, err)
	require.Len(t, got, 1)

	g := got[0]
	assert.True(t, items[0].Price.Equal(g.Price))
	assert.True(t, original.Equal(*g.OriginalPrice))
	assert.True(t, items[0].CreatedAt.Equal(g.CreatedAt))
	assert.True(t, items[0].UpdatedAt.Equal(g.UpdatedAt))

	// decimals and times compare by value above; everything else must be identical
	g.Price, g.OriginalPrice, g.CreatedAt, g.UpdatedAt = items[0].Price, items[0].OriginalPrice, items[0].CreatedAt, items[0].UpdatedAt
	assert.Equal(t, items[0], g)
}

func TestSaveLoad_SecondaryRecords(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	orders := []catalog.Order{{
		ID:     "o1",
		UserID: "u1",
		Items: []catalog.OrderLine{
			{ProductID: "p1", Name: "Jacket", Price: decimal.RequireFromString("99.99"), Quantity: 2, Size: "M"},
		},
		Subtotal:        decimal.RequireFromString("199.98"),
		Total:           decimal.RequireFromString("199.98"),
		Status:          catalog.OrderShipped,
		ShippingAddress: catalog.Address{FullName: "Ada", Street: "1 Main", City: "Oslo", Country: "NO"},
	}}
	require.NoError(t, Save(ctx, s, "orders_u1", orders))

	got, err := Load[catalog.Order](ctx, s, "orders_u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, catalog.OrderShipped, got[0].Status)
	assert.Equal(t, "M", got[0].Items[0].Size)
	assert.True(t, orders[0].Total.Equal(got[0].Total))
	assert.Equal(t, orders[0].ShippingAddress, got[0].ShippingAddress)
}

func TestGetPut_SingleValue(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, ok, err := Get[catalog.Category](ctx, s, "category")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, Put(ctx, s, "category", catalog.Category{ID: "c1", Name: "Shoes"}))
	got, ok, err := Get[catalog.Category](ctx, s, "category")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Shoes", got.Name)
}

func TestSave_NilWritesEmptyList(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, Save[catalog.CartItem](ctx, s, "cart_u1", nil))
	raw, err := s.backend.Get(ctx, "cart_u1")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestEmptyKeyIsInvalidArgument(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := Load[catalog.CatalogItem](ctx, s, "")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	assert.ErrorIs(t, Save[catalog.CatalogItem](ctx, s, "", nil), errs.ErrInvalidArgument)
	assert.ErrorIs(t, s.Clear(ctx, ""), errs.ErrInvalidArgument)
}

func TestStoreErrorsPropagate(t *testing.T) {
	medium := errors.New("disk on fire")
	s := New(failingBackend{err: medium})
	ctx := context.Background()

	_, err := Load[catalog.CatalogItem](ctx, s, "products")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrStore)
	assert.ErrorIs(t, err, medium)

	var storeErr *errs.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "get", storeErr.Op)
	assert.Equal(t, "products", storeErr.Key)

	err = Save(ctx, s, "products", []catalog.CatalogItem{})
	assert.ErrorIs(t, err, errs.ErrStore)
	assert.ErrorIs(t, s.Clear(ctx, "products"), errs.ErrStore)
}

func TestLoad_CorruptValue(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.backend.Set(ctx, "products", []byte("{not json")))

	_, err := Load[catalog.CatalogItem](ctx, s, "products")
	var storeErr *errs.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "decode", storeErr.Op)
}

func TestUpdate_ReadModifyWrite(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := Update(ctx, s, "cart_u1", func(items []catalog.CartItem) ([]catalog.CartItem, error) {
		return append(items, catalog.CartItem{ID: "c1", ProductID: "p1", Quantity: 1}), nil
	})
	require.NoError(t, err)

	got, err := Update(ctx, s, "cart_u1", func(items []catalog.CartItem) ([]catalog.CartItem, error) {
		items[0].Quantity++
		return items, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, got[0].Quantity)

	stored, err := Load[catalog.CartItem](ctx, s, "cart_u1")
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestUpdate_ErrorAbortsWrite(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, Save(ctx, s, "cart_u1", []catalog.CartItem{{ID: "c1"}}))

	abort := errors.New("abort")
	_, err := Update(ctx, s, "cart_u1", func(items []catalog.CartItem) ([]catalog.CartItem, error) {
		return nil, abort
	})
	assert.ErrorIs(t, err, abort)

	stored, err := Load[catalog.CartItem](ctx, s, "cart_u1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestUpdate_ConcurrentCyclesDoNotLoseWrites(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Update(ctx, s, "notifications_u1", func(n []catalog.Notification) ([]catalog.Notification, error) {
				return append(n, catalog.Notification{Type: catalog.NotificationSystem, Title: "hi"}), nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := Load[catalog.Notification](ctx, s, "notifications_u1")
	require.NoError(t, err)
	assert.Len(t, stored, writers)
}

func TestClearAndKeys(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, Save(ctx, s, "cart_u1", []catalog.CartItem{{ID: "c1"}}))
	require.NoError(t, Save(ctx, s, "cart_u2", []catalog.CartItem{{ID: "c2"}}))

	keys, err := s.Keys(ctx, "cart_")
	require.NoError(t, err)
	assert.Equal(t, []string{"cart_u1", "cart_u2"}, keys)

	require.NoError(t, s.Clear(ctx, "cart_u1"))
	require.NoError(t, s.Clear(ctx, "cart_u1"))
	items, err := Load[catalog.CartItem](ctx, s, "cart_u1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStripedLock_SameKeySameStripe(t *testing.T) {
	l := newStripedLock(8)
	assert.Equal(t, l.stripe("cart_u1"), l.stripe("cart_u1"))
	for _, k := range []string{"a", "b", "products", "orders_9"} {
		assert.Less(t, l.stripe(k), 8)
	}
	assert.Equal(t, defaultStripes, newStripedLock(0).count)
}
