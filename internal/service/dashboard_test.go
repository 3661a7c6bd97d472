package service

import (
	"context"
	"testing"

	"github.com/skshohagmiah/storefront/internal/catalog"
	"github.com/skshohagmiah/storefront/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard_Summary(t *testing.T) {
	// given
	s, _ := newTestServices(t)
	seedFive(t, s)
	ctx := context.Background()
	_, err := s.Cart.Add(ctx, "u1", "A", 1, "", "")
	require.NoError(t, err)
	_, err = s.Orders.Place(ctx, "u1", testAddress)
	require.NoError(t, err)
	_, err = s.Cart.Add(ctx, "u1", "B", 2, "", "")
	require.NoError(t, err)
	require.NoError(t, s.Wishlist.Add(ctx, "u1", "D"))
	addNote(t, s, "u1", "welcome")

	// when
	summary, err := s.Dashboard.Summary(ctx, "u1")

	// then
	require.NoError(t, err)
	assert.Len(t, summary.Cart, 1)
	assert.Equal(t, "1000", summary.CartTotal.String())
	assert.Equal(t, []string{"D"}, ids(summary.Wishlist, func(w catalog.WishlistItem) string { return w.ProductID }))
	// order placed notification plus welcome
	assert.Equal(t, 2, summary.Unread)
	assert.Len(t, summary.RecentOrders, 1)
}

func TestDashboard_EmptyUser(t *testing.T) {
	s, _ := newTestServices(t)

	summary, err := s.Dashboard.Summary(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, summary.Cart)
	assert.True(t, summary.CartTotal.IsZero())
	assert.Zero(t, summary.Unread)
	assert.Empty(t, summary.RecentOrders)
}

func TestDashboard_FirstErrorWins(t *testing.T) {
	s := newBrokenServices()

	_, err := s.Dashboard.Summary(context.Background(), "u1")
	assert.ErrorIs(t, err, errs.ErrStore)
}
