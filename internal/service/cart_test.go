package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/droneshop/internal/models"
)

func strp(s string) *string { return &s }

func TestCart_AddItemMergesAndKeepsSnapshot(t *testing.T) {
	t.Parallel()

	svc := &CartService{Store: newTestStore(t)}
	ctx := context.Background()

	items, err := svc.AddItem(ctx, "a@x.com", models.CartItem{ProductID: "p1", Title: "Mavic", Price: 100, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = svc.AddItem(ctx, "a@x.com", models.CartItem{ProductID: "p1", Title: "Mavic", Price: 140, Quantity: 2, Variation: strp("")})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 100.0, items[0].Price)

	items, err = svc.AddItem(ctx, "a@x.com", models.CartItem{ProductID: "p1", Price: 150, Quantity: 1, Variation: strp("Pro")})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.UnknownProductTitle, items[1].Title)

	_, err = svc.AddItem(ctx, "a@x.com", models.CartItem{ProductID: "p1", Quantity: 0})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCart_UpdateQuantity(t *testing.T) {
	t.Parallel()

	svc := &CartService{Store: newTestStore(t)}
	ctx := context.Background()

	_, err := svc.UpdateQuantity(ctx, "a@x.com", "p1", nil, 2)
	assert.ErrorIs(t, err, ErrNotFound, "no cart yet")

	_, err = svc.AddItem(ctx, "a@x.com", models.CartItem{ProductID: "p1", Price: 100, Quantity: 4})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "a@x.com", models.CartItem{ProductID: "p2", Price: 50, Quantity: 1})
	require.NoError(t, err)

	items, err := svc.UpdateQuantity(ctx, "a@x.com", "p1", nil, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Quantity, "overwrites, not additive")

	for _, q := range []int{0, -3} {
		_, err = svc.AddItem(ctx, "a@x.com", models.CartItem{ProductID: "p3", Price: 1, Quantity: 1})
		require.NoError(t, err)
		items, err = svc.UpdateQuantity(ctx, "a@x.com", "p3", nil, q)
		require.NoError(t, err)
		for _, it := range items {
			assert.NotEqual(t, "p3", it.ProductID)
		}
	}
}

func TestCart_RemoveAndClear(t *testing.T) {
	t.Parallel()

	svc := &CartService{Store: newTestStore(t)}
	ctx := context.Background()

	_, err := svc.RemoveItem(ctx, "a@x.com", "p1", nil)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, svc.Clear(ctx, "a@x.com"), "clearing a missing cart is a no-op")

	_, err = svc.AddItem(ctx, "a@x.com", models.CartItem{ProductID: "p1", Price: 1, Quantity: 1, Variation: strp("Pro")})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "a@x.com", models.CartItem{ProductID: "p1", Price: 1, Quantity: 1})
	require.NoError(t, err)

	items, err := svc.RemoveItem(ctx, "a@x.com", "p1", strp("Pro"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Variation)

	require.NoError(t, svc.Clear(ctx, "a@x.com"))
	items, err = svc.Items(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = svc.Items(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestWishlist_AddRemoveContains(t *testing.T) {
	t.Parallel()

	svc := &WishlistService{Store: newTestStore(t)}
	ctx := context.Background()

	_, err := svc.Remove(ctx, "a@x.com", "p1")
	assert.ErrorIs(t, err, ErrNotFound)

	for _, id := range []string{"p1", "p2", "p1"} {
		_, err := svc.Add(ctx, "a@x.com", id)
		require.NoError(t, err)
	}
	items, err := svc.Items(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, items)

	ok, err := svc.Contains(ctx, "a@x.com", "p2")
	require.NoError(t, err)
	assert.True(t, ok)

	items, err = svc.Remove(ctx, "a@x.com", "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, items)

	ok, err = svc.Contains(ctx, "nobody@x.com", "p1")
	require.NoError(t, err)
	assert.False(t, ok)
}
