package gormstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	r, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, r.Migrate(context.Background()))
	t.Cleanup(func() { _ = r.Close(context.Background()) })
	return r
}

func strp(s string) *string { return &s }

func seedProducts(t *testing.T, r *GormRepo, n int) []models.Product {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Product, 0, n)
	for i := 0; i < n; i++ {
		p := models.Product{
			Title:       "Drone " + string(rune('A'+i)),
			Description: "quad",
			Price:       float64(100 * (i + 1)),
			Category:    "Camera",
			Featured:    i%2 == 0,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		if i >= n/2 {
			p.Category = "Racing"
		}
		require.NoError(t, r.CreateProduct(ctx, &p))
		out = append(out, p)
	}
	return out
}

func TestProducts_ListFilterSortPaginate(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	seedProducts(t, r, 25)

	items, total, err := r.ListProducts(ctx, store.ProductQuery{SortBy: "createdAt", Desc: true, Offset: 10, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	require.Len(t, items, 10)
	assert.Equal(t, "Drone O", items[0].Title)

	min, max := 200.0, 500.0
	items, total, err = r.ListProducts(ctx, store.ProductQuery{MinPrice: &min, MaxPrice: &max, SortBy: "price", Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Equal(t, 200.0, items[0].Price)
	assert.Equal(t, 500.0, items[3].Price)

	_, total, err = r.ListProducts(ctx, store.ProductQuery{Category: "Racing", Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 13, total)
}

func TestProducts_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.CreateProduct(ctx, &models.Product{Title: "Mavic Air 2", Description: "foldable"}))
	require.NoError(t, r.CreateProduct(ctx, &models.Product{Title: "FPV kit", Description: "Racing AIR frame"}))
	require.NoError(t, r.CreateProduct(ctx, &models.Product{Title: "Battery 100%", Description: "spare"}))

	_, total, err := r.ListProducts(ctx, store.ProductQuery{Search: "air", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	_, total, err = r.ListProducts(ctx, store.ProductQuery{Search: "100%", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestProducts_UpdateIncrementDelete(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProducts(t, r, 1)[0]

	title := "Renamed"
	vars := []models.Variation{{Name: "Pro", Price: 999}}
	require.NoError(t, r.UpdateProduct(ctx, p.ID, models.ProductPatch{Title: &title, Variations: &vars}))
	require.NoError(t, r.IncrementViews(ctx, p.ID))
	require.NoError(t, r.IncrementViews(ctx, p.ID))

	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, p.Price, got.Price)
	assert.EqualValues(t, 2, got.Views)
	require.Len(t, got.Variations, 1)
	assert.Equal(t, 999.0, got.Variations[0].Price)

	missing := store.NewID()
	assert.ErrorIs(t, r.UpdateProduct(ctx, missing, models.ProductPatch{Title: &title}), store.ErrNotFound)
	assert.ErrorIs(t, r.IncrementViews(ctx, missing), store.ErrNotFound)

	require.NoError(t, r.DeleteProduct(ctx, p.ID))
	assert.ErrorIs(t, r.DeleteProduct(ctx, p.ID), store.ErrNotFound)
	_, err = r.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProducts_FeaturedAndCategories(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	seedProducts(t, r, 6)

	featured, err := r.FeaturedProducts(ctx, 8)
	require.NoError(t, err)
	assert.Len(t, featured, 3)
	for _, p := range featured {
		assert.True(t, p.Featured)
	}

	cats, err := r.DistinctCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Camera", "Racing"}, cats)
}

func TestRatings_Stats(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	pid := store.NewID()

	for _, v := range []float64{5, 4, 3} {
		require.NoError(t, r.CreateRating(ctx, &models.Rating{ProductID: pid, Name: "n", Text: "t", Rating: v, CreatedAt: time.Now()}))
	}
	require.NoError(t, r.CreateRating(ctx, &models.Rating{ProductID: store.NewID(), Rating: 1, CreatedAt: time.Now()}))

	stats, err := r.RatingStats(ctx, pid)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, stats.Average, 1e-9)
	assert.EqualValues(t, 3, stats.Total)

	list, err := r.ListRatings(ctx, pid)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	all, err := r.ListRatings(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestCart_MergeKeepsFirstPriceSnapshot(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	const email = "a@x.io"

	_, err := r.AddCartItem(ctx, email, models.CartItem{ProductID: "P1", Title: "Drone", Price: 100, Quantity: 2})
	require.NoError(t, err)
	items, err := r.AddCartItem(ctx, email, models.CartItem{ProductID: "P1", Title: "Drone", Price: 120, Quantity: 3})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 100.0, items[0].Price)
	assert.Nil(t, items[0].Variation)

	items, err = r.AddCartItem(ctx, email, models.CartItem{ProductID: "P1", Title: "Drone", Price: 150, Quantity: 1, Variation: strp("Pro")})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[1].Variation)
	assert.Equal(t, "Pro", *items[1].Variation)
}

func TestCart_ConcurrentAddsMergeIntoOneLine(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	const (
		email   = "c@x.io"
		workers = 16
	)

	var wg sync.WaitGroup
	errs := make(chan error, 2*workers)
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func(qty int) {
			defer wg.Done()
			_, err := r.AddCartItem(ctx, email, models.CartItem{ProductID: "P1", Title: "Drone", Price: 100, Quantity: qty})
			errs <- err
		}(i + 1)
		go func() {
			defer wg.Done()
			_, err := r.AddCartItem(ctx, email, models.CartItem{ProductID: "P1", Title: "Drone", Price: 150, Quantity: 1, Variation: strp("Pro")})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	cart, err := r.GetCart(ctx, email)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)

	byVariation := map[string]int{}
	for _, it := range cart.Items {
		byVariation[models.VariationKey(it.Variation)] = it.Quantity
	}
	assert.Equal(t, workers*(workers+1)/2, byVariation[""], "base line holds every add")
	assert.Equal(t, workers, byVariation["Pro"])
}

func TestCart_SetQuantityRemoveClear(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	const email = "b@x.io"

	_, err := r.SetCartItemQuantity(ctx, email, "P1", nil, 3)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = r.AddCartItem(ctx, email, models.CartItem{ProductID: "P1", Price: 10, Quantity: 1})
	require.NoError(t, err)
	_, err = r.AddCartItem(ctx, email, models.CartItem{ProductID: "P2", Price: 20, Quantity: 1})
	require.NoError(t, err)

	items, err := r.SetCartItemQuantity(ctx, email, "P1", nil, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, items[0].Quantity)

	items, err = r.SetCartItemQuantity(ctx, email, "P1", nil, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "P2", items[0].ProductID)

	items, err = r.RemoveCartItem(ctx, email, "P2", nil)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = r.AddCartItem(ctx, email, models.CartItem{ProductID: "P3", Price: 5, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, r.ClearCart(ctx, email))
	cart, err := r.GetCart(ctx, email)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	require.NoError(t, r.DeleteCart(ctx, email))
	_, err = r.GetCart(ctx, email)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWishlist_Dedupe(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	const email = "w@x.io"

	_, err := r.RemoveWishlistItem(ctx, email, "P1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = r.AddWishlistItem(ctx, email, "P1")
	require.NoError(t, err)
	items, err := r.AddWishlistItem(ctx, email, "P1")
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, items)

	items, err = r.RemoveWishlistItem(ctx, email, "P1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOrders_AppendStatusKeepsTotals(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	placed := time.Now().UTC().Add(-time.Hour)
	o := &models.Order{
		Email:          "o@x.io",
		Items:          []models.OrderItem{{ProductID: "P1", Title: "Drone", Price: 100, Quantity: 2}},
		Subtotal:       200,
		ShippingCost:   15,
		Total:          215,
		TrackingNumber: "TRK1",
		Status:         models.OrderStatusPending,
		StatusHistory:  []models.StatusEntry{{Status: models.OrderStatusPending, Date: placed, Description: "Order placed successfully"}},
		CreatedAt:      placed,
	}
	require.NoError(t, r.CreateOrder(ctx, o))

	dup := *o
	dup.ID = ""
	assert.ErrorIs(t, r.CreateOrder(ctx, &dup), store.ErrDuplicate)

	require.NoError(t, r.AppendStatus(ctx, o.ID, models.StatusEntry{Status: "Shipped", Date: time.Now().UTC(), Description: "Order status changed to Shipped"}, "TRK-NEW"))

	got, err := r.GetOrderByTracking(ctx, "TRK-NEW")
	require.NoError(t, err)
	assert.Equal(t, "Shipped", got.Status)
	assert.Equal(t, 215.0, got.Total)
	require.Len(t, got.StatusHistory, 2)
	assert.Equal(t, models.OrderStatusPending, got.StatusHistory[0].Status)
	assert.Equal(t, "Shipped", got.StatusHistory[1].Status)
	require.Len(t, got.Items, 1)

	assert.ErrorIs(t, r.AppendStatus(ctx, store.NewID(), models.StatusEntry{Status: "X", Date: time.Now()}, ""), store.ErrNotFound)

	list, err := r.ListOrders(ctx, store.OrderFilter{Email: "o@x.io"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, r.DeleteOrder(ctx, o.ID))
	_, err = r.GetOrder(ctx, o.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccounts_RedeemVerifyTokenIsSingleUse(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()
	exp := now.Add(24 * time.Hour)

	require.NoError(t, r.CreateAuth(ctx, &models.Auth{
		Email: "v@x.io", PasswordHash: "h", EmailVerified: models.BoolPtr(false),
		EmailVerifyToken: strp("tok"), EmailVerifyExpires: &exp,
	}))
	assert.ErrorIs(t, r.CreateAuth(ctx, &models.Auth{Email: "v@x.io", PasswordHash: "h"}), store.ErrDuplicate)

	email, err := r.RedeemVerifyToken(ctx, "tok", now)
	require.NoError(t, err)
	assert.Equal(t, "v@x.io", email)

	_, err = r.RedeemVerifyToken(ctx, "tok", now)
	assert.ErrorIs(t, err, store.ErrNotFound)

	a, err := r.GetAuthByEmail(ctx, "v@x.io")
	require.NoError(t, err)
	assert.True(t, a.Verified())
	assert.Nil(t, a.EmailVerifyToken)
}

func TestAccounts_ExpiredTokenRejected(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	past := time.Now().UTC().Add(-time.Minute)

	require.NoError(t, r.CreateAuth(ctx, &models.Auth{Email: "e@x.io", PasswordHash: "h", EmailVerified: models.BoolPtr(false)}))
	require.NoError(t, r.SetVerifyToken(ctx, "e@x.io", "old", past))

	_, err := r.RedeemVerifyToken(ctx, "old", time.Now().UTC())
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, r.SetVerifyToken(ctx, "nobody@x.io", "t", past), store.ErrNotFound)
}

func TestUsers_UpsertKeepsRoleAndFilters(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.CreateUser(ctx, &models.User{Email: "u@x.io", Name: "U", Role: models.RoleUser}))
	require.NoError(t, r.SetUserRole(ctx, "u@x.io", models.RoleAdmin))
	require.NoError(t, r.UpsertUser(ctx, &models.User{Email: "u@x.io", Name: "Renamed", Role: models.RoleUser}))

	u, err := r.GetUserByEmail(ctx, "u@x.io")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", u.Name)
	assert.Equal(t, models.RoleAdmin, u.Role)

	require.NoError(t, r.CreateUser(ctx, &models.User{Email: "off@x.io", Role: models.RoleUser}))
	require.NoError(t, r.SetUserActive(ctx, "off@x.io", false))

	active, err := r.ListUsers(ctx, store.UserFilter{Active: models.BoolPtr(true)})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "u@x.io", active[0].Email)

	assert.ErrorIs(t, r.SetUserRole(ctx, "ghost@x.io", models.RoleAdmin), store.ErrNotFound)

	deleted, err := r.DeleteUser(ctx, "off@x.io")
	require.NoError(t, err)
	assert.True(t, deleted)
}
