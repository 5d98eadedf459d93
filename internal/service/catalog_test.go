package service

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/droneshop/internal/events"
	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
)

func newCatalogService(t *testing.T) (*CatalogService, *fakeIndex, *fakePublisher) {
	t.Helper()
	idx := newFakeIndex()
	pub := &fakePublisher{}
	return &CatalogService{Store: newTestStore(t), Index: idx, Events: pub}, idx, pub
}

func mustCreate(t *testing.T, svc *CatalogService, p models.Product) string {
	t.Helper()
	id, err := svc.CreateProduct(context.Background(), &p)
	require.NoError(t, err)
	return id
}

func floatp(v float64) *float64 { return &v }

func TestCatalog_ListProductsPagination(t *testing.T) {
	t.Parallel()

	svc, _, _ := newCatalogService(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		mustCreate(t, svc, models.Product{
			Title:    fmt.Sprintf("Drone %02d", i),
			Price:    float64(40000 + i*5000),
			Category: "Drone",
		})
	}
	mustCreate(t, svc, models.Product{Title: "Prop guard", Price: 60000, Category: "Accessory"})

	page, err := svc.ListProducts(ctx, ListParams{
		Category: "Drone",
		MinPrice: floatp(50000),
		MaxPrice: floatp(100000),
		Page:     2,
		Limit:    10,
	})
	require.NoError(t, err)

	// prices 50000..100000 step 5000 within the Drone category
	assert.EqualValues(t, 11, page.Pagination.Total)
	assert.EqualValues(t, 2, page.Pagination.Pages)
	assert.Equal(t, 2, page.Pagination.Page)
	assert.Equal(t, 10, page.Pagination.Limit)
	require.Len(t, page.Products, 1)
	for _, p := range page.Products {
		assert.Equal(t, "Drone", p.Category)
		assert.GreaterOrEqual(t, p.Price, 50000.0)
		assert.LessOrEqual(t, p.Price, 100000.0)
	}

	all, err := svc.ListProducts(ctx, ListParams{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 26, all.Pagination.Total)
	assert.Len(t, all.Products, 10)

	_, err = svc.ListProducts(ctx, ListParams{SortBy: "password"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCatalog_ListProductsDefaults(t *testing.T) {
	t.Parallel()

	svc, _, _ := newCatalogService(t)
	page, err := svc.ListProducts(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 12, page.Pagination.Limit)
	assert.NotNil(t, page.Products)
	assert.Empty(t, page.Products)
}

func TestCatalog_GetProductCountsViews(t *testing.T) {
	t.Parallel()

	svc, _, _ := newCatalogService(t)
	ctx := context.Background()
	id := mustCreate(t, svc, models.Product{Title: "Mavic", Price: 100})

	first, err := svc.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 0, first.Views)

	second, err := svc.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, second.Views)

	_, err = svc.GetProduct(ctx, "not-an-id")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.GetProduct(ctx, store.NewID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_CreateUpdateDeleteSyncsIndexAndEvents(t *testing.T) {
	t.Parallel()

	svc, idx, pub := newCatalogService(t)
	ctx := context.Background()

	p := models.Product{Title: "Mavic", Price: 100, Views: 99, Sales: 5}
	id, err := svc.CreateProduct(ctx, &p)
	require.NoError(t, err)
	assert.Zero(t, p.Views)
	assert.Zero(t, p.Sales)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Contains(t, idx.indexed, id)

	price := 120.0
	require.NoError(t, svc.UpdateProduct(ctx, id, models.ProductPatch{Price: &price}))
	assert.Equal(t, 120.0, idx.indexed[id].Price)

	neg := -1.0
	assert.ErrorIs(t, svc.UpdateProduct(ctx, id, models.ProductPatch{Price: &neg}), ErrValidation)
	assert.ErrorIs(t, svc.UpdateProduct(ctx, id, models.ProductPatch{}), ErrValidation)
	assert.ErrorIs(t, svc.UpdateProduct(ctx, store.NewID(), models.ProductPatch{Price: &price}), ErrNotFound)

	require.NoError(t, svc.DeleteProduct(ctx, id))
	assert.NotContains(t, idx.indexed, id)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, id), ErrNotFound)

	assert.Equal(t, []string{events.TopicProducts, events.TopicProducts, events.TopicProducts}, pub.topics())
}

func TestCatalog_IndexFailuresDoNotFailWrites(t *testing.T) {
	t.Parallel()

	svc, idx, pub := newCatalogService(t)
	idx.err = errBoom
	pub.err = errBoom

	_, err := svc.CreateProduct(context.Background(), &models.Product{Title: "Mavic", Price: 100})
	require.NoError(t, err)
}

func TestCatalog_Featured(t *testing.T) {
	t.Parallel()

	svc, _, _ := newCatalogService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		mustCreate(t, svc, models.Product{Title: fmt.Sprintf("Plain %d", i), Price: 1})
	}
	items, err := svc.Featured(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 3, "falls back to latest products")

	for i := 0; i < 10; i++ {
		mustCreate(t, svc, models.Product{Title: fmt.Sprintf("Star %d", i), Price: 1, Featured: true})
	}
	items, err = svc.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, items, 8)
	for _, p := range items {
		assert.True(t, p.Featured)
	}
}

func TestCatalog_RatingAverage(t *testing.T) {
	t.Parallel()

	svc, _, _ := newCatalogService(t)
	ctx := context.Background()
	id := mustCreate(t, svc, models.Product{Title: "Mavic", Price: 100})

	var ratingIDs []string
	for _, r := range []float64{5, 4, 2, 4} {
		rid, err := svc.AddRating(ctx, &models.Rating{ProductID: id, Name: "n", Text: "t", Rating: r})
		require.NoError(t, err)
		ratingIDs = append(ratingIDs, rid)
	}

	p, err := svc.Store.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.InDelta(t, 3.75, p.AverageRating, 1e-9)
	assert.EqualValues(t, 4, p.TotalRatings)

	require.NoError(t, svc.DeleteRating(ctx, ratingIDs[2]))
	p, err = svc.Store.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.InDelta(t, 13.0/3.0, p.AverageRating, 1e-9)
	assert.EqualValues(t, 3, p.TotalRatings)

	ratings, err := svc.ListRatings(ctx, id)
	require.NoError(t, err)
	assert.Len(t, ratings, 3)

	_, err = svc.AddRating(ctx, &models.Rating{ProductID: id, Rating: 6})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.AddRating(ctx, &models.Rating{ProductID: store.NewID(), Rating: 3})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteRating(ctx, store.NewID()), ErrNotFound)
}

func TestCatalog_RatingRejectsUnusableValues(t *testing.T) {
	t.Parallel()

	svc, _, _ := newCatalogService(t)
	ctx := context.Background()
	id := mustCreate(t, svc, models.Product{Title: "Mavic", Price: 100})

	tests := []struct {
		name   string
		rating float64
		msg    string
	}{
		{name: "NaN", rating: math.NaN(), msg: "Rating must be between 1 and 5"},
		{name: "infinity", rating: math.Inf(1), msg: "Rating must be between 1 and 5"},
		{name: "zero", rating: 0, msg: "Rating must be between 1 and 5"},
		{name: "fraction", rating: 3.7, msg: "Rating must be a whole number"},
	}
	for _, tt := range tests {
		_, err := svc.AddRating(ctx, &models.Rating{ProductID: id, Rating: tt.rating})
		require.ErrorIs(t, err, ErrValidation, tt.name)
		msg, ok := Message(err)
		require.True(t, ok, tt.name)
		assert.Equal(t, tt.msg, msg, tt.name)
	}

	ratings, err := svc.ListRatings(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, ratings)
	p, err := svc.Store.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, p.AverageRating)
}

func TestCatalog_PricesMustBeFinite(t *testing.T) {
	t.Parallel()

	svc, _, _ := newCatalogService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, &models.Product{Title: "Mavic", Price: math.Inf(1)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateProduct(ctx, &models.Product{Title: "Mavic", Price: 10, OriginalPrice: math.NaN()})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateProduct(ctx, &models.Product{Title: "Mavic", Price: 10, Variations: []models.Variation{{Name: "Pro", Price: math.NaN()}}})
	assert.ErrorIs(t, err, ErrValidation)

	id := mustCreate(t, svc, models.Product{Title: "Mavic", Price: 100})
	err = svc.UpdateProduct(ctx, id, models.ProductPatch{Price: floatp(math.NaN())})
	assert.ErrorIs(t, err, ErrValidation)
	p, err := svc.Store.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 100.0, p.Price)
}

func TestCatalog_SearchFallsBackToStore(t *testing.T) {
	t.Parallel()

	svc, idx, _ := newCatalogService(t)
	ctx := context.Background()
	mustCreate(t, svc, models.Product{Title: "Mavic Pro", Price: 100})
	mustCreate(t, svc, models.Product{Title: "Racer", Price: 50})

	res, err := svc.Search(ctx, "mavic", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Pagination.Total, "served by the index")

	idx.err = errBoom
	res, err = svc.Search(ctx, "mavic", 1, 10)
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Mavic Pro", res.Products[0].Title)

	_, err = svc.Search(ctx, "  ", 1, 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCatalog_CategoriesFallback(t *testing.T) {
	t.Parallel()

	svc, _, _ := newCatalogService(t)
	ctx := context.Background()
	mustCreate(t, svc, models.Product{Title: "a", Price: 1, Category: "Camera Drones"})
	mustCreate(t, svc, models.Product{Title: "b", Price: 1, Category: "Camera Drones"})
	mustCreate(t, svc, models.Product{Title: "c", Price: 1, Category: "FPV"})

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Category{
		{Name: "Camera Drones", Slug: "camera-drones"},
		{Name: "FPV", Slug: "fpv"},
	}, cats)

	require.NoError(t, svc.Store.CreateCategory(ctx, &models.Category{Name: "Kits", Slug: "kits"}))
	cats, err = svc.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "kits", cats[0].Slug)
}

func TestCatalog_CreatedAtUsesClock(t *testing.T) {
	t.Parallel()

	svc, _, _ := newCatalogService(t)
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return at }

	p := models.Product{Title: "Mavic", Price: 1}
	_, err := svc.CreateProduct(context.Background(), &p)
	require.NoError(t, err)
	assert.Equal(t, at, p.CreatedAt)
	assert.Equal(t, at, p.UpdatedAt)
}
