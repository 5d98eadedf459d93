package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/droneshop/internal/models"
)

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
	err  error
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (f *fakeCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	b, ok := f.data[key]
	if !ok {
		return false, nil
	}
	f.hits++
	return true, json.Unmarshal(b, dest)
}

func (f *fakeCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.data[key] = b
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return f.err
}

func TestCatalog_FeaturedCachedUntilWrite(t *testing.T) {
	t.Parallel()

	svc, _, _ := newCatalogService(t)
	c := newFakeCache()
	svc.Cache = c
	ctx := context.Background()

	mustCreate(t, svc, models.Product{Title: "Mini", Price: 1, Featured: true})
	items, err := svc.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = svc.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, c.hits)

	mustCreate(t, svc, models.Product{Title: "Air", Price: 2, Featured: true})
	items, err = svc.Featured(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2, "creating a product drops the cached list")
	assert.Equal(t, 1, c.hits)
}

func TestCatalog_CategoriesCached(t *testing.T) {
	t.Parallel()

	svc, _, _ := newCatalogService(t)
	c := newFakeCache()
	svc.Cache = c
	ctx := context.Background()

	id := mustCreate(t, svc, models.Product{Title: "Mini", Price: 1, Category: "Camera Drones"})
	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)

	_, err = svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, c.hits)

	require.NoError(t, svc.DeleteProduct(ctx, id))
	cats, err = svc.Categories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestCatalog_CacheFailuresFallThrough(t *testing.T) {
	t.Parallel()

	svc, _, _ := newCatalogService(t)
	svc.Cache = &fakeCache{data: map[string][]byte{}, err: errors.New("redis down")}

	mustCreate(t, svc, models.Product{Title: "Mini", Price: 1, Featured: true})
	items, err := svc.Featured(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
