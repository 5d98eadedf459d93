package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Skotchmaster/droneshop/internal/events"
	"github.com/Skotchmaster/droneshop/internal/logging"
	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
	"github.com/Skotchmaster/droneshop/internal/transport"
	"github.com/Skotchmaster/droneshop/internal/util"
)

const featuredLimit = 8

const (
	cacheKeyFeatured   = "products:featured"
	cacheKeyCategories = "categories"
	defaultCacheTTL    = time.Minute
)

type CatalogStore interface {
	store.Products
	store.Ratings
	store.Categories
}

type CatalogService struct {
	Store    CatalogStore
	Index    ProductIndex
	Events   events.Publisher
	Cache    ReadCache
	CacheTTL time.Duration
	Now      Clock
}

type ListParams struct {
	Category  string
	Search    string
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

func (s *CatalogService) ListProducts(ctx context.Context, p ListParams) (*transport.ProductsPage, error) {
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}
	if !store.ProductSortFields[sortBy] {
		return nil, wrap(ErrValidation, "Invalid sort field")
	}
	if p.MinPrice != nil && p.MaxPrice != nil && *p.MinPrice > *p.MaxPrice {
		return nil, wrap(ErrValidation, "minPrice cannot exceed maxPrice")
	}

	page, offset, limit := util.Calculate(p.Page, p.Limit)
	items, total, err := s.Store.ListProducts(ctx, store.ProductQuery{
		Category: strings.TrimSpace(p.Category),
		Search:   strings.TrimSpace(p.Search),
		MinPrice: p.MinPrice,
		MaxPrice: p.MaxPrice,
		SortBy:   sortBy,
		Desc:     p.SortOrder != "asc",
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return nil, storeErr(err, "Product")
	}
	if items == nil {
		items = []models.Product{}
	}
	return &transport.ProductsPage{
		Products: items,
		Pagination: transport.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: util.Pages(total, limit),
		},
	}, nil
}

// GetProduct counts a view on every successful fetch. The returned product
// carries the count from before this view.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.get_product", "product_id", id)

	if err := requireID(id, "product"); err != nil {
		return nil, err
	}
	p, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Product")
	}
	if err := s.Store.IncrementViews(ctx, id); err != nil {
		l.Warn("increment_views_failed", "error", err)
	}
	return p, nil
}

// Featured returns up to eight featured products, newest first, or the
// newest products when nothing is featured.
func (s *CatalogService) Featured(ctx context.Context) ([]models.Product, error) {
	var cached []models.Product
	if s.cached(ctx, cacheKeyFeatured, &cached) {
		return cached, nil
	}

	items, err := s.Store.FeaturedProducts(ctx, featuredLimit)
	if err != nil {
		return nil, storeErr(err, "Product")
	}
	if len(items) == 0 {
		items, err = s.Store.LatestProducts(ctx, featuredLimit)
		if err != nil {
			return nil, storeErr(err, "Product")
		}
	}
	if items == nil {
		items = []models.Product{}
	}
	s.remember(ctx, cacheKeyFeatured, items)
	return items, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product) (string, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	if err := checkAmounts("Price cannot be negative", p.Price, p.OriginalPrice); err != nil {
		return "", err
	}
	for _, v := range p.Variations {
		if err := checkAmounts("Variation price cannot be negative", v.Price); err != nil {
			return "", err
		}
	}
	now := s.Now.now()
	p.ID = ""
	p.Views, p.Sales = 0, 0
	p.AverageRating, p.TotalRatings = 0, 0
	p.CreatedAt, p.UpdatedAt = now, now

	if err := s.Store.CreateProduct(ctx, p); err != nil {
		l.Error("create_product_error", "status", 500, "error", err)
		return "", storeErr(err, "Product")
	}
	s.reindex(ctx, p)
	s.invalidate(ctx)
	publish(ctx, s.Events, events.TopicProducts, p.ID, events.ProductEvent{Type: "created", ProductID: p.ID, Title: p.Title, Price: p.Price})
	l.Info("create_product_success", "product_id", p.ID)
	return p.ID, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) error {
	l := logging.FromContext(ctx).With("svc", "catalog.update_product", "product_id", id)

	if err := requireID(id, "product"); err != nil {
		return err
	}
	if patch.Empty() {
		return wrap(ErrValidation, "No fields to update")
	}
	for _, v := range []*float64{patch.Price, patch.OriginalPrice} {
		if v == nil {
			continue
		}
		if err := checkAmounts("Price cannot be negative", *v); err != nil {
			return err
		}
	}
	if patch.Variations != nil {
		for _, v := range *patch.Variations {
			if err := checkAmounts("Variation price cannot be negative", v.Price); err != nil {
				return err
			}
		}
	}
	if err := s.Store.UpdateProduct(ctx, id, patch); err != nil {
		return storeErr(err, "Product")
	}
	s.invalidate(ctx)

	if p, err := s.Store.GetProduct(ctx, id); err == nil {
		s.reindex(ctx, p)
		publish(ctx, s.Events, events.TopicProducts, id, events.ProductEvent{Type: "updated", ProductID: id, Title: p.Title, Price: p.Price})
	} else {
		l.Warn("reload_product_failed", "error", err)
	}
	l.Info("update_product_success")
	return nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete_product", "product_id", id)

	if err := requireID(id, "product"); err != nil {
		return err
	}
	if err := s.Store.DeleteProduct(ctx, id); err != nil {
		return storeErr(err, "Product")
	}
	s.invalidate(ctx)
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			l.Warn("unindex_product_failed", "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProducts, id, events.ProductEvent{Type: "deleted", ProductID: id})
	l.Info("delete_product_success")
	return nil
}

func (s *CatalogService) reindex(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("index_product_failed", "product_id", p.ID, "error", err)
	}
}

// Search prefers the full-text index and falls back to a store substring
// query when no index is configured or the index fails.
func (s *CatalogService) Search(ctx context.Context, query string, page, size int) (*transport.SearchResponse, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, wrap(ErrValidation, "Search query is required")
	}
	page, offset, limit := util.Calculate(page, size)

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, query, offset, limit)
		if err == nil {
			return searchResponse(query, items, total, page, limit), nil
		}
		l.Warn("index_search_failed", "error", err)
	}

	items, total, err := s.Store.ListProducts(ctx, store.ProductQuery{
		Search: query,
		SortBy: "createdAt",
		Desc:   true,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, storeErr(err, "Product")
	}
	return searchResponse(query, items, total, page, limit), nil
}

func searchResponse(query string, items []models.Product, total int64, page, limit int) *transport.SearchResponse {
	if items == nil {
		items = []models.Product{}
	}
	return &transport.SearchResponse{
		Query:    query,
		Products: items,
		Pagination: transport.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: util.Pages(total, limit),
		},
	}
}

// AddRating stores the rating and recomputes the product's average over all
// of its ratings.
func (s *CatalogService) AddRating(ctx context.Context, r *models.Rating) (string, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.add_rating", "product_id", r.ProductID)

	if err := requireID(r.ProductID, "product"); err != nil {
		return "", err
	}
	if err := checkRating(r.Rating); err != nil {
		return "", err
	}
	if _, err := s.Store.GetProduct(ctx, r.ProductID); err != nil {
		return "", storeErr(err, "Product")
	}

	r.ID = ""
	r.CreatedAt = s.Now.now()
	if err := s.Store.CreateRating(ctx, r); err != nil {
		l.Error("add_rating_error", "status", 500, "error", err)
		return "", storeErr(err, "Rating")
	}
	if err := s.refreshRatingSummary(ctx, r.ProductID); err != nil {
		l.Error("add_rating_error", "status", 500, "reason", "cannot refresh summary", "error", err)
		return "", err
	}
	s.invalidate(ctx)
	publish(ctx, s.Events, events.TopicProducts, r.ProductID, events.ProductEvent{Type: "rated", ProductID: r.ProductID})
	l.Info("add_rating_success", "rating_id", r.ID)
	return r.ID, nil
}

func (s *CatalogService) refreshRatingSummary(ctx context.Context, productID string) error {
	stats, err := s.Store.RatingStats(ctx, productID)
	if err != nil {
		return storeErr(err, "Rating")
	}
	return storeErr(s.Store.SetRatingSummary(ctx, productID, stats), "Product")
}

func (s *CatalogService) ListRatings(ctx context.Context, productID string) ([]models.Rating, error) {
	items, err := s.Store.ListRatings(ctx, strings.TrimSpace(productID))
	if err != nil {
		return nil, storeErr(err, "Rating")
	}
	if items == nil {
		items = []models.Rating{}
	}
	return items, nil
}

func (s *CatalogService) DeleteRating(ctx context.Context, id string) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete_rating", "rating_id", id)

	if err := requireID(id, "review"); err != nil {
		return err
	}
	deleted, err := s.Store.DeleteRating(ctx, id)
	if err != nil {
		return storeErr(err, "Review")
	}
	if store.ValidID(deleted.ProductID) {
		if err := s.refreshRatingSummary(ctx, deleted.ProductID); err != nil && !errors.Is(err, ErrNotFound) {
			l.Warn("refresh_rating_summary_failed", "product_id", deleted.ProductID, "error", err)
		}
	}
	s.invalidate(ctx)
	l.Info("delete_rating_success")
	return nil
}

// Categories lists the stored categories, or derives them from the distinct
// product categories when none are stored.
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	var cached []models.Category
	if s.cached(ctx, cacheKeyCategories, &cached) {
		return cached, nil
	}

	cats, err := s.Store.ListCategories(ctx)
	if err != nil {
		return nil, storeErr(err, "Category")
	}
	if len(cats) > 0 {
		s.remember(ctx, cacheKeyCategories, cats)
		return cats, nil
	}

	names, err := s.Store.DistinctCategories(ctx)
	if err != nil {
		return nil, storeErr(err, "Category")
	}
	cats = make([]models.Category, 0, len(names))
	for _, n := range names {
		cats = append(cats, models.Category{Name: n, Slug: util.Slugify(n)})
	}
	s.remember(ctx, cacheKeyCategories, cats)
	return cats, nil
}

func (s *CatalogService) cached(ctx context.Context, key string, dest any) bool {
	if s.Cache == nil {
		return false
	}
	ok, err := s.Cache.GetJSON(ctx, key, dest)
	if err != nil {
		logging.FromContext(ctx).Warn("cache_get_failed", "key", key, "error", err)
		return false
	}
	return ok
}

func (s *CatalogService) remember(ctx context.Context, key string, v any) {
	if s.Cache == nil {
		return
	}
	ttl := s.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if err := s.Cache.SetJSON(ctx, key, v, ttl); err != nil {
		logging.FromContext(ctx).Warn("cache_set_failed", "key", key, "error", err)
	}
}

// invalidate drops every cached read a catalog write can change.
func (s *CatalogService) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, cacheKeyFeatured, cacheKeyCategories); err != nil {
		logging.FromContext(ctx).Warn("cache_invalidate_failed", "error", err)
	}
}
