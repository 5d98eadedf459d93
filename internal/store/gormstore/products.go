package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
)

var productColumns = map[string]string{
	"title":         "title",
	"price":         "price",
	"originalPrice": "original_price",
	"category":      "category",
	"stock":         "stock",
	"views":         "views",
	"sales":         "sales",
	"averageRating": "average_rating",
	"totalRatings":  "total_ratings",
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = store.NewID()
	}
	return mapErr(r.DB.WithContext(ctx).Create(p).Error)
}

func (r *GormRepo) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, mapErr(err)
	}
	return &product, nil
}

func (r *GormRepo) filteredProducts(ctx context.Context, q store.ProductQuery) *gorm.DB {
	db := r.DB.WithContext(ctx).Model(&models.Product{})
	if q.Category != "" {
		db = db.Where("category = ?", q.Category)
	}
	if q.Search != "" {
		pattern := containsPattern(q.Search)
		db = db.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if q.MinPrice != nil {
		db = db.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		db = db.Where("price <= ?", *q.MaxPrice)
	}
	return db
}

func (r *GormRepo) ListProducts(ctx context.Context, q store.ProductQuery) ([]models.Product, int64, error) {
	var total int64
	if err := r.filteredProducts(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, ok := productColumns[q.SortBy]
	if !ok {
		col = "created_at"
	}

	items := make([]models.Product, 0, q.Limit)
	if err := r.filteredProducts(ctx, q).
		Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: q.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: q.Desc}).
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *GormRepo) FeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	var items []models.Product
	err := r.DB.WithContext(ctx).
		Where("featured = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *GormRepo) LatestProducts(ctx context.Context, limit int) ([]models.Product, error) {
	var items []models.Product
	err := r.DB.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&items).Error
	return items, err
}

func (r *GormRepo) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) error {
	upd := models.Product{UpdatedAt: time.Now().UTC()}
	cols := []string{"updated_at"}

	if patch.Title != nil {
		upd.Title = *patch.Title
		cols = append(cols, "title")
	}
	if patch.Description != nil {
		upd.Description = *patch.Description
		cols = append(cols, "description")
	}
	if patch.Img != nil {
		upd.Img = *patch.Img
		cols = append(cols, "img")
	}
	if patch.Price != nil {
		upd.Price = *patch.Price
		cols = append(cols, "price")
	}
	if patch.OriginalPrice != nil {
		upd.OriginalPrice = *patch.OriginalPrice
		cols = append(cols, "original_price")
	}
	if patch.Category != nil {
		upd.Category = *patch.Category
		cols = append(cols, "category")
	}
	if patch.Stock != nil {
		upd.Stock = *patch.Stock
		cols = append(cols, "stock")
	}
	if patch.Featured != nil {
		upd.Featured = *patch.Featured
		cols = append(cols, "featured")
	}
	if patch.Variations != nil {
		upd.Variations = *patch.Variations
		cols = append(cols, "variations")
	}

	res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Select(cols).Updates(&upd)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *GormRepo) IncrementViews(ctx context.Context, id string) error {
	return r.increment(ctx, id, "views", 1)
}

func (r *GormRepo) IncrementSales(ctx context.Context, id string, qty int) error {
	return r.increment(ctx, id, "sales", qty)
}

func (r *GormRepo) increment(ctx context.Context, id, column string, by int) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", by))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *GormRepo) SetRatingSummary(ctx context.Context, id string, stats store.RatingStats) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"average_rating": stats.Average,
			"total_ratings":  stats.Total,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *GormRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	var out []string
	err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("category <> ''").
		Order("category").
		Distinct().
		Pluck("category", &out).Error
	return out, err
}
