package gormstore

import (
	"context"

	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
)

func (r *GormRepo) CreateRating(ctx context.Context, rating *models.Rating) error {
	if rating.ID == "" {
		rating.ID = store.NewID()
	}
	return mapErr(r.DB.WithContext(ctx).Create(rating).Error)
}

func (r *GormRepo) ListRatings(ctx context.Context, productID string) ([]models.Rating, error) {
	db := r.DB.WithContext(ctx).Model(&models.Rating{})
	if productID != "" {
		db = db.Where("product_id = ?", productID)
	}
	var out []models.Rating
	err := db.Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, err
}

func (r *GormRepo) RatingStats(ctx context.Context, productID string) (store.RatingStats, error) {
	var stats store.RatingStats
	err := r.DB.WithContext(ctx).Model(&models.Rating{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total").
		Where("product_id = ?", productID).
		Scan(&stats).Error
	return stats, err
}

func (r *GormRepo) DeleteRating(ctx context.Context, id string) (*models.Rating, error) {
	var rating models.Rating
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&rating).Error; err != nil {
		return nil, mapErr(err)
	}
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Rating{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return &rating, nil
}
