package gormstore

import (
	"context"

	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
)

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := r.DB.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = store.NewID()
	}
	return mapErr(r.DB.WithContext(ctx).Create(c).Error)
}
