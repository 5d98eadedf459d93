package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
)

func (r *GormRepo) CreateAuth(ctx context.Context, a *models.Auth) error {
	if a.ID == "" {
		a.ID = store.NewID()
	}
	return mapErr(r.DB.WithContext(ctx).Create(a).Error)
}

func (r *GormRepo) GetAuthByEmail(ctx context.Context, email string) (*models.Auth, error) {
	var a models.Auth
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (r *GormRepo) RedeemVerifyToken(ctx context.Context, token string, now time.Time) (string, error) {
	var email string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Auth
		if err := tx.Where("email_verify_token = ? AND email_verify_expires > ?", token, now).First(&a).Error; err != nil {
			return mapErr(err)
		}
		res := tx.Model(&models.Auth{}).
			Where("id = ? AND email_verify_token = ?", a.ID, token).
			Updates(map[string]any{
				"email_verified":       true,
				"email_verify_token":   nil,
				"email_verify_expires": nil,
				"updated_at":           now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		email = a.Email
		return nil
	})
	return email, err
}

func (r *GormRepo) SetVerifyToken(ctx context.Context, email, token string, expires time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.Auth{}).
		Where("email = ?", email).
		Updates(map[string]any{
			"email_verify_token":   token,
			"email_verify_expires": expires,
			"updated_at":           time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteAuth(ctx context.Context, email string) (bool, error) {
	res := r.DB.WithContext(ctx).Where("email = ?", email).Delete(&models.Auth{})
	return res.RowsAffected > 0, res.Error
}
