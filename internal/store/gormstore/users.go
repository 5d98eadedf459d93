package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = store.NewID()
	}
	return mapErr(r.DB.WithContext(ctx).Create(u).Error)
}

// UpsertUser overwrites the non-empty profile fields of u. Role and active
// state are only written when the profile is created.
func (r *GormRepo) UpsertUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = store.NewID()
	}
	cols := []string{"updated_at"}
	for col, v := range map[string]string{
		"name":         u.Name,
		"display_name": u.DisplayName,
		"phone":        u.Phone,
		"address":      u.Address,
		"photo_url":    u.PhotoURL,
	} {
		if v != "" {
			cols = append(cols, col)
		}
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).Create(u).Error
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *GormRepo) ListUsers(ctx context.Context, f store.UserFilter) ([]models.User, error) {
	db := r.DB.WithContext(ctx).Model(&models.User{})
	if f.Active != nil {
		if *f.Active {
			db = db.Where("(active IS NULL OR active = ?)", true)
		} else {
			db = db.Where("active = ?", false)
		}
	}
	var out []models.User
	err := db.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *GormRepo) SetUserRole(ctx context.Context, email, role string) error {
	return r.updateUser(ctx, email, map[string]any{"role": role})
}

func (r *GormRepo) SetUserActive(ctx context.Context, email string, active bool) error {
	return r.updateUser(ctx, email, map[string]any{"active": active})
}

func (r *GormRepo) updateUser(ctx context.Context, email string, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteUser(ctx context.Context, email string) (bool, error) {
	res := r.DB.WithContext(ctx).Where("email = ?", email).Delete(&models.User{})
	return res.RowsAffected > 0, res.Error
}
