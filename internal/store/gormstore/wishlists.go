package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
)

type wishlistRow struct {
	Email     string `gorm:"primaryKey;size:320"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (wishlistRow) TableName() string { return "wishlists" }

type wishlistEntry struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	WishlistEmail string `gorm:"size:320;not null;uniqueIndex:ux_wishlist_entry,priority:1"`
	ProductID     string `gorm:"size:64;not null;uniqueIndex:ux_wishlist_entry,priority:2"`
}

func (wishlistEntry) TableName() string { return "wishlist_entries" }

func loadWishlistItems(tx *gorm.DB, email string) ([]string, error) {
	items := []string{}
	err := tx.Model(&wishlistEntry{}).Where("wishlist_email = ?", email).Order("id").Pluck("product_id", &items).Error
	return items, err
}

func (r *GormRepo) GetWishlist(ctx context.Context, email string) (*models.Wishlist, error) {
	var w *models.Wishlist
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row wishlistRow
		if err := tx.Where("email = ?", email).First(&row).Error; err != nil {
			return mapErr(err)
		}
		items, err := loadWishlistItems(tx, email)
		if err != nil {
			return err
		}
		w = &models.Wishlist{Email: row.Email, Items: items, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt}
		return nil
	})
	return w, err
}

func (r *GormRepo) AddWishlistItem(ctx context.Context, email, productID string) ([]string, error) {
	var items []string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(map[string]any{"updated_at": now}),
		}).Create(&wishlistRow{Email: email, CreatedAt: now, UpdatedAt: now}).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&wishlistEntry{WishlistEmail: email, ProductID: productID}).Error; err != nil {
			return err
		}
		var err error
		items, err = loadWishlistItems(tx, email)
		return err
	})
	return items, err
}

func (r *GormRepo) RemoveWishlistItem(ctx context.Context, email, productID string) ([]string, error) {
	var items []string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&wishlistRow{}).Where("email = ?", email).Update("updated_at", time.Now().UTC())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		if err := tx.Where("wishlist_email = ? AND product_id = ?", email, productID).Delete(&wishlistEntry{}).Error; err != nil {
			return err
		}
		var err error
		items, err = loadWishlistItems(tx, email)
		return err
	})
	return items, err
}

func (r *GormRepo) DeleteWishlist(ctx context.Context, email string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("wishlist_email = ?", email).Delete(&wishlistEntry{}).Error; err != nil {
			return err
		}
		return tx.Where("email = ?", email).Delete(&wishlistRow{}).Error
	})
}
