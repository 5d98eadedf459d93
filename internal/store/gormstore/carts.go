package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
)

type cartRow struct {
	Email     string `gorm:"primaryKey;size:320"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (cartRow) TableName() string { return "carts" }

// cartLine stores the base product under an empty Variation so that the
// unique index treats it as a single line.
type cartLine struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	CartEmail string `gorm:"size:320;not null;uniqueIndex:ux_cart_line,priority:1"`
	ProductID string `gorm:"size:64;not null;uniqueIndex:ux_cart_line,priority:2"`
	Variation string `gorm:"size:255;not null;uniqueIndex:ux_cart_line,priority:3"`
	Title     string `gorm:"not null"`
	Img       string
	Price     float64 `gorm:"not null"`
	Quantity  int     `gorm:"not null"`
}

func (cartLine) TableName() string { return "cart_lines" }

func (l cartLine) toModel() models.CartItem {
	item := models.CartItem{
		ProductID: l.ProductID,
		Title:     l.Title,
		Img:       l.Img,
		Price:     l.Price,
		Quantity:  l.Quantity,
	}
	if l.Variation != "" {
		v := l.Variation
		item.Variation = &v
	}
	return item
}

func loadCartItems(tx *gorm.DB, email string) ([]models.CartItem, error) {
	var lines []cartLine
	if err := tx.Where("cart_email = ?", email).Order("id").Find(&lines).Error; err != nil {
		return nil, err
	}
	items := make([]models.CartItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, l.toModel())
	}
	return items, nil
}

func touchCart(tx *gorm.DB, email string) (bool, error) {
	res := tx.Model(&cartRow{}).Where("email = ?", email).Update("updated_at", time.Now().UTC())
	return res.RowsAffected > 0, res.Error
}

func (r *GormRepo) GetCart(ctx context.Context, email string) (*models.Cart, error) {
	var cart *models.Cart
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row cartRow
		if err := tx.Where("email = ?", email).First(&row).Error; err != nil {
			return mapErr(err)
		}
		items, err := loadCartItems(tx, email)
		if err != nil {
			return err
		}
		cart = &models.Cart{Email: row.Email, Items: items, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt}
		return nil
	})
	return cart, err
}

func (r *GormRepo) AddCartItem(ctx context.Context, email string, item models.CartItem) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(map[string]any{"updated_at": now}),
		}).Create(&cartRow{Email: email, CreatedAt: now, UpdatedAt: now}).Error; err != nil {
			return err
		}

		line := cartLine{
			CartEmail: email,
			ProductID: item.ProductID,
			Variation: models.VariationKey(item.Variation),
			Title:     item.Title,
			Img:       item.Img,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_email"}, {Name: "product_id"}, {Name: "variation"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity": gorm.Expr("cart_lines.quantity + excluded.quantity"),
			}),
		}).Create(&line).Error; err != nil {
			return err
		}

		var err error
		items, err = loadCartItems(tx, email)
		return err
	})
	return items, err
}

func (r *GormRepo) SetCartItemQuantity(ctx context.Context, email, productID string, variation *string, qty int) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := touchCart(tx, email)
		if err != nil {
			return err
		}
		if !found {
			return store.ErrNotFound
		}

		line := tx.Where("cart_email = ? AND product_id = ? AND variation = ?", email, productID, models.VariationKey(variation))
		if qty <= 0 {
			err = line.Delete(&cartLine{}).Error
		} else {
			err = line.Model(&cartLine{}).Update("quantity", qty).Error
		}
		if err != nil {
			return err
		}

		items, err = loadCartItems(tx, email)
		return err
	})
	return items, err
}

func (r *GormRepo) RemoveCartItem(ctx context.Context, email, productID string, variation *string) ([]models.CartItem, error) {
	return r.SetCartItemQuantity(ctx, email, productID, variation, 0)
}

func (r *GormRepo) ClearCart(ctx context.Context, email string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_email = ?", email).Delete(&cartLine{}).Error; err != nil {
			return err
		}
		_, err := touchCart(tx, email)
		return err
	})
}

func (r *GormRepo) DeleteCart(ctx context.Context, email string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_email = ?", email).Delete(&cartLine{}).Error; err != nil {
			return err
		}
		return tx.Where("email = ?", email).Delete(&cartRow{}).Error
	})
}
