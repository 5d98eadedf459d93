package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
)

type orderLine struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	OrderID   string `gorm:"size:24;not null;index"`
	ProductID string `gorm:"size:64"`
	Title     string
	Img       string
	Price     float64 `gorm:"not null"`
	Quantity  int     `gorm:"not null"`
	Variation *string
}

func (orderLine) TableName() string { return "order_lines" }

// statusRow is append-only; row order is history order.
type statusRow struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	OrderID     string `gorm:"size:24;not null;index"`
	Status      string `gorm:"not null"`
	Date        time.Time
	Description string
}

func (statusRow) TableName() string { return "order_status_history" }

func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	if o.ID == "" {
		o.ID = store.NewID()
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			return mapErr(err)
		}
		if len(o.Items) > 0 {
			lines := make([]orderLine, 0, len(o.Items))
			for _, it := range o.Items {
				lines = append(lines, orderLine{
					OrderID:   o.ID,
					ProductID: it.ProductID,
					Title:     it.Title,
					Img:       it.Img,
					Price:     it.Price,
					Quantity:  it.Quantity,
					Variation: it.Variation,
				})
			}
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}
		if len(o.StatusHistory) > 0 {
			rows := make([]statusRow, 0, len(o.StatusHistory))
			for _, h := range o.StatusHistory {
				rows = append(rows, statusRow{OrderID: o.ID, Status: h.Status, Date: h.Date, Description: h.Description})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormRepo) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return r.findOrder(ctx, "id = ?", id)
}

func (r *GormRepo) GetOrderByTracking(ctx context.Context, trackingNumber string) (*models.Order, error) {
	return r.findOrder(ctx, "tracking_number = ?", trackingNumber)
}

func (r *GormRepo) findOrder(ctx context.Context, cond string, arg any) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Where(cond, arg).First(&o).Error; err != nil {
		return nil, mapErr(err)
	}
	orders := []models.Order{o}
	if err := attachOrderChildren(r.DB.WithContext(ctx), orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *GormRepo) ListOrders(ctx context.Context, f store.OrderFilter) ([]models.Order, error) {
	db := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.Email != "" {
		db = db.Where("email = ?", f.Email)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	orders := []models.Order{}
	if err := db.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	if err := attachOrderChildren(r.DB.WithContext(ctx), orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func attachOrderChildren(db *gorm.DB, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	idx := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		idx[o.ID] = i
		orders[i].Items = []models.OrderItem{}
		orders[i].StatusHistory = []models.StatusEntry{}
	}

	var lines []orderLine
	if err := db.Where("order_id IN ?", ids).Order("id").Find(&lines).Error; err != nil {
		return err
	}
	for _, l := range lines {
		i := idx[l.OrderID]
		orders[i].Items = append(orders[i].Items, models.OrderItem{
			ProductID: l.ProductID,
			Title:     l.Title,
			Img:       l.Img,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Variation: l.Variation,
		})
	}

	var history []statusRow
	if err := db.Where("order_id IN ?", ids).Order("id").Find(&history).Error; err != nil {
		return err
	}
	for _, h := range history {
		i := idx[h.OrderID]
		orders[i].StatusHistory = append(orders[i].StatusHistory, models.StatusEntry{
			Status:      h.Status,
			Date:        h.Date,
			Description: h.Description,
		})
	}
	return nil
}

func (r *GormRepo) AppendStatus(ctx context.Context, id string, entry models.StatusEntry, trackingNumber string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]any{"status": entry.Status, "updated_at": entry.Date}
		if trackingNumber != "" {
			fields["tracking_number"] = trackingNumber
		}
		res := tx.Model(&models.Order{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return mapErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return tx.Create(&statusRow{
			OrderID:     id,
			Status:      entry.Status,
			Date:        entry.Date,
			Description: entry.Description,
		}).Error
	})
}

func (r *GormRepo) DeleteOrder(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		if err := tx.Where("order_id = ?", id).Delete(&orderLine{}).Error; err != nil {
			return err
		}
		return tx.Where("order_id = ?", id).Delete(&statusRow{}).Error
	})
}
