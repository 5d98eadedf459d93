package service

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/droneshop/internal/events"
	"github.com/Skotchmaster/droneshop/internal/logging"
	"github.com/Skotchmaster/droneshop/internal/mailer"
	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
)

const (
	trackingAttempts = 3
	trackingAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

type OrderStore interface {
	store.Orders
	store.Carts
	store.Products
}

type OrderService struct {
	Store  OrderStore
	Mail   MailQueue
	Site   mailer.Site
	Events events.Publisher
	Now    Clock
}

// NewTrackingNumber returns TRK, the epoch milliseconds and five random
// upper-case base36 characters.
func NewTrackingNumber(now time.Time) string {
	var b strings.Builder
	b.WriteString("TRK")
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	for i := 0; i < 5; i++ {
		b.WriteByte(trackingAlphabet[rand.Intn(len(trackingAlphabet))])
	}
	return b.String()
}

// PlaceOrder persists the order as Pending with its first history entry.
// Clearing the cart, counting sales and the confirmation email happen after
// the order is stored and never fail the call.
func (s *OrderService) PlaceOrder(ctx context.Context, o *models.Order) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.place_order", "email", o.Email)

	if len(o.Items) == 0 {
		return nil, wrap(ErrValidation, "Order must contain at least one item")
	}
	if err := checkAmounts("Amounts cannot be negative", o.Subtotal, o.ShippingCost, o.Total); err != nil {
		return nil, err
	}
	for _, it := range o.Items {
		if err := checkAmounts("Price cannot be negative", it.Price); err != nil {
			return nil, err
		}
	}

	now := s.Now.now()
	o.Status = models.OrderStatusPending
	o.StatusHistory = []models.StatusEntry{{
		Status:      models.OrderStatusPending,
		Date:        now,
		Description: "Order placed successfully",
	}}
	if o.Payment.Status == "" {
		o.Payment.Status = "pending"
	}
	o.CreatedAt, o.UpdatedAt = now, now

	var err error
	for attempt := 1; attempt <= trackingAttempts; attempt++ {
		o.ID = ""
		o.TrackingNumber = NewTrackingNumber(now)
		err = s.Store.CreateOrder(ctx, o)
		if !errors.Is(err, store.ErrDuplicate) {
			break
		}
		l.Warn("tracking_number_collision", "attempt", attempt, "tracking_number", o.TrackingNumber)
	}
	if err != nil {
		l.Error("place_order_error", "status", 500, "error", err)
		return nil, storeErr(err, "Order")
	}

	if o.Email != "" {
		if err := s.Store.ClearCart(ctx, o.Email); err != nil {
			l.Warn("clear_cart_failed", "error", err)
		}
	}
	for _, it := range o.Items {
		if !store.ValidID(it.ProductID) {
			continue
		}
		if err := s.Store.IncrementSales(ctx, it.ProductID, it.Quantity); err != nil && !errors.Is(err, store.ErrNotFound) {
			l.Warn("increment_sales_failed", "product_id", it.ProductID, "error", err)
		}
	}
	s.enqueueConfirmation(ctx, o)
	publish(ctx, s.Events, events.TopicOrders, o.ID, events.OrderEvent{
		Type:           "placed",
		OrderID:        o.ID,
		TrackingNumber: o.TrackingNumber,
		Email:          o.Email,
		Status:         o.Status,
		Total:          o.Total,
	})

	l.Info("place_order_success", "order_id", o.ID, "tracking_number", o.TrackingNumber)
	return o, nil
}

func (s *OrderService) enqueueConfirmation(ctx context.Context, o *models.Order) {
	l := logging.FromContext(ctx)
	to := o.RecipientEmail()
	if s.Mail == nil || to == "" {
		return
	}
	msg, err := mailer.OrderConfirmationMessage(s.Site, to, o)
	if err != nil {
		l.Error("order_email_render_failed", "order_id", o.ID, "error", err)
		return
	}
	if !s.Mail.Enqueue(msg) {
		l.Info("order_email_skipped", "order_id", o.ID)
	}
}

// UpdateStatus appends to the status history. Any status may follow any other.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status, trackingNumber string) error {
	l := logging.FromContext(ctx).With("svc", "order.update_status", "order_id", id)

	if err := requireID(id, "order"); err != nil {
		return err
	}
	status = strings.TrimSpace(status)
	if status == "" {
		return wrap(ErrValidation, "Status is required")
	}

	entry := models.StatusEntry{
		Status:      status,
		Date:        s.Now.now(),
		Description: "Order status changed to " + status,
	}
	if err := s.Store.AppendStatus(ctx, id, entry, strings.TrimSpace(trackingNumber)); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return wrap(ErrConflict, "Tracking number already in use")
		}
		return storeErr(err, "Order")
	}

	publish(ctx, s.Events, events.TopicOrders, id, events.OrderEvent{Type: "status_changed", OrderID: id, Status: status, TrackingNumber: trackingNumber})
	l.Info("update_status_success", "new_status", status)
	return nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	if err := requireID(id, "order"); err != nil {
		return nil, err
	}
	o, err := s.Store.GetOrder(ctx, id)
	return o, storeErr(err, "Order")
}

func (s *OrderService) GetByTracking(ctx context.Context, trackingNumber string) (*models.Order, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, wrap(ErrValidation, "Tracking number is required")
	}
	o, err := s.Store.GetOrderByTracking(ctx, trackingNumber)
	return o, storeErr(err, "Order")
}

func (s *OrderService) List(ctx context.Context, f store.OrderFilter) ([]models.Order, error) {
	orders, err := s.Store.ListOrders(ctx, f)
	if err != nil {
		return nil, storeErr(err, "Order")
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	if err := requireID(id, "order"); err != nil {
		return err
	}
	if err := s.Store.DeleteOrder(ctx, id); err != nil {
		return storeErr(err, "Order")
	}
	publish(ctx, s.Events, events.TopicOrders, id, events.OrderEvent{Type: "deleted", OrderID: id})
	return nil
}
