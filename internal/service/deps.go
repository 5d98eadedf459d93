package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/Skotchmaster/droneshop/internal/events"
	"github.com/Skotchmaster/droneshop/internal/logging"
	"github.com/Skotchmaster/droneshop/internal/mailer"
	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
)

// ProductIndex is the optional full-text index kept in sync with the catalog.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

// ReadCache holds short-lived copies of catalog reads. Cache failures are
// logged and never fail a request.
type ReadCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// MailQueue accepts messages for background delivery.
type MailQueue interface {
	Enqueue(msg mailer.Message) bool
}

type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

func (c Clock) now() time.Time {
	if c == nil {
		return utcNow()
	}
	return c().UTC()
}

// publish emits a domain event without letting broker trouble reach the caller.
func publish(ctx context.Context, p events.Publisher, topic, key string, event any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "key", key, "error", err)
	}
}

// storeErr lifts store sentinels into service sentinels.
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return wrap(ErrNotFound, what+" not found")
	case errors.Is(err, context.DeadlineExceeded):
		return errors.Join(ErrUnavailable, err)
	default:
		return err
	}
}

// checkAmounts rejects NaN, infinities and negatives. The JSON encoder
// cannot write non-finite numbers back out.
func checkAmounts(msg string, vs ...float64) error {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return wrap(ErrValidation, msg)
		}
	}
	return nil
}

func checkRating(v float64) error {
	if math.IsNaN(v) || v < 1 || v > 5 {
		return wrap(ErrValidation, "Rating must be between 1 and 5")
	}
	if v != math.Trunc(v) {
		return wrap(ErrValidation, "Rating must be a whole number")
	}
	return nil
}

func requireID(id, what string) error {
	if !store.ValidID(id) {
		return wrap(ErrValidation, "Invalid "+what+" ID")
	}
	return nil
}

type wrapped struct {
	kind error
	msg  string
}

func (w *wrapped) Error() string { return w.msg }
func (w *wrapped) Unwrap() error { return w.kind }

// wrap attaches a client-facing message to a sentinel.
func wrap(kind error, msg string) error {
	return &wrapped{kind: kind, msg: msg}
}

// Message returns the client-facing message attached to err, if any.
func Message(err error) (string, bool) {
	var w *wrapped
	if errors.As(err, &w) {
		return w.msg, true
	}
	return "", false
}
