package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/droneshop/internal/mailer"
	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store/gormstore"
)

func newTestStore(t *testing.T) *gormstore.GormRepo {
	t.Helper()
	r, err := gormstore.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, r.Migrate(context.Background()))
	t.Cleanup(func() { _ = r.Close(context.Background()) })
	return r
}

type fakeSender struct {
	mu         sync.Mutex
	configured bool
	err        error
	sent       []mailer.Message
}

func (f *fakeSender) Configured() bool { return f.configured }

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeQueue struct {
	mu     sync.Mutex
	reject bool
	msgs   []mailer.Message
}

func (f *fakeQueue) Enqueue(msg mailer.Message) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reject {
		return false
	}
	f.msgs = append(f.msgs, msg)
	return true
}

type publishedEvent struct {
	Topic string
	Key   string
	Event any
}

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	events []publishedEvent
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{Topic: topic, Key: key, Event: event})
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) topics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Topic)
	}
	return out
}

type fakeIndex struct {
	mu      sync.Mutex
	err     error
	indexed map[string]models.Product
	deleted []string
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexed: map[string]models.Product{}}
}

func (f *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[p.ID] = *p
	return f.err
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.indexed, id)
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeIndex) Search(_ context.Context, _ string, _, _ int) (int64, []models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, nil, f.err
	}
	out := make([]models.Product, 0, len(f.indexed))
	for _, p := range f.indexed {
		out = append(out, p)
	}
	return int64(len(out)), out, nil
}

// fixedClock returns a settable clock for expiry tests.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errBoom = errors.New("boom")
