package readymw

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type fakePinger struct {
	down atomic.Bool
}

func (f *fakePinger) Ping(context.Context) error {
	if f.down.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func TestProbe_Middleware(t *testing.T) {
	t.Parallel()

	pinger := &fakePinger{}
	p := NewProbe(pinger, time.Second)

	e := echo.New()
	e.GET("/products", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, p.Middleware())

	do := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
		return rec
	}

	assert.False(t, p.Ready(), "not ready before the first check")
	rec := do()
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Database not connected")

	assert.True(t, p.Check(context.Background()))
	assert.Equal(t, http.StatusOK, do().Code)

	pinger.down.Store(true)
	assert.False(t, p.Check(context.Background()))
	assert.Equal(t, http.StatusServiceUnavailable, do().Code)
}

func TestProbe_RunStopsWithContext(t *testing.T) {
	t.Parallel()

	p := NewProbe(&fakePinger{}, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, p.Ready, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("probe did not stop")
	}
}

func TestProbe_RunWithoutInterval(t *testing.T) {
	t.Parallel()

	p := NewProbe(&fakePinger{}, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx, 0)
		close(done)
	}()

	assert.Eventually(t, p.Ready, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("probe did not stop")
	}
}
