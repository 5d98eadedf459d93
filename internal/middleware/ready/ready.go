package readymw

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/droneshop/internal/logging"
)

const NotReadyMessage = "Database not connected. Please check the database connection."

type Pinger interface {
	Ping(ctx context.Context) error
}

// Probe tracks whether the store answers pings. Requests are rejected while
// the last ping failed.
type Probe struct {
	store   Pinger
	timeout time.Duration
	ready   atomic.Bool
}

func NewProbe(store Pinger, timeout time.Duration) *Probe {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Probe{store: store, timeout: timeout}
}

func (p *Probe) Ready() bool { return p.ready.Load() }

// Check pings the store once and records the outcome.
func (p *Probe) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.store.Ping(ctx)
	was := p.ready.Swap(err == nil)

	l := logging.FromContext(ctx).With("component", "ready_probe")
	switch {
	case err != nil && was:
		l.Error("store_unreachable", "error", err)
	case err == nil && !was:
		l.Info("store_ready")
	}
	return err == nil
}

const defaultInterval = 5 * time.Second

// Run checks the store every interval until ctx is done. A non-positive
// interval falls back to five seconds.
func (p *Probe) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultInterval
	}
	p.Check(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.Check(ctx)
		}
	}
}

// Middleware answers 503 while the store is not reachable.
func (p *Probe) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !p.Ready() {
				logging.FromContext(c.Request().Context()).Warn("request_rejected", "status", 503, "reason", "store not ready")
				return echo.NewHTTPError(http.StatusServiceUnavailable, NotReadyMessage)
			}
			return next(c)
		}
	}
}
