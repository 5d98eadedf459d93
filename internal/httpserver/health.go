package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/droneshop/internal/transport"
)

type Readiness interface {
	Ready() bool
}

type HealthHTTP struct {
	Ready Readiness
	Now   func() time.Time
}

func (h *HealthHTTP) database() string {
	if h.Ready != nil && h.Ready.Ready() {
		return "connected"
	}
	return "disconnected"
}

func (h *HealthHTTP) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, transport.RootResponse{
		Message:  "Drone server is running",
		Database: h.database(),
	})
}

func (h *HealthHTTP) Health(c echo.Context) error {
	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now()
	}
	return c.JSON(http.StatusOK, transport.HealthResponse{
		Status:    "ok",
		Database:  h.database(),
		Timestamp: now,
	})
}

func (h *HealthHTTP) Live(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h *HealthHTTP) ReadyCheck(c echo.Context) error {
	if h.database() != "connected" {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}
