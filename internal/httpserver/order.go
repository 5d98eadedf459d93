package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/droneshop/internal/logging"
	"github.com/Skotchmaster/droneshop/internal/service"
	"github.com/Skotchmaster/droneshop/internal/store"
	"github.com/Skotchmaster/droneshop/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.place_order")

	var req transport.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "place_order_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "place_order_error", err, "")
	}

	o, err := h.Svc.PlaceOrder(ctx, req.Order())
	if err != nil {
		return fail(l, "place_order_error", err, "Failed to create order")
	}
	return c.JSON(http.StatusOK, transport.PlaceOrderResponse{
		Success:        true,
		OrderID:        o.ID,
		InsertedID:     o.ID,
		TrackingNumber: o.TrackingNumber,
	})
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders")

	orders, err := h.Svc.List(ctx, store.OrderFilter{
		Email:  strings.TrimSpace(c.QueryParam("email")),
		Status: strings.TrimSpace(c.QueryParam("status")),
	})
	if err != nil {
		return fail(l, "get_orders_error", err, "Failed to fetch orders")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	o, err := h.Svc.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "get_order_error", err, "Failed to fetch order details")
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) TrackOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.track_order")

	o, err := h.Svc.GetByTracking(ctx, c.Param("trackingNumber"))
	if err != nil {
		return fail(l, "track_order_error", err, "Failed to fetch order")
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	var req transport.OrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_status_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "update_status_error", err, "")
	}

	if err := h.Svc.UpdateStatus(ctx, c.Param("id"), req.Status, req.TrackingNumber); err != nil {
		return fail(l, "update_status_error", err, "Failed to update order status")
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true, Message: "Order status updated"})
}

func (h *OrderHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete_order")

	if err := h.Svc.Delete(ctx, c.Param("id")); err != nil {
		return fail(l, "delete_order_error", err, "Failed to delete order")
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true, Message: "Order deleted successfully"})
}
