package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/droneshop/internal/logging"
	"github.com/Skotchmaster/droneshop/internal/service"
	"github.com/Skotchmaster/droneshop/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	var req transport.CartAddRequest
	if err := c.Bind(&req); err != nil {
		return withSuccessFalse(badBody(l, "add_item_error", err))
	}
	if err := c.Validate(&req); err != nil {
		return withSuccessFalse(fail(l, "add_item_error", err, ""))
	}
	if he := notOwner(c, l, "add_item_error", req.Email); he != nil {
		return withSuccessFalse(he)
	}

	items, err := h.Svc.AddItem(ctx, req.Email, req.Item())
	if err != nil {
		return withSuccessFalse(fail(l, "add_item_error", err, "Failed to add to cart"))
	}

	l.Info("add_item_success", "product_id", req.Product.ID)
	return c.JSON(http.StatusOK, transport.CartResponse{
		Success: true,
		Cart:    items,
		Message: "Item added to cart successfully",
	})
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_cart")

	email := pathEmail(c)
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email is required")
	}
	if he := notOwner(c, l, "get_cart_error", email); he != nil {
		return he
	}
	items, err := h.Svc.Items(ctx, email)
	if err != nil {
		return fail(l, "get_cart_error", err, "Failed to fetch cart")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	var req transport.CartUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_item_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "update_item_error", err, "")
	}
	if he := notOwner(c, l, "update_item_error", req.Email); he != nil {
		return he
	}

	items, err := h.Svc.UpdateQuantity(ctx, req.Email, req.ProductID, req.Variation, req.Quantity)
	if err != nil {
		return fail(l, "update_item_error", err, "Failed to update cart")
	}
	return c.JSON(http.StatusOK, transport.CartResponse{Success: true, Cart: items})
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	var req transport.CartRemoveRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "remove_item_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "remove_item_error", err, "")
	}
	if he := notOwner(c, l, "remove_item_error", req.Email); he != nil {
		return he
	}

	items, err := h.Svc.RemoveItem(ctx, req.Email, req.ProductID, req.Variation)
	if err != nil {
		return fail(l, "remove_item_error", err, "Failed to remove from cart")
	}
	return c.JSON(http.StatusOK, transport.CartResponse{Success: true, Cart: items})
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	email := pathEmail(c)
	if he := notOwner(c, l, "clear_cart_error", email); he != nil {
		return he
	}
	if err := h.Svc.Clear(ctx, email); err != nil {
		return fail(l, "clear_cart_error", err, "Failed to clear cart")
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true})
}
