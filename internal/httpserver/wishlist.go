package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/droneshop/internal/logging"
	"github.com/Skotchmaster/droneshop/internal/service"
	"github.com/Skotchmaster/droneshop/internal/transport"
)

type WishlistHTTP struct {
	Svc *service.WishlistService
}

func (h *WishlistHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.get")

	email := pathEmail(c)
	if he := notOwner(c, l, "get_wishlist_error", email); he != nil {
		return he
	}
	items, err := h.Svc.Items(ctx, email)
	if err != nil {
		return fail(l, "get_wishlist_error", err, "Failed to fetch wishlist")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *WishlistHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.add")

	var req transport.WishlistRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "add_wishlist_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "add_wishlist_error", err, "")
	}
	if he := notOwner(c, l, "add_wishlist_error", req.Email); he != nil {
		return he
	}

	items, err := h.Svc.Add(ctx, req.Email, req.ProductID)
	if err != nil {
		return fail(l, "add_wishlist_error", err, "Failed to add to wishlist")
	}
	return c.JSON(http.StatusOK, transport.WishlistResponse{Success: true, Wishlist: items})
}

func (h *WishlistHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.remove")

	var req transport.WishlistRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "remove_wishlist_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "remove_wishlist_error", err, "")
	}
	if he := notOwner(c, l, "remove_wishlist_error", req.Email); he != nil {
		return he
	}

	items, err := h.Svc.Remove(ctx, req.Email, req.ProductID)
	if err != nil {
		return fail(l, "remove_wishlist_error", err, "Failed to remove from wishlist")
	}
	return c.JSON(http.StatusOK, transport.WishlistResponse{Success: true, Wishlist: items})
}

func (h *WishlistHTTP) Check(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.check")

	email := pathEmail(c)
	if he := notOwner(c, l, "check_wishlist_error", email); he != nil {
		return he
	}
	ok, err := h.Svc.Contains(ctx, email, strings.TrimSpace(c.Param("productId")))
	if err != nil {
		return fail(l, "check_wishlist_error", err, "Failed to check wishlist")
	}
	return c.JSON(http.StatusOK, transport.WishlistCheckResponse{IsInWishlist: ok})
}
