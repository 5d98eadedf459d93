package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/droneshop/internal/logging"
	"github.com/Skotchmaster/droneshop/internal/service"
	"github.com/Skotchmaster/droneshop/internal/store"
	"github.com/Skotchmaster/droneshop/internal/transport"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) AddUserInfo(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.add_user_info")

	var req transport.UserInfoRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "add_user_info_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "add_user_info_error", err, "")
	}

	id, err := h.Svc.CreateProfile(ctx, req.User())
	if err != nil {
		return fail(l, "add_user_info_error", err, "Failed to add user info")
	}
	return c.JSON(http.StatusCreated, transport.CreatedResponse{
		Success: true,
		UserID:  id,
		Message: "User info added successfully",
	})
}

func (h *UserHTTP) UpsertUserInfo(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.upsert_user_info")

	var req transport.UserInfoRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "upsert_user_info_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "upsert_user_info_error", err, "")
	}

	if err := h.Svc.UpsertProfile(ctx, req.User()); err != nil {
		return fail(l, "upsert_user_info_error", err, "Failed to update user info")
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true, Message: "User info updated successfully"})
}

func (h *UserHTTP) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get_user")

	u, err := h.Svc.Get(ctx, pathEmail(c))
	if err != nil {
		return fail(l, "get_user_error", err, "Failed to get user")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) CheckAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.check_admin")

	res, err := h.Svc.CheckAdmin(ctx, pathEmail(c))
	if err != nil {
		return fail(l, "check_admin_error", err, "Failed to check admin status")
	}
	return c.JSON(http.StatusOK, res)
}

func (h *UserHTTP) MakeAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.make_admin")

	var req transport.EmailRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "make_admin_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "make_admin_error", err, "")
	}

	if err := h.Svc.MakeAdmin(ctx, req.Email); err != nil {
		return fail(l, "make_admin_error", err, "Failed to make admin")
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true, Message: "Admin role updated successfully"})
}

func (h *UserHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list_users")

	var f store.UserFilter
	if v := c.QueryParam("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			l.Warn("list_users_error", "status", 400, "reason", "invalid active filter", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "active must be true or false")
		}
		f.Active = &active
	}

	users, err := h.Svc.List(ctx, f)
	if err != nil {
		return fail(l, "list_users_error", err, "Failed to fetch users")
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHTTP) SetStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.set_status")

	var req transport.UserStatusRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "set_status_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "set_status_error", err, "")
	}

	if err := h.Svc.SetActive(ctx, req.Email, *req.Active); err != nil {
		return fail(l, "set_status_error", err, "Failed to update user status")
	}
	msg := "User deactivated"
	if *req.Active {
		msg = "User activated"
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true, Message: msg})
}

func (h *UserHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete_user")

	if err := h.Svc.Delete(ctx, pathEmail(c)); err != nil {
		return fail(l, "delete_user_error", err, "Failed to delete user")
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true, Message: "User deleted successfully"})
}
