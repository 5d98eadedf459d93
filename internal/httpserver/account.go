package httpserver

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/droneshop/internal/logging"
	"github.com/Skotchmaster/droneshop/internal/service"
	"github.com/Skotchmaster/droneshop/internal/tokens"
	"github.com/Skotchmaster/droneshop/internal/transport"
)

type AccountHTTP struct {
	Svc *service.AccountService
}

func (h *AccountHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "register_error", err)
	}

	id, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register_error", err, "Registration failed")
	}

	return c.JSON(http.StatusOK, transport.RegisterResponse{
		Success:   true,
		Message:   "Registration successful. Please check your email to verify your account.",
		UserID:    id,
		EmailSent: true,
	})
}

func (h *AccountHTTP) VerifyEmail(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.verify_email")

	if err := h.Svc.VerifyEmail(ctx, c.Param("token")); err != nil {
		return fail(l, "verify_email_error", err, "Verification failed")
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{
		Success: true,
		Message: "Email verified successfully. You can now log in.",
	})
}

func (h *AccountHTTP) ResendVerification(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.resend_verification")

	var req transport.EmailRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "resend_verification_error", err)
	}

	if err := h.Svc.ResendVerification(ctx, req.Email); err != nil {
		return fail(l, "resend_verification_error", err, "Failed to send verification email")
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{
		Success: true,
		Message: "Verification email sent. Please check your inbox.",
	})
}

func (h *AccountHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "login_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "login_error", err, "")
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return fail(l, "login_error", err, "Login failed")
	}

	if res.AccessToken != "" {
		c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, res.AccessToken, "/", res.AccessExp))
	}
	return c.JSON(http.StatusOK, transport.LoginResponse{
		Success:     true,
		User:        res.User,
		AccessToken: res.AccessToken,
	})
}

func (h *AccountHTTP) Logout(c echo.Context) error {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true})
}

// pathEmail returns the :email path parameter, decoding %40 and friends.
func pathEmail(c echo.Context) string {
	raw := c.Param("email")
	if v, err := url.PathUnescape(raw); err == nil {
		raw = v
	}
	return strings.TrimSpace(raw)
}
