package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Skotchmaster/droneshop/internal/logging"
	"github.com/Skotchmaster/droneshop/internal/media"
	authmw "github.com/Skotchmaster/droneshop/internal/middleware/auth"
	"github.com/Skotchmaster/droneshop/internal/service"
	"github.com/Skotchmaster/droneshop/internal/store"
	"github.com/Skotchmaster/droneshop/internal/transport"
)

const (
	CodeEmailNotConfigured = "EMAIL_NOT_CONFIGURED"
	CodeEmailNotVerified   = "EMAIL_NOT_VERIFIED"
	CodeAccountDeactivated = "ACCOUNT_DEACTIVATED"
	CodeEmailSendFailed    = "EMAIL_SEND_FAILED"
)

const unavailableMessage = "Service temporarily unavailable. Please try again later."

type apiError struct {
	status int
	msg    string
	code   string
}

// classify maps an error to its response. An empty msg means the caller's
// fallback message is used.
func classify(err error) apiError {
	msg, _ := service.Message(err)

	switch {
	case errors.Is(err, transport.ErrInvalidRequest):
		return apiError{status: http.StatusBadRequest, msg: strings.TrimPrefix(err.Error(), transport.ErrInvalidRequest.Error()+": ")}
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrAlreadyVerified):
		return apiError{status: http.StatusBadRequest, msg: msg}
	case errors.Is(err, service.ErrNotFound):
		return apiError{status: http.StatusNotFound, msg: msg}
	case errors.Is(err, service.ErrInvalidCredentials):
		return apiError{status: http.StatusUnauthorized, msg: msg}
	case errors.Is(err, service.ErrEmailNotVerified):
		return apiError{status: http.StatusForbidden, msg: msg, code: CodeEmailNotVerified}
	case errors.Is(err, service.ErrAccountDeactivated):
		return apiError{status: http.StatusForbidden, msg: msg, code: CodeAccountDeactivated}
	case errors.Is(err, service.ErrEmailNotConfigured):
		return apiError{status: http.StatusServiceUnavailable, msg: msg, code: CodeEmailNotConfigured}
	case errors.Is(err, service.ErrEmailDelivery):
		return apiError{status: http.StatusServiceUnavailable, msg: msg, code: CodeEmailSendFailed}

	case errors.Is(err, media.ErrNotImage):
		return apiError{status: http.StatusBadRequest, msg: "Only image files are allowed"}
	case errors.Is(err, media.ErrTooLarge):
		return apiError{status: http.StatusBadRequest, msg: "File too large. Maximum size is 5MB"}
	case errors.Is(err, media.ErrBadObjectKey):
		return apiError{status: http.StatusBadRequest, msg: "Invalid filename"}
	case errors.Is(err, media.ErrNotFound):
		return apiError{status: http.StatusNotFound, msg: "File not found"}

	case errors.Is(err, store.ErrNotFound):
		return apiError{status: http.StatusNotFound, msg: "Not found"}
	case errors.Is(err, service.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		mongo.IsTimeout(err),
		mongo.IsNetworkError(err),
		errors.Is(err, mongo.ErrClientDisconnected):
		return apiError{status: http.StatusServiceUnavailable, msg: unavailableMessage}
	}
	return apiError{status: http.StatusInternalServerError}
}

// fail logs err under event and returns the HTTP error for it. Unexpected
// errors answer with fallback and keep their detail in the log only.
func fail(l *slog.Logger, event string, err error, fallback string) *echo.HTTPError {
	ae := classify(err)
	if ae.msg == "" {
		ae.msg = fallback
	}

	switch {
	case ae.status >= 500:
		l.Error(event, "status", ae.status, "reason", ae.msg, "error", err)
	default:
		l.Warn(event, "status", ae.status, "reason", ae.msg, "error", err)
	}

	if ae.code != "" {
		return echo.NewHTTPError(ae.status, transport.ErrorResponse{Error: ae.msg, Code: ae.code})
	}
	return echo.NewHTTPError(ae.status, ae.msg)
}

// withSuccessFalse adds "success": false to the body of he, as the cart
// endpoints report it.
func withSuccessFalse(he *echo.HTTPError) *echo.HTTPError {
	body := transport.ErrorResponse{Success: new(bool)}
	switch m := he.Message.(type) {
	case transport.ErrorResponse:
		body.Error, body.Code = m.Error, m.Code
	default:
		body.Error = fmt.Sprint(m)
	}
	he.Message = body
	return he
}

// notOwner is non-nil when the signed-in caller asks for another account's
// cart or wishlist.
func notOwner(c echo.Context, l *slog.Logger, event, email string) *echo.HTTPError {
	if authmw.Owns(c, email) {
		return nil
	}
	l.Warn(event, "status", 403, "reason", "email does not match the signed-in account", "signed_in", authmw.Email(c))
	return echo.NewHTTPError(http.StatusForbidden, "Access denied")
}

func badBody(l *slog.Logger, event string, err error) *echo.HTTPError {
	l.Warn(event, "status", 400, "reason", "invalid body", "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
}

// HTTPErrorHandler renders every error as {error, code?}.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "status", 500, "error", err)
		he = echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	var body transport.ErrorResponse
	switch m := he.Message.(type) {
	case transport.ErrorResponse:
		body = m
	case string:
		body.Error = m
	case error:
		body.Error = m.Error()
	default:
		body.Error = fmt.Sprint(m)
	}
	if body.Error == "" {
		body.Error = http.StatusText(he.Code)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(he.Code)
	} else {
		werr = c.JSON(he.Code, body)
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("write_error_response_failed", "error", werr)
	}
}
