package authmw

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/droneshop/internal/logging"
	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/tokens"
)

const (
	ContextKey = "user"
	ctxEmail   = "email"
	ctxRole    = "role"
)

type Auth struct {
	JWTSecret []byte
}

func New(secret []byte) *Auth {
	return &Auth{JWTSecret: secret}
}

// Enabled reports whether tokens are checked at all. Without a secret the
// admin routes are open, which matches deployments that never issued tokens.
func (a *Auth) Enabled() bool {
	return len(a.JWTSecret) > 0
}

func (a *Auth) jwt() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    a.JWTSecret,
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		ContextKey:    ContextKey,
		TokenLookup:   "header:Authorization:Bearer ,cookie:" + tokens.AccessCookie,
		NewClaimsFunc: func(echo.Context) jwt.Claims { return new(tokens.AccessClaims) },
		ErrorHandler: func(c echo.Context, err error) error {
			l := logging.FromContext(c.Request().Context()).With("middleware", "auth")
			if !hasToken(c) {
				l.Warn("auth_failed", "status", 401, "reason", "missing access token")
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}
			l.Warn("auth_failed", "status", 401, "reason", "invalid access token", "error", err)
			c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		},
		SuccessHandler: func(c echo.Context) {
			if tok, ok := c.Get(ContextKey).(*jwt.Token); ok {
				if claims, ok := tok.Claims.(*tokens.AccessClaims); ok {
					c.Set(ctxEmail, claims.Subject)
					c.Set(ctxRole, claims.Role)
				}
			}
		},
	})
}

func (a *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	if !a.Enabled() {
		return next
	}
	return a.jwt()(next)
}

func (a *Auth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	if !a.Enabled() {
		return next
	}
	return a.jwt()(func(c echo.Context) error {
		if role, _ := c.Get(ctxRole).(string); role != models.RoleAdmin {
			logging.FromContext(c.Request().Context()).Warn("auth_failed", "middleware", "auth", "status", 403, "reason", "not an admin")
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	})
}

func hasToken(c echo.Context) bool {
	if c.Request().Header.Get(echo.HeaderAuthorization) != "" {
		return true
	}
	ck, err := c.Cookie(tokens.AccessCookie)
	return err == nil && ck.Value != ""
}

// Email returns the subject of the verified access token, if any.
func Email(c echo.Context) string {
	s, _ := c.Get(ctxEmail).(string)
	return s
}

// Owns reports whether the caller may act for email: the token subject is
// that email or the caller is an admin. A request without a verified token
// only reaches a handler when tokens are disabled, and then it passes.
func Owns(c echo.Context, email string) bool {
	if _, ok := c.Get(ContextKey).(*jwt.Token); !ok {
		return true
	}
	if role, _ := c.Get(ctxRole).(string); role == models.RoleAdmin {
		return true
	}
	return strings.EqualFold(Email(c), strings.TrimSpace(email))
}
