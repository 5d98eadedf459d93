package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Skotchmaster/droneshop/internal/events"
	"github.com/Skotchmaster/droneshop/internal/hash"
	"github.com/Skotchmaster/droneshop/internal/logging"
	"github.com/Skotchmaster/droneshop/internal/mailer"
	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
	"github.com/Skotchmaster/droneshop/internal/tokens"
	"github.com/Skotchmaster/droneshop/internal/transport"
)

type AccountStore interface {
	store.Accounts
	store.Users
}

type AccountService struct {
	Store     AccountStore
	Mailer    mailer.Sender
	Site      mailer.Site
	Events    events.Publisher
	JWTSecret []byte
	AccessTTL time.Duration
	Now       Clock
}

type LoginResult struct {
	User        transport.SessionUser
	AccessToken string
	AccessExp   time.Time
}

const verifyTTL = mailer.VerifyExpiryHours * time.Hour

func (s *AccountService) mailConfigured() bool {
	return s.Mailer != nil && s.Mailer.Configured()
}

func (s *AccountService) Register(ctx context.Context, req transport.RegisterRequest) (string, error) {
	l := logging.FromContext(ctx).With("svc", "account.register")

	if !s.mailConfigured() {
		l.Warn("register_error", "status", 503, "reason", "email transport not configured")
		return "", wrap(ErrEmailNotConfigured, "Email service is not configured. Verification emails cannot be sent. Please contact the administrator.")
	}
	if err := req.Validate(); err != nil {
		return "", err
	}

	if _, err := s.Store.GetAuthByEmail(ctx, req.Email); err == nil {
		l.Info("register_error", "status", 400, "reason", "user already exist")
		return "", wrap(ErrConflict, "User already exists with this email")
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", storeErr(err, "Account")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return "", err
	}
	token, err := tokens.NewVerifyToken()
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot create verify token", "error", err)
		return "", err
	}

	now := s.Now.now()
	expires := now.Add(verifyTTL)
	auth := &models.Auth{
		Email:              req.Email,
		PasswordHash:       pwHash,
		Name:               req.Name,
		EmailVerified:      models.BoolPtr(false),
		EmailVerifyToken:   &token,
		EmailVerifyExpires: &expires,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.Store.CreateAuth(ctx, auth); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return "", wrap(ErrConflict, "User already exists with this email")
		}
		return "", storeErr(err, "Account")
	}

	profile := &models.User{Email: req.Email, Name: req.Name, Role: models.RoleUser, CreatedAt: now, UpdatedAt: now}
	if err := s.Store.UpsertUser(ctx, profile); err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot create profile", "error", err)
		return "", storeErr(err, "User")
	}

	if err := s.sendVerification(ctx, req.Email, req.Name, token); err != nil {
		l.Error("register_error", "status", 503, "reason", "verification email failed", "error", err)
		return "", err
	}

	publish(ctx, s.Events, events.TopicUsers, req.Email, events.UserEvent{Type: "registered", Email: req.Email, Role: models.RoleUser})
	l.Info("register_success", "user_id", auth.ID)
	return auth.ID, nil
}

func (s *AccountService) sendVerification(ctx context.Context, email, name, token string) error {
	msg, err := mailer.VerificationMessage(s.Site, email, name, token)
	if err != nil {
		return err
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		if errors.Is(err, mailer.ErrNotConfigured) {
			return wrap(ErrEmailNotConfigured, "Email service is not configured. Please contact the administrator.")
		}
		return errors.Join(wrap(ErrEmailDelivery, "Failed to send verification email. Please try again later."), err)
	}
	return nil
}

func (s *AccountService) VerifyEmail(ctx context.Context, token string) error {
	l := logging.FromContext(ctx).With("svc", "account.verify_email")

	if token == "" {
		return wrap(ErrInvalidToken, "Invalid or expired verification link. Please request a new one.")
	}
	email, err := s.Store.RedeemVerifyToken(ctx, token, s.Now.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("verify_email_error", "status", 400, "reason", "unknown or expired token")
			return wrap(ErrInvalidToken, "Invalid or expired verification link. Please request a new one.")
		}
		return storeErr(err, "Account")
	}

	publish(ctx, s.Events, events.TopicUsers, email, events.UserEvent{Type: "verified", Email: email})
	l.Info("verify_email_success")
	return nil
}

// ResendVerification rotates the verification token, invalidating any earlier link.
func (s *AccountService) ResendVerification(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "account.resend_verification")

	if !s.mailConfigured() {
		return wrap(ErrEmailNotConfigured, "Email service is not configured. Please contact the administrator.")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return wrap(ErrValidation, "Email is required")
	}

	auth, err := s.Store.GetAuthByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return wrap(ErrNotFound, "No account found with this email")
		}
		return storeErr(err, "Account")
	}
	if auth.EmailVerified != nil && *auth.EmailVerified {
		return wrap(ErrAlreadyVerified, "Email is already verified. You can log in.")
	}

	token, err := tokens.NewVerifyToken()
	if err != nil {
		return err
	}
	if err := s.Store.SetVerifyToken(ctx, email, token, s.Now.now().Add(verifyTTL)); err != nil {
		return storeErr(err, "Account")
	}
	if err := s.sendVerification(ctx, email, auth.Name, token); err != nil {
		l.Error("resend_verification_error", "status", 503, "error", err)
		return err
	}
	l.Info("resend_verification_success")
	return nil
}

func (s *AccountService) Login(ctx context.Context, req transport.LoginRequest) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "account.login")

	auth, err := s.Store.GetAuthByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("login_failed", "status", 401, "reason", "invalid email or password")
			return nil, wrap(ErrInvalidCredentials, "Invalid email or password")
		}
		return nil, storeErr(err, "Account")
	}
	if !hash.CheckPassword(auth.PasswordHash, req.Password) {
		l.Info("login_failed", "status", 401, "reason", "invalid email or password")
		return nil, wrap(ErrInvalidCredentials, "Invalid email or password")
	}
	if !auth.Verified() {
		l.Info("login_failed", "status", 403, "reason", "email not verified")
		return nil, wrap(ErrEmailNotVerified, "Please verify your email before logging in. Check your inbox or request a new verification link.")
	}

	role := models.RoleUser
	profile, err := s.Store.GetUserByEmail(ctx, req.Email)
	switch {
	case err == nil:
		if !profile.IsActive() {
			l.Info("login_failed", "status", 403, "reason", "account deactivated")
			return nil, wrap(ErrAccountDeactivated, "Your account has been deactivated. Please contact support.")
		}
		if profile.Role != "" {
			role = profile.Role
		}
	case errors.Is(err, store.ErrNotFound):
	default:
		return nil, storeErr(err, "User")
	}

	res := &LoginResult{User: transport.SessionUser{
		Email:       auth.Email,
		Name:        auth.Name,
		DisplayName: auth.Name,
		Role:        role,
	}}
	if len(s.JWTSecret) > 0 {
		ttl := s.AccessTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		res.AccessExp = s.Now.now().Add(ttl)
		res.AccessToken, err = tokens.NewAccessToken(s.JWTSecret, auth.Email, role, res.AccessExp)
		if err != nil {
			l.Error("login_failed", "status", 500, "reason", "cannot sign access token", "error", err)
			return nil, err
		}
	}
	l.Info("login_success", "role", role)
	return res, nil
}
