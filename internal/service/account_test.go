package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/droneshop/internal/hash"
	"github.com/Skotchmaster/droneshop/internal/mailer"
	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store/gormstore"
	"github.com/Skotchmaster/droneshop/internal/tokens"
	"github.com/Skotchmaster/droneshop/internal/transport"
)

func newAccountService(t *testing.T) (*AccountService, *gormstore.GormRepo, *fakeSender) {
	t.Helper()
	st := newTestStore(t)
	mail := &fakeSender{configured: true}
	svc := &AccountService{
		Store:     st,
		Mailer:    mail,
		Site:      mailer.Site{Name: "Drone", FrontendURL: "https://shop.example.com"},
		Events:    &fakePublisher{},
		JWTSecret: []byte("test-jwt-secret"),
		AccessTTL: time.Hour,
	}
	return svc, st, mail
}

func verifyToken(t *testing.T, st *gormstore.GormRepo, email string) string {
	t.Helper()
	a, err := st.GetAuthByEmail(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, a.EmailVerifyToken)
	return *a.EmailVerifyToken
}

func TestAccount_RegisterVerifyLogin(t *testing.T) {
	t.Parallel()

	svc, st, mail := newAccountService(t)
	ctx := context.Background()

	id, err := svc.Register(ctx, transport.RegisterRequest{Email: "a@x.com", Password: "secret1", Name: "Alice"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	a, err := st.GetAuthByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, a.EmailVerified)
	assert.False(t, *a.EmailVerified)
	assert.NotEqual(t, "secret1", a.PasswordHash)
	assert.True(t, hash.CheckPassword(a.PasswordHash, "secret1"))

	u, err := st.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role)

	require.Len(t, mail.sent, 1)
	token := verifyToken(t, st, "a@x.com")
	assert.Contains(t, mail.sent[0].HTML, "https://shop.example.com/verify-email?token="+token)

	_, err = svc.Login(ctx, transport.LoginRequest{Email: "a@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	require.NoError(t, svc.VerifyEmail(ctx, token))

	res, err := svc.Login(ctx, transport.LoginRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "user", res.User.Role)
	assert.Equal(t, "Alice", res.User.DisplayName)

	claims, err := tokens.AccessClaimsFromToken(res.AccessToken, svc.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, "user", claims.Role)
}

func TestAccount_RegisterFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	req := transport.RegisterRequest{Email: "a@x.com", Password: "secret1", Name: "Alice"}

	t.Run("mail not configured", func(t *testing.T) {
		t.Parallel()
		svc, st, mail := newAccountService(t)
		mail.configured = false
		_, err := svc.Register(ctx, req)
		assert.ErrorIs(t, err, ErrEmailNotConfigured)
		_, err = st.GetAuthByEmail(ctx, req.Email)
		assert.Error(t, err, "no account is created without mail")
	})

	t.Run("duplicate", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newAccountService(t)
		_, err := svc.Register(ctx, req)
		require.NoError(t, err)
		_, err = svc.Register(ctx, req)
		assert.ErrorIs(t, err, ErrConflict)
		msg, ok := Message(err)
		require.True(t, ok)
		assert.Equal(t, "User already exists with this email", msg)
	})

	t.Run("invalid email", func(t *testing.T) {
		t.Parallel()
		svc, st, _ := newAccountService(t)
		_, err := svc.Register(ctx, transport.RegisterRequest{Email: "not-an-email", Password: "secret1", Name: "Alice"})
		assert.ErrorIs(t, err, transport.ErrInvalidRequest)
		_, err = st.GetAuthByEmail(ctx, "not-an-email")
		assert.Error(t, err)
	})

	t.Run("delivery failure", func(t *testing.T) {
		t.Parallel()
		svc, _, mail := newAccountService(t)
		mail.err = errBoom
		_, err := svc.Register(ctx, req)
		assert.ErrorIs(t, err, ErrEmailDelivery)
		assert.ErrorIs(t, err, errBoom)
	})
}

func TestAccount_VerifyEmailIsSingleUse(t *testing.T) {
	t.Parallel()

	svc, st, _ := newAccountService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, transport.RegisterRequest{Email: "a@x.com", Password: "secret1", Name: "Alice"})
	require.NoError(t, err)
	token := verifyToken(t, st, "a@x.com")

	require.NoError(t, svc.VerifyEmail(ctx, token))
	assert.ErrorIs(t, svc.VerifyEmail(ctx, token), ErrInvalidToken)
	assert.ErrorIs(t, svc.VerifyEmail(ctx, "nope"), ErrInvalidToken)
	assert.ErrorIs(t, svc.VerifyEmail(ctx, ""), ErrInvalidToken)
}

func TestAccount_VerifyEmailExpired(t *testing.T) {
	t.Parallel()

	svc, st, _ := newAccountService(t)
	clock := &fixedClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc.Now = clock.Now
	ctx := context.Background()

	_, err := svc.Register(ctx, transport.RegisterRequest{Email: "a@x.com", Password: "secret1", Name: "Alice"})
	require.NoError(t, err)
	token := verifyToken(t, st, "a@x.com")

	clock.Advance(25 * time.Hour)
	assert.ErrorIs(t, svc.VerifyEmail(ctx, token), ErrInvalidToken)
}

func TestAccount_ResendVerification(t *testing.T) {
	t.Parallel()

	svc, st, mail := newAccountService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, transport.RegisterRequest{Email: "a@x.com", Password: "secret1", Name: "Alice"})
	require.NoError(t, err)
	oldToken := verifyToken(t, st, "a@x.com")

	require.NoError(t, svc.ResendVerification(ctx, "a@x.com"))
	newToken := verifyToken(t, st, "a@x.com")
	assert.NotEqual(t, oldToken, newToken)
	assert.Len(t, mail.sent, 2)

	assert.ErrorIs(t, svc.VerifyEmail(ctx, oldToken), ErrInvalidToken)
	require.NoError(t, svc.VerifyEmail(ctx, newToken))

	assert.ErrorIs(t, svc.ResendVerification(ctx, "a@x.com"), ErrAlreadyVerified)
	assert.ErrorIs(t, svc.ResendVerification(ctx, "ghost@x.com"), ErrNotFound)

	mail.configured = false
	assert.ErrorIs(t, svc.ResendVerification(ctx, "a@x.com"), ErrEmailNotConfigured)
}

func TestAccount_LoginFailures(t *testing.T) {
	t.Parallel()

	svc, st, _ := newAccountService(t)
	ctx := context.Background()

	pw, err := hash.HashPassword("secret1")
	require.NoError(t, err)
	// legacy account: no verification flag at all
	require.NoError(t, st.CreateAuth(ctx, &models.Auth{Email: "legacy@x.com", PasswordHash: pw, Name: "Old"}))
	require.NoError(t, st.CreateAuth(ctx, &models.Auth{Email: "off@x.com", PasswordHash: pw, Name: "Off", EmailVerified: models.BoolPtr(true)}))
	require.NoError(t, st.CreateUser(ctx, &models.User{Email: "off@x.com", Role: models.RoleAdmin, Active: models.BoolPtr(false)}))

	_, unknownErr := svc.Login(ctx, transport.LoginRequest{Email: "ghost@x.com", Password: "secret1"})
	_, wrongErr := svc.Login(ctx, transport.LoginRequest{Email: "legacy@x.com", Password: "bad"})
	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())

	res, err := svc.Login(ctx, transport.LoginRequest{Email: "legacy@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, res.User.Role, "missing profile defaults to user")

	_, err = svc.Login(ctx, transport.LoginRequest{Email: "off@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestAccount_LoginWithoutSecretIssuesNoToken(t *testing.T) {
	t.Parallel()

	svc, st, _ := newAccountService(t)
	svc.JWTSecret = nil
	ctx := context.Background()

	pw, err := hash.HashPassword("secret1")
	require.NoError(t, err)
	require.NoError(t, st.CreateAuth(ctx, &models.Auth{Email: "a@x.com", PasswordHash: pw, Name: "A", EmailVerified: models.BoolPtr(true)}))

	res, err := svc.Login(ctx, transport.LoginRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Empty(t, res.AccessToken)
}
