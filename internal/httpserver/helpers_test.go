package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/droneshop/internal/mailer"
	"github.com/Skotchmaster/droneshop/internal/media"
	authmw "github.com/Skotchmaster/droneshop/internal/middleware/auth"
	"github.com/Skotchmaster/droneshop/internal/service"
	"github.com/Skotchmaster/droneshop/internal/store/gormstore"
	"github.com/Skotchmaster/droneshop/internal/tokens"
)

var testSecret = []byte("test-jwt-secret")

type fakeSender struct {
	mu         sync.Mutex
	configured bool
	sent       []mailer.Message
}

func (f *fakeSender) Configured() bool { return f.configured }

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

type fakeQueue struct {
	mu   sync.Mutex
	msgs []mailer.Message
}

func (f *fakeQueue) Enqueue(msg mailer.Message) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return true
}

type fakeImages struct {
	err     error
	deleted []string
}

func (f *fakeImages) Upload(_ context.Context, original, contentType string, r io.Reader, size int64) (*media.Object, error) {
	if err := media.ValidateImage(contentType, size); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	data, _ := io.ReadAll(r)
	return &media.Object{Filename: "abc.png", URL: "http://cdn.local/uploads/abc.png", Size: int64(len(data))}, nil
}

func (f *fakeImages) Delete(_ context.Context, name string) error {
	if name == "missing.png" {
		return media.ErrNotFound
	}
	f.deleted = append(f.deleted, name)
	return nil
}

type staticReady bool

func (r staticReady) Ready() bool { return bool(r) }

type testEnv struct {
	e      *echo.Echo
	store  *gormstore.GormRepo
	sender *fakeSender
	queue  *fakeQueue
	images *fakeImages
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := gormstore.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	env := &testEnv{
		store:  st,
		sender: &fakeSender{configured: true},
		queue:  &fakeQueue{},
		images: &fakeImages{},
	}
	site := mailer.Site{Name: "Drone", FrontendURL: "http://localhost:3000"}

	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	Register(e, &Deps{
		Account:  &AccountHTTP{Svc: &service.AccountService{Store: st, Mailer: env.sender, Site: site, JWTSecret: testSecret}},
		Catalog:  &CatalogHTTP{Svc: &service.CatalogService{Store: st}},
		Order:    &OrderHTTP{Svc: &service.OrderService{Store: st, Mail: env.queue, Site: site}},
		Cart:     &CartHTTP{Svc: &service.CartService{Store: st}},
		Wishlist: &WishlistHTTP{Svc: &service.WishlistService{Store: st}},
		User:     &UserHTTP{Svc: &service.UserService{Store: st}},
		Upload:   &UploadHTTP{Media: env.images},
		Health:   &HealthHTTP{Ready: staticReady(true)},
		Auth:     authmw.New(testSecret),
	})
	env.e = e
	return env
}

type reqOpt func(*http.Request)

func asAdmin(t *testing.T) reqOpt {
	t.Helper()
	tok, err := tokens.NewAccessToken(testSecret, "admin@x.io", "admin", time.Now().Add(time.Hour))
	require.NoError(t, err)
	return func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+tok) }
}

func asUser(t *testing.T, email string) reqOpt {
	t.Helper()
	tok, err := tokens.NewAccessToken(testSecret, email, "user", time.Now().Add(time.Hour))
	require.NoError(t, err)
	return func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+tok) }
}

func (env *testEnv) do(method, path string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, o := range opts {
		o(req)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
