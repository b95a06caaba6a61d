package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/OrmirUlaj/gaming-marketplace/internal/cache"
	"github.com/OrmirUlaj/gaming-marketplace/internal/db"
	"github.com/OrmirUlaj/gaming-marketplace/internal/logging"
	authmw "github.com/OrmirUlaj/gaming-marketplace/internal/middleware/auth"
	"github.com/OrmirUlaj/gaming-marketplace/internal/middleware/csrf"
	"github.com/OrmirUlaj/gaming-marketplace/internal/middleware/metrics"
	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
	"github.com/OrmirUlaj/gaming-marketplace/internal/mykafka"
	"github.com/OrmirUlaj/gaming-marketplace/internal/repo"
	"github.com/OrmirUlaj/gaming-marketplace/internal/service"
)

type testEnv struct {
	E      *echo.Echo
	Repo   *repo.GormRepo
	Deps   *Deps
	Events *mykafka.Recorder
}

type envOption func(*Deps)

func withCSRF() envOption {
	return func(d *Deps) {
		d.CSRF = &csrf.Config{SkipPaths: CSRFSkipPaths}
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	gdb, err := db.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := &repo.GormRepo{DB: gdb}
	events := &mykafka.Recorder{}
	authSvc := &service.AuthService{
		Repo:          r,
		Publisher:     events,
		AccessSecret:  []byte("http-test-access"),
		RefreshSecret: []byte("http-test-refresh"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
	}
	carts := service.NewCartService(r, cache.Nop{}, events)
	catalog := &service.CatalogService{Repo: r, Publisher: events}

	d := &Deps{
		Logger:  logging.NewWithWriter(io.Discard, "error"),
		Auth:    authSvc,
		Users:   &service.UserService{Repo: r, Carts: carts, Publisher: events},
		Catalog: catalog,
		Reviews: &service.ReviewService{Repo: r},
		Carts:   carts,
		Orders:  &service.OrderService{Repo: r, Publisher: events},
		DB:      r,
		Session: &authmw.Session{AccessSecret: authSvc.AccessSecret, Refresher: authSvc},
		Metrics: metrics.New(prometheus.NewRegistry()),
	}
	for _, opt := range opts {
		opt(d)
	}
	return &testEnv{E: New(d), Repo: r, Deps: d, Events: events}
}

type reqOpt func(*http.Request)

func bearer(token string) reqOpt {
	return func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+token) }
}

func cookie(ck *http.Cookie) reqOpt {
	return func(r *http.Request) { r.AddCookie(ck) }
}

func header(k, v string) reqOpt {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

func (env *testEnv) do(t *testing.T, method, path string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "http://stoom.test"+path, rdr)
	if rdr != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type session struct {
	UserID string
	Token  string
}

func (env *testEnv) signUp(t *testing.T, name, email string, admin bool) session {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": name, "email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	userID := created["userId"].(string)

	if admin {
		require.NoError(t, env.Repo.DB.Model(&models.User{}).Where("id = ?", userID).Update("role", models.RoleAdmin).Error)
	}

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[map[string]any](t, rec)
	return session{UserID: userID, Token: login["accessToken"].(string)}
}

func (env *testEnv) seedProduct(t *testing.T, title, category, price string) *models.Product {
	t.Helper()
	p, err := env.Deps.Catalog.CreateProduct(context.Background(), service.NewProduct{
		Title:    title,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Stock:    10,
	})
	require.NoError(t, err)
	return p
}
