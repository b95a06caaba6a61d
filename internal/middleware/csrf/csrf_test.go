package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEcho(cfg Config) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(cfg))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/form", ok)
	e.POST("/submit", ok)
	e.POST("/login", ok)
	return e
}

func fetchToken(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://example.com/form", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	token := rec.Header().Get(DefaultHeaderName)
	require.NotEmpty(t, token)
	return token
}

func TestMiddleware_DoubleSubmit(t *testing.T) {
	e := newEcho(Config{SkipPaths: []string{"/login"}})
	token := fetchToken(t, e)

	post := func(header string, origin string) int {
		req := httptest.NewRequest(http.MethodPost, "http://example.com/submit", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token})
		if header != "" {
			req.Header.Set(DefaultHeaderName, header)
		}
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, post(token, "http://example.com"))
	assert.Equal(t, http.StatusForbidden, post("", "http://example.com"))
	assert.Equal(t, http.StatusForbidden, post("forged", "http://example.com"))
	assert.Equal(t, http.StatusForbidden, post(token, "http://evil.test"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "http://example.com/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_Skipper(t *testing.T) {
	e := newEcho(Config{Skipper: func(c echo.Context) bool {
		return c.Request().Header.Get(echo.HeaderAuthorization) != ""
	}})

	req := httptest.NewRequest(http.MethodPost, "http://example.com/submit", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer abc")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "http://example.com/submit", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
