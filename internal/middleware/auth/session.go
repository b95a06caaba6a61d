package authmw

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/OrmirUlaj/gaming-marketplace/internal/apperr"
	"github.com/OrmirUlaj/gaming-marketplace/internal/authz"
	"github.com/OrmirUlaj/gaming-marketplace/internal/logging"
	"github.com/OrmirUlaj/gaming-marketplace/internal/tokens"
)

const authContextKey = "auth_context"

type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error)
}

// Session resolves the caller from a Bearer header or the access cookie.
type Session struct {
	AccessSecret  []byte
	Refresher     Refresher
	SecureCookies bool
	// SkipRefresh disables transparent rotation, e.g. on the refresh endpoint itself.
	SkipRefresh func(c echo.Context) bool
}

// Middleware attaches an AuthContext when the request carries a usable token.
// Invalid tokens are treated as absent; the gates decide what that means.
func (s *Session) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if ac := s.resolve(c); ac != nil {
			setAuthContext(c, ac)
		}
		return next(c)
	}
}

func (s *Session) resolve(c echo.Context) *authz.AuthContext {
	if raw, ok := BearerToken(c); ok {
		claims, err := tokens.AccessClaimsFromToken(raw, s.AccessSecret)
		if err != nil {
			return nil
		}
		return authContextFromClaims(claims)
	}

	accessCookie, err := c.Cookie(tokens.AccessCookie)
	if err != nil || accessCookie.Value == "" {
		return nil
	}
	claims, err := tokens.AccessClaimsFromToken(accessCookie.Value, s.AccessSecret)
	if err == nil {
		return authContextFromClaims(claims)
	}
	if !errors.Is(err, jwt.ErrTokenExpired) {
		return nil
	}
	return s.refresh(c)
}

func (s *Session) refresh(c echo.Context) *authz.AuthContext {
	if s.Refresher == nil || (s.SkipRefresh != nil && s.SkipRefresh(c)) {
		return nil
	}
	refreshCookie, err := c.Cookie(tokens.RefreshCookie)
	if err != nil || refreshCookie.Value == "" {
		return nil
	}

	ctx := c.Request().Context()
	pair, err := s.Refresher.Refresh(ctx, refreshCookie.Value)
	if errors.Is(err, tokens.ErrRefreshReused) {
		// a parallel request rotated it and its response carries the new cookies
		logging.FromContext(ctx).Info("session_refresh_raced")
		return nil
	}
	if err != nil {
		logging.FromContext(ctx).Info("session_refresh_failed", "error", err)
		s.ClearCookies(c)
		return nil
	}
	s.SetCookies(c, pair)

	claims, err := tokens.AccessClaimsFromToken(pair.AccessToken, s.AccessSecret)
	if err != nil {
		return nil
	}
	return authContextFromClaims(claims)
}

func (s *Session) SetCookies(c echo.Context, pair *tokens.Pair) {
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, pair.AccessToken, "/", pair.AccessExp, s.SecureCookies))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, pair.RefreshToken, "/", pair.RefreshExp, s.SecureCookies))
}

func (s *Session) ClearCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/", s.SecureCookies))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/", s.SecureCookies))
}

// BearerToken returns the token from "Authorization: Bearer <token>".
func BearerToken(c echo.Context) (string, bool) {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func authContextFromClaims(claims *tokens.AccessClaims) *authz.AuthContext {
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil
	}
	return &authz.AuthContext{UserID: id, Role: claims.Role}
}

func setAuthContext(c echo.Context, ac *authz.AuthContext) {
	c.Set(authContextKey, ac)
	req := c.Request()
	l := logging.FromContext(req.Context()).With("user_id", ac.UserID.String())
	c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))
}

// FromContext returns the caller, or nil for anonymous requests.
func FromContext(c echo.Context) *authz.AuthContext {
	ac, _ := c.Get(authContextKey).(*authz.AuthContext)
	return ac
}

func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return require(next, authz.Authenticated)
}

func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return require(next, authz.Admin)
}

func require(next echo.HandlerFunc, capability authz.Capability) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := authz.Require(FromContext(c), capability); err != nil {
			return echo.NewHTTPError(apperr.HTTPStatus(err), gateMessage(err))
		}
		return next(c)
	}
}

func gateMessage(err error) string {
	if errors.Is(err, apperr.ErrForbidden) {
		return "admin access required"
	}
	return "authentication required"
}
