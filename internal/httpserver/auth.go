package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/OrmirUlaj/gaming-marketplace/internal/apperr"
	"github.com/OrmirUlaj/gaming-marketplace/internal/logging"
	authmw "github.com/OrmirUlaj/gaming-marketplace/internal/middleware/auth"
	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
	"github.com/OrmirUlaj/gaming-marketplace/internal/service"
	"github.com/OrmirUlaj/gaming-marketplace/internal/tokens"
	"github.com/OrmirUlaj/gaming-marketplace/internal/transport"
)

type AuthHTTP struct {
	Svc     *service.AuthService
	Session *authmw.Session
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "register_error", err)
	}
	user, err := h.Svc.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Info("user_registered", "user_id", user.ID)
	return c.JSON(http.StatusCreated, transport.RegisterResponse{
		Message: "User created successfully",
		UserID:  user.ID,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "login_error", err)
	}
	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_error", err)
	}

	h.Session.SetCookies(c, &res.Pair)
	l.Info("login_ok", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, transport.LoginResponse{
		UserID:      res.User.ID,
		Role:        res.User.Role,
		IsAdmin:     res.User.Role == models.RoleAdmin,
		AccessToken: res.AccessToken,
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	token, err := refreshTokenFrom(c)
	if err != nil {
		return fail(l, "refresh_error", err)
	}
	if token == "" {
		return fail(l, "refresh_error", apperr.ErrUnauthenticated)
	}
	pair, err := h.Svc.Refresh(ctx, token)
	if err != nil {
		h.Session.ClearCookies(c)
		return fail(l, "refresh_error", err)
	}

	h.Session.SetCookies(c, pair)
	return c.JSON(http.StatusOK, transport.RefreshResponse{AccessToken: pair.AccessToken})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	token, err := refreshTokenFrom(c)
	if err != nil {
		return fail(l, "logout_error", err)
	}
	if err := h.Svc.LogOut(ctx, token); err != nil {
		return fail(l, "logout_error", err)
	}

	h.Session.ClearCookies(c)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Logged out"})
}

// refreshTokenFrom prefers the cookie and falls back to an optional JSON body.
func refreshTokenFrom(c echo.Context) (string, error) {
	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil && ck.Value != "" {
		return ck.Value, nil
	}
	if c.Request().ContentLength == 0 {
		return "", nil
	}
	var req transport.RefreshRequest
	if err := bindStrict(c, &req); err != nil {
		return "", err
	}
	return req.RefreshToken, nil
}
