package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/OrmirUlaj/gaming-marketplace/internal/logging"
	authmw "github.com/OrmirUlaj/gaming-marketplace/internal/middleware/auth"
	"github.com/OrmirUlaj/gaming-marketplace/internal/service"
	"github.com/OrmirUlaj/gaming-marketplace/internal/transport"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.get")

	user, err := h.Svc.GetProfile(ctx, authmw.FromContext(c).UserID)
	if err != nil {
		return fail(l, "get_profile_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) PatchProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.patch")

	var req transport.ProfilePatchRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "patch_profile_error", err)
	}
	user, err := h.Svc.UpdateProfile(ctx, authmw.FromContext(c).UserID, service.ProfilePatch{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return fail(l, "patch_profile_error", err)
	}
	return c.JSON(http.StatusOK, transport.UserResponse{Message: "Profile updated", User: user})
}

func (h *UserHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.users.list")

	users, err := h.Svc.ListUsers(ctx)
	if err != nil {
		return fail(l, "list_users_error", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHTTP) PatchUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.users.patch")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "patch_user_error", err)
	}
	var req transport.AdminUserPatchRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "patch_user_error", err)
	}
	user, err := h.Svc.UpdateUser(ctx, id, service.AdminUserPatch{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		return fail(l, "patch_user_error", err)
	}

	l.Info("user_updated", "target_id", id)
	return c.JSON(http.StatusOK, transport.UserResponse{Message: "User updated", User: user})
}

func (h *UserHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.users.delete")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "delete_user_error", err)
	}
	if err := h.Svc.DeleteUser(ctx, authmw.FromContext(c).UserID, id); err != nil {
		return fail(l, "delete_user_error", err)
	}

	l.Info("user_deleted", "target_id", id)
	return c.NoContent(http.StatusNoContent)
}
