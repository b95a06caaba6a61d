package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/OrmirUlaj/gaming-marketplace/internal/apperr"
	"github.com/OrmirUlaj/gaming-marketplace/internal/authz"
	"github.com/OrmirUlaj/gaming-marketplace/internal/logging"
	authmw "github.com/OrmirUlaj/gaming-marketplace/internal/middleware/auth"
	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
	"github.com/OrmirUlaj/gaming-marketplace/internal/service"
	"github.com/OrmirUlaj/gaming-marketplace/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

// ownerFrom checks that the session user is the cart owner named by the request.
func ownerFrom(c echo.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return apperr.Invalid("userId is required")
	}
	return authz.RequireOwner(authmw.FromContext(c), userID)
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	raw := c.QueryParam("userId")
	if raw == "" {
		return fail(l, "get_cart_error", apperr.Invalid("userId is required"))
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return fail(l, "get_cart_error", apperr.Invalid("userId must be a valid id"))
	}
	if err := ownerFrom(c, userID); err != nil {
		return fail(l, "get_cart_error", err)
	}

	cart, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) PostCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.post")

	var req transport.CartRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "post_cart_error", err)
	}
	if err := ownerFrom(c, req.UserID); err != nil {
		return fail(l, "post_cart_error", err)
	}

	single := req.GameID != nil || req.Quantity != nil
	bulk := req.Items != nil
	var (
		cart *models.Cart
		err  error
	)
	switch {
	case single && bulk:
		err = apperr.Invalid("send either gameId and quantity or items, not both")
	case single:
		if req.GameID == nil || req.Quantity == nil {
			err = apperr.Invalid("gameId and quantity are required")
			break
		}
		cart, err = h.Svc.UpsertItem(ctx, req.UserID, *req.GameID, *req.Quantity)
	case bulk:
		items := make([]models.CartItem, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, models.CartItem{ProductID: it.GameID, Quantity: it.Quantity})
		}
		cart, err = h.Svc.ReplaceCart(ctx, req.UserID, items)
	default:
		err = apperr.Invalid("gameId and quantity, or items, are required")
	}
	if err != nil {
		return fail(l, "post_cart_error", err)
	}
	return c.JSON(http.StatusOK, transport.CartResponse{Message: "Cart updated", Cart: cart})
}

func (h *CartHTTP) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.delete")

	var req transport.CartDeleteRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "delete_cart_item_error", err)
	}
	if err := ownerFrom(c, req.UserID); err != nil {
		return fail(l, "delete_cart_item_error", err)
	}
	cart, err := h.Svc.RemoveItem(ctx, req.UserID, req.GameID)
	if err != nil {
		return fail(l, "delete_cart_item_error", err)
	}
	return c.JSON(http.StatusOK, transport.CartResponse{Message: "Item removed", Cart: cart})
}
