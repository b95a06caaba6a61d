package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/OrmirUlaj/gaming-marketplace/internal/authz"
	"github.com/OrmirUlaj/gaming-marketplace/internal/logging"
	authmw "github.com/OrmirUlaj/gaming-marketplace/internal/middleware/auth"
	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
	"github.com/OrmirUlaj/gaming-marketplace/internal/service"
	"github.com/OrmirUlaj/gaming-marketplace/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.place")
	ac := authmw.FromContext(c)

	var req transport.OrderRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "place_order_error", err)
	}
	if req.UserID != nil {
		if err := authz.RequireOwner(ac, *req.UserID); err != nil {
			return fail(l, "place_order_error", err)
		}
	}

	lines := make([]service.LineItem, 0, len(req.Products))
	for _, p := range req.Products {
		lines = append(lines, service.LineItem{ProductID: p.ProductID, Quantity: p.Quantity})
	}
	order, err := h.Svc.PlaceOrder(ctx, ac.UserID, lines)
	if err != nil {
		return fail(l, "place_order_error", err)
	}

	return c.JSON(http.StatusCreated, transport.OrderCreatedResponse{
		Message: "Order created",
		OrderID: order.ID,
		Total:   order.Total,
		Status:  order.Status,
	})
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.list")

	orders, err := h.Svc.ListOrders(ctx, authmw.FromContext(c), c.QueryParam("all") == "true")
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.get")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	order, err := h.Svc.GetOrder(ctx, authmw.FromContext(c), id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.cancel")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "cancel_order_error", err)
	}
	order, err := h.Svc.CancelOrder(ctx, authmw.FromContext(c), id)
	if err != nil {
		return fail(l, "cancel_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.orders.status")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "update_order_status_error", err)
	}
	var req transport.OrderStatusRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "update_order_status_error", err)
	}
	order, err := h.Svc.UpdateStatus(ctx, id, models.OrderStatus(req.Status))
	if err != nil {
		return fail(l, "update_order_status_error", err)
	}

	l.Info("order_status_changed", "order_id", id, "status", order.Status)
	return c.JSON(http.StatusOK, order)
}
