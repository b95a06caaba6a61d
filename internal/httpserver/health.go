package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/OrmirUlaj/gaming-marketplace/internal/logging"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHTTP struct {
	DB Pinger
}

func (h *HealthHTTP) Ping(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.DB.Ping(ctx); err != nil {
		logging.FromContext(ctx).Error("ping_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "database unavailable")
	}
	return c.JSON(http.StatusOK, map[string]bool{"pong": true})
}

func (h *HealthHTTP) Live(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h *HealthHTTP) Ready(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.DB.Ping(ctx); err != nil {
		logging.FromContext(ctx).Warn("readiness_failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
