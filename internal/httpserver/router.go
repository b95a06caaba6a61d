package httpserver

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	authmw "github.com/OrmirUlaj/gaming-marketplace/internal/middleware/auth"
	"github.com/OrmirUlaj/gaming-marketplace/internal/middleware/csrf"
	loggingmw "github.com/OrmirUlaj/gaming-marketplace/internal/middleware/logging"
	"github.com/OrmirUlaj/gaming-marketplace/internal/middleware/metrics"
	"github.com/OrmirUlaj/gaming-marketplace/internal/middleware/ratelimit"
	"github.com/OrmirUlaj/gaming-marketplace/internal/service"
	"github.com/OrmirUlaj/gaming-marketplace/internal/tokens"
)

type Deps struct {
	Logger *slog.Logger

	Auth    *service.AuthService
	Users   *service.UserService
	Catalog *service.CatalogService
	Reviews *service.ReviewService
	Carts   *service.CartService
	Orders  *service.OrderService
	DB      Pinger

	Session     *authmw.Session
	Metrics     *metrics.HTTP
	AuthLimiter *ratelimit.PerIP
	// CSRF is nil when the double-submit check is disabled.
	CSRF        *csrf.Config
	CORSOrigins []string
}

// New builds the Echo instance with the middleware chain and every route.
func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(loggingmw.RequestLogger(d.Logger))
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware)
	}
	if len(d.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     d.CORSOrigins,
			AllowCredentials: true,
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, csrf.DefaultHeaderName},
			ExposeHeaders:    []string{headerTotalCount, csrf.DefaultHeaderName},
		}))
	}
	if d.Session.SkipRefresh == nil {
		d.Session.SkipRefresh = onAuthEndpoint
	}
	e.Use(d.Session.Middleware)
	if d.CSRF != nil {
		cfg := *d.CSRF
		if cfg.Skipper == nil {
			cfg.Skipper = withoutAmbientCredentials
		}
		e.Use(csrf.Middleware(cfg))
	}

	Register(e, d)
	return e
}

// CSRFSkipPaths are the entry points that run before a session exists.
var CSRFSkipPaths = []string{
	"/api/auth/login",
	"/api/auth/register",
	"/api/auth/refresh",
}

func onAuthEndpoint(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/auth/")
}

// withoutAmbientCredentials exempts Bearer requests and requests that carry
// no session cookie; neither can be forged cross-site.
func withoutAmbientCredentials(c echo.Context) bool {
	if _, ok := authmw.BearerToken(c); ok {
		return true
	}
	for _, name := range []string{tokens.AccessCookie, tokens.RefreshCookie} {
		if ck, err := c.Cookie(name); err == nil && ck.Value != "" {
			return false
		}
	}
	return true
}

func Register(e *echo.Echo, d *Deps) {
	health := &HealthHTTP{DB: d.DB}
	authH := &AuthHTTP{Svc: d.Auth, Session: d.Session}
	users := &UserHTTP{Svc: d.Users}
	products := &ProductHTTP{Svc: d.Catalog, Reviews: d.Reviews}
	carts := &CartHTTP{Svc: d.Carts}
	orders := &OrderHTTP{Svc: d.Orders}

	e.GET("/health/live", health.Live)
	e.GET("/health/ready", health.Ready)
	if d.Metrics != nil {
		e.GET("/metrics", d.Metrics.Handler())
	}

	api := e.Group("/api")
	api.GET("/ping", health.Ping)

	var limit []echo.MiddlewareFunc
	if d.AuthLimiter != nil {
		limit = append(limit, d.AuthLimiter.Middleware)
	}
	auth := api.Group("/auth")
	auth.POST("/register", authH.Register, limit...)
	auth.POST("/login", authH.Login, limit...)
	auth.POST("/refresh", authH.Refresh, limit...)
	auth.POST("/logout", authH.LogOut)

	api.GET("/products", products.ListProducts)
	api.POST("/products", products.CreateProduct, authmw.RequireAdmin)
	api.GET("/products/search", products.Search)
	api.GET("/products/:id", products.GetProduct)
	api.PATCH("/products/:id", products.PatchProduct, authmw.RequireAdmin)
	api.GET("/products/:id/reviews", products.ListReviews)
	api.POST("/products/:id/reviews", products.AddReview, authmw.RequireAuth)

	api.GET("/cart", carts.GetCart, authmw.RequireAuth)
	api.POST("/cart", carts.PostCart, authmw.RequireAuth)
	api.DELETE("/cart", carts.DeleteItem, authmw.RequireAuth)

	api.POST("/orders", orders.PlaceOrder, authmw.RequireAuth)
	api.GET("/orders", orders.ListOrders, authmw.RequireAuth)
	api.GET("/orders/:id", orders.GetOrder, authmw.RequireAuth)
	api.POST("/orders/:id/cancel", orders.CancelOrder, authmw.RequireAuth)

	api.GET("/profile", users.GetProfile, authmw.RequireAuth)
	api.PATCH("/profile", users.PatchProfile, authmw.RequireAuth)

	admin := api.Group("/admin", authmw.RequireAdmin)
	admin.GET("/users", users.ListUsers)
	admin.PATCH("/users/:id", users.PatchUser)
	admin.DELETE("/users/:id", users.DeleteUser)
	admin.PATCH("/orders/:id/status", orders.UpdateStatus)
}
