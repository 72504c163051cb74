package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/ratelimit"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	UserHandler    *UserHTTP
	CartHandler    *CartHTTP
	OrderHandler   *OrderHTTP

	JWTSecret []byte

	// Ready backs /health/ready; nil means always ready.
	Ready func(ctx context.Context) error

	// Limiter throttles /api/auth; nil disables throttling.
	Limiter        ratelimit.Allower
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// Register installs the error renderer, the validator and every route on e.
func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler
	e.Validator = NewValidator()

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready").SetInternal(err)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	requireAuth := authmw.RequireAuth(d.JWTSecret)
	api := e.Group("/api")

	auth := api.Group("/auth")
	throttle := ratelimit.Middleware(d.Limiter, ratelimit.Config{
		Limit:  d.AuthRateLimit,
		Window: d.AuthRateWindow,
		Scope:  "auth",
	})
	auth.POST("/register", d.AuthHandler.Register, throttle)
	auth.POST("/login", d.AuthHandler.Login, throttle)
	auth.GET("/me", d.AuthHandler.Me, requireAuth)

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.POST("", d.CatalogHandler.CreateProduct, requireAuth)
	products.PUT("/:id", d.CatalogHandler.ReplaceProduct, requireAuth)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct, requireAuth)

	users := api.Group("/users", requireAuth)
	users.GET("", d.UserHandler.ListUsers, authmw.RequireAdmin())
	users.GET("/:id", d.UserHandler.GetUser)
	users.PUT("/:id", d.UserHandler.UpdateUser)
	users.DELETE("/:id", d.UserHandler.DeleteUser)

	cart := api.Group("/cart", requireAuth)
	cart.POST("", d.CartHandler.CreateOrGetCart)
	cart.GET("/:cartId", d.CartHandler.GetCart)
	cart.POST("/:cartId", d.CartHandler.AddItem)
	cart.DELETE("/:cartId", d.CartHandler.ClearCart)
	cart.DELETE("/:cartId/:itemId", d.CartHandler.RemoveItem)
	cart.POST("/:cartId/checkout", d.CartHandler.Checkout)

	orders := api.Group("/orders", requireAuth)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("/:orderId", d.OrderHandler.GetOrder)
	orders.PATCH("/:id/status", d.OrderHandler.UpdateStatus)
}
