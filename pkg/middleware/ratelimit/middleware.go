package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

type Config struct {
	Limit  int
	Window time.Duration
	// Scope separates counters of different route groups sharing one limiter.
	Scope string
	// KeyFunc identifies the client; defaults to the real IP.
	KeyFunc func(c echo.Context) string
}

// Middleware answers 429 once a client exceeds cfg.Limit requests per cfg.Window.
// A failing backend lets the request through.
func Middleware(a Allower, cfg Config) echo.MiddlewareFunc {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c echo.Context) string { return c.RealIP() }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if a == nil || cfg.Limit <= 0 {
				return next(c)
			}
			ctx := c.Request().Context()

			res, err := a.Allow(ctx, cfg.Scope+":"+keyFunc(c), cfg.Limit, cfg.Window)
			if err != nil {
				logging.FromContext(ctx).Error("rate_limit_unavailable", "error", err)
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				retry := int(math.Ceil(time.Until(res.ResetAt).Seconds()))
				if retry < 1 {
					retry = 1
				}
				h.Set("Retry-After", strconv.Itoa(retry))
				logging.FromContext(ctx).Warn("rate_limited", "scope", cfg.Scope)
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}
