package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/jagatstore/jagat-backend/internal/config"
)

// RateLimit returns a fixed-window limiter keyed on caller IP and route,
// backed by Redis so the count survives restarts and is shared across
// replicas.  Disabled config or a nil client yields a pass-through, and a
// Redis error at request time lets the request through rather than
// blocking traffic on limiter availability.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	// INCR and the first-hit expiry must be atomic, otherwise a key can
	// leak without a TTL and lock callers out forever.
	windowScript := redis.NewScript(`
		local current = redis.call('INCR', KEYS[1])
		if current == 1 then
			redis.call('PEXPIRE', KEYS[1], ARGV[1])
		end
		return current
	`)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := cfg.Prefix + ":" + c.RealIP() + ":" + c.Path()
			ctx := c.Request().Context()
			n, err := windowScript.Run(ctx, rdb, []string{key}, cfg.Window.Milliseconds()).Int64()
			if err != nil {
				return next(c)
			}
			if n > int64(cfg.Limit) {
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "Too many requests"})
			}
			return next(c)
		}
	}
}
