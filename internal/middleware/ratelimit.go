package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/licensedesk/revenue-api/internal/config"
)

// RateLimit returns a fixed-window Redis rate limiter keyed by the
// authenticated login (falling back to the client IP) and the matched
// route. When disabled, or when Redis is unavailable at startup or during
// a request, requests pass through unthrottled.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := fmt.Sprintf("%s:%s:%s", cfg.Prefix, identity(c), c.Path())
			ctx := c.Request().Context()

			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c) // Redis down: fail open
			}
			if count == 1 {
				_ = rdb.Expire(ctx, key, cfg.Window).Err()
			}
			remaining := int64(cfg.Limit) - count
			if remaining < 0 {
				remaining = 0
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Limit) {
				retry, err := rdb.TTL(ctx, key).Result()
				if err == nil && retry > 0 {
					h.Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
				}
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}

// identity picks the limiter key subject: the authenticated login when the
// gate already ran, otherwise the caller's IP.
func identity(c echo.Context) string {
	if login, ok := c.Get("login").(string); ok && login != "" {
		return login
	}
	return c.RealIP()
}
