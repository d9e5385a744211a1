package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RateLimit returns middleware that limits requests per client IP to
// maxRequests within the given window, using a fixed-window counter in
// Redis. The counter is shared across server instances, so limits hold
// even when the API runs replicated behind a load balancer.
//
// Designed for the auth endpoints (login, registration) where brute force
// and mass account creation are the concern. Returns 429 when exceeded.
//
// If Redis is unreachable the limiter fails open: availability of the auth
// endpoints is preferred over strict enforcement during an outage.
func RateLimit(rdb *redis.Client, maxRequests int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			// Key per route + IP so the login and registration limits
			// count independently.
			key := fmt.Sprintf("ratelimit:%s:%s", c.Path(), c.RealIP())

			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				slog.Warn("rate limiter unavailable, allowing request",
					slog.String("key", key),
					slog.Any("error", err))
				return next(c)
			}

			// First hit in the window starts the clock. EXPIRE on count==1
			// keeps the window fixed rather than sliding.
			if count == 1 {
				if err := rdb.Expire(ctx, key, window).Err(); err != nil {
					slog.Warn("rate limiter expire failed",
						slog.String("key", key),
						slog.Any("error", err))
				}
			}

			if count > int64(maxRequests) {
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"type":    "rate_limited",
					"message": "Rate limit exceeded. Please try again later.",
				})
			}

			return next(c)
		}
	}
}
