package auth

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/yousong/internal/middleware"
)

// RegisterRoutes sets up all auth-related routes on the given Echo instance.
// All three routes are public -- the identity middleware is exported
// separately for the app to apply globally.
//
// POST endpoints are rate-limited to prevent brute-force and credential
// stuffing attacks: 10 attempts per IP per minute for login, 5 per minute
// for account creation.
func RegisterRoutes(e *echo.Echo, h *Handler, rdb *redis.Client) {
	e.POST("/login", h.Login, middleware.RateLimit(rdb, 10, time.Minute))
	e.POST("/logout", h.Logout)
	e.POST("/api/users", h.Register, middleware.RateLimit(rdb, 5, time.Minute))
}
