package middleware

import (
	"github.com/labstack/echo/v4"
)

// SecurityHeaders returns middleware that sets security-related HTTP headers
// on every response. The API serves JSON only, so the policy is strict: no
// framing, no MIME sniffing, and no embedding of any kind.
func SecurityHeaders(isProduction bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			// Prevent MIME type sniffing attacks.
			h.Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking -- the API has no UI to frame anyway.
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "frame-ancestors 'none'")

			// Control referrer information leakage.
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// HSTS -- only in production where TLS is guaranteed. Setting it
			// in development breaks plain-HTTP localhost testing.
			if isProduction {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			return next(c)
		}
	}
}
