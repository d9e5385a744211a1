package auth

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
)

// Context keys for storing the resolved identity in Echo context. Other
// plugins use these keys (via the exported getter functions below) to
// access the authenticated user's information.
const (
	contextKeyUser   = "auth_user"
	contextKeyUserID = "auth_user_id"
)

// ResolveIdentity returns middleware that resolves the request's identity
// from the Authorization header. The resolution degrades to anonymous on
// ANY failure -- missing header, malformed scheme, invalid or expired
// token, unknown user. It never fails the request itself: endpoints that
// require an identity check for it downstream and answer 401 there.
//
// This keeps public reads and authenticated writes on one code path.
func ResolveIdentity(tokens *TokenService, repo UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return next(c)
			}

			userID, err := tokens.Validate(token)
			if err != nil {
				// Expired and garbage tokens are routine, log at debug only.
				slog.Debug("identity token rejected", slog.Any("error", err))
				return next(c)
			}

			// A valid token for a since-deleted user is still anonymous.
			user, err := repo.FindByID(c.Request().Context(), userID)
			if err != nil {
				slog.Debug("identity token user not found",
					slog.String("user_id", userID))
				return next(c)
			}

			c.Set(contextKeyUser, user)
			c.Set(contextKeyUserID, user.ID)

			return next(c)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Returns empty string if the header is missing or malformed.
// The scheme comparison is case-insensitive per RFC 7235.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return ""
	}

	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}

	return strings.TrimSpace(header[len(prefix):])
}

// --- Exported getters for other plugins ---

// GetUser retrieves the authenticated user from the Echo context.
// Returns nil if the request is anonymous.
func GetUser(c echo.Context) *User {
	user, ok := c.Get(contextKeyUser).(*User)
	if !ok {
		return nil
	}
	return user
}

// GetUserID retrieves the authenticated user's ID from the Echo context.
// Returns empty string if the request is anonymous.
func GetUserID(c echo.Context) string {
	id, ok := c.Get(contextKeyUserID).(string)
	if !ok {
		return ""
	}
	return id
}
