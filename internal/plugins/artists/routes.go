package artists

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all artist routes. Artist writes are public:
// artists are shared catalog data with no owner, unlike songs.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	g := e.Group("/api/artists")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
