package songs

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all song routes. Reads are public; mutations
// rely on the identity resolved by the global middleware and are rejected
// in the service when the requester is anonymous or not the owner.
//
// The static segments (catalog, search) are registered before /:id --
// Echo matches static routes first regardless, but keeping them grouped
// makes the precedence obvious.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	g := e.Group("/api/songs")

	g.GET("", h.List)
	g.GET("/catalog", h.Catalog)
	g.GET("/search", h.Search)
	g.GET("/:id", h.Get)
	g.GET("/:id/music", h.Music)

	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
