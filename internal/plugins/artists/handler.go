package artists

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/yousong/internal/apperror"
)

// Handler handles HTTP requests for artist CRUD. Handlers are thin: they
// bind the request, call the service, and render the response.
type Handler struct {
	service ArtistService
}

// NewHandler creates a new artist handler with the given service.
func NewHandler(service ArtistService) *Handler {
	return &Handler{service: service}
}

// List returns all artists (GET /api/artists).
func (h *Handler) List(c echo.Context) error {
	list, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Get returns a single artist (GET /api/artists/:id).
func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	artist, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, artist)
}

// Create adds a new artist (POST /api/artists).
func (h *Handler) Create(c echo.Context) error {
	var req ArtistRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	artist, err := h.service.Create(c.Request().Context(), ArtistInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, artist)
}

// Update replaces an artist's name and description (PUT /api/artists/:id).
func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req ArtistRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	artist, err := h.service.Update(c.Request().Context(), id, ArtistInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, artist)
}

// Delete removes an artist (DELETE /api/artists/:id).
func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// parseID parses the :id route parameter. A non-numeric id behaves like a
// missing resource rather than a malformed request.
func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperror.NewNotFound("artist not found")
	}
	return id, nil
}
