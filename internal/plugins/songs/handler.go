package songs

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/yousong/internal/apperror"
	"github.com/keyxmakerx/yousong/internal/plugins/auth"
)

// Handler handles HTTP requests for the song catalog. Handlers are thin:
// they bind the request, resolve the requester, call the service, and
// render the response.
type Handler struct {
	service SongService
}

// NewHandler creates a new song handler with the given service.
func NewHandler(service SongService) *Handler {
	return &Handler{service: service}
}

// List returns a page of the catalog (GET /api/songs?page&size).
func (h *Handler) List(c echo.Context) error {
	opts := parseListOptions(c)

	songs, total, err := h.service.List(c.Request().Context(), opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewPage(toSummaries(songs), opts.Page, opts.Size, total))
}

// Get returns the full song detail including music data
// (GET /api/songs/:id).
func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	song, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDetail(song))
}

// Music streams a song's decoded audio (GET /api/songs/:id/music).
func (h *Handler) Music(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	contentType, data, err := h.service.Music(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentType, data)
}

// Catalog returns a filtered page (GET /api/songs/catalog?q&genres&page&size).
// genres accepts both repeated parameters and comma-separated values.
func (h *Handler) Catalog(c echo.Context) error {
	opts := parseListOptions(c)
	query := c.QueryParam("q")
	genres := parseGenresParam(c)

	songs, total, err := h.service.Catalog(c.Request().Context(), query, genres, opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewPage(toSummaries(songs), opts.Page, opts.Size, total))
}

// Search returns all songs matching a free-text query
// (GET /api/songs/search?query).
func (h *Handler) Search(c echo.Context) error {
	songs, err := h.service.Search(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSummaries(songs))
}

// Create adds a new song owned by the requester (POST /api/songs).
func (h *Handler) Create(c echo.Context) error {
	var req SongRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	song, err := h.service.Create(c.Request().Context(), auth.GetUserID(c), toInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toDetail(song))
}

// Update rewrites a song (PUT /api/songs/:id). The request must echo the
// version the client last read.
func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req SongRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	song, err := h.service.Update(c.Request().Context(), auth.GetUserID(c), id, toInput(req), req.Version)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDetail(song))
}

// Delete removes a song (DELETE /api/songs/:id).
func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), auth.GetUserID(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// toInput maps the bound request onto the service input.
func toInput(req SongRequest) SongInput {
	return SongInput{
		Title:         req.Title,
		LengthSeconds: req.LengthSeconds,
		Genres:        req.Genres,
		ArtistID:      req.ArtistID,
		MusicData:     req.MusicData,
	}
}

// parseID parses the :id route parameter. A non-numeric id behaves like a
// missing resource rather than a malformed request.
func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperror.NewNotFound("song not found")
	}
	return id, nil
}

// parseListOptions reads page/size query parameters. Unparseable values
// fall back to the defaults rather than erroring.
func parseListOptions(c echo.Context) ListOptions {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	return NormalizeListOptions(page, size)
}

// parseGenresParam collects the genres filter from repeated ?genres=
// parameters, splitting any comma-separated values.
func parseGenresParam(c echo.Context) []string {
	var out []string
	for _, raw := range c.QueryParams()["genres"] {
		for _, g := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(g); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}
