// Package songs manages the song catalog: CRUD with optimistic concurrency,
// ownership-based mutation rules, text and genre search, and audio streaming.
//
// Concurrency model: every song carries a version counter maintained solely
// by the database. Updates must present the version the client last read;
// a mismatch means someone else changed the song in the meantime and the
// update is rejected with a conflict instead of silently lost.
package songs

import (
	"strings"
	"time"

	"github.com/keyxmakerx/yousong/internal/plugins/artists"
)

// Song is the domain model for a catalog entry. ArtistName is denormalized
// from the artists table on read. OwnerID is nil for ownerless songs, which
// nobody may mutate.
type Song struct {
	ID            int64
	Title         string
	LengthSeconds int
	Genres        []string
	ArtistID      int64
	ArtistName    string
	OwnerID       *string
	MusicData     *string
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// --- Request DTOs (bound from HTTP requests) ---

// SongRequest holds the data submitted to create or update a song. Version
// is a pointer so a missing field is distinguishable from version 0: updates
// without it are rejected outright rather than treated as a conflict.
type SongRequest struct {
	Title         string   `json:"title" form:"title"`
	LengthSeconds int      `json:"length_seconds" form:"length_seconds"`
	Genres        []string `json:"genres" form:"genres"`
	ArtistID      int64    `json:"artist_id" form:"artist_id"`
	MusicData     *string  `json:"music_data" form:"music_data"`
	Version       *int64   `json:"version"`
}

// SongInput is the validated input passed from handler to service.
type SongInput struct {
	Title         string
	LengthSeconds int
	Genres        []string
	ArtistID      int64
	MusicData     *string
}

// --- Response DTOs ---

// SongSummary is the projection used in every list and search response.
// It never carries music data; audio is fetched per song.
type SongSummary struct {
	ID            int64             `json:"id"`
	Title         string            `json:"title"`
	Genres        []string          `json:"genres"`
	LengthSeconds int               `json:"length_seconds"`
	Version       int64             `json:"version"`
	Artist        artists.ArtistRef `json:"artist"`
}

// SongDetail is the full representation returned by GET /api/songs/:id.
type SongDetail struct {
	SongSummary
	MusicData *string `json:"music_data"`
}

// toSummary converts a domain Song to its list projection.
func toSummary(s *Song) SongSummary {
	genres := s.Genres
	if genres == nil {
		genres = []string{}
	}
	return SongSummary{
		ID:            s.ID,
		Title:         s.Title,
		Genres:        genres,
		LengthSeconds: s.LengthSeconds,
		Version:       s.Version,
		Artist: artists.ArtistRef{
			ID:   s.ArtistID,
			Name: s.ArtistName,
		},
	}
}

// toDetail converts a domain Song to its full representation.
func toDetail(s *Song) SongDetail {
	return SongDetail{
		SongSummary: toSummary(s),
		MusicData:   s.MusicData,
	}
}

// toSummaries converts a slice of songs, never returning nil so empty
// pages serialize as [] rather than null.
func toSummaries(songs []Song) []SongSummary {
	out := make([]SongSummary, 0, len(songs))
	for i := range songs {
		out = append(out, toSummary(&songs[i]))
	}
	return out
}

// --- Pagination ---

// Page is the envelope wrapping every paginated response.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int   `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
}

// NewPage assembles a page envelope from a slice and the total match count.
func NewPage[T any](content []T, page, size, total int) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if size > 0 {
		totalPages = (total + size - 1) / size
	}
	return Page[T]{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}

// Pagination bounds. Pages are 0-based; size defaults small because song
// rows can reference large audio payloads upstream.
const (
	defaultPageSize = 5
	maxPageSize     = 100
)

// ListOptions carries normalized pagination parameters.
type ListOptions struct {
	Page int
	Size int
}

// NormalizeListOptions clamps raw query parameters into valid bounds:
// negative pages become 0, size defaults to 5 and caps at 100.
func NormalizeListOptions(page, size int) ListOptions {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return ListOptions{Page: page, Size: size}
}

// Offset returns the SQL offset for the page.
func (o ListOptions) Offset() int {
	return o.Page * o.Size
}

// --- Genre normalization ---

// normalizeGenres trims each genre and drops case-insensitive duplicates
// while preserving the first-seen spelling and order. "Pop" and "pop"
// are the same genre; the stored casing is whichever came first.
func normalizeGenres(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, g := range raw {
		trimmed := strings.TrimSpace(g)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, trimmed)
	}
	return out
}
