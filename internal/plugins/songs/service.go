package songs

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/keyxmakerx/yousong/internal/apperror"
)

// Field limits enforced on song input.
const (
	titleMaxLen    = 200
	genreMaxLen    = 80
	searchMinLen   = 2
	searchMaxLen   = 200
	audioURIPrefix = "data:audio"
)

// SongService defines the business logic contract for song operations.
// Mutating methods take the requester's user id; an empty id means the
// request is anonymous.
type SongService interface {
	Create(ctx context.Context, requesterID string, input SongInput) (*Song, error)
	Get(ctx context.Context, id int64) (*Song, error)
	List(ctx context.Context, opts ListOptions) ([]Song, int, error)
	Catalog(ctx context.Context, query string, genres []string, opts ListOptions) ([]Song, int, error)
	Search(ctx context.Context, query string) ([]Song, error)
	Update(ctx context.Context, requesterID string, id int64, input SongInput, version *int64) (*Song, error)
	Delete(ctx context.Context, requesterID string, id int64) error

	// Music returns the decoded audio bytes and their content type for a
	// song that embeds audio as a data URI.
	Music(ctx context.Context, id int64) (contentType string, data []byte, err error)
}

// songService implements SongService.
type songService struct {
	repo SongRepository
}

// NewSongService creates a new song service.
func NewSongService(repo SongRepository) SongService {
	return &songService{repo: repo}
}

// Create validates and persists a new song owned by the requester.
// Anonymous requests are rejected; the owner is always the creator and
// never changes afterwards.
func (s *songService) Create(ctx context.Context, requesterID string, input SongInput) (*Song, error) {
	if requesterID == "" {
		return nil, apperror.NewUnauthorized("authentication required")
	}

	song, err := buildSong(input)
	if err != nil {
		return nil, err
	}
	song.OwnerID = &requesterID

	if err := s.repo.Create(ctx, song); err != nil {
		return nil, wrapRepoError(err, "creating song")
	}

	slog.Info("song created",
		slog.Int64("song_id", song.ID),
		slog.String("title", song.Title),
		slog.String("owner_id", requesterID),
	)

	// Re-read to pick up the artist name and timestamps.
	created, err := s.repo.FindByID(ctx, song.ID)
	if err != nil {
		return nil, wrapRepoError(err, "reloading created song")
	}
	return created, nil
}

// Get retrieves a single song by id.
func (s *songService) Get(ctx context.Context, id int64) (*Song, error) {
	song, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapRepoError(err, "finding song")
	}
	return song, nil
}

// List returns a page of the whole catalog ordered by id.
func (s *songService) List(ctx context.Context, opts ListOptions) ([]Song, int, error) {
	songs, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, 0, wrapRepoError(err, "listing songs")
	}
	return songs, total, nil
}

// Catalog returns a filtered page. A free-text query shorter than two
// characters after trimming is treated as absent, not as an error --
// the catalog endpoint filters best-effort. Requested genres are deduped
// case-insensitively before the superset match.
func (s *songService) Catalog(ctx context.Context, query string, genres []string, opts ListOptions) ([]Song, int, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < searchMinLen {
		query = ""
	}
	genres = normalizeGenres(genres)

	songs, total, err := s.repo.Catalog(ctx, query, genres, opts)
	if err != nil {
		return nil, 0, wrapRepoError(err, "filtering songs")
	}
	return songs, total, nil
}

// Search returns every song matching the free-text query. Unlike the
// catalog filter, the dedicated search endpoint rejects unusable queries
// instead of ignoring them.
func (s *songService) Search(ctx context.Context, query string) ([]Song, error) {
	query = strings.TrimSpace(query)
	// Limits are in characters, not bytes: multibyte text must not hit
	// the cap early.
	switch {
	case query == "":
		return nil, apperror.NewValidation(map[string]string{"query": "query is required"})
	case utf8.RuneCountInString(query) < searchMinLen:
		return nil, apperror.NewValidation(map[string]string{
			"query": fmt.Sprintf("query must be at least %d characters", searchMinLen)})
	case utf8.RuneCountInString(query) > searchMaxLen:
		return nil, apperror.NewValidation(map[string]string{
			"query": fmt.Sprintf("query must be at most %d characters", searchMaxLen)})
	}

	songs, err := s.repo.SearchProjected(ctx, query)
	if err != nil {
		return nil, wrapRepoError(err, "searching songs")
	}
	return songs, nil
}

// Update rewrites a song under the ownership and concurrency rules.
//
// The checks run in a fixed order: identity first (401), then existence
// (404), then ownership (403), then the presence of the expected version
// (400), and only then the version comparison itself (409). A caller who
// may not touch the song learns that before any concurrency outcome.
func (s *songService) Update(ctx context.Context, requesterID string, id int64, input SongInput, version *int64) (*Song, error) {
	if requesterID == "" {
		return nil, apperror.NewUnauthorized("authentication required")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapRepoError(err, "finding song")
	}

	if err := authorizeOwner(existing, requesterID); err != nil {
		return nil, err
	}

	if version == nil {
		return nil, apperror.NewBadRequest("version is required for updates")
	}

	song, err := buildSong(input)
	if err != nil {
		return nil, err
	}
	song.ID = id
	song.OwnerID = existing.OwnerID

	newVersion, err := s.repo.UpdateWithVersion(ctx, song, *version)
	if err != nil {
		return nil, wrapRepoError(err, "updating song")
	}
	// The response reflects exactly this write. A fresh read here could
	// return a later concurrent update's state instead.
	song.Version = newVersion

	slog.Info("song updated",
		slog.Int64("song_id", id),
		slog.Int64("from_version", *version),
	)

	return song, nil
}

// Delete removes a song after the identity and ownership checks. Deletes
// are not version-guarded: removing a song is idempotent in intent, and
// the ownership rule already restricts it to a single user.
func (s *songService) Delete(ctx context.Context, requesterID string, id int64) error {
	if requesterID == "" {
		return apperror.NewUnauthorized("authentication required")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return wrapRepoError(err, "finding song")
	}

	if err := authorizeOwner(existing, requesterID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return wrapRepoError(err, "deleting song")
	}

	slog.Info("song deleted", slog.Int64("song_id", id))
	return nil
}

// Music decodes a song's embedded audio. The stored value must be a
// data URI with an audio media type: anything else -- absent, empty, or
// a non-audio URI -- reads as "this song has no audio" (404). A URI that
// declares audio but fails to decode is corrupt data, an internal error.
func (s *songService) Music(ctx context.Context, id int64) (string, []byte, error) {
	song, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", nil, wrapRepoError(err, "finding song")
	}

	if song.MusicData == nil || !strings.HasPrefix(*song.MusicData, audioURIPrefix) {
		return "", nil, apperror.NewNotFound("song has no audio")
	}

	contentType, data, err := decodeDataURI(*song.MusicData)
	if err != nil {
		return "", nil, apperror.NewInternal(fmt.Errorf("decoding audio for song %d: %w", id, err))
	}
	return contentType, data, nil
}

// authorizeOwner enforces the mutation rule: only the owner may change a
// song, and ownerless songs are frozen for everyone.
func authorizeOwner(song *Song, requesterID string) error {
	if song.OwnerID == nil || *song.OwnerID != requesterID {
		return apperror.NewForbidden("you do not own this song")
	}
	return nil
}

// buildSong validates the input and returns a normalized Song.
func buildSong(input SongInput) (*Song, error) {
	title := strings.TrimSpace(input.Title)
	genres := normalizeGenres(input.Genres)

	fields := make(map[string]string)
	if title == "" {
		fields["title"] = "title is required"
	} else if utf8.RuneCountInString(title) > titleMaxLen {
		fields["title"] = fmt.Sprintf("title must be at most %d characters", titleMaxLen)
	}
	if input.LengthSeconds <= 0 {
		fields["length_seconds"] = "length must be a positive number of seconds"
	}
	if input.ArtistID <= 0 {
		fields["artist_id"] = "artist_id is required"
	}
	if len(genres) == 0 {
		fields["genres"] = "at least one genre is required"
	} else {
		for _, g := range genres {
			if utf8.RuneCountInString(g) > genreMaxLen {
				fields["genres"] = fmt.Sprintf("each genre must be at most %d characters", genreMaxLen)
				break
			}
		}
	}

	if len(fields) > 0 {
		return nil, apperror.NewValidation(fields)
	}

	return &Song{
		Title:         title,
		LengthSeconds: input.LengthSeconds,
		Genres:        genres,
		ArtistID:      input.ArtistID,
		MusicData:     input.MusicData,
	}, nil
}

// decodeDataURI splits a "data:<mediatype>;base64,<payload>" string into
// its content type and decoded bytes.
func decodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, errors.New("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New("data URI has no payload")
	}

	contentType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, errors.New("data URI is not base64-encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decoding base64 payload: %w", err)
	}
	return contentType, data, nil
}

// wrapRepoError passes domain errors through untouched and wraps anything
// else as an internal error so raw SQL failures never reach the client.
func wrapRepoError(err error, op string) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.NewInternal(fmt.Errorf("%s: %w", op, err))
}
