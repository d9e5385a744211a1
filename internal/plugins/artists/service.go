package artists

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/keyxmakerx/yousong/internal/apperror"
)

// Field length limits enforced on artist input.
const (
	nameMaxLen        = 200
	descriptionMaxLen = 500
)

// ArtistService defines the business logic contract for artist operations.
type ArtistService interface {
	Create(ctx context.Context, input ArtistInput) (*Artist, error)
	Get(ctx context.Context, id int64) (*Artist, error)
	List(ctx context.Context) ([]Artist, error)
	Update(ctx context.Context, id int64, input ArtistInput) (*Artist, error)
	Delete(ctx context.Context, id int64) error
}

// artistService implements ArtistService.
type artistService struct {
	repo ArtistRepository
}

// NewArtistService creates a new artist service.
func NewArtistService(repo ArtistRepository) ArtistService {
	return &artistService{repo: repo}
}

// Create validates and persists a new artist.
func (s *artistService) Create(ctx context.Context, input ArtistInput) (*Artist, error) {
	artist, err := buildArtist(input)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, artist); err != nil {
		return nil, wrapRepoError(err, "creating artist")
	}

	slog.Info("artist created",
		slog.Int64("artist_id", artist.ID),
		slog.String("name", artist.Name),
	)

	return artist, nil
}

// Get retrieves a single artist by id.
func (s *artistService) Get(ctx context.Context, id int64) (*Artist, error) {
	artist, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapRepoError(err, "finding artist")
	}
	return artist, nil
}

// List returns all artists.
func (s *artistService) List(ctx context.Context) ([]Artist, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, wrapRepoError(err, "listing artists")
	}
	if list == nil {
		list = []Artist{}
	}
	return list, nil
}

// Update validates the input and replaces the artist's name and description.
func (s *artistService) Update(ctx context.Context, id int64, input ArtistInput) (*Artist, error) {
	artist, err := buildArtist(input)
	if err != nil {
		return nil, err
	}
	artist.ID = id

	if err := s.repo.Update(ctx, artist); err != nil {
		return nil, wrapRepoError(err, "updating artist")
	}

	return artist, nil
}

// Delete removes an artist. Fails with a referential conflict if songs
// still reference it.
func (s *artistService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrapRepoError(err, "deleting artist")
	}

	slog.Info("artist deleted", slog.Int64("artist_id", id))
	return nil
}

// buildArtist validates the input and returns a normalized Artist.
// Name is trimmed; an empty description is stored as NULL.
func buildArtist(input ArtistInput) (*Artist, error) {
	name := strings.TrimSpace(input.Name)

	fields := make(map[string]string)
	if name == "" {
		fields["name"] = "name is required"
	} else if utf8.RuneCountInString(name) > nameMaxLen {
		fields["name"] = fmt.Sprintf("name must be at most %d characters", nameMaxLen)
	}

	var description *string
	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if utf8.RuneCountInString(trimmed) > descriptionMaxLen {
			fields["description"] = fmt.Sprintf("description must be at most %d characters", descriptionMaxLen)
		}
		if trimmed != "" {
			description = &trimmed
		}
	}

	if len(fields) > 0 {
		return nil, apperror.NewValidation(fields)
	}

	return &Artist{Name: name, Description: description}, nil
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
