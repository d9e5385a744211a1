package artists

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/keyxmakerx/yousong/internal/apperror"
)

// --- Mock Repository ---

// mockArtistRepo implements ArtistRepository for testing.
type mockArtistRepo struct {
	createFn   func(ctx context.Context, artist *Artist) error
	findByIDFn func(ctx context.Context, id int64) (*Artist, error)
	listFn     func(ctx context.Context) ([]Artist, error)
	updateFn   func(ctx context.Context, artist *Artist) error
	deleteFn   func(ctx context.Context, id int64) error
}

func (m *mockArtistRepo) Create(ctx context.Context, artist *Artist) error {
	if m.createFn != nil {
		return m.createFn(ctx, artist)
	}
	artist.ID = 1
	return nil
}

func (m *mockArtistRepo) FindByID(ctx context.Context, id int64) (*Artist, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, apperror.NewNotFound("artist not found")
}

func (m *mockArtistRepo) FindByName(ctx context.Context, name string) (*Artist, error) {
	return nil, apperror.NewNotFound("artist not found")
}

func (m *mockArtistRepo) List(ctx context.Context) ([]Artist, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockArtistRepo) Update(ctx context.Context, artist *Artist) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, artist)
	}
	return nil
}

func (m *mockArtistRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// assertAppError checks that err is an *apperror.AppError with the expected code.
func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", expectedCode)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// --- Create Tests ---

func TestCreateArtist_Success(t *testing.T) {
	repo := &mockArtistRepo{
		createFn: func(ctx context.Context, artist *Artist) error {
			if artist.Name != "Queen" {
				t.Errorf("expected name Queen, got %s", artist.Name)
			}
			artist.ID = 7
			return nil
		},
	}

	svc := NewArtistService(repo)
	artist, err := svc.Create(context.Background(), ArtistInput{Name: "Queen"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artist.ID != 7 {
		t.Errorf("expected id 7, got %d", artist.ID)
	}
}

func TestCreateArtist_TrimsAndNullsEmptyDescription(t *testing.T) {
	var captured *Artist
	repo := &mockArtistRepo{
		createFn: func(ctx context.Context, artist *Artist) error {
			captured = artist
			return nil
		},
	}

	empty := "   "
	svc := NewArtistService(repo)
	_, err := svc.Create(context.Background(), ArtistInput{
		Name:        "  Queen  ",
		Description: &empty,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Name != "Queen" {
		t.Errorf("expected trimmed name, got %q", captured.Name)
	}
	if captured.Description != nil {
		t.Errorf("expected blank description to become nil, got %q", *captured.Description)
	}
}

func TestCreateArtist_LimitsCountCharactersNotBytes(t *testing.T) {
	repo := &mockArtistRepo{
		createFn: func(ctx context.Context, artist *Artist) error {
			artist.ID = 7
			return nil
		},
	}

	// 200- and 500-rune multibyte values sit exactly on the character
	// limits despite double the byte length.
	description := strings.Repeat("é", 500)
	svc := NewArtistService(repo)
	_, err := svc.Create(context.Background(), ArtistInput{
		Name:        strings.Repeat("é", 200),
		Description: &description,
	})
	if err != nil {
		t.Fatalf("unexpected error for at-limit multibyte input: %v", err)
	}
}

func TestCreateArtist_Validation(t *testing.T) {
	longDesc := strings.Repeat("x", 501)

	tests := []struct {
		name  string
		input ArtistInput
		field string
	}{
		{"missing name", ArtistInput{Name: ""}, "name"},
		{"blank name", ArtistInput{Name: "   "}, "name"},
		{"name too long", ArtistInput{Name: strings.Repeat("x", 201)}, "name"},
		{"description too long", ArtistInput{Name: "Queen", Description: &longDesc}, "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewArtistService(&mockArtistRepo{})
			_, err := svc.Create(context.Background(), tt.input)
			assertAppError(t, err, 400)

			var appErr *apperror.AppError
			errors.As(err, &appErr)
			if _, ok := appErr.Fields[tt.field]; !ok {
				t.Errorf("expected field %q in validation messages, got %v", tt.field, appErr.Fields)
			}
		})
	}
}

func TestCreateArtist_DuplicateName(t *testing.T) {
	repo := &mockArtistRepo{
		createFn: func(ctx context.Context, artist *Artist) error {
			return apperror.NewUniquenessConflict("an artist with this name already exists")
		},
	}

	svc := NewArtistService(repo)
	_, err := svc.Create(context.Background(), ArtistInput{Name: "queen"})
	assertAppError(t, err, 409)
}

func TestCreateArtist_RepositoryError(t *testing.T) {
	repo := &mockArtistRepo{
		createFn: func(ctx context.Context, artist *Artist) error {
			return errors.New("db write error")
		},
	}

	svc := NewArtistService(repo)
	_, err := svc.Create(context.Background(), ArtistInput{Name: "Queen"})
	assertAppError(t, err, 500)
}

// --- Get / List Tests ---

func TestGetArtist_NotFound(t *testing.T) {
	svc := NewArtistService(&mockArtistRepo{})
	_, err := svc.Get(context.Background(), 42)
	assertAppError(t, err, 404)
}

func TestListArtists_EmptyIsNotNil(t *testing.T) {
	svc := NewArtistService(&mockArtistRepo{})
	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list == nil {
		t.Error("expected empty slice, got nil (would serialize as JSON null)")
	}
}

// --- Update Tests ---

func TestUpdateArtist_Success(t *testing.T) {
	var captured *Artist
	repo := &mockArtistRepo{
		updateFn: func(ctx context.Context, artist *Artist) error {
			captured = artist
			return nil
		},
	}

	svc := NewArtistService(repo)
	artist, err := svc.Update(context.Background(), 3, ArtistInput{Name: "Queen"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.ID != 3 {
		t.Errorf("expected update of id 3, got %d", captured.ID)
	}
	if artist.Name != "Queen" {
		t.Errorf("expected Queen, got %s", artist.Name)
	}
}

func TestUpdateArtist_NotFound(t *testing.T) {
	repo := &mockArtistRepo{
		updateFn: func(ctx context.Context, artist *Artist) error {
			return apperror.NewNotFound("artist not found")
		},
	}

	svc := NewArtistService(repo)
	_, err := svc.Update(context.Background(), 99, ArtistInput{Name: "Queen"})
	assertAppError(t, err, 404)
}

func TestUpdateArtist_RenameCollision(t *testing.T) {
	repo := &mockArtistRepo{
		updateFn: func(ctx context.Context, artist *Artist) error {
			return apperror.NewUniquenessConflict("an artist with this name already exists")
		},
	}

	svc := NewArtistService(repo)
	_, err := svc.Update(context.Background(), 3, ArtistInput{Name: "Queen"})
	assertAppError(t, err, 409)
}

// --- Delete Tests ---

func TestDeleteArtist_Success(t *testing.T) {
	var deletedID int64
	repo := &mockArtistRepo{
		deleteFn: func(ctx context.Context, id int64) error {
			deletedID = id
			return nil
		},
	}

	svc := NewArtistService(repo)
	if err := svc.Delete(context.Background(), 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deletedID != 5 {
		t.Errorf("expected delete of id 5, got %d", deletedID)
	}
}

func TestDeleteArtist_StillReferenced(t *testing.T) {
	repo := &mockArtistRepo{
		deleteFn: func(ctx context.Context, id int64) error {
			return apperror.NewReferentialConflict("artist is still referenced by songs")
		},
	}

	svc := NewArtistService(repo)
	err := svc.Delete(context.Background(), 5)
	assertAppError(t, err, 409)

	var appErr *apperror.AppError
	errors.As(err, &appErr)
	if appErr.Type != "referential_conflict" {
		t.Errorf("expected referential_conflict, got %s", appErr.Type)
	}
}

func TestDeleteArtist_NotFound(t *testing.T) {
	svc := NewArtistService(&mockArtistRepo{
		deleteFn: func(ctx context.Context, id int64) error {
			return apperror.NewNotFound("artist not found")
		},
	})
	assertAppError(t, svc.Delete(context.Background(), 99), 404)
}
