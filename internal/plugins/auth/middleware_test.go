package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/yousong/internal/apperror"
)

// resolveIdentityFor runs the ResolveIdentity middleware against a request
// carrying the given Authorization header and returns the resolved user.
func resolveIdentityFor(t *testing.T, repo UserRepository, tokens *TokenService, authHeader string) *User {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var resolved *User
	handler := ResolveIdentity(tokens, repo)(func(c echo.Context) error {
		resolved = GetUser(c)
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected handler to run with 200, got %d", rec.Code)
	}

	return resolved
}

func TestResolveIdentity_ValidToken(t *testing.T) {
	tokens := newTestTokenService()
	user := &User{ID: "user-123", Username: "hugo", CreatedAt: time.Now().UTC()}

	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*User, error) {
			if id != "user-123" {
				t.Errorf("expected lookup of user-123, got %s", id)
			}
			return user, nil
		},
	}

	token, err := tokens.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	resolved := resolveIdentityFor(t, repo, tokens, "Bearer "+token)
	if resolved == nil {
		t.Fatal("expected identity to resolve")
	}
	if resolved.Username != "hugo" {
		t.Errorf("expected hugo, got %s", resolved.Username)
	}
}

func TestResolveIdentity_CaseInsensitiveScheme(t *testing.T) {
	tokens := newTestTokenService()
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*User, error) {
			return &User{ID: id, Username: "hugo"}, nil
		},
	}

	token, _ := tokens.Issue("user-123")
	if resolved := resolveIdentityFor(t, repo, tokens, "bearer "+token); resolved == nil {
		t.Error("expected lowercase bearer scheme to resolve")
	}
}

func TestResolveIdentity_AnonymousWithoutHeader(t *testing.T) {
	tokens := newTestTokenService()
	if resolved := resolveIdentityFor(t, &mockUserRepo{}, tokens, ""); resolved != nil {
		t.Error("expected anonymous without Authorization header")
	}
}

func TestResolveIdentity_AnonymousOnBadToken(t *testing.T) {
	tokens := newTestTokenService()

	tests := []struct {
		name   string
		header string
	}{
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not-a-real-token"},
		{"empty token", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if resolved := resolveIdentityFor(t, &mockUserRepo{}, tokens, tt.header); resolved != nil {
				t.Error("expected anonymous on unusable credentials")
			}
		})
	}
}

func TestResolveIdentity_AnonymousOnExpiredToken(t *testing.T) {
	expired := NewTokenService("test-secret-key-for-unit-tests-only", -time.Minute, "yousong")
	token, _ := expired.Issue("user-123")

	tokens := newTestTokenService()
	if resolved := resolveIdentityFor(t, &mockUserRepo{}, tokens, "Bearer "+token); resolved != nil {
		t.Error("expected anonymous on expired token")
	}
}

func TestResolveIdentity_AnonymousOnDeletedUser(t *testing.T) {
	tokens := newTestTokenService()
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*User, error) {
			return nil, apperror.NewNotFound("user not found")
		},
	}

	token, _ := tokens.Issue("user-gone")
	if resolved := resolveIdentityFor(t, repo, tokens, "Bearer "+token); resolved != nil {
		t.Error("expected anonymous when token user no longer exists")
	}
}

func TestGetUser_EmptyContext(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	if GetUser(c) != nil {
		t.Error("expected nil user on empty context")
	}
	if GetUserID(c) != "" {
		t.Error("expected empty user id on empty context")
	}
}
