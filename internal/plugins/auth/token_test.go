package auth

import (
	"testing"
	"time"
)

func newTestTokenService() *TokenService {
	return NewTokenService("test-secret-key-for-unit-tests-only", time.Hour, "yousong")
}

func TestToken_IssueAndValidate(t *testing.T) {
	ts := newTestTokenService()

	token, err := ts.Issue("user-abc")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	userID, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if userID != "user-abc" {
		t.Errorf("expected user-abc, got %s", userID)
	}
}

func TestToken_RejectsGarbage(t *testing.T) {
	ts := newTestTokenService()

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"random text", "not-a-token"},
		{"truncated jwt", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ4In0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ts.Validate(tt.token); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestToken_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-one-for-signing-tokens-here", time.Hour, "yousong")
	validator := NewTokenService("secret-two-completely-different!!", time.Hour, "yousong")

	token, err := issuer.Issue("user-abc")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := validator.Validate(token); err == nil {
		t.Error("expected token signed with different secret to be rejected")
	}
}

func TestToken_RejectsWrongIssuer(t *testing.T) {
	issuer := NewTokenService("test-secret-key-for-unit-tests-only", time.Hour, "someone-else")
	validator := newTestTokenService()

	token, err := issuer.Issue("user-abc")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := validator.Validate(token); err == nil {
		t.Error("expected token with wrong issuer to be rejected")
	}
}

func TestToken_RejectsExpired(t *testing.T) {
	// Negative TTL issues a token that is already expired.
	expired := NewTokenService("test-secret-key-for-unit-tests-only", -time.Minute, "yousong")

	token, err := expired.Issue("user-abc")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	validator := newTestTokenService()
	if _, err := validator.Validate(token); err == nil {
		t.Error("expected expired token to be rejected")
	}
}
