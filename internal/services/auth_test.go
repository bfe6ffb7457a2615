package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/allenwoods/naive-coreterra/internal/config"
	"github.com/allenwoods/naive-coreterra/internal/repository"
	"github.com/allenwoods/naive-coreterra/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	s := testutil.NewTestStore(t, testutil.Documents{
		"users.json": map[string]any{
			"users": []map[string]any{{"id": 1, "name": "Ada"}, {"id": 2, "name": "Grace"}},
			"authCredentials": []map[string]any{
				{"username": "ada", "password": "plain-secret", "user_id": 1},
				{"username": "grace", "password_hash": string(hash), "user_id": 2},
				{"username": "empty", "user_id": 3},
			},
		},
	})
	service, err := NewAuthService(config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour}, repository.NewCredentialRepository(s))
	if err != nil {
		t.Fatalf("creating auth service: %v", err)
	}
	return service
}

func TestNewAuthService_RequiresSecret(t *testing.T) {
	_, err := NewAuthService(config.Config{}, nil)
	if err == nil {
		t.Fatal("expected error without jwt secret")
	}
}

func TestAuthenticate_PlaintextPassword(t *testing.T) {
	service := newTestAuthService(t)

	identity, err := service.Authenticate(context.Background(), "ada", "plain-secret")
	if err != nil {
		t.Fatalf("authenticating: %v", err)
	}
	if identity.UserID != 1 || identity.Username != "ada" {
		t.Errorf("expected ada/1, got %+v", identity)
	}
}

func TestAuthenticate_HashedPassword(t *testing.T) {
	service := newTestAuthService(t)

	identity, err := service.Authenticate(context.Background(), "grace", "hashed-secret")
	if err != nil {
		t.Fatalf("authenticating: %v", err)
	}
	if identity.UserID != 2 {
		t.Errorf("expected user 2, got %d", identity.UserID)
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	service := newTestAuthService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"wrong plaintext", "ada", "nope"},
		{"wrong hash", "grace", "plain-secret"},
		{"unknown user", "linus", "anything"},
		{"no password stored", "empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Authenticate(ctx, tc.username, tc.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestIssueAndVerifyToken(t *testing.T) {
	service := newTestAuthService(t)

	token, err := service.IssueToken(Identity{UserID: 1, Username: "ada"})
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	claims, err := service.VerifyToken(token)
	if err != nil {
		t.Fatalf("verifying token: %v", err)
	}
	if claims.UserID != 1 || claims.Username != "ada" {
		t.Errorf("expected ada/1, got %+v", claims.Identity())
	}
	if claims.ID == "" {
		t.Error("expected a token id")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Errorf("expected 1h lifetime, got %v", got)
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	service := newTestAuthService(t)
	issued := time.Now().Add(-2 * time.Hour)
	service.now = func() time.Time { return issued }

	token, err := service.IssueToken(Identity{UserID: 1, Username: "ada"})
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	service.now = time.Now
	if _, err := service.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	service := newTestAuthService(t)
	other, err := NewAuthService(config.Config{JWTSecret: "other-secret"}, nil)
	if err != nil {
		t.Fatalf("creating auth service: %v", err)
	}

	token, err := other.IssueToken(Identity{UserID: 1, Username: "ada"})
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}
	if _, err := service.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyToken_Malformed(t *testing.T) {
	service := newTestAuthService(t)

	for _, token := range []string{"", "abc", "a.b.c"} {
		if _, err := service.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hashing: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")); err != nil {
		t.Errorf("expected hash to match: %v", err)
	}
	if _, err := HashPassword(""); err == nil {
		t.Error("expected error for empty password")
	}
}
