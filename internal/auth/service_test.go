package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/atlas-bank/atlas_bank/internal/config"
	"github.com/atlas-bank/atlas_bank/internal/identity"
)

func testConfig() config.Config {
	return config.Config{JWTSecret: "test-secret", AccessTokenTTL: time.Minute}
}

func TestIssueAndVerify(t *testing.T) {
	svc := NewService(testConfig())
	user := identity.User{ID: 42, Email: "alice@example.com"}

	token, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token.TokenType != "bearer" || token.ExpiresIn <= 0 {
		t.Fatalf("unexpected token %+v", token)
	}

	userID, err := svc.Verify(token.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user id 42, got %d", userID)
	}
}

func TestVerifyRejectsForgedToken(t *testing.T) {
	svc := NewService(testConfig())
	token, err := svc.Issue(identity.User{ID: 1, Email: "a@b.c"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := NewService(config.Config{JWTSecret: "other-secret", AccessTokenTTL: time.Minute})
	if _, err := other.Verify(token.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	if _, err := svc.Verify("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTokenTTL = -time.Minute
	svc := NewService(cfg)

	token, err := svc.Issue(identity.User{ID: 7, Email: "x@y.z"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Verify(token.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestSignAndParseRoundTrip(t *testing.T) {
	claims := map[string]any{"sub": "9", "role": "admin"}
	token, err := SignHS256(claims, []byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	parsed, err := ParseAndVerifyHS256(token, []byte("secret"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed["sub"] != "9" || parsed["role"] != "admin" {
		t.Fatalf("claims corrupted: %+v", parsed)
	}
	if _, err := ParseAndVerifyHS256(token, []byte("wrong")); err == nil {
		t.Fatal("expected signature mismatch")
	}
}
