package auth

import (
	"testing"
	"time"
)

const secret = "test-secret-that-is-at-least-32-chars"

func TestGenerateAndParseToken(t *testing.T) {
	now := time.Now()
	token, expires, err := GenerateToken(secret, "admin", now)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := expires.Sub(now); got != 24*time.Hour {
		t.Fatalf("expected 24h ttl, got %s", got)
	}

	claims, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Username != "admin" {
		t.Fatalf("username = %q", claims.Username)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := GenerateToken(secret, "admin", time.Now())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken("another-secret-that-is-32-chars-long", token); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, _, err := GenerateToken(secret, "admin", time.Now().Add(-48*time.Hour))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken(secret, token); err == nil {
		t.Fatalf("expected error for expired token")
	}
}
