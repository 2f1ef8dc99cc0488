package auth

import (
	"errors"
	"testing"
	"time"
)

func TestJWTManager_GenerateAndParse(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)
	token, expires, err := manager.GenerateToken("ops@example.com", "ops@example.com", RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if until := time.Until(expires); until < 59*time.Minute || until > time.Hour {
		t.Fatalf("expected expiry about an hour out, got %s", until)
	}

	claims, err := manager.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "ops@example.com" || claims.Role != RoleAdmin || claims.Issuer != "leadscout" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := manager.ParseToken(token + "tampered"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestJWTManager_Expired(t *testing.T) {
	manager := NewJWTManager("secret", time.Minute)
	issued := time.Now().Add(-2 * time.Hour)
	manager.now = func() time.Time { return issued }
	token, _, err := manager.GenerateToken("ops", "ops@example.com", RoleViewer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	manager.now = time.Now
	if _, err := manager.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestJWTManager_WrongSecret(t *testing.T) {
	token, _, err := NewJWTManager("one", time.Hour).GenerateToken("ops", "ops@example.com", RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewJWTManager("two", time.Hour).ParseToken(token); err == nil {
		t.Fatalf("expected error for token signed with another secret")
	}
}

func TestJWTManager_EmptySecret(t *testing.T) {
	manager := NewJWTManager("", time.Hour)
	if _, _, err := manager.GenerateToken("user", "user@example.com", RoleViewer); err == nil {
		t.Fatalf("expected error when secret is empty")
	}
}
