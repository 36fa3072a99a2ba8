package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGenerateAndVerify(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	userID := uuid.New()
	token, err := issuer.Generate(userID, "ada@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != userID || claims.Email != "ada@example.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	issuer, _ := NewTokenIssuer("secret", time.Hour)
	token, _ := issuer.Generate(uuid.New(), "a@example.com")

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected expired token to be rejected, got %v", err)
	}

	other, _ := NewTokenIssuer("other-secret", time.Hour)
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected foreign signature to be rejected, got %v", err)
	}
	if _, err := other.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected garbage to be rejected, got %v", err)
	}
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	if _, err := NewTokenIssuer("", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
}
