package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIssuerRoundTrip(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)
	id := uuid.New()

	token, err := issuer.Generate(Subject{
		UserID:       id,
		Email:        "admin@example.com",
		RoleCode:     "ADMIN",
		Privileges:   []string{"transaction:view"},
		TokenVersion: "v1",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != id || claims.TokenVersion != "v1" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if len(claims.Privileges) != 1 || claims.Privileges[0] != "transaction:view" {
		t.Errorf("privileges = %v", claims.Privileges)
	}
}

func TestIssuerRejects(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)
	other := NewIssuer("another-secret", time.Hour)
	expired := NewIssuer("secret", time.Nanosecond)

	foreign, _ := other.Generate(Subject{UserID: uuid.New()})
	stale, _ := expired.Generate(Subject{UserID: uuid.New()})
	time.Sleep(time.Second)

	if _, err := issuer.Validate(""); !errors.Is(err, ErrMissingToken) {
		t.Errorf("empty token: got %v", err)
	}
	if _, err := issuer.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: got %v", err)
	}
	if _, err := issuer.Validate(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign token: got %v", err)
	}
	if _, err := issuer.Validate(stale); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: got %v", err)
	}
}
