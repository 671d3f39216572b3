package auth

import (
	"testing"
	"time"

	"github.com/biokuam/portal/internal/domain"
)

func TestGenerateAndValidate(t *testing.T) {
	tm := NewTokenManager("test-secret", "biokuam", time.Hour)
	user := &domain.User{ID: "BKM1", Nombre: "Ana", Correo: "ana@example.com"}

	token, err := tm.Generate(user)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := tm.Validate(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID() != "BKM1" {
		t.Fatalf("expected subject BKM1, got %s", claims.UserID())
	}
	if claims.Correo != "ana@example.com" {
		t.Fatalf("expected correo claim, got %s", claims.Correo)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", "biokuam", time.Hour)
	verifier := NewTokenManager("secret-b", "biokuam", time.Hour)

	token, err := issuer.Generate(&domain.User{ID: "BKM1"})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := verifier.Validate(token); err == nil {
		t.Fatalf("expected validation to fail with wrong secret")
	}
}

func TestValidateExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret", "biokuam", time.Millisecond)

	token, err := tm.Generate(&domain.User{ID: "BKM1"})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := tm.Validate(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestValidateGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", "biokuam", time.Hour)
	if _, err := tm.Validate("not-a-token"); err == nil {
		t.Fatalf("expected garbage token to be rejected")
	}
}

func TestExtractBearer(t *testing.T) {
	token, err := ExtractBearer("Bearer abc.def.ghi")
	if err != nil || token != "abc.def.ghi" {
		t.Fatalf("expected abc.def.ghi, got %q (%v)", token, err)
	}

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc.def.ghi"} {
		if _, err := ExtractBearer(header); err == nil {
			t.Errorf("expected error for header %q", header)
		}
	}
}
