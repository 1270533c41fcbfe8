package auth

import (
	"testing"

	"github.com/google/uuid"
)

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateToken("secret", userID, "+15550001111", "STAFF")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateToken("secret", token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user id = %v, want %v", claims.UserID, userID)
	}
	if claims.Phone != "+15550001111" {
		t.Errorf("phone = %q", claims.Phone)
	}
	if claims.Role != "STAFF" {
		t.Errorf("role = %q", claims.Role)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", uuid.New(), "123", "CUSTOMER")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ValidateToken("not-the-secret", token); err == nil {
		t.Fatal("expected validation to fail with the wrong secret")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	if _, err := ValidateToken("secret", "not.a.jwt"); err == nil {
		t.Fatal("expected validation to fail")
	}
}

func TestRefreshToken(t *testing.T) {
	token, err := GenerateRefreshToken("secret", uuid.New())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if token == "" {
		t.Fatal("empty refresh token")
	}
}
