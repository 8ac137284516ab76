package auth_test

import (
	"testing"

	"github.com/comanda-pos/api/internal/auth"
	"github.com/google/uuid"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New()
	hubID := uuid.New()
	role := "WAITER"

	token, err := auth.GenerateToken(secret, userID, hubID, role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := auth.ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("user ID: got %v, want %v", claims.UserID, userID)
	}
	if claims.HubID != hubID {
		t.Errorf("hub ID: got %v, want %v", claims.HubID, hubID)
	}
	if claims.Role != role {
		t.Errorf("role: got %v, want %v", claims.Role, role)
	}
}

func TestValidateTokenWithWrongSecret(t *testing.T) {
	userID := uuid.New()
	hubID := uuid.New()

	token, err := auth.GenerateToken("secret-a", userID, hubID, "WAITER")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	_, err = auth.ValidateToken("secret-b", token)
	if err == nil {
		t.Fatal("expected error validating with wrong secret")
	}
}

func TestValidateTokenWithInvalidString(t *testing.T) {
	_, err := auth.ValidateToken("secret", "not-a-jwt")
	if err == nil {
		t.Fatal("expected error validating invalid token string")
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := auth.GenerateRefreshToken("secret", userID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	got, err := auth.ParseRefreshToken("secret", token)
	if err != nil {
		t.Fatalf("parse refresh token: %v", err)
	}
	if got != userID {
		t.Errorf("user ID: got %v, want %v", got, userID)
	}

	// Refresh tokens carry only registered claims, so the access-token
	// validator must refuse them for authenticated requests.
	claims, err := auth.ValidateToken("secret", token)
	if err != nil {
		t.Fatalf("parse refresh token as access token: %v", err)
	}
	if claims.UserID != uuid.Nil {
		t.Errorf("refresh token should not carry a user_id claim, got %v", claims.UserID)
	}
}

func TestParseRefreshToken_RejectsAccessToken(t *testing.T) {
	token, err := auth.GenerateToken("secret", uuid.New(), uuid.New(), "WAITER")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := auth.ParseRefreshToken("secret", token); err == nil {
		t.Fatal("expected error parsing an access token as a refresh token")
	}
}

func TestParseRefreshToken_WrongSecret(t *testing.T) {
	token, err := auth.GenerateRefreshToken("secret-a", uuid.New())
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}
	if _, err := auth.ParseRefreshToken("secret-b", token); err == nil {
		t.Fatal("expected error validating with wrong secret")
	}
}
