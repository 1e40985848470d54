package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/arepabuelas/arepabuelas-backend/pkg/config"
	"github.com/arepabuelas/arepabuelas-backend/pkg/enums"
	"github.com/google/uuid"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "arepabuelas",
		ExpirationMinutes: 20,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "cliente@example.com",
		Role:   enums.UserRoleCustomer,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Email != "cliente@example.com" {
		t.Fatalf("expected email claim, got %s", claims.Email)
	}
	if claims.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", claims.Role)
	}

	wantExpiry := now.Add(20 * time.Minute)
	if got := claims.ExpiresAt.Time; got.Sub(wantExpiry) > time.Second || wantExpiry.Sub(got) > time.Second {
		t.Fatalf("expected 20 minute expiry, got %s", got)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	issued := time.Now().UTC().Add(-time.Hour)

	token, err := MintAccessToken(cfg, issued, AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "cliente@example.com",
		Role:   enums.UserRoleCustomer,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().UTC(), AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "cliente@example.com",
		Role:   enums.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "other"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatalf("expected signature mismatch to be rejected")
	}
}

func TestMintValidatesPayload(t *testing.T) {
	cfg := testJWTConfig()
	_, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "cliente@example.com",
		Role:   enums.UserRole("waiter"),
	})
	if err == nil || !strings.Contains(err.Error(), "invalid user role") {
		t.Fatalf("expected invalid role error, got %v", err)
	}

	_, err = MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleCustomer,
	})
	if err == nil {
		t.Fatalf("expected missing email error")
	}
}
