package security

import (
	"strings"
	"testing"

	"github.com/arepabuelas/arepabuelas-backend/pkg/config"
)

func TestHashAndVerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("Arepas!!22rico", config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("expected argon2id prefix, got %s", hash)
	}

	ok, err := VerifyPassword("Arepas!!22rico", hash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected matching password to verify")
	}

	ok, err = VerifyPassword("wrong-password", hash)
	if err != nil {
		t.Fatalf("verify mismatch: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch to fail")
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	if _, err := VerifyPassword("whatever", "not-a-hash"); err != ErrInvalidHash {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	if _, err := HashPassword("", config.PasswordConfig{}); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestPasswordPolicyErrors(t *testing.T) {
	cases := []struct {
		name     string
		password string
		want     int
	}{
		{"valid", "Arepas!!22rico", 0},
		{"too short", "Ab1!", 3}, // length, digits, symbols
		{"no upper", "arepas!!22rico", 1},
		{"no symbols", "Arepas2233rico", 1},
		{"empty", "", 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PasswordPolicyErrors(tc.password)
			if len(got) != tc.want {
				t.Fatalf("expected %d violations, got %d: %v", tc.want, len(got), got)
			}
		})
	}
}
