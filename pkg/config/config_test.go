package config

import (
	"strings"
	"testing"
	"time"
)

func TestEnsureDSNFromLegacyParts(t *testing.T) {
	cfg := DBConfig{
		LegacyHost:     "localhost",
		LegacyPort:     5432,
		LegacyUser:     "arepabuelas",
		LegacyPassword: "p@ss word",
		LegacyName:     "arepabuelasdb",
		LegacySSLMode:  "disable",
	}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("ensureDSN: %v", err)
	}
	if !strings.HasPrefix(cfg.DSN, "postgres://") {
		t.Fatalf("expected postgres scheme, got %s", cfg.DSN)
	}
	if !strings.Contains(cfg.DSN, "sslmode=disable") {
		t.Fatalf("expected sslmode in DSN, got %s", cfg.DSN)
	}
	if strings.Contains(cfg.DSN, "p@ss word") {
		t.Fatalf("expected password to be URL encoded, got %s", cfg.DSN)
	}
}

func TestEnsureDSNMissingParts(t *testing.T) {
	cfg := DBConfig{LegacyHost: "localhost"}
	if err := cfg.ensureDSN(); err == nil {
		t.Fatalf("expected error when user and name are missing")
	}
}

func TestEnsureDSNKeepsExplicitDSN(t *testing.T) {
	cfg := DBConfig{DSN: "postgres://u:p@h:5432/db"}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("ensureDSN: %v", err)
	}
	if cfg.DSN != "postgres://u:p@h:5432/db" {
		t.Fatalf("expected DSN untouched, got %s", cfg.DSN)
	}
}

func TestJWTExpirationDefault(t *testing.T) {
	cfg := JWTConfig{ExpirationMinutes: 20}
	if cfg.Expiration() != 20*time.Minute {
		t.Fatalf("expected 20m expiration, got %s", cfg.Expiration())
	}
	if (JWTConfig{}).Expiration() != 0 {
		t.Fatalf("expected zero expiration when unset")
	}
}

func TestCartTTL(t *testing.T) {
	cfg := CartConfig{TTLMinutes: 20}
	if cfg.TTL() != 20*time.Minute {
		t.Fatalf("expected 20m TTL, got %s", cfg.TTL())
	}
}
