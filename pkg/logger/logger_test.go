package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-123")
	ctx = logg.WithUserEmail(ctx, "cliente@example.com")
	logg.Info(ctx, "hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected json log line: %v", err)
	}
	if line["request_id"] != "req-123" {
		t.Fatalf("expected request_id field, got %v", line["request_id"])
	}
	if line["user_email"] != "cliente@example.com" {
		t.Fatalf("expected user_email field, got %v", line["user_email"])
	}
	if line["service"] != "test" {
		t.Fatalf("expected service field, got %v", line["service"])
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != zerolog.DebugLevel {
		t.Fatalf("expected debug level")
	}
	if ParseLevel("") != zerolog.InfoLevel {
		t.Fatalf("expected default info level for empty value")
	}
	if ParseLevel("nonsense") != zerolog.InfoLevel {
		t.Fatalf("expected default info level for junk value")
	}
}
