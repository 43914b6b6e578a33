package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// TestFromContextFallsBackToDefault verifies a bare context yields slog.Default.
func TestFromContextFallsBackToDefault(t *testing.T) {
	if got := FromContext(context.Background()); got != slog.Default() {
		t.Fatal("expected default logger")
	}
}

// TestErrorErrWritesErrorAttr checks the error attribute reaches the handler.
func TestErrorErrWritesErrorAttr(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Output: &buf, JSONFormat: true})
	ctx := WithContext(context.Background(), l)

	ErrorErr(ctx, "transcription failed", errors.New("boom"), slog.String("kind", "service_error"))

	out := buf.String()
	if !strings.Contains(out, `"error":"boom"`) {
		t.Fatalf("output missing error attr: %s", out)
	}
	if !strings.Contains(out, `"kind":"service_error"`) {
		t.Fatalf("output missing kind attr: %s", out)
	}
}

// TestParseLevel checks name mapping and the info fallback.
func TestParseLevel(t *testing.T) {
	if ParseLevel("DEBUG") != slog.LevelDebug {
		t.Fatal("debug not parsed")
	}
	if ParseLevel("warning") != slog.LevelWarn {
		t.Fatal("warning not parsed")
	}
	if ParseLevel("nonsense") != slog.LevelInfo {
		t.Fatal("unknown level should map to info")
	}
}
