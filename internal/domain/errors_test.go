package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// TestKindOfWrapped verifies kind lookup through fmt.Errorf wrapping.
func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("stage: %w", NewError(ErrorKindMediaRejected, "bad media", nil))
	if got := KindOf(err); got != ErrorKindMediaRejected {
		t.Fatalf("KindOf = %q, want %q", got, ErrorKindMediaRejected)
	}
	if !IsKind(err, ErrorKindMediaRejected) {
		t.Fatalf("IsKind = false, want true")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Fatalf("plain error should have no kind")
	}
}

// TestErrorUnwrap verifies errors.Is reaches the underlying cause.
func TestErrorUnwrap(t *testing.T) {
	err := NewError(ErrorKindServiceError, "request cancelled", context.Canceled)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected errors.Is to find context.Canceled")
	}
}

// TestUserMessage verifies the single user-facing message per failure.
func TestUserMessage(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NewError(ErrorKindConfiguration, "API key is not configured.", nil))
	if got := UserMessage(err); got != "API key is not configured." {
		t.Fatalf("UserMessage = %q", got)
	}
	if got := UserMessage(errors.New("boom")); got != "boom" {
		t.Fatalf("UserMessage(plain) = %q", got)
	}
	if got := UserMessage(nil); got != "" {
		t.Fatalf("UserMessage(nil) = %q", got)
	}
}
