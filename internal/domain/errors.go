package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced to the orchestration layer.
type ErrorKind string

const (
	ErrorKindConfiguration ErrorKind = "configuration"
	ErrorKindInvalidInput  ErrorKind = "invalid_input"
	ErrorKindIOFailure     ErrorKind = "io_failure"
	ErrorKindEmptyResponse ErrorKind = "empty_response"
	ErrorKindMediaRejected ErrorKind = "media_rejected"
	ErrorKindServiceError  ErrorKind = "service_error"
)

// Error is a categorized failure with a user-facing message.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error formats the failure for logs and UI.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a categorized error.
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of a categorized error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a categorized error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// UserMessage returns the single human-readable message shown for err.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
