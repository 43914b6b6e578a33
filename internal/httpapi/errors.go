package httpapi

import (
	"errors"
	"net/http"

	"media-scribe/internal/domain"
	"media-scribe/internal/session"
)

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Error string            `json:"error"`
	Kind  domain.ErrorKind  `json:"kind,omitempty"`
	State *session.Snapshot `json:"state,omitempty"`
}

// statusFor maps session guards and error kinds to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrBusy),
		errors.Is(err, session.ErrNoFile),
		errors.Is(err, session.ErrInvalidState),
		errors.Is(err, session.ErrSuperseded):
		return http.StatusConflict
	}

	switch domain.KindOf(err) {
	case domain.ErrorKindConfiguration:
		return http.StatusServiceUnavailable
	case domain.ErrorKindInvalidInput:
		return http.StatusBadRequest
	case domain.ErrorKindIOFailure:
		return http.StatusInternalServerError
	case domain.ErrorKindEmptyResponse:
		return http.StatusUnprocessableEntity
	case domain.ErrorKindMediaRejected:
		return http.StatusUnsupportedMediaType
	case domain.ErrorKindServiceError:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError writes err with its mapped status. state may be nil.
func writeError(w http.ResponseWriter, err error, state *session.Snapshot) {
	writeErrorStatus(w, statusFor(err), err, state)
}

func writeErrorStatus(w http.ResponseWriter, status int, err error, state *session.Snapshot) {
	_ = WriteJSON(w, status, errorResponse{
		Error: domain.UserMessage(err),
		Kind:  domain.KindOf(err),
		State: state,
	})
}
