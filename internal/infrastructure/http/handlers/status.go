package handlers

import (
	"errors"
	"net/http"

	domerrors "github.com/avdeev/authgate/internal/domain/errors"
)

// statusForError maps a workflow error to an HTTP status, error code, and a
// client-safe message. Anything unrecognized is a 500 with no internals
// leaked.
func statusForError(err error) (int, string, string) {
	switch {
	case errors.Is(err, domerrors.ErrValidation):
		return http.StatusBadRequest, ErrCodeInvalidRequest, err.Error()
	case errors.Is(err, domerrors.ErrEmailExists):
		return http.StatusBadRequest, ErrCodeEmailExists, "email already exists"
	case errors.Is(err, domerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid email or password"
	case errors.Is(err, domerrors.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrCodeUnauthorized, "missing or invalid token"
	case errors.Is(err, domerrors.ErrTooManyAttempts):
		return http.StatusTooManyRequests, ErrCodeRateLimited, "too many failed attempts"
	default:
		return http.StatusInternalServerError, ErrCodeInternal, "internal error"
	}
}
