package errors

import "errors"

// Sentinel errors for handlers to map to HTTP status. Login failures share a
// single sentinel so unknown-email and wrong-password responses cannot be
// told apart by clients.
var (
	ErrValidation         = errors.New("invalid input")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("missing or invalid token")
	ErrUserNotFound       = errors.New("user not found")
	ErrTooManyAttempts    = errors.New("too many failed attempts")
)
