package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy shared by the storage, credential and HTTP layers.
var (
	ErrUnauthorized = errors.New("authentication failed")
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal server error")
)

// Internal wraps a storage or encoding failure so that errors.Is(err, ErrInternal)
// holds while the cause stays available for logging.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInternal, err)
}

// Invalid builds an ErrInvalidInput carrying a short reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Status maps an error to the HTTP status class returned to clients.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-visible message for err. Internal causes are never exposed.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "Authentication failed"
	case errors.Is(err, ErrNotFound):
		return "Resource not found"
	case errors.Is(err, ErrInvalidInput):
		return err.Error()
	default:
		return "Internal server error"
	}
}
