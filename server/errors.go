package server

import (
	"net/http"

	"github.com/calibrant/gdtbench/errors"
	"github.com/calibrant/gdtbench/store"
)

// Sentinel errors for handler-level failures. Wrap them with
// errors.Wrap to add context while keeping errors.Is checks working.
var (
	// ErrInvalidRequest indicates the request body or parameters were malformed
	ErrInvalidRequest = errors.New("invalid request")

	// ErrTooManyRequests indicates a rate limit was hit
	ErrTooManyRequests = errors.New("too many requests")

	// ErrUnsupportedFile indicates an upload that is not an acceptable PDF
	ErrUnsupportedFile = errors.New("unsupported file")
)

// statusFor maps store and handler errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrUnsupportedFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// fail logs server-side failures and writes the JSON error envelope.
func (s *GdtServer) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Errorw("Request failed", "error", err.Error())
	}
	writeError(w, status, err.Error())
}

// NewInvalidRequestError creates an invalid-request error with a
// formatted message.
func NewInvalidRequestError(format string, args ...any) error {
	return errors.Wrap(ErrInvalidRequest, errors.Newf(format, args...).Error())
}
