package adapter

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-service-bootstrap/models"
)

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrMethodNotAllowed    = errors.New("method not allowed")
	ErrConflict            = errors.New("conflict")
	ErrPayloadTooLarge     = errors.New("payload too large")
	ErrInternalServerError = errors.New("internal server error")
	ErrServiceUnavailable  = errors.New("service unavailable")

	// ErrInvalidEnvelope is returned when an envelope response cannot be
	// opened with the configured key.
	ErrInvalidEnvelope = errors.New("invalid response envelope")
	// ErrRandNumMismatch is returned when an envelope response does not echo
	// the correlation token of its request.
	ErrRandNumMismatch = errors.New("correlation token mismatch")
)

// APIError is a non-2xx response of the service.
type APIError struct {
	StatusCode int
	Response   models.ErrorResponse

	kind error
}

func (e *APIError) Error() string {
	if e.Response.Code == "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Response.Message)
	}
	return fmt.Sprintf("http %d: %s (%s)", e.StatusCode, e.Response.Message, e.Response.Code)
}

// Unwrap returns the sentinel matching the status code, if any.
func (e *APIError) Unwrap() error {
	return e.kind
}
