package watsonx

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or configuration failed validation.
	ErrValidation = errors.New("validation error")

	// ErrShapeMismatch indicates a list response matched none of the
	// accepted JSON shapes.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrNotAuthenticated indicates no access token could be obtained.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrEndpointUnavailable indicates every candidate endpoint for an
	// operation answered 404.
	ErrEndpointUnavailable = errors.New("endpoint unavailable")

	// ErrCancelled marks batch items that never completed because the
	// batch context was cancelled.
	ErrCancelled = errors.New("cancelled")
)

// APIError is a non-2xx HTTP response from a remote service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
