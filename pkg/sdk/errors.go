package quizdex

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/quizdex/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation       = domain.ErrValidation
	ErrNotFound         = domain.ErrNotFound
	ErrEmptyLibrary     = domain.ErrEmptyLibrary
	ErrCorruptIndex     = domain.ErrCorruptIndex
	ErrExtractionFailed = domain.ErrExtractionFailed
)

// ErrProvider signals an upstream provider failure (embedding or
// generation). The API reports both under one error code, so the
// client cannot distinguish them.
var ErrProvider = errors.New("provider error")

// APIError is an error response returned by the quizdex API.
type APIError struct {
	StatusCode int    // HTTP status
	Code       string // machine-readable error code, e.g. "library_not_found"
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quizdex: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
}

// Unwrap maps the API error code to a sentinel error.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "bad_request", "validation_failed":
		return ErrValidation
	case "library_not_found":
		return ErrNotFound
	case "library_empty":
		return ErrEmptyLibrary
	case "library_corrupt":
		return ErrCorruptIndex
	case "provider_error":
		return ErrProvider
	case "extraction_failed":
		return ErrExtractionFailed
	}
	return nil
}
