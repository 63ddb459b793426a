// Package apperror defines the error taxonomy shared by every layer.
//
// Services and repositories return these; only the HTTP layer decides
// which status code each one becomes.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("Validation Error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrEnrichment      = errors.New("enrichment failed")
	ErrMetadata        = errors.New("metadata extraction failed")
)

type AppError struct {
	Err     error  // sentinel, matched with errors.Is
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying failure, logged but never shown to clients
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the sentinel and the cause so errors.Is/As can see either.
func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Unauthenticated is returned when a request carries no usable session.
// HTTP handlers map this to 401.
func Unauthenticated() *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: "Unauthorized",
	}
}

// EnrichmentFailed wraps a failure from an external AI provider.
func EnrichmentFailed(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrEnrichment,
		Message: fmt.Sprintf("%s failed", op),
		Cause:   cause,
	}
}

// MetadataFailed wraps a failure while scraping a page for Open Graph data.
func MetadataFailed(url string, cause error) *AppError {
	return &AppError{
		Err:     ErrMetadata,
		Message: fmt.Sprintf("extracting metadata from %s failed", url),
		Cause:   cause,
	}
}
