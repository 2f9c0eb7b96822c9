package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrValidation indicates that the provided input is invalid
	ErrValidation = errors.New("validation failed")

	// ErrUnauthenticated indicates that no caller identity is present
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrPermissionDenied indicates a caller acting outside its own identity
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInternal indicates an unrecoverable internal failure,
	// e.g. link-code generation exhausting its collision retries
	ErrInternal = errors.New("internal error")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Is makes ValidationError match ErrValidation via errors.Is, so boundary
// code can map any validation failure to HTTP 400 without type switches.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
