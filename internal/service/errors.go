package service

import (
	"errors"
	"fmt"
)

// --- Error Definitions ---
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAccessDenied       = errors.New("access denied: you do not own this resource")
	ErrValidationFailed   = errors.New("validation failed")
	ErrStorageUnavailable = errors.New("media storage is not configured")
)

// ValidationError reports a missing or malformed field. It matches
// ErrValidationFailed with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
