package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrProvider         = errors.New("data provider failed")
	ErrCategoryNotFound = errors.New("category not found")
)

// Validation constants
const (
	MaxCategoryNameLength = 50
	MaxDescriptionLength  = 200
)

// ValidationError reports a rejected input field. It matches ErrInvalidInput.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrInvalidInput) match any ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ProviderError wraps a failure of the expense or budget store
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrProvider) match any ProviderError
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}
