package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// NewValidationError creates a validation error for a specific field
func NewValidationError(field, message string) *DomainError {
	return NewDomainError("VALIDATION_ERROR", fmt.Sprintf("%s: %s", field, message))
}

// NewNotFoundError creates a not-found error naming the missing resource
func NewNotFoundError(message string) *DomainError {
	return NewDomainError("NOT_FOUND", message)
}

// NewConflictError creates a conflict error with a human-readable reason
func NewConflictError(message string) *DomainError {
	return NewDomainError("CONFLICT", message)
}
