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

// NewValidationError creates a VALIDATION_ERROR with a formatted message
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// NewConflictError creates a CONFLICT error with a formatted message
func NewConflictError(format string, args ...any) *DomainError {
	return NewDomainError(CodeConflict, fmt.Sprintf(format, args...))
}

// NewNotFoundError creates a NOT_FOUND error with a formatted message
func NewNotFoundError(format string, args ...any) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf(format, args...))
}

// NewInvalidStateError creates an INVALID_STATE error with a formatted message
func NewInvalidStateError(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvalidState, fmt.Sprintf(format, args...))
}

// Error codes used across the domain
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeConflict      = "CONFLICT"
	CodeNotFound      = "NOT_FOUND"
	CodeAlreadyExists = "ALREADY_EXISTS"
	CodeInvalidState  = "INVALID_STATE"
	CodeSyncDegraded  = "SYNC_DEGRADED"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeValidation, "Invalid input provided")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrConcurrencyConflict = NewDomainError(CodeConflict, "Resource was modified by another process")
)

// SyncDegradedError wraps a synchronizer failure that must not abort the
// triggering write. It is logged and recorded for the reconciliation sweep,
// never propagated to the caller of the triggering operation.
type SyncDegradedError struct {
	Module   string
	SourceID string
	Cause    error
}

// Error implements the error interface
func (e *SyncDegradedError) Error() string {
	return fmt.Sprintf("fee sync degraded for %s/%s: %v", e.Module, e.SourceID, e.Cause)
}

// Unwrap returns the underlying cause
func (e *SyncDegradedError) Unwrap() error {
	return e.Cause
}

// NewSyncDegradedError creates a SyncDegradedError
func NewSyncDegradedError(module, sourceID string, cause error) *SyncDegradedError {
	return &SyncDegradedError{Module: module, SourceID: sourceID, Cause: cause}
}
