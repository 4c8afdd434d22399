package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain errors so transport layers can map them
// to status codes without inspecting messages.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindForbidden    ErrorKind = "forbidden"
	KindInvalidState ErrorKind = "invalid_state"
	KindUnavailable  ErrorKind = "unavailable"
)

// Error is the common error type for all domain failures.
type Error struct {
	Kind    ErrorKind
	Message string
	Field   string
	cause   error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// NewValidationError creates a validation error for a local, recoverable
// input violation.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewFieldValidationError creates a validation error tied to a specific field.
func NewFieldValidationError(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// NewNotFoundError creates an error for a missing entity.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewConflictError creates an error for a concurrent-modification or
// duplicate-submission conflict.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewForbiddenError creates an error for an operation the caller may not perform.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewInvalidStateError creates an error for a disallowed state transition.
func NewInvalidStateError(from, to string) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewUnavailableError wraps a transient collaborator failure (network,
// storage) so it is never conflated with a not-found result.
func NewUnavailableError(message string, cause error) *Error {
	return &Error{Kind: KindUnavailable, Message: message, cause: cause}
}

// KindOf returns the ErrorKind of err, or an empty kind for non-domain errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsNotFound reports whether err is a not-found domain error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsValidation reports whether err is a validation domain error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
