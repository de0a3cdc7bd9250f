package reactions

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrPostNotFound indicates the tuit being reacted to doesn't exist or was deleted
	ErrPostNotFound = errors.New("post not found")

	// ErrUserNotFound indicates the reacting user doesn't exist
	ErrUserNotFound = errors.New("user not found")

	// ErrStoreUnavailable wraps I/O failures against the backing store
	ErrStoreUnavailable = errors.New("reaction store unavailable")

	// ErrInvariantViolation indicates a like and a dislike record exist for the same pair.
	// Operations that detect it abort without writing.
	ErrInvariantViolation = errors.New("like and dislike recorded for the same user and post")

	// ErrDuplicateReaction is returned by AddLike/AddDislike when the record already exists
	ErrDuplicateReaction = errors.New("reaction already exists")
)

// Structured error codes, shared by HTTP responses, logs and metrics
const (
	CodeOK                 = "OK"
	CodeInvalidRequest     = "InvalidRequest"
	CodeNotFound           = "NotFound"
	CodeStoreUnavailable   = "StoreUnavailable"
	CodeInvariantViolation = "InvariantViolation"
	CodeDuplicateReaction  = "DuplicateReaction"
	CodeInternal           = "InternalError"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// ErrorCode maps an error returned by the Service to its structured code
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return CodeOK
	case IsValidationError(err):
		return CodeInvalidRequest
	case errors.Is(err, ErrPostNotFound), errors.Is(err, ErrUserNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvariantViolation):
		return CodeInvariantViolation
	case errors.Is(err, ErrDuplicateReaction):
		return CodeDuplicateReaction
	case errors.Is(err, ErrStoreUnavailable):
		return CodeStoreUnavailable
	default:
		return CodeInternal
	}
}

// StoreError tags a backend failure as ErrStoreUnavailable.
// It keeps a single Unwrap chain to the backend error, so drivers that walk
// errors.Unwrap (the MongoDB transaction retry looks for error labels this
// way) still find what they need.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrStoreUnavailable, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is matches ErrStoreUnavailable in addition to the wrapped chain
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// storeError tags an unclassified backend error as ErrStoreUnavailable.
// Errors that already carry a domain meaning pass through untouched.
func storeError(op string, err error) error {
	if err == nil || classified(err) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func classified(err error) bool {
	return IsValidationError(err) ||
		errors.Is(err, ErrPostNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrInvariantViolation) ||
		errors.Is(err, ErrDuplicateReaction) ||
		errors.Is(err, ErrStoreUnavailable)
}

// isTimeout reports whether err came from a cancelled or expired context
func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
