package sagittadb

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes store errors so callers can branch on kind.
type ErrorCode string

const (
	// CodeInvalidDocument indicates insert was given a nil document.
	CodeInvalidDocument ErrorCode = "INVALID_DOCUMENT"

	// CodeInvalidFilter indicates an empty filter or an unbindable
	// filter literal.
	CodeInvalidFilter ErrorCode = "INVALID_FILTER"

	// CodeInvalidFieldPath indicates a field name that fails identifier
	// validation.
	CodeInvalidFieldPath ErrorCode = "INVALID_FIELD_PATH"

	// CodeInvalidUpdate indicates an empty change set, a bad update key,
	// or an explicit null update value.
	CodeInvalidUpdate ErrorCode = "INVALID_UPDATE"

	// CodeInvalidPattern indicates a malformed or empty regex pattern.
	// Malformed patterns surface lazily, on the first iteration step.
	CodeInvalidPattern ErrorCode = "INVALID_PATTERN"

	// CodeHandleClosed indicates an operation on a closed store.
	CodeHandleClosed ErrorCode = "HANDLE_CLOSED"

	// CodeNotFound indicates no document exists with the requested id.
	CodeNotFound ErrorCode = "NOT_FOUND"
)

// Error is the structured error returned by every public operation for
// validation and lifecycle failures. Storage-layer failures are wrapped
// with %w and propagated unchanged instead.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Field names the offending field path, when one is involved.
	Field string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// HasCode reports whether err is (or wraps) a store Error with the
// given code.
func HasCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsClosed reports whether err is a closed-handle error.
func IsClosed(err error) bool { return HasCode(err, CodeHandleClosed) }

// IsNotFound reports whether err is a missing-document error.
func IsNotFound(err error) bool { return HasCode(err, CodeNotFound) }

// IsInvalidFilter reports whether err is a filter validation error.
func IsInvalidFilter(err error) bool { return HasCode(err, CodeInvalidFilter) }

// IsInvalidFieldPath reports whether err is a field path validation error.
func IsInvalidFieldPath(err error) bool { return HasCode(err, CodeInvalidFieldPath) }

// IsInvalidUpdate reports whether err is an update validation error.
func IsInvalidUpdate(err error) bool { return HasCode(err, CodeInvalidUpdate) }

// IsInvalidPattern reports whether err is a pattern validation error.
func IsInvalidPattern(err error) bool { return HasCode(err, CodeInvalidPattern) }

// IsInvalidDocument reports whether err is a document validation error.
func IsInvalidDocument(err error) bool { return HasCode(err, CodeInvalidDocument) }

func errClosed() error {
	return &Error{Code: CodeHandleClosed, Message: "store is closed"}
}

func errNotFound(id int64) error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("no document with id %d", id)}
}
