package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

// ErrorKind classifies every business error the engine can return.
// Callers (HTTP layer, workers) map kinds to status codes; the engine
// itself is kind-only and protocol-agnostic.
type ErrorKind string

const (
	ErrorKindNotFound          ErrorKind = "NotFound"
	ErrorKindValidation        ErrorKind = "ValidationFailure"
	ErrorKindInsufficientStock ErrorKind = "InsufficientStock"
	ErrorKindInvalidTransition ErrorKind = "InvalidTransition"
	ErrorKindForbidden         ErrorKind = "Forbidden"
	ErrorKindConflict          ErrorKind = "Conflict"
	ErrorKindInternal          ErrorKind = "Internal"
)

// EngineError carries a machine-readable kind next to a human-readable
// message. Business errors are deterministic: the engine never retries
// them on its own.
type EngineError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

func newEngineError(kind ErrorKind, format string, args ...interface{}) error {
	return &EngineError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func NewNotFound(format string, args ...interface{}) error {
	return newEngineError(ErrorKindNotFound, format, args...)
}

func NewValidation(format string, args ...interface{}) error {
	return newEngineError(ErrorKindValidation, format, args...)
}

func NewInsufficientStock(format string, args ...interface{}) error {
	return newEngineError(ErrorKindInsufficientStock, format, args...)
}

func NewInvalidTransition(format string, args ...interface{}) error {
	return newEngineError(ErrorKindInvalidTransition, format, args...)
}

func NewForbidden(format string, args ...interface{}) error {
	return newEngineError(ErrorKindForbidden, format, args...)
}

func NewConflict(format string, args ...interface{}) error {
	return newEngineError(ErrorKindConflict, format, args...)
}

// NewInternal wraps an unexpected persistence failure. The original error is
// preserved for logs; callers only see the Internal kind.
func NewInternal(err error) error {
	if err == nil {
		return nil
	}
	return &EngineError{Kind: ErrorKindInternal, Msg: "internal error", Err: err}
}

// KindOf extracts the ErrorKind from err, walking the wrap chain.
// Unclassified errors report Internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	if errors.Is(err, ErrorRecordNotFound) {
		return ErrorKindNotFound
	}
	return ErrorKindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
