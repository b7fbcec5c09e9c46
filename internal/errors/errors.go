// Package errors defines the coded errors surfaced by lnr commands. Every
// error kind maps to exactly one process exit code.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a failure kind. Codes are stable and used by tests.
type ErrorCode string

const (
	ErrUnknown          ErrorCode = "UNKNOWN"
	ErrNotInitialized   ErrorCode = "NOT_INITIALIZED"
	ErrNotFound         ErrorCode = "NOT_FOUND"
	ErrAlreadyBound     ErrorCode = "ALREADY_BOUND"
	ErrNotBound         ErrorCode = "NOT_BOUND"
	ErrMissingLocalRepo ErrorCode = "MISSING_LOCAL_REPO"
	ErrInvalidVersion   ErrorCode = "INVALID_VERSION"
	ErrCorruptState     ErrorCode = "CORRUPT_STATE"
	ErrManifest         ErrorCode = "MANIFEST_UNREADABLE"
	ErrFilesystem       ErrorCode = "FILESYSTEM_FAILURE"
	ErrFetchFailed      ErrorCode = "FETCH_FAILED"
	ErrConflict         ErrorCode = "CONFLICT"
	ErrLocked           ErrorCode = "LOCKED"
	ErrInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrDrift            ErrorCode = "DRIFT"
)

var exitCodes = map[ErrorCode]int{
	ErrUnknown:          1,
	ErrNotInitialized:   2,
	ErrNotFound:         3,
	ErrAlreadyBound:     4,
	ErrNotBound:         5,
	ErrMissingLocalRepo: 6,
	ErrInvalidVersion:   7,
	ErrCorruptState:     8,
	ErrManifest:         9,
	ErrFilesystem:       10,
	ErrFetchFailed:      11,
	ErrConflict:         12,
	ErrLocked:           13,
	ErrInvalidInput:     14,
	ErrDrift:            15,
}

// LnrError is a structured error with a code, details and an optional cause.
type LnrError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface.
func (e *LnrError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Wrapped)
	}
	return e.Message
}

// Unwrap implements the errors.Unwrap interface.
func (e *LnrError) Unwrap() error {
	return e.Wrapped
}

// Is matches any *LnrError carrying the same code.
func (e *LnrError) Is(target error) bool {
	var targetErr *LnrError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new LnrError with the given code and message.
func New(code ErrorCode, message string) *LnrError {
	return &LnrError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new LnrError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *LnrError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error. It returns nil when err is nil.
func Wrap(err error, code ErrorCode, message string) *LnrError {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *LnrError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail adds a detail to the error.
func (e *LnrError) WithDetail(key string, value interface{}) *LnrError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode reports whether err carries the given code anywhere in its chain.
func IsErrorCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}

// GetErrorCode returns the code of the outermost LnrError in err's chain,
// or ErrUnknown.
func GetErrorCode(err error) ErrorCode {
	var lnrErr *LnrError
	if errors.As(err, &lnrErr) {
		return lnrErr.Code
	}
	return ErrUnknown
}

// ExitCode maps an error to the process exit code for its kind. A nil error
// exits 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := exitCodes[GetErrorCode(err)]; ok {
		return code
	}
	return 1
}
