// Package errors defines common error types for the application.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the application.
const (
	CodeUnknown       = "UNKNOWN_ERROR"
	CodeParseError    = "PARSE_ERROR"
	CodeLookupError   = "LOOKUP_ERROR"
	CodeUnsupported   = "UNSUPPORTED"
	CodeWriteError    = "WRITE_ERROR"
	CodeConfigError   = "CONFIG_ERROR"
	CodeDatabaseError = "DATABASE_ERROR"
	CodeStorageError  = "STORAGE_ERROR"
	CodeInvalidInput  = "INVALID_INPUT"
)

// AppError represents an application error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message.
func Newf(code string, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error instances.
var (
	ErrParseError    = New(CodeParseError, "parse error")
	ErrLookupError   = New(CodeLookupError, "lookup error")
	ErrUnsupported   = New(CodeUnsupported, "unsupported operation")
	ErrWriteError    = New(CodeWriteError, "write error")
	ErrConfigError   = New(CodeConfigError, "configuration error")
	ErrDatabaseError = New(CodeDatabaseError, "database error")
	ErrStorageError  = New(CodeStorageError, "storage error")
	ErrInvalidInput  = New(CodeInvalidInput, "invalid input")
)

// IsParseError checks if the error is a parse error.
func IsParseError(err error) bool {
	return errors.Is(err, ErrParseError)
}

// IsLookupError checks if the error is a lookup error.
func IsLookupError(err error) bool {
	return errors.Is(err, ErrLookupError)
}

// IsUnsupported checks if the error is an unsupported-operation error.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// IsWriteError checks if the error is a writer I/O error.
func IsWriteError(err error) bool {
	return errors.Is(err, ErrWriteError)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
