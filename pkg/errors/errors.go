package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an application error.
type ErrorCode int

const (
	CodeValidation ErrorCode = iota + 1000
	CodeConflict
	CodeNotFound
	CodeStorage
	CodeUnauthorized
)

// AppError is the error shape every layer above the stores works with.
// Backends convert driver failures into one of these at the operation
// boundary; nothing below the store API leaks upward.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Validation(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

func Validationf(format string, args ...interface{}) *AppError {
	return &AppError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflict(message string, err error) *AppError {
	return &AppError{Code: CodeConflict, Message: message, Err: err}
}

func NotFound(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func Storage(message string, err error) *AppError {
	return &AppError{Code: CodeStorage, Message: message, Err: err}
}

func Unauthorized(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

// CodeOf returns the classification of err, or CodeStorage when err is
// not an AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeStorage
}

func IsValidation(err error) bool   { return CodeOf(err) == CodeValidation }
func IsConflict(err error) bool     { return CodeOf(err) == CodeConflict }
func IsNotFound(err error) bool     { return CodeOf(err) == CodeNotFound }
func IsUnauthorized(err error) bool { return CodeOf(err) == CodeUnauthorized }
