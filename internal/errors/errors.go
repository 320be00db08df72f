package errors

import (
	"errors"
	"fmt"
)

// Standard error codes for the application.
const (
	CodeUnknown      = "UNKNOWN"
	CodeValidation   = "VALIDATION"
	CodeAPI          = "API"
	CodeNotFound     = "NOT_FOUND"
	CodeConfig       = "CONFIG"
	CodeUnauthorized = "UNAUTHORIZED"
)

// ApplicationError is the interface that all our custom errors implement.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error represents a basic application error.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the application error code carried by err,
// or CodeUnknown if it doesn't carry one.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	return CodeUnknown
}

// Specific error types and constructors

type ValidationError struct {
	base Error
}

func (e *ValidationError) Error() string {
	return e.base.Error()
}

func (e *ValidationError) Code() string {
	return e.base.Code()
}

func (e *ValidationError) Unwrap() error {
	return e.base.Unwrap()
}

func NewValidationError(message string, cause error) error {
	return &ValidationError{
		base: Error{
			code:    CodeValidation,
			message: message,
			err:     cause,
		},
	}
}

type APIError struct {
	base Error
}

func (e *APIError) Error() string {
	return e.base.Error()
}

func (e *APIError) Code() string {
	return e.base.Code()
}

func (e *APIError) Unwrap() error {
	return e.base.Unwrap()
}

func NewAPIError(message string, cause error) error {
	return &APIError{
		base: Error{
			code:    CodeAPI,
			message: message,
			err:     cause,
		},
	}
}

type NotFoundError struct {
	base Error
}

func (e *NotFoundError) Error() string {
	return e.base.Error()
}

func (e *NotFoundError) Code() string {
	return e.base.Code()
}

func (e *NotFoundError) Unwrap() error {
	return e.base.Unwrap()
}

func NewNotFoundError(message string, cause error) error {
	return &NotFoundError{
		base: Error{
			code:    CodeNotFound,
			message: message,
			err:     cause,
		},
	}
}

type ConfigError struct {
	base Error
}

func (e *ConfigError) Error() string {
	return e.base.Error()
}

func (e *ConfigError) Code() string {
	return e.base.Code()
}

func (e *ConfigError) Unwrap() error {
	return e.base.Unwrap()
}

func NewConfigError(message string, cause error) error {
	return &ConfigError{
		base: Error{
			code:    CodeConfig,
			message: message,
			err:     cause,
		},
	}
}

type UnauthorizedError struct {
	base Error
}

func (e *UnauthorizedError) Error() string {
	return e.base.Error()
}

func (e *UnauthorizedError) Code() string {
	return e.base.Code()
}

func (e *UnauthorizedError) Unwrap() error {
	return e.base.Unwrap()
}

func NewUnauthorizedError(message string, cause error) error {
	return &UnauthorizedError{
		base: Error{
			code:    CodeUnauthorized,
			message: message,
			err:     cause,
		},
	}
}
