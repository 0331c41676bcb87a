package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeConfigurationMissing indicates required settings are absent.
	// Reported at startup; non-fatal, login degrades to unusable.
	ErrCodeConfigurationMissing ErrorCode = "configuration_missing"
	// ErrCodeExchangeFailed indicates a callback, refresh, or login redirect
	// could not complete against the identity provider.
	ErrCodeExchangeFailed ErrorCode = "exchange_failed"
	// ErrCodeStorageUnreadable indicates a persistence adapter error. Callers
	// treat it as a cache miss.
	ErrCodeStorageUnreadable ErrorCode = "storage_unreadable"
	// ErrCodeAuthorizationDenied indicates the backend rejected the request
	// even after one refresh-retry cycle.
	ErrCodeAuthorizationDenied ErrorCode = "authorization_denied"
	// ErrCodeTransportFailure indicates a network-level failure on a request.
	ErrCodeTransportFailure ErrorCode = "transport_failure"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "internal"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Field names the offending input field for validation errors (optional)
	Field string
	// Cause is the underlying error that caused this error (optional)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ConfigurationMissing creates a new ConfigurationMissing error.
func ConfigurationMissing(message string) *AppError {
	return &AppError{Code: ErrCodeConfigurationMissing, Message: message}
}

// ExchangeFailed creates a new ExchangeFailed error.
func ExchangeFailed(message string) *AppError {
	return &AppError{Code: ErrCodeExchangeFailed, Message: message}
}

// AuthorizationDenied creates a new AuthorizationDenied error.
func AuthorizationDenied(message string) *AppError {
	return &AppError{Code: ErrCodeAuthorizationDenied, Message: message}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// ValidationField creates a Validation error tied to a named input field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Field: field, Message: message}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Internalf creates a new Internal error with formatted message.
func Internalf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsConfigurationMissing checks if an error is a ConfigurationMissing error.
func IsConfigurationMissing(err error) bool {
	return isCode(err, ErrCodeConfigurationMissing)
}

// IsExchangeFailed checks if an error is an ExchangeFailed error.
func IsExchangeFailed(err error) bool {
	return isCode(err, ErrCodeExchangeFailed)
}

// IsStorageUnreadable checks if an error is a StorageUnreadable error.
func IsStorageUnreadable(err error) bool {
	return isCode(err, ErrCodeStorageUnreadable)
}

// IsAuthorizationDenied checks if an error is an AuthorizationDenied error.
func IsAuthorizationDenied(err error) bool {
	return isCode(err, ErrCodeAuthorizationDenied)
}

// IsTransportFailure checks if an error is a TransportFailure error.
func IsTransportFailure(err error) bool {
	return isCode(err, ErrCodeTransportFailure)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsInternal checks if an error is an Internal error.
func IsInternal(err error) bool {
	return isCode(err, ErrCodeInternal)
}

// CodeOf returns the ErrorCode carried by err, or ErrCodeInternal when err is
// not an AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}
