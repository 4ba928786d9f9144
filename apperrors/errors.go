// Package apperrors defines the error taxonomy shared by handlers, services and jobs.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code categorizes an application error.
type Code string

const (
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeValidation   Code = "validation"
	CodeRateLimited  Code = "rate_limited"
	CodeConflict     Code = "conflict"
	CodeUpstream     Code = "upstream"
	CodeInternal     Code = "internal"
)

// AppError is a categorized error with a human readable message.
type AppError struct {
	Code    Code
	Message string
	Cause   error

	// Fields holds per-field messages for validation errors.
	Fields map[string]string

	// RetryAfter is the wait in whole seconds for rate limited errors.
	RetryAfter int
}

func (e *AppError) Error() string {
	if e.Cause != nil && e.Message == "" {
		return e.Cause.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the error code to a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeConflict:
		return http.StatusConflict
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

func NotFoundf(format string, args ...any) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

// ValidationFields builds a validation error carrying a field -> message map.
func ValidationFields(fields map[string]string) *AppError {
	return &AppError{Code: CodeValidation, Message: "validation failed", Fields: fields}
}

// RateLimited reports a rejected call that may be retried after the given seconds.
func RateLimited(retryAfter int) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("rate limited: retry after %d seconds", retryAfter),
		RetryAfter: retryAfter,
	}
}

func Conflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message}
}

// Upstream wraps a failure of an external service.
func Upstream(service string, cause error) *AppError {
	return &AppError{Code: CodeUpstream, Message: service + " request failed", Cause: cause}
}

func Internal(message string, cause error) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Cause: cause}
}

// As extracts the AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the error code, CodeInternal for uncategorized errors.
func CodeOf(err error) Code {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return CodeInternal
}

func IsNotFound(err error) bool    { return err != nil && CodeOf(err) == CodeNotFound }
func IsConflict(err error) bool    { return err != nil && CodeOf(err) == CodeConflict }
func IsRateLimited(err error) bool { return err != nil && CodeOf(err) == CodeRateLimited }
