// Package errors provides the structured error type used across streamkit.
// Every error carries a machine-readable code and a recommended HTTP status.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Constructors ---

// NotAcceptable reports that none of the offered media types satisfies accept.
func NotAcceptable(accept string, offered []string) *AppError {
	return &AppError{
		Code:       ErrCodeNotAcceptable,
		Message:    fmt.Sprintf("None of the acceptable media types is supported. Supported: %s", strings.Join(offered, ", ")),
		HTTPStatus: http.StatusNotAcceptable,
		Details:    map[string]any{"accept": accept, "supported": offered},
	}
}

// UnsupportedMediaType reports a request body whose content type cannot be decoded.
func UnsupportedMediaType(contentType string) *AppError {
	return &AppError{
		Code:       ErrCodeUnsupportedMediaType,
		Message:    fmt.Sprintf("Content type %s is not supported.", contentType),
		HTTPStatus: http.StatusUnsupportedMediaType,
		Details:    map[string]any{"content_type": contentType},
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// TransformFailed wraps an error raised while transforming an item.
func TransformFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodeTransformFailed, Message: "An item transformation failed.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// ProducerFailed wraps an error raised by the item sequence itself.
func ProducerFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodeProducerFailed, Message: "The item sequence failed.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// --- Inspection ---

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsNotAcceptable reports whether err is a negotiation failure.
func IsNotAcceptable(err error) bool { return HasCode(err, ErrCodeNotAcceptable) }

// IsTransformFailure reports whether err originated in an item transformation.
func IsTransformFailure(err error) bool { return HasCode(err, ErrCodeTransformFailed) }

// IsProducerFailure reports whether err originated in the item sequence.
func IsProducerFailure(err error) bool { return HasCode(err, ErrCodeProducerFailed) }

// StatusCode returns the HTTP status recommended for err, 500 when unknown.
func StatusCode(err error) int {
	if appErr, ok := AsAppError(err); ok && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
