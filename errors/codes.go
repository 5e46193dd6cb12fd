package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Request errors
const (
	// ErrCodeInvalidInput indicates the request body or a path value is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotAcceptable indicates no render mode satisfies the Accept header.
	ErrCodeNotAcceptable ErrorCode = "NOT_ACCEPTABLE"
	// ErrCodeUnsupportedMediaType indicates the request body type cannot be decoded.
	ErrCodeUnsupportedMediaType ErrorCode = "UNSUPPORTED_MEDIA_TYPE"
)

// Sequence errors. Both abort a stream; they differ only in where they came from.
const (
	// ErrCodeTransformFailed indicates an item transformation failed.
	ErrCodeTransformFailed ErrorCode = "TRANSFORM_FAILED"
	// ErrCodeProducerFailed indicates the upstream item sequence failed.
	ErrCodeProducerFailed ErrorCode = "PRODUCER_FAILED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeTimeout indicates an operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
