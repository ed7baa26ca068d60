package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Authentication errors
const (
	// ErrCodeAuthentication indicates no usable credential combination was supplied.
	ErrCodeAuthentication ErrorCode = "AUTHENTICATION_FAILED"
	// ErrCodeForbidden indicates the credentials were rejected for the operation.
	ErrCodeForbidden ErrorCode = "FORBIDDEN"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested object, bucket or container was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAlreadyExists indicates the bucket or container already exists.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
)

// Transfer and codec errors
const (
	// ErrCodeTransfer indicates a provider call (list/get/put/copy/delete) failed.
	ErrCodeTransfer ErrorCode = "TRANSFER_FAILED"
	// ErrCodeDecode indicates structured deserialization of retrieved bytes failed.
	ErrCodeDecode ErrorCode = "DECODE_FAILED"
	// ErrCodeEncode indicates a value could not be serialized before upload.
	ErrCodeEncode ErrorCode = "ENCODE_FAILED"
	// ErrCodeTimeout indicates the provider call did not complete in time.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Retryable only describes the failure; nothing in this module retries.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeTransfer: true,
	ErrCodeTimeout:  true,
	ErrCodeInternal: false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
