package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified error type returned by adapters and codecs.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation could succeed when attempted again.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the closest HTTP status for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the provider or codec error that caused this error.
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

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
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

// --- Taxonomy constructors ---

// Authentication creates an AppError for a missing or unusable credential combination.
func Authentication(reason string) *AppError {
	if reason == "" {
		reason = "Some credentials are required."
	}
	return &AppError{
		Code: ErrCodeAuthentication, Message: reason,
		HTTPStatus: http.StatusUnauthorized, Retryable: false,
	}
}

// Forbidden creates an AppError for credentials the provider rejected.
func Forbidden(reason string) *AppError {
	if reason == "" {
		reason = "The credentials are not allowed to perform this action."
	}
	return &AppError{
		Code: ErrCodeForbidden, Message: reason,
		HTTPStatus: http.StatusForbidden, Retryable: false,
	}
}

// NotFound creates an AppError for an object, bucket or container that does not exist.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// AlreadyExists creates an AppError for a bucket or container that already exists.
func AlreadyExists(resource string) *AppError {
	return &AppError{
		Code: ErrCodeAlreadyExists, Message: fmt.Sprintf("The %s already exists.", resource),
		HTTPStatus: http.StatusConflict, Retryable: false,
		Details: map[string]any{"resource": resource},
	}
}

// Transfer creates an AppError for a failed provider call.
func Transfer(operation, key string, cause error) *AppError {
	details := map[string]any{"operation": operation}
	if key != "" {
		details["key"] = key
	}
	return &AppError{
		Code: ErrCodeTransfer, Message: fmt.Sprintf("The %s call to the storage provider failed.", operation),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: details, Cause: cause,
	}
}

// Timeout creates an AppError for a provider call that did not complete in time.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The storage provider took too long to respond.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// Decode creates an AppError for retrieved bytes that could not be deserialized.
func Decode(format, key string, cause error) *AppError {
	details := map[string]any{"format": format}
	if key != "" {
		details["key"] = key
	}
	return &AppError{
		Code: ErrCodeDecode, Message: fmt.Sprintf("The object could not be decoded as %s.", format),
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
		Details: details, Cause: cause,
	}
}

// Encode creates an AppError for a value that could not be serialized.
func Encode(format string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeEncode, Message: fmt.Sprintf("The value could not be encoded as %s.", format),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"format": format}, Cause: cause,
	}
}

// InvalidInput creates an AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates an AppError for configuration validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// MissingField creates an AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// Internal creates an AppError for an unexpected error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// --- Inspection helpers ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Wrap returns err as an AppError, wrapping plain errors as Internal.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsNotFound reports whether err is a NOT_FOUND AppError.
func IsNotFound(err error) bool { return HasCode(err, ErrCodeNotFound) }

// IsConflict reports whether err is an ALREADY_EXISTS AppError.
func IsConflict(err error) bool { return HasCode(err, ErrCodeAlreadyExists) }

// IsDecode reports whether err is a DECODE_FAILED AppError.
func IsDecode(err error) bool { return HasCode(err, ErrCodeDecode) }

// IsAuthentication reports whether err is an AUTHENTICATION_FAILED AppError.
func IsAuthentication(err error) bool { return HasCode(err, ErrCodeAuthentication) }

// IsTransfer reports whether err is a provider call failure. NOT_FOUND, FORBIDDEN
// and TIMEOUT are refinements of a transfer failure and also match.
func IsTransfer(err error) bool {
	appErr, ok := AsAppError(err)
	if !ok {
		return false
	}
	switch appErr.Code {
	case ErrCodeTransfer, ErrCodeNotFound, ErrCodeForbidden, ErrCodeTimeout:
		return true
	}
	return false
}
