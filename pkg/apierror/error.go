package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
)

// GenericMessage is shown when nothing more specific is known.
const GenericMessage = "Something went wrong. Please try again."

// Kind classifies an error by how the caller should recover from it.
type Kind string

const (
	// KindValidation is bad local input. No network call was made.
	KindValidation Kind = "validation"
	// KindNetwork means the request did not complete.
	KindNetwork Kind = "network"
	// KindApplication is a non-2xx answer from the backend.
	KindApplication Kind = "application"
	// KindAuth means the session identifier is missing.
	KindAuth Kind = "auth"
	// KindInternal covers everything else.
	KindInternal Kind = "internal"
)

// Error represents a structured, user-presentable error.
type Error struct {
	Kind       Kind         `json:"-"`
	StatusCode int          `json:"-"`
	Upstream   int          `json:"-"`
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Details    []FieldError `json:"details,omitempty"`
	Err        error        `json:"-"`
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// ToJSON converts the error to JSON bytes.
func (e *Error) ToJSON() []byte {
	body := map[string]interface{}{
		"code":    e.Code,
		"message": e.Message,
	}
	if e.Kind != "" {
		body["kind"] = e.Kind
	}
	if len(e.Details) > 0 {
		body["details"] = e.Details
	}

	data, _ := json.Marshal(map[string]interface{}{
		"success": false,
		"error":   body,
	})
	return data
}

// As returns err as an *Error if it is one anywhere in its chain.
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// KindOf reports the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	if apiErr, ok := As(err); ok && apiErr.Kind != "" {
		return apiErr.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	if apiErr, ok := As(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericMessage
}

// Validation creates a local validation error.
func Validation(message string, details ...FieldError) *Error {
	return &Error{
		Kind:       KindValidation,
		StatusCode: http.StatusBadRequest,
		Code:       "VALIDATION_ERROR",
		Message:    message,
		Details:    details,
	}
}

// Network wraps a transport failure. The message is always the generic one.
func Network(cause error) *Error {
	return &Error{
		Kind:       KindNetwork,
		StatusCode: http.StatusBadGateway,
		Code:       "NETWORK_ERROR",
		Message:    GenericMessage,
		Err:        cause,
	}
}

// Application creates an error for a non-2xx backend response.
// message is the server's text; fallback is used when it is empty.
func Application(upstream int, message, fallback string) *Error {
	if message == "" {
		message = fallback
	}
	if message == "" {
		message = GenericMessage
	}
	status := http.StatusBadGateway
	if upstream >= 400 && upstream < 500 {
		status = upstream
	}
	return &Error{
		Kind:       KindApplication,
		StatusCode: status,
		Upstream:   upstream,
		Code:       "UPSTREAM_ERROR",
		Message:    message,
	}
}

// Auth creates an error for a missing session.
func Auth(message string) *Error {
	if message == "" {
		message = "User ID not found."
	}
	return &Error{
		Kind:       KindAuth,
		StatusCode: http.StatusUnauthorized,
		Code:       "AUTH_REQUIRED",
		Message:    message,
	}
}

// BadRequest creates a 400 Bad Request error.
func BadRequest(message string) *Error {
	return &Error{
		Kind:       KindValidation,
		StatusCode: http.StatusBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
	}
}

// Unauthorized creates a 401 Unauthorized error.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}
	return &Error{
		Kind:       KindAuth,
		StatusCode: http.StatusUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
	}
}

// NotFound creates a 404 Not Found error.
func NotFound(message string) *Error {
	if message == "" {
		message = "Resource not found"
	}
	return &Error{
		Kind:       KindValidation,
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    message,
	}
}

// InternalError creates a 500 Internal Server Error.
func InternalError(message string) *Error {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return &Error{
		Kind:       KindInternal,
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    message,
	}
}

// ServiceUnavailable creates a 503 Service Unavailable error.
func ServiceUnavailable(message string) *Error {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	return &Error{
		Kind:       KindInternal,
		StatusCode: http.StatusServiceUnavailable,
		Code:       "SERVICE_UNAVAILABLE",
		Message:    message,
	}
}
