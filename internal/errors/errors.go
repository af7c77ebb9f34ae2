package errors

import (
	"net/http"
)

// FieldError describes one failed field in a pre-sync validation check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is the error type every request/response path resolves to.
// Internal carries the underlying cause and is logged, never serialized.
type APIError struct {
	Status   int          `json:"-"`
	Message  string       `json:"error"`
	Details  []FieldError `json:"details,omitempty"`
	Internal error        `json:"-"`
}

func (e *APIError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *APIError) Unwrap() error {
	return e.Internal
}

func (e *APIError) WithMessage(msg string) *APIError {
	return &APIError{
		Status:   e.Status,
		Message:  msg,
		Details:  e.Details,
		Internal: e.Internal,
	}
}

func New(status int, message string, internal error) *APIError {
	return &APIError{Status: status, Message: message, Internal: internal}
}

func BadRequest(message string, internal error) *APIError {
	return New(http.StatusBadRequest, message, internal)
}

func NotFound(message string, internal error) *APIError {
	return New(http.StatusNotFound, message, internal)
}

func Internal(internal error) *APIError {
	return New(http.StatusInternalServerError, "Internal server error", internal)
}

// Validation builds the structured per-field failure returned by the
// pre-sync required-field check.
func Validation(details []FieldError) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Message: "Validation failed",
		Details: details,
	}
}

// Downstream wraps a failure reported by the external publish collaborator.
// The message is surfaced to the caller as-is.
func Downstream(internal error) *APIError {
	msg := "Failed to sync to Loxo"
	if internal != nil {
		msg = internal.Error()
	}
	return New(http.StatusInternalServerError, msg, internal)
}
