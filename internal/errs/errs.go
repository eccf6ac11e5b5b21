// Package errs defines the error shape every API response uses.
//
// Handlers return *HTTPError values for conditions the client can act on.
// Anything else is treated as an internal failure and answered with a
// generic 500 so driver details never reach the client.
package errs

import (
	"encoding/json"
	"net/http"
	"strings"
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is serialized directly as the response body.
type HTTPError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"status"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is matches any *HTTPError with the same status.
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	return ok && t.Status == e.Status
}

func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{Code: e.Code, Message: message, Status: e.Status, Errors: e.Errors}
}

func newError(status int, message string) *HTTPError {
	return &HTTPError{
		Code:    statusCode(status),
		Message: message,
		Status:  status,
	}
}

// statusCode turns "Not Found" into "NOT_FOUND".
func statusCode(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

func NewBadRequestError(message string, fieldErrors ...FieldError) *HTTPError {
	e := newError(http.StatusBadRequest, message)
	e.Errors = fieldErrors
	return e
}

// NewValidationError is a 400 carrying per-field failures.
func NewValidationError(fieldErrors []FieldError) *HTTPError {
	e := newError(http.StatusBadRequest, "validation failed")
	e.Code = "VALIDATION_FAILED"
	e.Errors = fieldErrors
	return e
}

func NewUnauthorizedError(message string) *HTTPError {
	return newError(http.StatusUnauthorized, message)
}

func NewForbiddenError(message string) *HTTPError {
	return newError(http.StatusForbidden, message)
}

func NewNotFoundError(message string) *HTTPError {
	return newError(http.StatusNotFound, message)
}

func NewConflictError(message string) *HTTPError {
	return newError(http.StatusConflict, message)
}

func NewTooManyRequestsError() *HTTPError {
	return newError(http.StatusTooManyRequests, "too many requests")
}

// NewInternalServerError never carries the underlying cause.
func NewInternalServerError() *HTTPError {
	return newError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// Write sends e as the JSON response body with its status.
func Write(w http.ResponseWriter, e *HTTPError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	json.NewEncoder(w).Encode(e)
}
