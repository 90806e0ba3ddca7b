package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// APIError represents a failure either returned by the backend or raised before a request was sent
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

// Error returns the error message
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code, message string, status int, details ...string) *APIError {
	err := &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

var (
	ErrInvalidInput = NewAPIError("INVALID_INPUT", "Invalid request data", http.StatusBadRequest)
	ErrUnauthorized = NewAPIError("UNAUTHORIZED", "Not authenticated", http.StatusUnauthorized)
	ErrNotFound     = NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrInternal     = NewAPIError("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
	ErrConflict     = NewAPIError("CONFLICT", "Resource conflict", http.StatusConflict)
)

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNetwork    = "NETWORK_ERROR"
	CodeBackend    = "BACKEND_ERROR"
)

func Wrap(err error, code, message string, status int) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	return NewAPIError(code, message, status, err.Error())
}

// Validation builds a client-side validation failure. Status is 0 because no request was made.
func Validation(message string) *APIError {
	return NewAPIError(CodeValidation, message, 0)
}

// Network wraps a transport failure.
func Network(err error) *APIError {
	return NewAPIError(CodeNetwork, "Request failed", 0, err.Error())
}

// Backend builds the error for a non-2xx response, using the body's detail message when present.
func Backend(status int, detail string) *APIError {
	if detail == "" {
		detail = "Request failed"
	}
	code := CodeBackend
	switch status {
	case http.StatusUnauthorized:
		code = ErrUnauthorized.Code
	case http.StatusNotFound:
		code = ErrNotFound.Code
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code = ErrInvalidInput.Code
	}
	return NewAPIError(code, detail, status)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether err is an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Status == http.StatusUnauthorized || apiErr.Code == ErrUnauthorized.Code
	}
	return false
}

// IsValidation reports whether err was raised by client-side validation.
func IsValidation(err error) bool {
	var apiErr *APIError
	return stderrors.As(err, &apiErr) && apiErr.Code == CodeValidation
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var apiErr *APIError
	return stderrors.As(err, &apiErr) && apiErr.Code == CodeNetwork
}
