package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned when a request carries no valid identity token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when an authenticated caller lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidBody is returned when a request body fails the minimal shape checks.
	ErrInvalidBody = errors.New("invalid request body")
	// ErrStore matches every StoreError.
	ErrStore = errors.New("store failure")
)

// StoreError wraps a document store failure with the operation that hit it.
type StoreError struct {
	Op         string
	Collection string
	Filter     any
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports ErrStore as a match.
func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// NewStoreError builds a StoreError; it returns nil when err is nil.
func NewStoreError(op, collection string, filter any, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Collection: collection, Filter: filter, Err: err}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unrecognised,
// store failures included, becomes a generic 500 that leaks no detail.
func MapErrorToHTTP(err error) *HTTPError {
	var storeErr *StoreError
	switch {
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthorized.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrInvalidBody):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_REQUEST")
	case errors.As(err, &storeErr), errors.Is(err, ErrStore):
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "STORE_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
