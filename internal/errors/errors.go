package errors

import (
	"errors"
	"net/http"
)

// Kind classifies an error into the response taxonomy.
type Kind int

const (
	// KindInternal is an unexpected failure; callers get a generic message.
	KindInternal Kind = iota
	// KindValidation is malformed or missing input.
	KindValidation
	// KindUnauthenticated means no valid caller identity.
	KindUnauthenticated
	// KindForbidden is a role or ownership mismatch.
	KindForbidden
	// KindNotFound means the target resource does not exist.
	KindNotFound
	// KindConflict covers duplicates and wrong-state transitions.
	KindConflict
)

// Error carries a kind plus a human-readable message safe to return to callers.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Validation returns a 400-mapped error.
func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// Unauthenticated returns a 401-mapped error.
func Unauthenticated(message string) error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// Forbidden returns a 403-mapped error.
func Forbidden(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound returns a 404-mapped error.
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict returns a 409-mapped error.
func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
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

// MapErrorToHTTP maps domain errors to HTTP errors. Unclassified errors map
// to 500 with a generic message; the original cause is logged server-side.
func MapErrorToHTTP(err error) *HTTPError {
	var e *Error
	if !errors.As(err, &e) {
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}

	switch e.Kind {
	case KindValidation:
		return NewHTTPError(http.StatusBadRequest, e.Message, "VALIDATION_ERROR")
	case KindUnauthenticated:
		return NewHTTPError(http.StatusUnauthorized, e.Message, "UNAUTHENTICATED")
	case KindForbidden:
		return NewHTTPError(http.StatusForbidden, e.Message, "FORBIDDEN")
	case KindNotFound:
		return NewHTTPError(http.StatusNotFound, e.Message, "NOT_FOUND")
	case KindConflict:
		return NewHTTPError(http.StatusConflict, e.Message, "CONFLICT")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
