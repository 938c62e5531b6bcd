package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller does not own the record or is not an admin.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized is returned when no valid session is present.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailNotConfirmed is returned on sign-in before the confirmation link was used.
	ErrEmailNotConfirmed = errors.New("email not confirmed")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrInvalidAuthCode is returned when a callback code is unknown, used or expired.
	ErrInvalidAuthCode = errors.New("invalid or expired code")
	// ErrUserAlreadyExists is returned when trying to register an existing user.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrAlreadyInterested is returned on a second interest in the same call.
	ErrAlreadyInterested = errors.New("interest already recorded")
	// ErrAlreadyBookmarked is returned on a second bookmark of the same call.
	ErrAlreadyBookmarked = errors.New("already bookmarked")
	// ErrAlreadyFounder is returned when a founding-member request already exists.
	ErrAlreadyFounder = errors.New("already a founding member")
	// ErrRequestAlreadyDecided is returned when a founding-member request is no longer pending.
	ErrRequestAlreadyDecided = errors.New("request already decided")
)

// ValidationError carries a user-facing message about rejected input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// Validationf formats a validation error.
func Validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
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

// Internal reports whether err maps to a 500 response.
func (e *HTTPError) Internal() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors become a
// generic 500 so raw driver messages never reach the client.
func MapErrorToHTTP(err error) *HTTPError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return NewHTTPError(http.StatusBadRequest, verr.Message, "VALIDATION_ERROR")
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrEmailNotConfirmed):
		return NewHTTPError(http.StatusForbidden, err.Error(), "EMAIL_NOT_CONFIRMED")
	case errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_REFRESH_TOKEN")
	case errors.Is(err, ErrInvalidAuthCode):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_CODE")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, err.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrAlreadyInterested):
		return NewHTTPError(http.StatusConflict, err.Error(), "ALREADY_INTERESTED")
	case errors.Is(err, ErrAlreadyBookmarked):
		return NewHTTPError(http.StatusConflict, err.Error(), "ALREADY_BOOKMARKED")
	case errors.Is(err, ErrAlreadyFounder):
		return NewHTTPError(http.StatusConflict, err.Error(), "ALREADY_FOUNDER")
	case errors.Is(err, ErrRequestAlreadyDecided):
		return NewHTTPError(http.StatusConflict, err.Error(), "ALREADY_DECIDED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
