package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when no user matches the given id.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when registering an email that is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned for a failed login. Unknown email and
	// wrong password are intentionally indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken is returned for a bad, malformed, or expired token.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInvalidRole is returned when a role is neither 'admin' nor 'user'.
	ErrInvalidRole = errors.New("invalid role: must be 'admin' or 'user'")
	// ErrLastAdminProtection is returned when an operation would leave the
	// system without any administrator.
	ErrLastAdminProtection = errors.New("cannot delete or demote the last administrator")
	// ErrSelfDeleteForbidden is returned when an admin targets themselves.
	ErrSelfDeleteForbidden = errors.New("cannot delete your own account")
	// ErrNoFieldsToUpdate is returned for a partial update with no fields set.
	ErrNoFieldsToUpdate = errors.New("no fields to update")
)

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

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, err.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrInvalidRole):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_ROLE")
	case errors.Is(err, ErrLastAdminProtection):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "LAST_ADMIN_PROTECTED")
	case errors.Is(err, ErrSelfDeleteForbidden):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "SELF_DELETE_FORBIDDEN")
	case errors.Is(err, ErrNoFieldsToUpdate):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "NO_FIELDS")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
