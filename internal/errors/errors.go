package errors

import (
	"errors"
	"fmt"
	"net/http"

	"minimalistnotes/internal/model"
)

var (
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrTokenVerification is returned when a federated identity token fails verification.
	ErrTokenVerification = errors.New("federated token verification failed")
	// ErrMissingEmail is returned when a verified federated token carries no email claim.
	ErrMissingEmail = errors.New("identity token has no email claim")
	// ErrInvalidToken is returned when a session token is malformed or its signature is wrong.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a session token is past its expiry.
	ErrExpiredToken = errors.New("token expired")
	// ErrMissingToken is returned when a protected route is called without a bearer token.
	ErrMissingToken = errors.New("missing token")
	// ErrUserNotFound is returned when a valid token names a user that no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrRecordNotFound is returned when a note, todo or timer does not exist.
	ErrRecordNotFound = errors.New("record not found")
	// ErrForbidden is returned when a caller touches records it does not own.
	ErrForbidden = errors.New("record belongs to another user")
)

// ValidationError reports malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// WrongMethodError is returned when an email is bound to the other sign-in method.
// Method names the method the account must use.
type WrongMethodError struct {
	Method model.AuthMethod
}

func (e *WrongMethodError) Error() string {
	switch e.Method {
	case model.AuthMethodGoogle:
		return "this email is registered with Google, please sign in with Google"
	case model.AuthMethodManual:
		return "this email is registered with a password, please sign in with your password"
	default:
		return fmt.Sprintf("this email is registered with %s", e.Method)
	}
}

// Codes carried in every error body.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeWrongMethod        = "WRONG_AUTH_METHOD"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeTokenVerification  = "TOKEN_VERIFICATION_FAILED"
	CodeMissingEmail       = "MISSING_EMAIL"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeExpiredToken       = "EXPIRED_TOKEN"
	CodeMissingToken       = "MISSING_TOKEN"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeNotFound           = "NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	Code            string `json:"code"`
	IsGoogleAccount bool   `json:"isGoogleAccount,omitempty"`
	IsManualAccount bool   `json:"isManualAccount,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode      int
	Message         string
	Code            string
	IsGoogleAccount bool
	IsManualAccount bool
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
		Success:         false,
		Message:         e.Message,
		Code:            e.Code,
		IsGoogleAccount: e.IsGoogleAccount,
		IsManualAccount: e.IsManualAccount,
	}
}

// IsInternal reports whether err maps to an opaque 500.
func IsInternal(err error) bool {
	return MapErrorToHTTP(err).StatusCode == http.StatusInternalServerError
}

// MapErrorToHTTP maps domain errors to HTTP errors.
// Anything unrecognised is a storage or infrastructure failure and is reported opaquely.
func MapErrorToHTTP(err error) *HTTPError {
	var validationErr *ValidationError
	var wrongMethodErr *WrongMethodError

	switch {
	case errors.As(err, &validationErr):
		return NewHTTPError(http.StatusBadRequest, validationErr.Message, CodeValidation)
	case errors.As(err, &wrongMethodErr):
		httpErr := NewHTTPError(http.StatusConflict, wrongMethodErr.Error(), CodeWrongMethod)
		httpErr.IsGoogleAccount = wrongMethodErr.Method == model.AuthMethodGoogle
		httpErr.IsManualAccount = wrongMethodErr.Method == model.AuthMethodManual
		return httpErr
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), CodeInvalidCredentials)
	case errors.Is(err, ErrTokenVerification):
		return NewHTTPError(http.StatusBadRequest, "invalid Google token", CodeTokenVerification)
	case errors.Is(err, ErrMissingEmail):
		return NewHTTPError(http.StatusBadRequest, ErrMissingEmail.Error(), CodeMissingEmail)
	case errors.Is(err, ErrExpiredToken):
		return NewHTTPError(http.StatusUnauthorized, ErrExpiredToken.Error(), CodeExpiredToken)
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error(), CodeInvalidToken)
	case errors.Is(err, ErrMissingToken):
		return NewHTTPError(http.StatusUnauthorized, "no token provided", CodeMissingToken)
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusUnauthorized, ErrUserNotFound.Error(), CodeUserNotFound)
	case errors.Is(err, ErrRecordNotFound):
		return NewHTTPError(http.StatusNotFound, ErrRecordNotFound.Error(), CodeNotFound)
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), CodeForbidden)
	default:
		return NewHTTPError(http.StatusInternalServerError, "server error", CodeInternal)
	}
}

// FromResponse rebuilds the typed error a server reported.
// It is the inverse of MapErrorToHTTP for clients of the API.
func FromResponse(status int, resp ErrorResponse) error {
	switch resp.Code {
	case CodeValidation:
		return NewValidationError("", resp.Message)
	case CodeWrongMethod:
		if resp.IsManualAccount {
			return &WrongMethodError{Method: model.AuthMethodManual}
		}
		return &WrongMethodError{Method: model.AuthMethodGoogle}
	case CodeInvalidCredentials:
		return ErrInvalidCredentials
	case CodeTokenVerification:
		return ErrTokenVerification
	case CodeMissingEmail:
		return ErrMissingEmail
	case CodeExpiredToken:
		return ErrExpiredToken
	case CodeInvalidToken:
		return ErrInvalidToken
	case CodeMissingToken:
		return ErrMissingToken
	case CodeUserNotFound:
		return ErrUserNotFound
	case CodeNotFound:
		return ErrRecordNotFound
	case CodeForbidden:
		return ErrForbidden
	}
	if resp.Message == "" {
		resp.Message = http.StatusText(status)
	}
	return fmt.Errorf("server returned %d: %s", status, resp.Message)
}
