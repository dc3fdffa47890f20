package error

import "errors"

// Authentication domain errors.
var (
	// ErrInvalidToken is returned when a token is invalid or malformed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token has expired.
	ErrExpiredToken = errors.New("token has expired")

	// ErrMissingToken is returned when no bearer token accompanies the request.
	ErrMissingToken = errors.New("authorization header is required")

	// ErrMissingCaller is returned when an operation runs without a caller identity.
	ErrMissingCaller = errors.New("caller identity is required")
)

// AuthErrorCode defines error codes for authentication errors.
// Format: AUTH-XXYYYY where XX is category and YYYY is specific error.
type AuthErrorCode string

const (
	// Unauthenticated errors (06XXXX)
	ErrCodeInvalidToken  AuthErrorCode = "AUTH-060001"
	ErrCodeExpiredToken  AuthErrorCode = "AUTH-060002"
	ErrCodeMissingToken  AuthErrorCode = "AUTH-060003"
	ErrCodeMissingCaller AuthErrorCode = "AUTH-060004"

	// Throttling errors (05XXXX)
	ErrCodeRateLimited AuthErrorCode = "AUTH-050001"
)

// AuthError represents an authentication error with code and message.
type AuthError struct {
	Code    AuthErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Kind returns the taxonomy kind encoded in the error code.
func (e *AuthError) Kind() Kind {
	return kindFromCode(string(e.Code))
}

// ErrorCode returns the error code as a string.
func (e *AuthError) ErrorCode() string {
	return string(e.Code)
}

// PublicMessage returns the message safe to show to API callers.
func (e *AuthError) PublicMessage() string {
	return e.Message
}

// NewAuthError creates a new AuthError with the given code and message.
func NewAuthError(code AuthErrorCode, message string, err error) *AuthError {
	return &AuthError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// MissingCaller is the error every use case returns when invoked without a caller id.
func MissingCaller() *AuthError {
	return NewAuthError(ErrCodeMissingCaller, "caller identity is required", ErrMissingCaller)
}
