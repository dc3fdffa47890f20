package error

import "errors"

// ErrConcurrentModification is returned by a repository when a compare-and-swap write
// finds the row changed since it was read. Units of work retry on it.
var ErrConcurrentModification = errors.New("concurrent modification")

// StoreErrorCode defines error codes for storage errors.
type StoreErrorCode string

const (
	ErrCodeStoreContention  StoreErrorCode = "STO-050001"
	ErrCodeStoreUnavailable StoreErrorCode = "STO-050002"
)

// StoreError is raised when the store cannot complete a unit of work.
type StoreError struct {
	Code    StoreErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Kind returns the taxonomy kind encoded in the error code.
func (e *StoreError) Kind() Kind {
	return kindFromCode(string(e.Code))
}

// ErrorCode returns the error code as a string.
func (e *StoreError) ErrorCode() string {
	return string(e.Code)
}

// PublicMessage returns the message safe to show to API callers.
func (e *StoreError) PublicMessage() string {
	return e.Message
}

// NewStoreError creates a new StoreError.
func NewStoreError(code StoreErrorCode, message string, err error) *StoreError {
	return &StoreError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
