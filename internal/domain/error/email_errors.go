package error

import "errors"

// Notification email errors. These never reach API callers; the delivery worker
// uses them to decide whether a job is retried.
var (
	ErrEmailQueueFailed = errors.New("failed to queue email")

	// ErrInvalidTemplate is returned when a job names no known template.
	ErrInvalidTemplate = errors.New("invalid email template")

	// ErrMissingRecipient is returned when a notification has no email address.
	ErrMissingRecipient = errors.New("notification recipient has no email address")
)

// EmailErrorCode follows the AREA-KKYYYY layout of the other areas.
type EmailErrorCode string

const (
	ErrCodeMissingRecipient EmailErrorCode = "EMAIL-020001"
	ErrCodeInvalidTemplate  EmailErrorCode = "EMAIL-020002"

	// The provider rejected the message; sending it again cannot succeed.
	ErrCodePermanentEmailFailure EmailErrorCode = "EMAIL-030001"

	ErrCodeEmailQueueFailed      EmailErrorCode = "EMAIL-050001"
	ErrCodeTemporaryEmailFailure EmailErrorCode = "EMAIL-050002"
)

// EmailError is a coded notification delivery error.
type EmailError struct {
	Code    EmailErrorCode
	Message string
	Err     error
}

func (e *EmailError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *EmailError) Unwrap() error {
	return e.Err
}

// Kind implements Kinded.
func (e *EmailError) Kind() Kind {
	return kindFromCode(string(e.Code))
}

// ErrorCode implements Kinded.
func (e *EmailError) ErrorCode() string {
	return string(e.Code)
}

// IsPermanent reports whether retrying the delivery cannot succeed.
func (e *EmailError) IsPermanent() bool {
	return e.Code == ErrCodePermanentEmailFailure || e.Code == ErrCodeInvalidTemplate
}

// NewEmailError creates a new EmailError with the given code and message.
func NewEmailError(code EmailErrorCode, message string, err error) *EmailError {
	return &EmailError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
