package error

import "errors"

// Subscription domain errors.
var (
	// ErrFeeRequestNotFound is returned when a fee request does not exist.
	ErrFeeRequestNotFound = errors.New("fee request not found")

	// ErrSubscriptionLocked is returned when a member without an active subscription acts.
	ErrSubscriptionLocked = errors.New("an active subscription is required for this action")

	// ErrInvalidSubscriptionTransition is returned when the current status does not allow the request.
	ErrInvalidSubscriptionTransition = errors.New("subscription status does not allow this transition")

	// ErrFeeRequired is returned when the free activation path is used while a fee is configured.
	ErrFeeRequired = errors.New("a platform fee is configured, request activation instead")

	// ErrNoFeeConfigured is returned when a paid activation is requested but the fee is zero.
	ErrNoFeeConfigured = errors.New("no platform fee is configured, use free activation")

	// ErrRefNumberRequired is returned when a fee request carries no payment reference.
	ErrRefNumberRequired = errors.New("payment reference number is required")

	// ErrFeeRequestProcessed is returned when a fee request was already approved or rejected.
	ErrFeeRequestProcessed = errors.New("fee request has already been processed")

	// ErrInvalidFeeAmount is returned when the configured platform fee is negative.
	ErrInvalidFeeAmount = errors.New("platform fee cannot be negative")

	// ErrInvalidFeeRequestStatus is returned when a fee request status filter is unknown.
	ErrInvalidFeeRequestStatus = errors.New("invalid fee request status")
)

// SubscriptionErrorCode defines error codes for subscription errors.
// Format: SUB-XXYYYY where XX is category and YYYY is specific error.
type SubscriptionErrorCode string

const (
	// Resource not found errors (01XXXX)
	ErrCodeFeeRequestNotFound SubscriptionErrorCode = "SUB-010001"

	// Validation errors (02XXXX)
	ErrCodeRefNumberRequired       SubscriptionErrorCode = "SUB-020001"
	ErrCodeInvalidFeeAmount        SubscriptionErrorCode = "SUB-020002"
	ErrCodeInvalidFeeRequestID     SubscriptionErrorCode = "SUB-020003"
	ErrCodeInvalidFeeRequestStatus SubscriptionErrorCode = "SUB-020004"

	// Precondition errors (03XXXX)
	ErrCodeSubscriptionLocked            SubscriptionErrorCode = "SUB-030001"
	ErrCodeInvalidSubscriptionTransition SubscriptionErrorCode = "SUB-030002"
	ErrCodeFeeRequired                   SubscriptionErrorCode = "SUB-030003"
	ErrCodeNoFeeConfigured               SubscriptionErrorCode = "SUB-030004"
	ErrCodeFeeRequestProcessed           SubscriptionErrorCode = "SUB-030005"

	// Authorization errors (04XXXX)
	ErrCodeNotOperator SubscriptionErrorCode = "SUB-040001"
)

// SubscriptionError represents a subscription error with code and message.
type SubscriptionError struct {
	Code    SubscriptionErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *SubscriptionError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *SubscriptionError) Unwrap() error {
	return e.Err
}

// Kind returns the taxonomy kind encoded in the error code.
func (e *SubscriptionError) Kind() Kind {
	return kindFromCode(string(e.Code))
}

// ErrorCode returns the error code as a string.
func (e *SubscriptionError) ErrorCode() string {
	return string(e.Code)
}

// PublicMessage returns the message safe to show to API callers.
func (e *SubscriptionError) PublicMessage() string {
	return e.Message
}

// NewSubscriptionError creates a new SubscriptionError with the given code and message.
func NewSubscriptionError(code SubscriptionErrorCode, message string, err error) *SubscriptionError {
	return &SubscriptionError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
