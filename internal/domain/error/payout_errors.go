package error

import "errors"

// Payout schedule errors.
var (
	// ErrScheduleEntryNotFound is returned when a user has no entry in the rotation.
	ErrScheduleEntryNotFound = errors.New("payout schedule entry not found")

	// ErrEmptyMemberOrder is returned when a schedule is generated without members.
	ErrEmptyMemberOrder = errors.New("member order cannot be empty")

	// ErrDuplicateScheduleMember is returned when a member appears twice in the order.
	ErrDuplicateScheduleMember = errors.New("member order contains duplicates")

	// ErrScheduleMemberNotInGroup is returned when the order names a non member.
	ErrScheduleMemberNotInGroup = errors.New("member order references a user outside the group")

	// ErrInvalidFrequency is returned for frequencies other than weekly or monthly.
	ErrInvalidFrequency = errors.New("frequency must be weekly or monthly")

	// ErrInvalidScheduleIndex is returned when a reorder index is out of range.
	ErrInvalidScheduleIndex = errors.New("schedule index out of range")

	// ErrInvalidPayoutDate is returned when a date cannot be parsed or is zero.
	ErrInvalidPayoutDate = errors.New("invalid payout date")

	// ErrEntryAlreadyPaid is returned when a paid entry would be modified.
	ErrEntryAlreadyPaid = errors.New("payout entry is already paid")

	// ErrNoPendingPayout is returned when the rotation has no pending entry.
	ErrNoPendingPayout = errors.New("no pending payout in the schedule")

	// ErrPayoutAwaitingConfirmation is returned when a new rotation drops the turn of
	// a member whose payout is still unconfirmed.
	ErrPayoutAwaitingConfirmation = errors.New("member has a payout awaiting confirmation")
)

// PayoutErrorCode defines error codes for payout schedule errors.
// Format: PAY-XXYYYY where XX is category and YYYY is specific error.
type PayoutErrorCode string

const (
	// Resource not found errors (01XXXX)
	ErrCodeScheduleEntryNotFound PayoutErrorCode = "PAY-010001"
	ErrCodeNoPendingPayout       PayoutErrorCode = "PAY-010002"

	// Validation errors (02XXXX)
	ErrCodeEmptyMemberOrder         PayoutErrorCode = "PAY-020001"
	ErrCodeDuplicateScheduleMember  PayoutErrorCode = "PAY-020002"
	ErrCodeScheduleMemberNotInGroup PayoutErrorCode = "PAY-020003"
	ErrCodeInvalidFrequency         PayoutErrorCode = "PAY-020004"
	ErrCodeInvalidScheduleIndex     PayoutErrorCode = "PAY-020005"
	ErrCodeInvalidPayoutDate        PayoutErrorCode = "PAY-020006"
	ErrCodeMissingScheduleFields    PayoutErrorCode = "PAY-020007"

	// Precondition errors (03XXXX)
	ErrCodeEntryAlreadyPaid           PayoutErrorCode = "PAY-030001"
	ErrCodePayoutAwaitingConfirmation PayoutErrorCode = "PAY-030002"
)

// PayoutError represents a payout schedule error with code and message.
type PayoutError struct {
	Code    PayoutErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *PayoutError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *PayoutError) Unwrap() error {
	return e.Err
}

// Kind returns the taxonomy kind encoded in the error code.
func (e *PayoutError) Kind() Kind {
	return kindFromCode(string(e.Code))
}

// ErrorCode returns the error code as a string.
func (e *PayoutError) ErrorCode() string {
	return string(e.Code)
}

// PublicMessage returns the message safe to show to API callers.
func (e *PayoutError) PublicMessage() string {
	return e.Message
}

// NewPayoutError creates a new PayoutError with the given code and message.
func NewPayoutError(code PayoutErrorCode, message string, err error) *PayoutError {
	return &PayoutError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
