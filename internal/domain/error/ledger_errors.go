package error

import "errors"

// Ledger domain errors.
var (
	// ErrTransactionNotFound is returned when a ledger transaction does not exist in the group.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrAlreadyProcessed is returned when a transaction already left its pending state.
	ErrAlreadyProcessed = errors.New("transaction has already been processed")

	// ErrInvalidAmount is returned when an amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrAmountMismatch is returned when a posting amount differs from the claimed amount.
	ErrAmountMismatch = errors.New("amount does not match the claimed amount")

	// ErrInsufficientGroupBalance is returned when a payout exceeds the group balance.
	ErrInsufficientGroupBalance = errors.New("group balance is insufficient for this payout")

	// ErrWrongTransactionType is returned when an operation targets the wrong transaction variant.
	ErrWrongTransactionType = errors.New("operation not allowed for this transaction type")

	// ErrInvalidClaimAction is returned when processClaim receives an unknown action.
	ErrInvalidClaimAction = errors.New("action must be approve or reject")

	// ErrClaimIncomplete is returned when an approvable claim lacks user, amount or reference.
	ErrClaimIncomplete = errors.New("claim is missing required fields")

	// ErrReferenceRequired is returned when a claim is submitted without a reference.
	ErrReferenceRequired = errors.New("payment reference is required")

	// ErrNotPayoutRecipient is returned when someone other than the recipient confirms a payout.
	ErrNotPayoutRecipient = errors.New("only the payout recipient can confirm it")

	// ErrInvalidTransactionStatus is returned when a status filter is unknown.
	ErrInvalidTransactionStatus = errors.New("invalid transaction status")

	// ErrInvalidTransactionType is returned when a type filter is unknown.
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrMissingLedgerFields is returned when a required ledger field is empty.
	ErrMissingLedgerFields = errors.New("required ledger fields are missing")

	// ErrClaimantMismatch is returned when a posting names a member other than the claimant.
	ErrClaimantMismatch = errors.New("member does not match the claimant")

	// ErrBalanceOverflow is returned when a credit would not fit in a balance.
	ErrBalanceOverflow = errors.New("balance would exceed the supported range")
)

// LedgerErrorCode defines error codes for ledger and claim errors.
// Format: LDG-XXYYYY where XX is category and YYYY is specific error.
type LedgerErrorCode string

const (
	// Resource not found errors (01XXXX)
	ErrCodeTransactionNotFound LedgerErrorCode = "LDG-010001"

	// Validation errors (02XXXX)
	ErrCodeInvalidAmount            LedgerErrorCode = "LDG-020001"
	ErrCodeAmountMismatch           LedgerErrorCode = "LDG-020002"
	ErrCodeInvalidClaimAction       LedgerErrorCode = "LDG-020003"
	ErrCodeClaimIncomplete          LedgerErrorCode = "LDG-020004"
	ErrCodeReferenceRequired        LedgerErrorCode = "LDG-020005"
	ErrCodeInvalidTransactionID     LedgerErrorCode = "LDG-020006"
	ErrCodeInvalidTransactionStatus LedgerErrorCode = "LDG-020007"
	ErrCodeInvalidTransactionType   LedgerErrorCode = "LDG-020008"
	ErrCodeMissingLedgerFields      LedgerErrorCode = "LDG-020009"
	ErrCodeClaimantMismatch         LedgerErrorCode = "LDG-020010"

	// Precondition errors (03XXXX)
	ErrCodeAlreadyProcessed         LedgerErrorCode = "LDG-030001"
	ErrCodeInsufficientGroupBalance LedgerErrorCode = "LDG-030002"
	ErrCodeWrongTransactionType     LedgerErrorCode = "LDG-030003"
	ErrCodeBalanceOverflow          LedgerErrorCode = "LDG-030004"

	// Authorization errors (04XXXX)
	ErrCodeNotPayoutRecipient LedgerErrorCode = "LDG-040001"
)

// LedgerError represents a ledger error with code and message.
type LedgerError struct {
	Code    LedgerErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *LedgerError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *LedgerError) Unwrap() error {
	return e.Err
}

// Kind returns the taxonomy kind encoded in the error code.
func (e *LedgerError) Kind() Kind {
	return kindFromCode(string(e.Code))
}

// ErrorCode returns the error code as a string.
func (e *LedgerError) ErrorCode() string {
	return string(e.Code)
}

// PublicMessage returns the message safe to show to API callers.
func (e *LedgerError) PublicMessage() string {
	return e.Message
}

// NewLedgerError creates a new LedgerError with the given code and message.
func NewLedgerError(code LedgerErrorCode, message string, err error) *LedgerError {
	return &LedgerError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
