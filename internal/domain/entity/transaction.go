package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	domainerror "github.com/savings-circle/backend/internal/domain/error"
)

// TransactionType represents the kind of money movement recorded in a group ledger.
type TransactionType string

const (
	TransactionTypeContribution TransactionType = "contribution"
	TransactionTypePayout       TransactionType = "payout"
	TransactionTypeFee          TransactionType = "fee"
)

// IsValid reports whether the type is known.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeContribution, TransactionTypePayout, TransactionTypeFee:
		return true
	}
	return false
}

// TransactionStatus is the lifecycle state of a ledger transaction.
type TransactionStatus string

const (
	TransactionStatusPendingConfirmation TransactionStatus = "pending_confirmation"
	TransactionStatusPending             TransactionStatus = "pending"
	TransactionStatusApproved            TransactionStatus = "approved"
	TransactionStatusRejected            TransactionStatus = "rejected"
	TransactionStatusCompleted           TransactionStatus = "completed"
)

// IsValid reports whether the status is known.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPendingConfirmation, TransactionStatusPending,
		TransactionStatusApproved, TransactionStatusRejected, TransactionStatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusApproved || s == TransactionStatusRejected || s == TransactionStatusCompleted
}

// transitions lists the only allowed status moves; everything else is rejected.
var transitions = map[TransactionStatus][]TransactionStatus{
	TransactionStatusPending:             {TransactionStatusApproved, TransactionStatusRejected},
	TransactionStatusPendingConfirmation: {TransactionStatusCompleted},
}

// Transaction is an append-only ledger row. Only its status and review stamps change.
type Transaction struct {
	ID          uuid.UUID
	GroupID     uuid.UUID
	Type        TransactionType
	AmountCents int64
	Status      TransactionStatus
	UserID      string
	Description string
	Reference   string
	CreatedBy   string
	CreatedAt   time.Time
	ReviewedAt  *time.Time
	ReviewedBy  string
	ProcessedAt *time.Time
}

// NewContributionClaim records a member's claim that they paid into the group.
func NewContributionClaim(groupID uuid.UUID, userID string, amountCents int64, reference, description string, now time.Time) (*Transaction, error) {
	if amountCents <= 0 {
		return nil, domainerror.NewLedgerError(domainerror.ErrCodeInvalidAmount, "amount must be greater than zero", domainerror.ErrInvalidAmount)
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, domainerror.NewLedgerError(domainerror.ErrCodeReferenceRequired, "payment reference is required", domainerror.ErrReferenceRequired)
	}

	return &Transaction{
		ID:          uuid.New(),
		GroupID:     groupID,
		Type:        TransactionTypeContribution,
		AmountCents: amountCents,
		Status:      TransactionStatusPending,
		UserID:      userID,
		Description: strings.TrimSpace(description),
		Reference:   reference,
		CreatedBy:   userID,
		CreatedAt:   now,
	}, nil
}

// NewPayoutRecord records money leaving the group for a recipient, awaiting their confirmation.
func NewPayoutRecord(groupID uuid.UUID, recipientID string, amountCents int64, description, createdBy string, now time.Time) (*Transaction, error) {
	if amountCents <= 0 {
		return nil, domainerror.NewLedgerError(domainerror.ErrCodeInvalidAmount, "amount must be greater than zero", domainerror.ErrInvalidAmount)
	}

	return &Transaction{
		ID:          uuid.New(),
		GroupID:     groupID,
		Type:        TransactionTypePayout,
		AmountCents: amountCents,
		Status:      TransactionStatusPendingConfirmation,
		UserID:      recipientID,
		Description: strings.TrimSpace(description),
		CreatedBy:   createdBy,
		CreatedAt:   now,
	}, nil
}

// NewFeeRecord records an approved platform fee paid by a member. It never moves group funds.
func NewFeeRecord(groupID uuid.UUID, userID string, amountCents int64, reference, approvedBy string, now time.Time) *Transaction {
	return &Transaction{
		ID:          uuid.New(),
		GroupID:     groupID,
		Type:        TransactionTypeFee,
		AmountCents: amountCents,
		Status:      TransactionStatusApproved,
		UserID:      userID,
		Description: "platform subscription fee",
		Reference:   reference,
		CreatedBy:   userID,
		CreatedAt:   now,
		ReviewedAt:  &now,
		ReviewedBy:  approvedBy,
	}
}

// CanTransitionTo reports whether moving to next is allowed from the current status.
func (t *Transaction) CanTransitionTo(next TransactionStatus) bool {
	for _, allowed := range transitions[t.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsApprovable reports whether the claim carries everything a posting needs.
func (t *Transaction) IsApprovable() bool {
	return t.Type == TransactionTypeContribution && t.UserID != "" && t.AmountCents > 0 && t.Reference != ""
}

// Approve moves a pending contribution to approved.
func (t *Transaction) Approve(reviewerID string, now time.Time) error {
	return t.review(TransactionStatusApproved, reviewerID, now)
}

// Reject moves a pending contribution to rejected.
func (t *Transaction) Reject(reviewerID string, now time.Time) error {
	return t.review(TransactionStatusRejected, reviewerID, now)
}

// RequireTransition fails with AlreadyProcessed unless next is reachable from the current status.
func (t *Transaction) RequireTransition(next TransactionStatus) error {
	if !t.CanTransitionTo(next) {
		return alreadyProcessed(t)
	}
	return nil
}

// Complete moves a payout awaiting confirmation to completed.
func (t *Transaction) Complete(now time.Time) error {
	if err := t.RequireTransition(TransactionStatusCompleted); err != nil {
		return err
	}
	t.Status = TransactionStatusCompleted
	t.ProcessedAt = &now
	return nil
}

func (t *Transaction) review(next TransactionStatus, reviewerID string, now time.Time) error {
	if err := t.RequireTransition(next); err != nil {
		return err
	}
	t.Status = next
	t.ReviewedAt = &now
	t.ReviewedBy = reviewerID
	return nil
}

func alreadyProcessed(t *Transaction) error {
	return domainerror.NewLedgerError(
		domainerror.ErrCodeAlreadyProcessed,
		"transaction has already been processed (status: "+string(t.Status)+")",
		domainerror.ErrAlreadyProcessed,
	)
}

// LedgerTotals aggregates the ledger for the consistency check.
type LedgerTotals struct {
	ApprovedContributionsCents int64
	CompletedPayoutsCents      int64
	PendingClaimsCents         int64
	PendingPayoutsCents        int64
	ApprovedFeesCents          int64
}
