package entity

import (
	"time"

	"github.com/google/uuid"

	domainerror "github.com/savings-circle/backend/internal/domain/error"
)

// FeeRequestStatus is the review state of a subscription fee payment.
type FeeRequestStatus string

const (
	FeeRequestPending  FeeRequestStatus = "pending"
	FeeRequestApproved FeeRequestStatus = "approved"
	FeeRequestRejected FeeRequestStatus = "rejected"
)

// IsValid reports whether the status is known.
func (s FeeRequestStatus) IsValid() bool {
	return s == FeeRequestPending || s == FeeRequestApproved || s == FeeRequestRejected
}

// FeeRequest is a member's claim to have paid the platform subscription fee.
// A platform operator transitions it exactly once.
type FeeRequest struct {
	ID          uuid.UUID
	GroupID     uuid.UUID
	UserID      string
	AmountCents int64
	RefNumber   string
	Status      FeeRequestStatus
	CreatedAt   time.Time
	ReviewedAt  *time.Time
	ReviewedBy  string
}

// NewFeeRequest creates a pending fee request for the fee in force at call time.
func NewFeeRequest(groupID uuid.UUID, userID string, amountCents int64, refNumber string, now time.Time) *FeeRequest {
	return &FeeRequest{
		ID:          uuid.New(),
		GroupID:     groupID,
		UserID:      userID,
		AmountCents: amountCents,
		RefNumber:   refNumber,
		Status:      FeeRequestPending,
		CreatedAt:   now,
	}
}

// Approve marks the request approved by operatorID.
func (f *FeeRequest) Approve(operatorID string, now time.Time) error {
	return f.review(FeeRequestApproved, operatorID, now)
}

// Reject marks the request rejected by operatorID.
func (f *FeeRequest) Reject(operatorID string, now time.Time) error {
	return f.review(FeeRequestRejected, operatorID, now)
}

func (f *FeeRequest) review(next FeeRequestStatus, operatorID string, now time.Time) error {
	if f.Status != FeeRequestPending {
		return domainerror.NewSubscriptionError(
			domainerror.ErrCodeFeeRequestProcessed,
			"fee request has already been processed (status: "+string(f.Status)+")",
			domainerror.ErrFeeRequestProcessed,
		)
	}
	f.Status = next
	f.ReviewedAt = &now
	f.ReviewedBy = operatorID
	return nil
}
