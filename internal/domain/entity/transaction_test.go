package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	domainerror "github.com/savings-circle/backend/internal/domain/error"
)

func TestNewContributionClaim_Validation(t *testing.T) {
	now := time.Now().UTC()
	tests := []struct {
		name      string
		amount    int64
		reference string
		wantErr   error
	}{
		{"valid", 5000, "BANK-1", nil},
		{"zero amount", 0, "BANK-1", domainerror.ErrInvalidAmount},
		{"negative amount", -1, "BANK-1", domainerror.ErrInvalidAmount},
		{"blank reference", 5000, "   ", domainerror.ErrReferenceRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := NewContributionClaim(uuid.New(), "u1", tt.amount, tt.reference, "", now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tx.Status != TransactionStatusPending || tx.Type != TransactionTypeContribution {
				t.Errorf("got %s/%s", tx.Type, tx.Status)
			}
		})
	}
}

func TestTransaction_StatusIsMonotonic(t *testing.T) {
	now := time.Now().UTC()
	claim, _ := NewContributionClaim(uuid.New(), "u1", 5000, "REF", "", now)

	if err := claim.Approve("admin", now); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := claim.Reject("admin", now); !errors.Is(err, domainerror.ErrAlreadyProcessed) {
		t.Errorf("reject after approve: err = %v", err)
	}
	if err := claim.Approve("admin", now); !errors.Is(err, domainerror.ErrAlreadyProcessed) {
		t.Errorf("second approve: err = %v", err)
	}
	if claim.Status != TransactionStatusApproved {
		t.Errorf("status = %s", claim.Status)
	}

	payout, _ := NewPayoutRecord(uuid.New(), "u1", 1000, "", "admin", now)
	if err := payout.Approve("admin", now); err == nil {
		t.Error("payouts cannot be approved")
	}
	if err := payout.Complete(now); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := payout.Complete(now); domainerror.KindOf(err) != domainerror.KindFailedPrecondition {
		t.Errorf("second complete: kind = %v", domainerror.KindOf(err))
	}
}
