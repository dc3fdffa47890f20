package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/domain/valueobject"
)

// RecordPayoutInput represents the input for an admin recording money sent to a member.
type RecordPayoutInput struct {
	GroupID     uuid.UUID
	RecipientID string
	AmountCents int64
	Description string
	ActorID     string
}

// RecordPayout creates a payout awaiting the recipient's confirmation and links it to the
// recipient's earliest unlinked pending rotation entry. Funds move only on confirmation.
func (e *Engine) RecordPayout(ctx context.Context, input RecordPayoutInput) (*Posting, error) {
	if err := guard.Caller(input.ActorID); err != nil {
		return nil, err
	}
	if input.RecipientID == "" {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeMissingLedgerFields,
			"recipient is required",
			domainerror.ErrMissingLedgerFields,
		)
	}
	if input.AmountCents <= 0 {
		return nil, invalidAmount()
	}

	now := e.clock.Now()
	posting, err := e.run(ctx, KindPayoutRecord, func(ctx context.Context, repos adapter.Repositories) (*Posting, error) {
		group, err := guard.ActiveGroup(ctx, repos, input.GroupID)
		if err != nil {
			return nil, err
		}
		if _, err := guard.Admin(ctx, repos, group.ID, input.ActorID); err != nil {
			return nil, err
		}
		recipient, err := guard.Target(ctx, repos, group.ID, input.RecipientID)
		if err != nil {
			return nil, err
		}
		if !group.CanDebit(input.AmountCents) {
			return nil, insufficientBalance(group, input.AmountCents)
		}

		payout, err := entity.NewPayoutRecord(group.ID, recipient.UserID, input.AmountCents, input.Description, input.ActorID, now)
		if err != nil {
			return nil, err
		}
		if err := repos.Transactions.Create(ctx, payout); err != nil {
			return nil, fmt.Errorf("failed to create payout: %w", err)
		}

		if idx := entity.UnlinkedPendingIndexFor(group.PayoutSchedule, recipient.UserID); idx >= 0 {
			id := payout.ID
			group.PayoutSchedule[idx].TransactionID = &id
			group.UpdatedAt = now
			if err := repos.Groups.Update(ctx, group); err != nil {
				return nil, err
			}
		}

		return &Posting{Group: group, Member: recipient, Transaction: payout}, nil
	})
	if err != nil {
		return nil, err
	}

	e.sink.Emit(ctx, entity.NewEvent(entity.EventPayoutRecorded, posting.Group, input.ActorID,
		"Payout of "+valueobject.FormatCents(input.AmountCents)+" recorded for "+posting.Member.DisplayName, now).
		With("transaction_id", posting.Transaction.ID.String()).
		With("user_id", posting.Member.UserID).
		With("amount_cents", input.AmountCents).
		To(posting.Member.Notify()))
	return posting, nil
}

// PostPayoutConfirmedInput represents the input for a recipient confirming receipt.
type PostPayoutConfirmedInput struct {
	GroupID       uuid.UUID
	TransactionID uuid.UUID
	AmountCents   int64
	ActorID       string
}

// PostPayoutConfirmed completes a payout, debits the group and marks the linked rotation entry paid.
func (e *Engine) PostPayoutConfirmed(ctx context.Context, input PostPayoutConfirmedInput) (*Posting, error) {
	if err := guard.Caller(input.ActorID); err != nil {
		return nil, err
	}

	now := e.clock.Now()
	posting, err := e.run(ctx, KindPayout, func(ctx context.Context, repos adapter.Repositories) (*Posting, error) {
		return ApplyPayoutConfirmed(ctx, repos, input, now)
	})
	if err != nil {
		return nil, err
	}

	e.sink.Emit(ctx, entity.NewEvent(entity.EventPayoutConfirmed, posting.Group, input.ActorID,
		posting.Member.DisplayName+" confirmed receiving "+valueobject.FormatCents(posting.Transaction.AmountCents), now).
		With("transaction_id", posting.Transaction.ID.String()).
		With("amount_cents", posting.Transaction.AmountCents).
		With("group_balance_cents", posting.Group.CurrentBalanceCents))
	return posting, nil
}

// ApplyPayoutConfirmed performs the confirmation with the repositories of an open unit of work.
func ApplyPayoutConfirmed(ctx context.Context, repos adapter.Repositories, input PostPayoutConfirmedInput, now time.Time) (*Posting, error) {
	group, err := guard.Group(ctx, repos, input.GroupID)
	if err != nil {
		return nil, err
	}
	tx, err := findTransaction(ctx, repos, group.ID, input.TransactionID)
	if err != nil {
		return nil, err
	}
	if err := requireType(tx, entity.TransactionTypePayout); err != nil {
		return nil, err
	}
	if tx.UserID != input.ActorID {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeNotPayoutRecipient,
			"only the payout recipient can confirm it",
			domainerror.ErrNotPayoutRecipient,
		)
	}

	member, err := guard.Member(ctx, repos, group.ID, input.ActorID)
	if err != nil {
		return nil, err
	}
	if err := guard.Unlocked(member, now); err != nil {
		return nil, err
	}
	if err := tx.RequireTransition(entity.TransactionStatusCompleted); err != nil {
		return nil, err
	}
	if input.AmountCents <= 0 {
		return nil, invalidAmount()
	}
	if input.AmountCents != tx.AmountCents {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeAmountMismatch,
			"amount does not match the recorded payout",
			domainerror.ErrAmountMismatch,
		)
	}
	if err := guard.Active(group); err != nil {
		return nil, err
	}
	if !group.CanDebit(tx.AmountCents) {
		return nil, insufficientBalance(group, tx.AmountCents)
	}

	if err := tx.Complete(now); err != nil {
		return nil, err
	}
	if err := repos.Transactions.UpdateStatus(ctx, tx, entity.TransactionStatusPendingConfirmation); err != nil {
		return nil, err
	}

	group.Debit(tx.AmountCents)
	if idx := entity.EntryIndexForTransaction(group.PayoutSchedule, tx.ID); idx >= 0 {
		group.PayoutSchedule[idx].Status = entity.PayoutStatusPaid
		group.PayoutSchedule[idx].PaidAt = &now
	}
	group.RefreshNextPayoutDate(now)
	group.UpdatedAt = now
	if err := repos.Groups.Update(ctx, group); err != nil {
		return nil, err
	}

	return &Posting{Group: group, Member: member, Transaction: tx}, nil
}
