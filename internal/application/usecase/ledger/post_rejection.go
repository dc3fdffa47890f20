package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
	"github.com/savings-circle/backend/internal/domain/valueobject"
)

// PostRejectionInput represents the input for rejecting a pending claim.
type PostRejectionInput struct {
	GroupID       uuid.UUID
	TransactionID uuid.UUID
	ActorID       string
}

// PostRejection rejects a pending claim. Balances are untouched.
func (e *Engine) PostRejection(ctx context.Context, input PostRejectionInput) (*Posting, error) {
	if err := guard.Caller(input.ActorID); err != nil {
		return nil, err
	}

	now := e.clock.Now()
	posting, err := e.run(ctx, KindRejection, func(ctx context.Context, repos adapter.Repositories) (*Posting, error) {
		return ApplyRejection(ctx, repos, input, now)
	})
	if err != nil {
		return nil, err
	}

	e.sink.Emit(ctx, ContributionRejectedEvent(posting, input.ActorID, now))
	return posting, nil
}

// ApplyRejection performs the rejection with the repositories of an open unit of work.
func ApplyRejection(ctx context.Context, repos adapter.Repositories, input PostRejectionInput, now time.Time) (*Posting, error) {
	group, err := guard.Group(ctx, repos, input.GroupID)
	if err != nil {
		return nil, err
	}
	if _, err := guard.Admin(ctx, repos, group.ID, input.ActorID); err != nil {
		return nil, err
	}

	tx, err := findTransaction(ctx, repos, group.ID, input.TransactionID)
	if err != nil {
		return nil, err
	}
	if err := requireType(tx, entity.TransactionTypeContribution); err != nil {
		return nil, err
	}
	if err := tx.Reject(input.ActorID, now); err != nil {
		return nil, err
	}
	if err := repos.Transactions.UpdateStatus(ctx, tx, entity.TransactionStatusPending); err != nil {
		return nil, err
	}

	// The claimant may have left since submitting; the notification is then skipped.
	member, err := repos.Members.Find(ctx, group.ID, tx.UserID)
	if err != nil {
		return nil, err
	}
	return &Posting{Group: group, Member: member, Transaction: tx}, nil
}

// ContributionRejectedEvent describes a committed rejection.
func ContributionRejectedEvent(p *Posting, actorID string, now time.Time) entity.Event {
	event := entity.NewEvent(entity.EventClaimRejected, p.Group, actorID,
		"Contribution of "+valueobject.FormatCents(p.Transaction.AmountCents)+" rejected", now).
		With("transaction_id", p.Transaction.ID.String()).
		With("user_id", p.Transaction.UserID).
		With("amount_cents", p.Transaction.AmountCents).
		With("approved", false)
	if p.Member != nil {
		event = event.To(p.Member.Notify())
	}
	return event
}
