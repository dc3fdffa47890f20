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

// PostApprovedContributionInput represents the input for crediting an approved claim.
type PostApprovedContributionInput struct {
	GroupID       uuid.UUID
	TransactionID uuid.UUID
	MemberID      string
	AmountCents   int64
	ActorID       string
}

// PostApprovedContribution approves a pending claim and credits the group and the
// claimant in one unit of work. A claim is credited at most once.
func (e *Engine) PostApprovedContribution(ctx context.Context, input PostApprovedContributionInput) (*Posting, error) {
	if err := guard.Caller(input.ActorID); err != nil {
		return nil, err
	}

	now := e.clock.Now()
	posting, err := e.run(ctx, KindContribution, func(ctx context.Context, repos adapter.Repositories) (*Posting, error) {
		return ApplyApprovedContribution(ctx, repos, input, now)
	})
	if err != nil {
		return nil, err
	}

	e.sink.Emit(ctx, ContributionApprovedEvent(posting, input.ActorID, now))
	return posting, nil
}

// ApplyApprovedContribution performs the posting with the repositories of an open unit of work.
func ApplyApprovedContribution(ctx context.Context, repos adapter.Repositories, input PostApprovedContributionInput, now time.Time) (*Posting, error) {
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
	if err := tx.RequireTransition(entity.TransactionStatusApproved); err != nil {
		return nil, err
	}
	if !tx.IsApprovable() {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeClaimIncomplete,
			"claim must carry a member, a positive amount and a reference",
			domainerror.ErrClaimIncomplete,
		)
	}
	if input.MemberID != "" && input.MemberID != tx.UserID {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeClaimantMismatch,
			"member does not match the claimant",
			domainerror.ErrClaimantMismatch,
		)
	}
	if input.AmountCents <= 0 {
		return nil, invalidAmount()
	}
	if input.AmountCents != tx.AmountCents {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeAmountMismatch,
			fmt.Sprintf("amount %s does not match the claimed %s",
				valueobject.FormatCents(input.AmountCents), valueobject.FormatCents(tx.AmountCents)),
			domainerror.ErrAmountMismatch,
		)
	}
	if err := guard.Active(group); err != nil {
		return nil, err
	}

	member, err := guard.Target(ctx, repos, group.ID, tx.UserID)
	if err != nil {
		return nil, err
	}

	if !group.CanCredit(tx.AmountCents) || !member.Credit(tx.AmountCents) {
		return nil, balanceOverflow(tx.AmountCents)
	}

	if err := tx.Approve(input.ActorID, now); err != nil {
		return nil, err
	}
	if err := repos.Transactions.UpdateStatus(ctx, tx, entity.TransactionStatusPending); err != nil {
		return nil, err
	}

	if err := repos.Members.Update(ctx, member); err != nil {
		return nil, err
	}

	group.Credit(tx.AmountCents)
	group.UpdatedAt = now
	if err := repos.Groups.Update(ctx, group); err != nil {
		return nil, err
	}

	return &Posting{Group: group, Member: member, Transaction: tx}, nil
}

// ContributionApprovedEvent describes a committed contribution posting.
func ContributionApprovedEvent(p *Posting, actorID string, now time.Time) entity.Event {
	return entity.NewEvent(entity.EventClaimApproved, p.Group, actorID,
		"Contribution of "+valueobject.FormatCents(p.Transaction.AmountCents)+" approved", now).
		With("transaction_id", p.Transaction.ID.String()).
		With("user_id", p.Transaction.UserID).
		With("amount_cents", p.Transaction.AmountCents).
		With("group_balance_cents", p.Group.CurrentBalanceCents).
		With("approved", true).
		To(p.Member.Notify())
}
