// Package claim implements the contribution claim workflow: members declare payments,
// admins approve or reject them through the ledger.
package claim

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
	"github.com/savings-circle/backend/internal/domain/valueobject"
)

// SubmitClaimInput represents the input for declaring a contribution payment.
type SubmitClaimInput struct {
	GroupID     uuid.UUID
	UserID      string
	AmountCents int64
	Reference   string
	Description string
}

// SubmitClaimOutput represents the output of submitting a claim.
type SubmitClaimOutput struct {
	Claim *entity.Transaction
}

// SubmitClaimUseCase handles contribution claim submission.
type SubmitClaimUseCase struct {
	uow   adapter.UnitOfWork
	clock adapter.Clock
	sink  adapter.EventSink
}

// NewSubmitClaimUseCase creates a new SubmitClaimUseCase instance.
func NewSubmitClaimUseCase(uow adapter.UnitOfWork, clock adapter.Clock, sink adapter.EventSink) *SubmitClaimUseCase {
	return &SubmitClaimUseCase{
		uow:   uow,
		clock: clock,
		sink:  sink,
	}
}

// Execute records a pending claim. Identical claims are not de-duplicated; each one is
// reviewed on its own.
func (uc *SubmitClaimUseCase) Execute(ctx context.Context, input SubmitClaimInput) (*SubmitClaimOutput, error) {
	if err := guard.Caller(input.UserID); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	claim, err := entity.NewContributionClaim(input.GroupID, input.UserID, input.AmountCents, input.Reference, input.Description, now)
	if err != nil {
		return nil, err
	}

	var group *entity.Group
	var member *entity.Member
	var admins []entity.Recipient
	err = uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		admins = nil

		g, err := guard.Group(ctx, repos, input.GroupID)
		if err != nil {
			return err
		}
		m, err := guard.Member(ctx, repos, g.ID, input.UserID)
		if err != nil {
			return err
		}
		if err := guard.Unlocked(m, now); err != nil {
			return err
		}
		if err := guard.Active(g); err != nil {
			return err
		}

		if err := repos.Transactions.Create(ctx, claim); err != nil {
			return fmt.Errorf("failed to create claim: %w", err)
		}

		members, err := repos.Members.ListByGroup(ctx, g.ID)
		if err != nil {
			return err
		}
		for _, other := range members {
			if other.IsAdmin() && other.UserID != m.UserID {
				admins = append(admins, other.Notify())
			}
		}

		group, member = g, m
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.sink.Emit(ctx, entity.NewEvent(entity.EventClaimSubmitted, group, input.UserID,
		member.DisplayName+" submitted a contribution of "+valueobject.FormatCents(claim.AmountCents), now).
		With("transaction_id", claim.ID.String()).
		With("user_id", claim.UserID).
		With("amount_cents", claim.AmountCents).
		With("reference", claim.Reference).
		To(admins...))

	return &SubmitClaimOutput{
		Claim: claim,
	}, nil
}
