package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
)

// ReviewActivationInput represents the input for an operator reviewing a fee request.
type ReviewActivationInput struct {
	FeeRequestID uuid.UUID
	OperatorID   string
}

// ReviewActivationOutput represents the reviewed request and the member it applies to.
type ReviewActivationOutput struct {
	FeeRequest *entity.FeeRequest
	Member     *entity.Member
}

// ApproveActivationUseCase approves a fee request and starts a subscription period.
type ApproveActivationUseCase struct {
	uow       adapter.UnitOfWork
	operators adapter.OperatorDirectory
	clock     adapter.Clock
	sink      adapter.EventSink
	period    time.Duration
}

// NewApproveActivationUseCase creates a new ApproveActivationUseCase instance.
func NewApproveActivationUseCase(uow adapter.UnitOfWork, operators adapter.OperatorDirectory, clock adapter.Clock, sink adapter.EventSink, period time.Duration) *ApproveActivationUseCase {
	if period <= 0 {
		period = entity.DefaultSubscriptionPeriod
	}
	return &ApproveActivationUseCase{
		uow:       uow,
		operators: operators,
		clock:     clock,
		sink:      sink,
		period:    period,
	}
}

// Execute approves the request, activates the member and records the fee in the group ledger.
func (uc *ApproveActivationUseCase) Execute(ctx context.Context, input ReviewActivationInput) (*ReviewActivationOutput, error) {
	if err := guard.Operator(uc.operators, input.OperatorID); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	var group *entity.Group
	var out *ReviewActivationOutput
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		request, member, g, err := loadReview(ctx, repos, input.FeeRequestID)
		if err != nil {
			return err
		}
		if err := request.Approve(input.OperatorID, now); err != nil {
			return err
		}
		if member.SubscriptionStatus != entity.SubscriptionPendingApproval {
			return invalidTransition(member.SubscriptionStatus, "approve activation")
		}

		if err := repos.FeeRequests.UpdateStatus(ctx, request); err != nil {
			return err
		}
		member.ActivateSubscription(now, uc.period)
		if err := repos.Members.Update(ctx, member); err != nil {
			return err
		}
		record := entity.NewFeeRecord(g.ID, member.UserID, request.AmountCents, request.RefNumber, input.OperatorID, now)
		if err := repos.Transactions.Create(ctx, record); err != nil {
			return fmt.Errorf("failed to record fee: %w", err)
		}

		group = g
		out = &ReviewActivationOutput{FeeRequest: request, Member: member}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.sink.Emit(ctx, entity.NewEvent(entity.EventSubscriptionActivated, group, input.OperatorID,
		"Subscription of "+out.Member.DisplayName+" activated", now).
		With("fee_request_id", out.FeeRequest.ID.String()).
		With("user_id", out.Member.UserID).
		With("ends_at", out.Member.SubscriptionEndsAt).
		To(out.Member.Notify()))
	return out, nil
}

// RejectActivationUseCase rejects a fee request and returns the member to a locked state.
type RejectActivationUseCase struct {
	uow       adapter.UnitOfWork
	operators adapter.OperatorDirectory
	clock     adapter.Clock
	sink      adapter.EventSink
}

// NewRejectActivationUseCase creates a new RejectActivationUseCase instance.
func NewRejectActivationUseCase(uow adapter.UnitOfWork, operators adapter.OperatorDirectory, clock adapter.Clock, sink adapter.EventSink) *RejectActivationUseCase {
	return &RejectActivationUseCase{
		uow:       uow,
		operators: operators,
		clock:     clock,
		sink:      sink,
	}
}

// Execute rejects the request. A member who never had a period goes back to unpaid,
// anyone else to expired.
func (uc *RejectActivationUseCase) Execute(ctx context.Context, input ReviewActivationInput) (*ReviewActivationOutput, error) {
	if err := guard.Operator(uc.operators, input.OperatorID); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	var group *entity.Group
	var out *ReviewActivationOutput
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		request, member, g, err := loadReview(ctx, repos, input.FeeRequestID)
		if err != nil {
			return err
		}
		if err := request.Reject(input.OperatorID, now); err != nil {
			return err
		}
		if err := repos.FeeRequests.UpdateStatus(ctx, request); err != nil {
			return err
		}

		if member.SubscriptionStatus == entity.SubscriptionPendingApproval {
			member.SubscriptionStatus = entity.SubscriptionUnpaid
			if member.SubscriptionEndsAt != nil {
				member.SubscriptionStatus = entity.SubscriptionExpired
			}
			if err := repos.Members.Update(ctx, member); err != nil {
				return err
			}
		}

		group = g
		out = &ReviewActivationOutput{FeeRequest: request, Member: member}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.sink.Emit(ctx, entity.NewEvent(entity.EventSubscriptionRejected, group, input.OperatorID,
		"Subscription payment of "+out.Member.DisplayName+" was rejected", now).
		With("fee_request_id", out.FeeRequest.ID.String()).
		With("user_id", out.Member.UserID).
		To(out.Member.Notify()))
	return out, nil
}

func loadReview(ctx context.Context, repos adapter.Repositories, id uuid.UUID) (*entity.FeeRequest, *entity.Member, *entity.Group, error) {
	request, err := repos.FeeRequests.FindByID(ctx, id)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to find fee request: %w", err)
	}
	if request == nil {
		return nil, nil, nil, feeRequestNotFound()
	}
	group, err := guard.Group(ctx, repos, request.GroupID)
	if err != nil {
		return nil, nil, nil, err
	}
	member, err := guard.Target(ctx, repos, group.ID, request.UserID)
	if err != nil {
		return nil, nil, nil, err
	}
	return request, member, group, nil
}
