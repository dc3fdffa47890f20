package group

import (
	"context"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/domain/valueobject"
)

// LeaveGroupInput represents the input for leaving a group.
type LeaveGroupInput struct {
	GroupID uuid.UUID
	UserID  string
}

// LeaveGroupUseCase handles leaving a group.
type LeaveGroupUseCase struct {
	uow   adapter.UnitOfWork
	clock adapter.Clock
	sink  adapter.EventSink
}

// NewLeaveGroupUseCase creates a new LeaveGroupUseCase instance.
func NewLeaveGroupUseCase(uow adapter.UnitOfWork, clock adapter.Clock, sink adapter.EventSink) *LeaveGroupUseCase {
	return &LeaveGroupUseCase{
		uow:   uow,
		clock: clock,
		sink:  sink,
	}
}

// Execute performs the group leave operation.
func (uc *LeaveGroupUseCase) Execute(ctx context.Context, input LeaveGroupInput) error {
	if err := guard.Caller(input.UserID); err != nil {
		return err
	}

	now := uc.clock.Now()
	var group *entity.Group
	var member *entity.Member
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		g, err := guard.Group(ctx, repos, input.GroupID)
		if err != nil {
			return err
		}
		m, err := guard.Member(ctx, repos, g.ID, input.UserID)
		if err != nil {
			return err
		}

		// The owner keeps the group alive
		if g.IsOwner(m.UserID) {
			return domainerror.NewGroupError(
				domainerror.ErrCodeOwnerCannotLeave,
				"the group owner cannot leave the group",
				domainerror.ErrOwnerCannotLeave,
			)
		}
		if m.ContributionBalanceCents != 0 {
			return domainerror.NewGroupError(
				domainerror.ErrCodeMemberHasBalance,
				"you still hold a contribution balance of "+valueobject.FormatCents(m.ContributionBalanceCents),
				domainerror.ErrMemberHasBalance,
			)
		}

		if err := detach(ctx, repos, g, m, now); err != nil {
			return err
		}
		group, member = g, m
		return nil
	})
	if err != nil {
		return err
	}

	uc.sink.Emit(ctx, entity.NewEvent(entity.EventMemberLeft, group, member.UserID,
		member.DisplayName+" left the group", now).
		With("user_id", member.UserID))
	return nil
}
