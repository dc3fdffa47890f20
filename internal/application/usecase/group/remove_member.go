package group

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
)

// RemoveMemberInput represents the input for removing a member.
type RemoveMemberInput struct {
	GroupID     uuid.UUID
	UserID      string
	RequesterID string
}

// RemoveMemberOutput represents the output of removing a member.
type RemoveMemberOutput struct {
	Group   *entity.Group
	Removed *entity.Member
}

// RemoveMemberUseCase handles removing members from a group.
type RemoveMemberUseCase struct {
	uow   adapter.UnitOfWork
	clock adapter.Clock
	sink  adapter.EventSink
}

// NewRemoveMemberUseCase creates a new RemoveMemberUseCase instance.
func NewRemoveMemberUseCase(uow adapter.UnitOfWork, clock adapter.Clock, sink adapter.EventSink) *RemoveMemberUseCase {
	return &RemoveMemberUseCase{
		uow:   uow,
		clock: clock,
		sink:  sink,
	}
}

// Execute performs the member removal. A remaining contribution balance does not block
// it; the ledger summary then reports the divergence.
func (uc *RemoveMemberUseCase) Execute(ctx context.Context, input RemoveMemberInput) (*RemoveMemberOutput, error) {
	if err := guard.Caller(input.RequesterID); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	var out *RemoveMemberOutput
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		group, err := guard.Group(ctx, repos, input.GroupID)
		if err != nil {
			return err
		}
		if _, err := guard.Admin(ctx, repos, group.ID, input.RequesterID); err != nil {
			return err
		}

		// Cannot remove self via this endpoint (use Leave instead)
		if input.UserID == input.RequesterID {
			return domainerror.NewGroupError(
				domainerror.ErrCodeCannotRemoveSelf,
				"use the leave endpoint to remove yourself",
				domainerror.ErrCannotRemoveSelf,
			)
		}
		if group.IsOwner(input.UserID) {
			return domainerror.NewGroupError(
				domainerror.ErrCodeCannotRemoveOwner,
				"the group owner cannot be removed",
				domainerror.ErrCannotRemoveOwner,
			)
		}

		target, err := guard.Target(ctx, repos, group.ID, input.UserID)
		if err != nil {
			return err
		}
		if err := detach(ctx, repos, group, target, now); err != nil {
			return err
		}

		out = &RemoveMemberOutput{Group: group, Removed: target}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.sink.Emit(ctx, entity.NewEvent(entity.EventMemberRemoved, out.Group, input.RequesterID,
		out.Removed.DisplayName+" was removed from the group", now).
		With("user_id", out.Removed.UserID).
		With("balance_cents", out.Removed.ContributionBalanceCents).
		To(out.Removed.Notify()))
	return out, nil
}

// detach deletes the member row and drops the user from the member index and from
// pending rotation turns.
func detach(ctx context.Context, repos adapter.Repositories, group *entity.Group, member *entity.Member, now time.Time) error {
	if err := repos.Members.Delete(ctx, member); err != nil {
		return err
	}
	group.RemoveMember(member.UserID)
	group.RefreshNextPayoutDate(now)
	group.UpdatedAt = now
	return repos.Groups.Update(ctx, group)
}
