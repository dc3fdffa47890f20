package group

import (
	"context"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
)

// ChangeMemberRoleInput represents the input for changing a member's role.
type ChangeMemberRoleInput struct {
	GroupID     uuid.UUID
	UserID      string
	NewRole     entity.MemberRole
	RequesterID string
}

// ChangeMemberRoleUseCase handles promoting and demoting members.
type ChangeMemberRoleUseCase struct {
	uow   adapter.UnitOfWork
	clock adapter.Clock
	sink  adapter.EventSink
}

// NewChangeMemberRoleUseCase creates a new ChangeMemberRoleUseCase instance.
func NewChangeMemberRoleUseCase(uow adapter.UnitOfWork, clock adapter.Clock, sink adapter.EventSink) *ChangeMemberRoleUseCase {
	return &ChangeMemberRoleUseCase{
		uow:   uow,
		clock: clock,
		sink:  sink,
	}
}

// Execute performs the role change.
func (uc *ChangeMemberRoleUseCase) Execute(ctx context.Context, input ChangeMemberRoleInput) (*entity.Member, error) {
	if err := guard.Caller(input.RequesterID); err != nil {
		return nil, err
	}

	// Validate new role
	if !input.NewRole.IsValid() {
		return nil, domainerror.NewGroupError(
			domainerror.ErrCodeInvalidMemberRole,
			"role must be admin or member",
			domainerror.ErrInvalidMemberRole,
		)
	}

	now := uc.clock.Now()
	var group *entity.Group
	var target *entity.Member
	changed := false
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		changed = false

		g, err := guard.Group(ctx, repos, input.GroupID)
		if err != nil {
			return err
		}
		if _, err := guard.Admin(ctx, repos, g.ID, input.RequesterID); err != nil {
			return err
		}
		if g.IsOwner(input.UserID) && input.NewRole != entity.MemberRoleAdmin {
			return domainerror.NewGroupError(
				domainerror.ErrCodeCannotDemoteOwner,
				"the group owner must remain an admin",
				domainerror.ErrCannotDemoteOwner,
			)
		}

		t, err := guard.Target(ctx, repos, g.ID, input.UserID)
		if err != nil {
			return err
		}
		if t.Role != input.NewRole {
			t.Role = input.NewRole
			if err := repos.Members.Update(ctx, t); err != nil {
				return err
			}
			changed = true
		}
		group, target = g, t
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		uc.sink.Emit(ctx, entity.NewEvent(entity.EventMemberRoleChanged, group, input.RequesterID,
			target.DisplayName+" is now "+string(target.Role), now).
			With("user_id", target.UserID).
			With("role", string(target.Role)).
			To(target.Notify()))
	}
	return target, nil
}
