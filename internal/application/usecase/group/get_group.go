package group

import (
	"context"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
)

// GetGroupInput represents the input for getting group details.
type GetGroupInput struct {
	GroupID uuid.UUID
	UserID  string
}

// GetGroupOutput represents the output of getting group details.
type GetGroupOutput struct {
	Group    *entity.Group
	Members  []*entity.Member
	UserRole entity.MemberRole
	// Subscriptions holds the effective subscription status of every member.
	Subscriptions map[string]entity.SubscriptionStatus
}

// GetGroupUseCase handles getting group details.
type GetGroupUseCase struct {
	uow   adapter.UnitOfWork
	clock adapter.Clock
}

// NewGetGroupUseCase creates a new GetGroupUseCase instance.
func NewGetGroupUseCase(uow adapter.UnitOfWork, clock adapter.Clock) *GetGroupUseCase {
	return &GetGroupUseCase{
		uow:   uow,
		clock: clock,
	}
}

// Execute performs the group retrieval from one snapshot.
func (uc *GetGroupUseCase) Execute(ctx context.Context, input GetGroupInput) (*GetGroupOutput, error) {
	if err := guard.Caller(input.UserID); err != nil {
		return nil, err
	}

	var out *GetGroupOutput
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		group, err := guard.Group(ctx, repos, input.GroupID)
		if err != nil {
			return err
		}
		member, err := guard.Member(ctx, repos, group.ID, input.UserID)
		if err != nil {
			return err
		}
		members, err := repos.Members.ListByGroup(ctx, group.ID)
		if err != nil {
			return err
		}
		out = &GetGroupOutput{
			Group:    group,
			Members:  members,
			UserRole: member.Role,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	out.Subscriptions = make(map[string]entity.SubscriptionStatus, len(out.Members))
	for _, m := range out.Members {
		out.Subscriptions[m.UserID] = m.EffectiveSubscriptionStatus(now)
	}
	return out, nil
}
