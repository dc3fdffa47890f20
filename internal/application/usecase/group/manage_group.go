package group

import (
	"context"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
)

// RegenerateInviteCodeInput represents the input for rotating a group's invite code.
type RegenerateInviteCodeInput struct {
	GroupID     uuid.UUID
	RequesterID string
}

// RegenerateInviteCodeUseCase replaces the invite code so the old one stops working.
type RegenerateInviteCodeUseCase struct {
	uow      adapter.UnitOfWork
	clock    adapter.Clock
	sink     adapter.EventSink
	generate InviteCodeGenerator
}

// NewRegenerateInviteCodeUseCase creates a new RegenerateInviteCodeUseCase instance.
func NewRegenerateInviteCodeUseCase(uow adapter.UnitOfWork, clock adapter.Clock, sink adapter.EventSink, generate InviteCodeGenerator) *RegenerateInviteCodeUseCase {
	return &RegenerateInviteCodeUseCase{
		uow:      uow,
		clock:    clock,
		sink:     sink,
		generate: orDefault(generate),
	}
}

// Execute allocates a fresh code. Admins only.
func (uc *RegenerateInviteCodeUseCase) Execute(ctx context.Context, input RegenerateInviteCodeInput) (*entity.Group, error) {
	if err := guard.Caller(input.RequesterID); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	var group *entity.Group
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		g, err := guard.Group(ctx, repos, input.GroupID)
		if err != nil {
			return err
		}
		if _, err := guard.Admin(ctx, repos, g.ID, input.RequesterID); err != nil {
			return err
		}
		code, err := allocateInviteCode(ctx, repos, uc.generate)
		if err != nil {
			return err
		}
		g.InviteCode = code
		g.UpdatedAt = now
		if err := repos.Groups.Update(ctx, g); err != nil {
			return err
		}
		group = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.sink.Emit(ctx, entity.NewEvent(entity.EventInviteCodeRegenerated, group, input.RequesterID, "Invite code regenerated", now))
	return group, nil
}

// UpdateGroupStatusInput represents the input for a platform operator changing a group's status.
type UpdateGroupStatusInput struct {
	GroupID    uuid.UUID
	Status     entity.GroupStatus
	OperatorID string
}

// UpdateGroupStatusUseCase suspends, archives or reactivates a group. Suspended and
// archived groups keep their data but refuse joins and money movements.
type UpdateGroupStatusUseCase struct {
	uow       adapter.UnitOfWork
	operators adapter.OperatorDirectory
	clock     adapter.Clock
	sink      adapter.EventSink
}

// NewUpdateGroupStatusUseCase creates a new UpdateGroupStatusUseCase instance.
func NewUpdateGroupStatusUseCase(uow adapter.UnitOfWork, operators adapter.OperatorDirectory, clock adapter.Clock, sink adapter.EventSink) *UpdateGroupStatusUseCase {
	return &UpdateGroupStatusUseCase{
		uow:       uow,
		operators: operators,
		clock:     clock,
		sink:      sink,
	}
}

// Execute applies the status.
func (uc *UpdateGroupStatusUseCase) Execute(ctx context.Context, input UpdateGroupStatusInput) (*entity.Group, error) {
	if err := guard.Operator(uc.operators, input.OperatorID); err != nil {
		return nil, err
	}
	if !input.Status.IsValid() {
		return nil, domainerror.NewGroupError(
			domainerror.ErrCodeInvalidGroupStatus,
			"status must be active, suspended or archived",
			domainerror.ErrInvalidGroupStatus,
		)
	}

	now := uc.clock.Now()
	var group *entity.Group
	var previous entity.GroupStatus
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		g, err := guard.Group(ctx, repos, input.GroupID)
		if err != nil {
			return err
		}
		previous = g.Status
		if g.Status != input.Status {
			g.Status = input.Status
			g.UpdatedAt = now
			if err := repos.Groups.Update(ctx, g); err != nil {
				return err
			}
		}
		group = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	if previous != group.Status {
		uc.sink.Emit(ctx, entity.NewEvent(entity.EventGroupStatusChanged, group, input.OperatorID,
			"Group is now "+string(group.Status), now).
			With("previous_status", string(previous)).
			With("status", string(group.Status)))
	}
	return group, nil
}
