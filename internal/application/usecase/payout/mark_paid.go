package payout

import (
	"context"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
)

// MarkPaidInput represents the input for closing a member's turn.
type MarkPaidInput struct {
	GroupID uuid.UUID
	UserID  string
	ActorID string
}

// MarkPaidUseCase flags a member's next pending turn as paid. It records metadata only;
// money moves through a confirmed payout.
type MarkPaidUseCase struct {
	uow   adapter.UnitOfWork
	clock adapter.Clock
	sink  adapter.EventSink
}

// NewMarkPaidUseCase creates a new MarkPaidUseCase instance.
func NewMarkPaidUseCase(uow adapter.UnitOfWork, clock adapter.Clock, sink adapter.EventSink) *MarkPaidUseCase {
	return &MarkPaidUseCase{
		uow:   uow,
		clock: clock,
		sink:  sink,
	}
}

// Execute marks the entry paid and recomputes the next payout date.
func (uc *MarkPaidUseCase) Execute(ctx context.Context, input MarkPaidInput) (*ScheduleOutput, error) {
	if err := guard.Caller(input.ActorID); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	var group *entity.Group
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		g, err := adminGroup(ctx, repos, input.GroupID, input.ActorID)
		if err != nil {
			return err
		}
		idx, err := entryFor(g, input.UserID)
		if err != nil {
			return err
		}

		g.PayoutSchedule[idx].Status = entity.PayoutStatusPaid
		g.PayoutSchedule[idx].PaidAt = &now
		g.RefreshNextPayoutDate(now)
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

	uc.sink.Emit(ctx, entity.NewEvent(entity.EventScheduleEntryPaid, group, input.ActorID, "Payout turn marked as paid", now).
		With("user_id", input.UserID))
	return outputFor(group), nil
}
