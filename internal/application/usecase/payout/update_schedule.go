package payout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
)

// ReorderInput represents the input for moving one rotation slot.
type ReorderInput struct {
	GroupID   uuid.UUID
	FromIndex int
	ToIndex   int
	ActorID   string
}

// ReorderUseCase permutes the rotation. Dates stay attached to the moved entries.
type ReorderUseCase struct {
	uow   adapter.UnitOfWork
	clock adapter.Clock
	sink  adapter.EventSink
}

// NewReorderUseCase creates a new ReorderUseCase instance.
func NewReorderUseCase(uow adapter.UnitOfWork, clock adapter.Clock, sink adapter.EventSink) *ReorderUseCase {
	return &ReorderUseCase{
		uow:   uow,
		clock: clock,
		sink:  sink,
	}
}

// Execute moves the entry at FromIndex to ToIndex.
func (uc *ReorderUseCase) Execute(ctx context.Context, input ReorderInput) (*ScheduleOutput, error) {
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
		n := len(g.PayoutSchedule)
		if n == 0 {
			return domainerror.NewPayoutError(
				domainerror.ErrCodeScheduleEntryNotFound,
				"group has no payout schedule to reorder",
				domainerror.ErrScheduleEntryNotFound,
			)
		}
		if input.FromIndex < 0 || input.FromIndex >= n || input.ToIndex < 0 || input.ToIndex >= n {
			return domainerror.NewPayoutError(
				domainerror.ErrCodeInvalidScheduleIndex,
				fmt.Sprintf("indexes must be between 0 and %d", n-1),
				domainerror.ErrInvalidScheduleIndex,
			)
		}
		if input.FromIndex == input.ToIndex {
			group = g
			return nil
		}

		g.PayoutSchedule = entity.MoveEntry(g.PayoutSchedule, input.FromIndex, input.ToIndex)
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

	uc.sink.Emit(ctx, entity.NewEvent(entity.EventScheduleUpdated, group, input.ActorID, "Payout order changed", now).
		With("from_index", input.FromIndex).
		With("to_index", input.ToIndex))
	return outputFor(group), nil
}

// UpdateEntryDateInput represents the input for moving one payout date.
type UpdateEntryDateInput struct {
	GroupID    uuid.UUID
	UserID     string
	PayoutDate time.Time
	ActorID    string
}

// UpdateEntryDateUseCase edits the date of a member's next pending turn.
type UpdateEntryDateUseCase struct {
	uow   adapter.UnitOfWork
	clock adapter.Clock
	sink  adapter.EventSink
}

// NewUpdateEntryDateUseCase creates a new UpdateEntryDateUseCase instance.
func NewUpdateEntryDateUseCase(uow adapter.UnitOfWork, clock adapter.Clock, sink adapter.EventSink) *UpdateEntryDateUseCase {
	return &UpdateEntryDateUseCase{
		uow:   uow,
		clock: clock,
		sink:  sink,
	}
}

// Execute changes the date and recomputes the group's next payout date.
func (uc *UpdateEntryDateUseCase) Execute(ctx context.Context, input UpdateEntryDateInput) (*ScheduleOutput, error) {
	if err := guard.Caller(input.ActorID); err != nil {
		return nil, err
	}
	if input.PayoutDate.IsZero() {
		return nil, domainerror.NewPayoutError(
			domainerror.ErrCodeInvalidPayoutDate,
			"payout date is required",
			domainerror.ErrInvalidPayoutDate,
		)
	}

	now := uc.clock.Now()
	date := entity.DateOnly(input.PayoutDate)
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

		g.PayoutSchedule[idx].PayoutDate = date
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

	uc.sink.Emit(ctx, entity.NewEvent(entity.EventScheduleUpdated, group, input.ActorID, "Payout date changed", now).
		With("user_id", input.UserID).
		With("payout_date", date.Format(time.DateOnly)))
	return outputFor(group), nil
}
