package payout

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
)

// NextPayoutInput represents the input for the next turn lookup.
type NextPayoutInput struct {
	GroupID     uuid.UUID
	RequesterID string
}

// NextPayoutOutput is the next pending turn of the rotation.
type NextPayoutOutput struct {
	Entry          entity.PayoutEntry
	Position       int
	NextPayoutDate *time.Time
}

// NextPayoutUseCase returns the pending entry with the earliest date.
type NextPayoutUseCase struct {
	uow adapter.UnitOfWork
}

// NewNextPayoutUseCase creates a new NextPayoutUseCase instance.
func NewNextPayoutUseCase(uow adapter.UnitOfWork) *NextPayoutUseCase {
	return &NextPayoutUseCase{
		uow: uow,
	}
}

// Execute picks the earliest pending date; ties go to the entry earlier in the list.
func (uc *NextPayoutUseCase) Execute(ctx context.Context, input NextPayoutInput) (*NextPayoutOutput, error) {
	if err := guard.Caller(input.RequesterID); err != nil {
		return nil, err
	}

	var group *entity.Group
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		g, err := guard.Group(ctx, repos, input.GroupID)
		if err != nil {
			return err
		}
		if _, err := guard.Member(ctx, repos, g.ID, input.RequesterID); err != nil {
			return err
		}
		group = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	idx := entity.NextPendingIndex(group.PayoutSchedule)
	if idx < 0 {
		return nil, domainerror.NewPayoutError(
			domainerror.ErrCodeNoPendingPayout,
			"no pending payout in the schedule",
			domainerror.ErrNoPendingPayout,
		)
	}
	return &NextPayoutOutput{
		Entry:          group.PayoutSchedule[idx],
		Position:       idx,
		NextPayoutDate: group.NextPayoutDate,
	}, nil
}
