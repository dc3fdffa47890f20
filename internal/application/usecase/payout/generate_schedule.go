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

// GenerateScheduleInput represents the input for laying out a new rotation.
type GenerateScheduleInput struct {
	GroupID     uuid.UUID
	MemberOrder []string
	StartDate   time.Time
	Frequency   string
	ActorID     string
}

// GenerateScheduleUseCase replaces a group's rotation wholesale.
type GenerateScheduleUseCase struct {
	uow   adapter.UnitOfWork
	clock adapter.Clock
	sink  adapter.EventSink
}

// NewGenerateScheduleUseCase creates a new GenerateScheduleUseCase instance.
func NewGenerateScheduleUseCase(uow adapter.UnitOfWork, clock adapter.Clock, sink adapter.EventSink) *GenerateScheduleUseCase {
	return &GenerateScheduleUseCase{
		uow:   uow,
		clock: clock,
		sink:  sink,
	}
}

// Execute assigns startDate + i*frequency to MemberOrder[i]. Every entry starts pending
// and any previous rotation, paid turns included, is discarded. Payouts still awaiting
// confirmation stay linked to their recipient's first turn in the new rotation.
func (uc *GenerateScheduleUseCase) Execute(ctx context.Context, input GenerateScheduleInput) (*ScheduleOutput, error) {
	if err := guard.Caller(input.ActorID); err != nil {
		return nil, err
	}
	frequency := entity.PayoutFrequency(input.Frequency)
	if !frequency.IsValid() {
		return nil, domainerror.NewPayoutError(
			domainerror.ErrCodeInvalidFrequency,
			"frequency must be weekly or monthly",
			domainerror.ErrInvalidFrequency,
		)
	}
	if input.StartDate.IsZero() {
		return nil, domainerror.NewPayoutError(
			domainerror.ErrCodeInvalidPayoutDate,
			"start date is required",
			domainerror.ErrInvalidPayoutDate,
		)
	}
	if len(input.MemberOrder) == 0 {
		return nil, domainerror.NewPayoutError(
			domainerror.ErrCodeEmptyMemberOrder,
			"member order cannot be empty",
			domainerror.ErrEmptyMemberOrder,
		)
	}
	seen := make(map[string]struct{}, len(input.MemberOrder))
	for _, userID := range input.MemberOrder {
		if _, dup := seen[userID]; dup {
			return nil, domainerror.NewPayoutError(
				domainerror.ErrCodeDuplicateScheduleMember,
				"member "+userID+" appears more than once",
				domainerror.ErrDuplicateScheduleMember,
			)
		}
		seen[userID] = struct{}{}
	}

	now := uc.clock.Now()
	var group *entity.Group
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		g, err := adminGroup(ctx, repos, input.GroupID, input.ActorID)
		if err != nil {
			return err
		}
		for _, userID := range input.MemberOrder {
			if !g.HasMember(userID) {
				return domainerror.NewPayoutError(
					domainerror.ErrCodeScheduleMemberNotInGroup,
					fmt.Sprintf("%s is not a member of this group", userID),
					domainerror.ErrScheduleMemberNotInGroup,
				)
			}
		}

		entries := entity.BuildSchedule(input.MemberOrder, input.StartDate, frequency)
		if err := carryUnconfirmedPayouts(ctx, repos, g, entries); err != nil {
			return err
		}
		g.SetSchedule(entries, now)
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

	uc.sink.Emit(ctx, entity.NewEvent(entity.EventScheduleGenerated, group, input.ActorID,
		fmt.Sprintf("Payout schedule generated for %d members", len(group.PayoutSchedule)), now).
		With("frequency", string(frequency)).
		With("start_date", entity.DateOnly(input.StartDate).Format(time.DateOnly)))
	return outputFor(group), nil
}

// carryUnconfirmedPayouts moves the link of every payout awaiting confirmation from the
// old rotation onto entries. A recipient left without a pending turn is an error.
func carryUnconfirmedPayouts(ctx context.Context, repos adapter.Repositories, group *entity.Group, entries []entity.PayoutEntry) error {
	for _, old := range group.PayoutSchedule {
		if old.TransactionID == nil || old.Status != entity.PayoutStatusPending {
			continue
		}
		tx, err := repos.Transactions.FindByID(ctx, group.ID, *old.TransactionID)
		if err != nil {
			return fmt.Errorf("failed to find linked payout: %w", err)
		}
		if tx == nil || tx.Status != entity.TransactionStatusPendingConfirmation {
			continue
		}

		idx := entity.UnlinkedPendingIndexFor(entries, old.UserID)
		if idx < 0 {
			return domainerror.NewPayoutError(
				domainerror.ErrCodePayoutAwaitingConfirmation,
				fmt.Sprintf("%s has a payout awaiting confirmation and needs a turn in the rotation", old.UserID),
				domainerror.ErrPayoutAwaitingConfirmation,
			)
		}
		id := tx.ID
		entries[idx].TransactionID = &id
	}
	return nil
}
