// Package payout maintains the rotation of a group: who is paid out when, and which
// turns are done.
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

// ScheduleOutput is the rotation after a change.
type ScheduleOutput struct {
	GroupID        uuid.UUID
	Schedule       []entity.PayoutEntry
	Next           *entity.PayoutEntry
	NextPayoutDate *time.Time
}

func outputFor(group *entity.Group) *ScheduleOutput {
	out := &ScheduleOutput{
		GroupID:        group.ID,
		Schedule:       group.PayoutSchedule,
		NextPayoutDate: group.NextPayoutDate,
	}
	if idx := entity.NextPendingIndex(group.PayoutSchedule); idx >= 0 {
		entry := group.PayoutSchedule[idx]
		out.Next = &entry
	}
	return out
}

// adminGroup loads a group the actor administers.
func adminGroup(ctx context.Context, repos adapter.Repositories, groupID uuid.UUID, actorID string) (*entity.Group, error) {
	group, err := guard.Group(ctx, repos, groupID)
	if err != nil {
		return nil, err
	}
	if _, err := guard.Admin(ctx, repos, group.ID, actorID); err != nil {
		return nil, err
	}
	return group, nil
}

// entryFor returns the earliest pending entry of userID. A user whose every entry is
// paid gets EntryAlreadyPaid, a user without entries ScheduleEntryNotFound.
func entryFor(group *entity.Group, userID string) (int, error) {
	if idx := entity.PendingEntryIndexFor(group.PayoutSchedule, userID); idx >= 0 {
		return idx, nil
	}
	for _, e := range group.PayoutSchedule {
		if e.UserID == userID {
			return -1, domainerror.NewPayoutError(
				domainerror.ErrCodeEntryAlreadyPaid,
				"payout entry is already paid",
				domainerror.ErrEntryAlreadyPaid,
			)
		}
	}
	return -1, domainerror.NewPayoutError(
		domainerror.ErrCodeScheduleEntryNotFound,
		"no payout entry for this member",
		domainerror.ErrScheduleEntryNotFound,
	)
}
