package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
)

// GetStatusInput represents the input for reading a member's subscription.
type GetStatusInput struct {
	GroupID uuid.UUID
	UserID  string
}

// GetStatusOutput is the effective subscription state of a member.
type GetStatusOutput struct {
	Status   entity.SubscriptionStatus
	Locked   bool
	EndsAt   *time.Time
	FeeCents int64
}

// GetStatusUseCase reads a subscription and lazily corrects a stale stored status.
type GetStatusUseCase struct {
	uow      adapter.UnitOfWork
	settings adapter.PlatformSettings
	clock    adapter.Clock
	sink     adapter.EventSink
}

// NewGetStatusUseCase creates a new GetStatusUseCase instance.
func NewGetStatusUseCase(uow adapter.UnitOfWork, settings adapter.PlatformSettings, clock adapter.Clock, sink adapter.EventSink) *GetStatusUseCase {
	return &GetStatusUseCase{
		uow:      uow,
		settings: settings,
		clock:    clock,
		sink:     sink,
	}
}

// Execute returns the effective status. The correction of a stale row is best effort and
// never fails the read.
func (uc *GetStatusUseCase) Execute(ctx context.Context, input GetStatusInput) (*GetStatusOutput, error) {
	if err := guard.Caller(input.UserID); err != nil {
		return nil, err
	}

	fee, err := uc.settings.SubscriptionFeeCents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read platform fee: %w", err)
	}

	now := uc.clock.Now()
	var member *entity.Member
	err = uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		if _, err := guard.Group(ctx, repos, input.GroupID); err != nil {
			return err
		}
		m, err := guard.Member(ctx, repos, input.GroupID, input.UserID)
		if err != nil {
			return err
		}
		member = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	status := member.EffectiveSubscriptionStatus(now)
	if member.IsStale(now) {
		expired, err := expireMember(ctx, uc.uow, member.GroupID, member.UserID, now)
		if err != nil {
			slog.Warn("Failed to correct stale subscription",
				"group_id", member.GroupID,
				"user_id", member.UserID,
				"error", err,
			)
		} else if expired != nil {
			uc.sink.Emit(ctx, expiredEvent(expired, now))
		}
	}

	return &GetStatusOutput{
		Status:   status,
		Locked:   status != entity.SubscriptionActive,
		EndsAt:   member.SubscriptionEndsAt,
		FeeCents: fee,
	}, nil
}

type expiredMember struct {
	group  *entity.Group
	member *entity.Member
}

// expireMember rewrites a stale active row to expired. It returns nil when another
// writer already corrected or renewed it.
func expireMember(ctx context.Context, uow adapter.UnitOfWork, groupID uuid.UUID, userID string, now time.Time) (*expiredMember, error) {
	var out *expiredMember
	err := uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		out = nil
		m, err := repos.Members.Find(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if m == nil || !m.IsStale(now) {
			return nil
		}
		g, err := repos.Groups.FindByID(ctx, groupID)
		if err != nil {
			return err
		}

		m.SubscriptionStatus = entity.SubscriptionExpired
		if err := repos.Members.Update(ctx, m); err != nil {
			return err
		}
		out = &expiredMember{group: g, member: m}
		return nil
	})
	return out, err
}

func expiredEvent(e *expiredMember, now time.Time) entity.Event {
	return entity.NewEvent(entity.EventSubscriptionExpired, e.group, "", "Subscription of "+e.member.DisplayName+" expired", now).
		With("user_id", e.member.UserID).
		With("ended_at", e.member.SubscriptionEndsAt).
		To(e.member.Notify())
}
