package subscription

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

// ActivateFreeInput represents the input for the free tier activation.
type ActivateFreeInput struct {
	GroupID uuid.UUID
	UserID  string
}

// ActivateFreeUseCase activates a subscription immediately while no fee is charged.
type ActivateFreeUseCase struct {
	uow      adapter.UnitOfWork
	settings adapter.PlatformSettings
	clock    adapter.Clock
	sink     adapter.EventSink
	period   time.Duration
}

// NewActivateFreeUseCase creates a new ActivateFreeUseCase instance.
func NewActivateFreeUseCase(uow adapter.UnitOfWork, settings adapter.PlatformSettings, clock adapter.Clock, sink adapter.EventSink, period time.Duration) *ActivateFreeUseCase {
	if period <= 0 {
		period = entity.DefaultSubscriptionPeriod
	}
	return &ActivateFreeUseCase{
		uow:      uow,
		settings: settings,
		clock:    clock,
		sink:     sink,
		period:   period,
	}
}

// Execute activates the member from now. No fee request is created.
func (uc *ActivateFreeUseCase) Execute(ctx context.Context, input ActivateFreeInput) (*entity.Member, error) {
	if err := guard.Caller(input.UserID); err != nil {
		return nil, err
	}

	fee, err := uc.settings.SubscriptionFeeCents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read platform fee: %w", err)
	}
	if fee > 0 {
		return nil, domainerror.NewSubscriptionError(
			domainerror.ErrCodeFeeRequired,
			"a platform fee is configured, request activation instead",
			domainerror.ErrFeeRequired,
		)
	}

	now := uc.clock.Now()
	var group *entity.Group
	var member *entity.Member
	err = uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		g, err := guard.Group(ctx, repos, input.GroupID)
		if err != nil {
			return err
		}
		m, err := guard.Member(ctx, repos, g.ID, input.UserID)
		if err != nil {
			return err
		}
		m.ActivateSubscription(now, uc.period)
		if err := repos.Members.Update(ctx, m); err != nil {
			return err
		}
		group, member = g, m
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.sink.Emit(ctx, entity.NewEvent(entity.EventSubscriptionActivated, group, input.UserID,
		"Subscription of "+member.DisplayName+" activated on the free tier", now).
		With("user_id", member.UserID).
		With("ends_at", member.SubscriptionEndsAt).
		With("free", true))
	return member, nil
}
