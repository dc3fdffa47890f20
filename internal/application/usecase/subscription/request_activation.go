package subscription

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/domain/valueobject"
)

// RequestActivationInput represents the input for a member declaring a fee payment.
type RequestActivationInput struct {
	GroupID   uuid.UUID
	UserID    string
	RefNumber string
}

// RequestActivationOutput represents the output of an activation request.
type RequestActivationOutput struct {
	Member     *entity.Member
	FeeRequest *entity.FeeRequest
}

// RequestActivationUseCase moves a member to pending approval and files one fee request.
type RequestActivationUseCase struct {
	uow      adapter.UnitOfWork
	settings adapter.PlatformSettings
	clock    adapter.Clock
	sink     adapter.EventSink
}

// NewRequestActivationUseCase creates a new RequestActivationUseCase instance.
func NewRequestActivationUseCase(uow adapter.UnitOfWork, settings adapter.PlatformSettings, clock adapter.Clock, sink adapter.EventSink) *RequestActivationUseCase {
	return &RequestActivationUseCase{
		uow:      uow,
		settings: settings,
		clock:    clock,
		sink:     sink,
	}
}

// Execute files the request. The member update and the fee request commit together.
func (uc *RequestActivationUseCase) Execute(ctx context.Context, input RequestActivationInput) (*RequestActivationOutput, error) {
	if err := guard.Caller(input.UserID); err != nil {
		return nil, err
	}
	refNumber := strings.TrimSpace(input.RefNumber)
	if refNumber == "" {
		return nil, domainerror.NewSubscriptionError(
			domainerror.ErrCodeRefNumberRequired,
			"payment reference number is required",
			domainerror.ErrRefNumberRequired,
		)
	}

	fee, err := uc.settings.SubscriptionFeeCents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read platform fee: %w", err)
	}
	if fee <= 0 {
		return nil, domainerror.NewSubscriptionError(
			domainerror.ErrCodeNoFeeConfigured,
			"no platform fee is configured, use free activation",
			domainerror.ErrNoFeeConfigured,
		)
	}

	now := uc.clock.Now()
	var group *entity.Group
	var member *entity.Member
	var request *entity.FeeRequest
	err = uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		g, err := guard.Group(ctx, repos, input.GroupID)
		if err != nil {
			return err
		}
		m, err := guard.Member(ctx, repos, g.ID, input.UserID)
		if err != nil {
			return err
		}

		switch status := m.EffectiveSubscriptionStatus(now); status {
		case entity.SubscriptionUnpaid, entity.SubscriptionExpired:
			m.SubscriptionStatus = entity.SubscriptionPendingApproval
		default:
			return invalidTransition(status, "request activation")
		}
		if err := repos.Members.Update(ctx, m); err != nil {
			return err
		}

		r := entity.NewFeeRequest(g.ID, m.UserID, fee, refNumber, now)
		if err := repos.FeeRequests.Create(ctx, r); err != nil {
			return fmt.Errorf("failed to create fee request: %w", err)
		}

		group, member, request = g, m, r
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.sink.Emit(ctx, entity.NewEvent(entity.EventSubscriptionRequested, group, input.UserID,
		member.DisplayName+" requested subscription activation ("+valueobject.FormatCents(fee)+")", now).
		With("fee_request_id", request.ID.String()).
		With("user_id", member.UserID).
		With("amount_cents", fee).
		With("ref_number", refNumber))

	return &RequestActivationOutput{
		Member:     member,
		FeeRequest: request,
	}, nil
}
