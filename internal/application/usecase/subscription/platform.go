package subscription

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/domain/valueobject"
)

const (
	defaultFeeRequestLimit = 50
	maxFeeRequestLimit     = 200
)

// ListFeeRequestsInput represents the input for the operator review queue.
type ListFeeRequestsInput struct {
	OperatorID string
	Status     string
	GroupID    uuid.UUID
	UserID     string
	Limit      int
}

// ListFeeRequestsUseCase lists fee requests for platform operators.
type ListFeeRequestsUseCase struct {
	uow       adapter.UnitOfWork
	operators adapter.OperatorDirectory
}

// NewListFeeRequestsUseCase creates a new ListFeeRequestsUseCase instance.
func NewListFeeRequestsUseCase(uow adapter.UnitOfWork, operators adapter.OperatorDirectory) *ListFeeRequestsUseCase {
	return &ListFeeRequestsUseCase{
		uow:       uow,
		operators: operators,
	}
}

// Execute returns matching requests, oldest first. An empty status lists pending ones.
func (uc *ListFeeRequestsUseCase) Execute(ctx context.Context, input ListFeeRequestsInput) ([]*entity.FeeRequest, error) {
	if err := guard.Operator(uc.operators, input.OperatorID); err != nil {
		return nil, err
	}

	status := entity.FeeRequestPending
	if input.Status != "" {
		status = entity.FeeRequestStatus(input.Status)
		if !status.IsValid() {
			return nil, domainerror.NewSubscriptionError(
				domainerror.ErrCodeInvalidFeeRequestStatus,
				"unknown fee request status "+input.Status,
				domainerror.ErrInvalidFeeRequestStatus,
			)
		}
	}

	limit := input.Limit
	if limit < 1 {
		limit = defaultFeeRequestLimit
	}
	if limit > maxFeeRequestLimit {
		limit = maxFeeRequestLimit
	}

	var requests []*entity.FeeRequest
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		r, err := repos.FeeRequests.List(ctx, adapter.FeeRequestFilter{
			Status:  &status,
			GroupID: input.GroupID,
			UserID:  input.UserID,
		}, limit)
		if err != nil {
			return err
		}
		requests = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// SetPlatformFeeInput represents the input for changing the subscription fee.
type SetPlatformFeeInput struct {
	OperatorID string
	FeeCents   int64
}

// SetPlatformFeeUseCase changes the fee charged for future activation requests.
type SetPlatformFeeUseCase struct {
	settings  adapter.PlatformSettings
	operators adapter.OperatorDirectory
	clock     adapter.Clock
	sink      adapter.EventSink
}

// NewSetPlatformFeeUseCase creates a new SetPlatformFeeUseCase instance.
func NewSetPlatformFeeUseCase(settings adapter.PlatformSettings, operators adapter.OperatorDirectory, clock adapter.Clock, sink adapter.EventSink) *SetPlatformFeeUseCase {
	return &SetPlatformFeeUseCase{
		settings:  settings,
		operators: operators,
		clock:     clock,
		sink:      sink,
	}
}

// Execute stores the new fee. Pending requests keep the amount they were filed with.
func (uc *SetPlatformFeeUseCase) Execute(ctx context.Context, input SetPlatformFeeInput) error {
	if err := guard.Operator(uc.operators, input.OperatorID); err != nil {
		return err
	}
	if input.FeeCents < 0 {
		return domainerror.NewSubscriptionError(
			domainerror.ErrCodeInvalidFeeAmount,
			"platform fee cannot be negative",
			domainerror.ErrInvalidFeeAmount,
		)
	}

	previous, err := uc.settings.SubscriptionFeeCents(ctx)
	if err != nil {
		return fmt.Errorf("failed to read platform fee: %w", err)
	}
	if err := uc.settings.SetSubscriptionFeeCents(ctx, input.FeeCents); err != nil {
		return fmt.Errorf("failed to update platform fee: %w", err)
	}

	uc.sink.Emit(ctx, entity.NewEvent(entity.EventPlatformFeeChanged, nil, input.OperatorID,
		"Platform fee changed to "+valueobject.FormatCents(input.FeeCents), uc.clock.Now()).
		With("previous_cents", previous).
		With("fee_cents", input.FeeCents))
	return nil
}
