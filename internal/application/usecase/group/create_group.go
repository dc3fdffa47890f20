// Package group contains the membership registry use cases: groups, invite codes and
// the member index kept consistent with member rows.
package group

import (
	"context"
	"fmt"
	"strings"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/domain/valueobject"
)

const (
	// MaxGroupNameLength is the maximum allowed length for group names.
	MaxGroupNameLength = 100

	// MaxDescriptionLength is the maximum allowed length for group descriptions.
	MaxDescriptionLength = 500

	// DefaultCurrency is used when no currency is given.
	DefaultCurrency = "USD"

	maxInviteCodeAttempts = 8
)

// InviteCodeGenerator produces candidate invite codes.
type InviteCodeGenerator func() (string, error)

// CreateGroupInput represents the input for group creation.
type CreateGroupInput struct {
	Owner                   entity.Principal
	Name                    string
	Description             string
	ContributionAmountCents int64
	Currency                string
}

// CreateGroupOutput represents the output of group creation.
type CreateGroupOutput struct {
	Group *entity.Group
	Owner *entity.Member
}

// CreateGroupUseCase handles group creation logic.
type CreateGroupUseCase struct {
	uow      adapter.UnitOfWork
	clock    adapter.Clock
	sink     adapter.EventSink
	generate InviteCodeGenerator
}

// NewCreateGroupUseCase creates a new CreateGroupUseCase instance. A nil generator uses
// valueobject.GenerateInviteCode.
func NewCreateGroupUseCase(uow adapter.UnitOfWork, clock adapter.Clock, sink adapter.EventSink, generate InviteCodeGenerator) *CreateGroupUseCase {
	return &CreateGroupUseCase{
		uow:      uow,
		clock:    clock,
		sink:     sink,
		generate: orDefault(generate),
	}
}

func orDefault(generate InviteCodeGenerator) InviteCodeGenerator {
	if generate == nil {
		return valueobject.GenerateInviteCode
	}
	return generate
}

// Execute creates the group and its owner membership in one unit of work.
func (uc *CreateGroupUseCase) Execute(ctx context.Context, input CreateGroupInput) (*CreateGroupOutput, error) {
	if err := guard.Caller(input.Owner.UserID); err != nil {
		return nil, err
	}

	// Validate name
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domainerror.NewGroupError(
			domainerror.ErrCodeGroupNameRequired,
			"group name is required",
			domainerror.ErrGroupNameRequired,
		)
	}
	if len(name) > MaxGroupNameLength {
		return nil, domainerror.NewGroupError(
			domainerror.ErrCodeGroupNameTooLong,
			fmt.Sprintf("group name must not exceed %d characters", MaxGroupNameLength),
			domainerror.ErrGroupNameTooLong,
		)
	}
	description := strings.TrimSpace(input.Description)
	if len(description) > MaxDescriptionLength {
		return nil, domainerror.NewGroupError(
			domainerror.ErrCodeDescriptionTooLong,
			fmt.Sprintf("description must not exceed %d characters", MaxDescriptionLength),
			domainerror.ErrDescriptionTooLong,
		)
	}
	if input.ContributionAmountCents < 0 {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeInvalidAmount,
			"contribution amount cannot be negative",
			domainerror.ErrInvalidAmount,
		)
	}

	// Validate currency
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	if !valueobject.IsValidCurrency(currency) {
		return nil, domainerror.NewGroupError(
			domainerror.ErrCodeInvalidCurrency,
			"currency must be a three letter code",
			domainerror.ErrInvalidCurrency,
		)
	}

	now := uc.clock.Now()
	var out *CreateGroupOutput
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		code, err := allocateInviteCode(ctx, repos, uc.generate)
		if err != nil {
			return err
		}

		group := entity.NewGroup(name, description, input.Owner.UserID, input.ContributionAmountCents, currency, code, now)
		group.AddMember(input.Owner.UserID)
		if err := repos.Groups.Create(ctx, group); err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}

		owner := entity.NewMember(group.ID, input.Owner, entity.MemberRoleAdmin, now)
		if err := repos.Members.Create(ctx, owner); err != nil {
			return fmt.Errorf("failed to add owner as member: %w", err)
		}

		out = &CreateGroupOutput{Group: group, Owner: owner}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.sink.Emit(ctx, entity.NewEvent(entity.EventGroupCreated, out.Group, input.Owner.UserID,
		out.Owner.DisplayName+" created the group", now).
		With("invite_code", out.Group.InviteCode).
		With("currency", out.Group.Currency))
	return out, nil
}

// allocateInviteCode draws codes until one is unused. The unique index still guards
// against a racing creator; the unit of work re-runs on that violation.
func allocateInviteCode(ctx context.Context, repos adapter.Repositories, generate InviteCodeGenerator) (string, error) {
	for i := 0; i < maxInviteCodeAttempts; i++ {
		code, err := generate()
		if err != nil {
			return "", err
		}
		code = valueobject.NormalizeInviteCode(code)
		exists, err := repos.Groups.InviteCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check invite code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", domainerror.NewGroupError(
		domainerror.ErrCodeInviteCodeExhausted,
		"could not allocate a unique invite code, please retry",
		domainerror.ErrInviteCodeExhausted,
	)
}
