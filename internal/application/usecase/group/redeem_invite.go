package group

import (
	"context"
	"fmt"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/domain/valueobject"
)

// RedeemInviteInput represents the input for joining a group with an invite code.
type RedeemInviteInput struct {
	Code      string
	Principal entity.Principal
}

// RedeemInviteOutput represents the output of joining a group.
type RedeemInviteOutput struct {
	Group  *entity.Group
	Member *entity.Member
}

// RedeemInviteUseCase handles joining a group by invite code.
type RedeemInviteUseCase struct {
	uow   adapter.UnitOfWork
	clock adapter.Clock
	sink  adapter.EventSink
}

// NewRedeemInviteUseCase creates a new RedeemInviteUseCase instance.
func NewRedeemInviteUseCase(uow adapter.UnitOfWork, clock adapter.Clock, sink adapter.EventSink) *RedeemInviteUseCase {
	return &RedeemInviteUseCase{
		uow:   uow,
		clock: clock,
		sink:  sink,
	}
}

// Execute adds the caller to the group. The member row, the member index and the count
// change together or not at all.
func (uc *RedeemInviteUseCase) Execute(ctx context.Context, input RedeemInviteInput) (*RedeemInviteOutput, error) {
	if err := guard.Caller(input.Principal.UserID); err != nil {
		return nil, err
	}

	code := valueobject.NormalizeInviteCode(input.Code)
	if !valueobject.IsValidInviteCode(code) {
		return nil, domainerror.NewGroupError(
			domainerror.ErrCodeInvalidInviteCode,
			"invite code must be 6 letters or digits",
			domainerror.ErrInvalidInviteCode,
		)
	}

	now := uc.clock.Now()
	var out *RedeemInviteOutput
	var admins []entity.Recipient
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		admins = nil

		// Find the group by code
		group, err := repos.Groups.FindByInviteCode(ctx, code)
		if err != nil {
			return fmt.Errorf("failed to find group: %w", err)
		}
		if group == nil {
			return domainerror.NewGroupError(
				domainerror.ErrCodeInviteCodeNotFound,
				"no group matches this invite code",
				domainerror.ErrInviteCodeNotFound,
			)
		}
		if err := guard.Active(group); err != nil {
			return err
		}

		// Check if user is already a member
		existing, err := repos.Members.Find(ctx, group.ID, input.Principal.UserID)
		if err != nil {
			return fmt.Errorf("failed to check membership: %w", err)
		}
		if existing != nil || group.HasMember(input.Principal.UserID) {
			return domainerror.NewGroupError(
				domainerror.ErrCodeUserAlreadyMember,
				"you are already a member of this group",
				domainerror.ErrUserAlreadyMember,
			)
		}

		members, err := repos.Members.ListByGroup(ctx, group.ID)
		if err != nil {
			return err
		}
		for _, m := range members {
			if m.IsAdmin() {
				admins = append(admins, m.Notify())
			}
		}

		member := entity.NewMember(group.ID, input.Principal, entity.MemberRoleMember, now)
		if err := repos.Members.Create(ctx, member); err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}
		group.AddMember(member.UserID)
		group.UpdatedAt = now
		if err := repos.Groups.Update(ctx, group); err != nil {
			return err
		}

		out = &RedeemInviteOutput{Group: group, Member: member}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.sink.Emit(ctx, entity.NewEvent(entity.EventMemberJoined, out.Group, out.Member.UserID,
		out.Member.DisplayName+" joined the group", now).
		With("user_id", out.Member.UserID).
		With("members_count", out.Group.MembersCount).
		To(admins...))
	return out, nil
}
