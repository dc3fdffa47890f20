// Package guard holds the lookups and permission checks shared by the use cases.
// Every helper reads through the repositories of the current unit of work.
package guard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
)

// Caller rejects an empty caller identity.
func Caller(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return domainerror.MissingCaller()
	}
	return nil
}

// Group loads a group or fails with NotFound.
func Group(ctx context.Context, repos adapter.Repositories, groupID uuid.UUID) (*entity.Group, error) {
	group, err := repos.Groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to find group: %w", err)
	}
	if group == nil {
		return nil, domainerror.NewGroupError(
			domainerror.ErrCodeGroupNotFound,
			"group not found",
			domainerror.ErrGroupNotFound,
		)
	}
	return group, nil
}

// ActiveGroup loads a group and requires it to be active.
func ActiveGroup(ctx context.Context, repos adapter.Repositories, groupID uuid.UUID) (*entity.Group, error) {
	group, err := Group(ctx, repos, groupID)
	if err != nil {
		return nil, err
	}
	if err := Active(group); err != nil {
		return nil, err
	}
	return group, nil
}

// Active fails with FailedPrecondition when the group is suspended or archived.
func Active(group *entity.Group) error {
	if !group.IsActive() {
		return domainerror.NewGroupError(
			domainerror.ErrCodeGroupNotActive,
			"group is "+string(group.Status),
			domainerror.ErrGroupNotActive,
		)
	}
	return nil
}

// Member loads the membership of userID or fails with PermissionDenied.
func Member(ctx context.Context, repos adapter.Repositories, groupID uuid.UUID, userID string) (*entity.Member, error) {
	member, err := repos.Members.Find(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if member == nil {
		return nil, domainerror.NewGroupError(
			domainerror.ErrCodeNotGroupMember,
			"you are not a member of this group",
			domainerror.ErrNotGroupMember,
		)
	}
	return member, nil
}

// Admin loads the membership of userID and requires the admin role.
func Admin(ctx context.Context, repos adapter.Repositories, groupID uuid.UUID, userID string) (*entity.Member, error) {
	member, err := Member(ctx, repos, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !member.IsAdmin() {
		return nil, domainerror.NewGroupError(
			domainerror.ErrCodeNotGroupAdmin,
			"only group admins can perform this action",
			domainerror.ErrNotGroupAdmin,
		)
	}
	return member, nil
}

// Target loads a member that an action is applied to, failing with NotFound.
func Target(ctx context.Context, repos adapter.Repositories, groupID uuid.UUID, userID string) (*entity.Member, error) {
	member, err := repos.Members.Find(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if member == nil {
		return nil, domainerror.NewGroupError(
			domainerror.ErrCodeMemberNotFound,
			"member not found in this group",
			domainerror.ErrMemberNotFound,
		)
	}
	return member, nil
}

// Operator requires userID to be a platform operator.
func Operator(operators adapter.OperatorDirectory, userID string) error {
	if err := Caller(userID); err != nil {
		return err
	}
	if !operators.IsOperator(userID) {
		return domainerror.NewGroupError(
			domainerror.ErrCodeNotPlatformOperator,
			"only platform operators can perform this action",
			domainerror.ErrNotPlatformOperator,
		)
	}
	return nil
}

// Unlocked fails with FailedPrecondition when the member's subscription does not allow gated actions.
func Unlocked(member *entity.Member, now time.Time) error {
	if member.IsLocked(now) {
		return domainerror.NewSubscriptionError(
			domainerror.ErrCodeSubscriptionLocked,
			"an active subscription is required (status: "+string(member.EffectiveSubscriptionStatus(now))+")",
			domainerror.ErrSubscriptionLocked,
		)
	}
	return nil
}
