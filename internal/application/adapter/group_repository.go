// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/domain/entity"
)

// GroupRepository defines the interface for group persistence operations.
// Lookups return (nil, nil) when nothing matches.
type GroupRepository interface {
	// Create inserts a new group.
	Create(ctx context.Context, group *entity.Group) error

	// FindByID retrieves a group by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Group, error)

	// FindByInviteCode retrieves a group by its normalized invite code.
	FindByInviteCode(ctx context.Context, code string) (*entity.Group, error)

	// InviteCodeExists reports whether any group already uses code.
	InviteCodeExists(ctx context.Context, code string) (bool, error)

	// ListByMember retrieves every group userID belongs to, newest first.
	ListByMember(ctx context.Context, userID string) ([]*entity.GroupListItem, error)

	// Update writes the group if its stored version still equals group.Version and
	// bumps the version. A stale version yields domainerror.ErrConcurrentModification.
	Update(ctx context.Context, group *entity.Group) error
}

// MemberRepository defines the interface for group membership persistence.
type MemberRepository interface {
	// Create inserts a new member row.
	Create(ctx context.Context, member *entity.Member) error

	// Find retrieves the membership of userID in groupID.
	Find(ctx context.Context, groupID uuid.UUID, userID string) (*entity.Member, error)

	// ListByGroup retrieves all members of a group ordered by join time.
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*entity.Member, error)

	// Update writes the member under a version compare-and-swap.
	Update(ctx context.Context, member *entity.Member) error

	// Delete removes the member under a version compare-and-swap.
	Delete(ctx context.Context, member *entity.Member) error

	// SumBalances returns the sum of contribution balances in a group.
	SumBalances(ctx context.Context, groupID uuid.UUID) (int64, error)

	// ListStaleActive returns members stored as active whose period ended before now.
	ListStaleActive(ctx context.Context, now time.Time, limit int) ([]*entity.Member, error)
}
