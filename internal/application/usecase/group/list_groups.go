package group

import (
	"context"
	"fmt"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
)

// ListGroupsInput represents the input for listing the caller's groups.
type ListGroupsInput struct {
	UserID string
}

// ListGroupsUseCase handles listing groups for a user.
type ListGroupsUseCase struct {
	groupRepo adapter.GroupRepository
}

// NewListGroupsUseCase creates a new ListGroupsUseCase instance.
func NewListGroupsUseCase(groupRepo adapter.GroupRepository) *ListGroupsUseCase {
	return &ListGroupsUseCase{
		groupRepo: groupRepo,
	}
}

// Execute returns every group the user belongs to, newest first.
func (uc *ListGroupsUseCase) Execute(ctx context.Context, input ListGroupsInput) ([]*entity.GroupListItem, error) {
	if err := guard.Caller(input.UserID); err != nil {
		return nil, err
	}

	groups, err := uc.groupRepo.ListByMember(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}
