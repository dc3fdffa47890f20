package group

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// ListActivityInput represents the input for reading a group's audit history.
type ListActivityInput struct {
	GroupID uuid.UUID
	UserID  string
	Limit   int
}

// ListActivityUseCase returns the latest audit entries of a group to its members.
type ListActivityUseCase struct {
	uow   adapter.UnitOfWork
	audit adapter.AuditLogRepository
}

// NewListActivityUseCase creates a new ListActivityUseCase instance.
func NewListActivityUseCase(uow adapter.UnitOfWork, audit adapter.AuditLogRepository) *ListActivityUseCase {
	return &ListActivityUseCase{
		uow:   uow,
		audit: audit,
	}
}

// Execute returns entries newest first.
func (uc *ListActivityUseCase) Execute(ctx context.Context, input ListActivityInput) ([]*entity.AuditLogEntry, error) {
	if err := guard.Caller(input.UserID); err != nil {
		return nil, err
	}

	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		if _, err := guard.Group(ctx, repos, input.GroupID); err != nil {
			return err
		}
		_, err := guard.Member(ctx, repos, input.GroupID, input.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit < 1 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	entries, err := uc.audit.ListByGroup(ctx, input.GroupID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, nil
}
