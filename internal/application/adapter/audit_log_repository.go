package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/domain/entity"
)

// AuditLogRepository persists the write-only activity history of groups.
type AuditLogRepository interface {
	// Create appends an entry. Re-delivering an entry with the same ID is a no-op.
	Create(ctx context.Context, entry *entity.AuditLogEntry) error

	// ListByGroup returns the latest entries of a group, newest first.
	ListByGroup(ctx context.Context, groupID uuid.UUID, limit int) ([]*entity.AuditLogEntry, error)
}
