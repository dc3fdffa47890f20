package events

import (
	"context"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/domain/entity"
)

// AuditHandler appends every group scoped event to the audit log.
type AuditHandler struct {
	repo adapter.AuditLogRepository
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(repo adapter.AuditLogRepository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

// Name implements Handler.
func (h *AuditHandler) Name() string {
	return "audit"
}

// Handle writes the audit row. Platform wide events have no group and are skipped.
func (h *AuditHandler) Handle(ctx context.Context, event entity.Event) error {
	if event.GroupID == uuid.Nil {
		return nil
	}
	return h.repo.Create(ctx, entity.AuditLogEntryFromEvent(event))
}
