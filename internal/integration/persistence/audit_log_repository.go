package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/domain/entity"
	"github.com/savings-circle/backend/internal/integration/persistence/model"
)

// auditLogRepository implements the adapter.AuditLogRepository interface.
type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository instance.
func NewAuditLogRepository(db *gorm.DB) adapter.AuditLogRepository {
	return &auditLogRepository{
		db: db,
	}
}

// Create appends an entry, ignoring a re-delivered ID.
func (r *auditLogRepository) Create(ctx context.Context, entry *entity.AuditLogEntry) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model.AuditLogFromEntity(entry))
	return result.Error
}

// ListByGroup returns the latest entries of a group, newest first.
func (r *auditLogRepository) ListByGroup(ctx context.Context, groupID uuid.UUID, limit int) ([]*entity.AuditLogEntry, error) {
	var models []model.AuditLogModel
	result := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	entries := make([]*entity.AuditLogEntry, len(models))
	for i := range models {
		entries[i] = models[i].ToEntity()
	}
	return entries, nil
}
