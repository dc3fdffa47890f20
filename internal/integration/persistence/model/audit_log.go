package model

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/domain/entity"
)

// AuditLogModel represents the audit_log table.
type AuditLogModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	GroupID     uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_group_time,priority:1"`
	Action      string    `gorm:"type:varchar(64);not null"`
	Description string    `gorm:"type:text"`
	PerformedBy string    `gorm:"type:varchar(128)"`
	Metadata    string    `gorm:"type:text;not null"`
	Timestamp   time.Time `gorm:"not null;index:idx_audit_group_time,priority:2"`
}

// TableName returns the table name for the AuditLogModel.
func (AuditLogModel) TableName() string {
	return "audit_log"
}

// ToEntity converts an AuditLogModel to a domain AuditLogEntry.
func (m *AuditLogModel) ToEntity() *entity.AuditLogEntry {
	var metadata map[string]interface{}
	if m.Metadata != "" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			slog.Warn("Failed to unmarshal audit metadata", "error", err, "id", m.ID)
		}
	}
	if metadata == nil {
		metadata = make(map[string]interface{})
	}

	return &entity.AuditLogEntry{
		ID:          m.ID,
		GroupID:     m.GroupID,
		Action:      entity.EventType(m.Action),
		Description: m.Description,
		PerformedBy: m.PerformedBy,
		Metadata:    metadata,
		Timestamp:   m.Timestamp,
	}
}

// AuditLogFromEntity creates an AuditLogModel from a domain AuditLogEntry.
func AuditLogFromEntity(e *entity.AuditLogEntry) *AuditLogModel {
	metadataJSON, err := json.Marshal(e.Metadata)
	if err != nil || e.Metadata == nil {
		metadataJSON = []byte("{}")
	}

	return &AuditLogModel{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Action:      string(e.Action),
		Description: e.Description,
		PerformedBy: e.PerformedBy,
		Metadata:    string(metadataJSON),
		Timestamp:   e.Timestamp,
	}
}
