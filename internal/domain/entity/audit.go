package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuditLogEntry is one write-only row of a group's activity history.
type AuditLogEntry struct {
	ID          uuid.UUID
	GroupID     uuid.UUID
	Action      EventType
	Description string
	PerformedBy string
	Metadata    map[string]interface{}
	Timestamp   time.Time
}

// AuditLogEntryFromEvent derives the audit row for a committed event.
func AuditLogEntryFromEvent(event Event) *AuditLogEntry {
	return &AuditLogEntry{
		ID:          event.ID,
		GroupID:     event.GroupID,
		Action:      event.Type,
		Description: event.Description,
		PerformedBy: event.ActorID,
		Metadata:    event.Metadata,
		Timestamp:   event.OccurredAt,
	}
}
