package model

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/domain/entity"
)

// EmailQueueModel represents the email_queue table. Each row is one recipient of
// one domain event.
type EmailQueueModel struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey"`
	EventID         uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_email_queue_event_recipient"`
	GroupID         *uuid.UUID   `gorm:"type:uuid;index"`
	TemplateType    string       `gorm:"type:varchar(50);not null"`
	RecipientUserID string       `gorm:"type:varchar(128)"`
	RecipientEmail  string       `gorm:"type:varchar(255);not null;uniqueIndex:idx_email_queue_event_recipient;index"`
	RecipientName   string       `gorm:"type:varchar(255)"`
	Subject         string       `gorm:"type:varchar(500);not null"`
	TemplateData    string       `gorm:"type:text;not null"`
	Status          string       `gorm:"type:varchar(20);not null;default:'pending';index:idx_email_queue_due,priority:1"`
	Attempts        int          `gorm:"not null;default:0"`
	MaxAttempts     int          `gorm:"not null"`
	LastError       string       `gorm:"type:text"`
	ProviderID      string       `gorm:"type:varchar(100)"`
	CreatedAt       time.Time    `gorm:"not null"`
	ScheduledAt     time.Time    `gorm:"not null;index:idx_email_queue_due,priority:2"`
	FinishedAt      sql.NullTime
}

// TableName returns the table name for the EmailQueueModel.
func (EmailQueueModel) TableName() string {
	return "email_queue"
}

// ToEntity converts the row to a domain EmailJob.
func (m *EmailQueueModel) ToEntity() *entity.EmailJob {
	data := map[string]interface{}{}
	if m.TemplateData != "" {
		if err := json.Unmarshal([]byte(m.TemplateData), &data); err != nil {
			slog.Warn("Failed to unmarshal email template data", "error", err, "id", m.ID)
		}
	}

	job := &entity.EmailJob{
		ID:       m.ID,
		Source:   entity.EmailSource{EventID: m.EventID, GroupID: m.GroupID},
		Template: entity.EmailTemplateType(m.TemplateType),
		Recipient: entity.Recipient{
			UserID: m.RecipientUserID,
			Name:   m.RecipientName,
			Email:  m.RecipientEmail,
		},
		Subject:     m.Subject,
		Data:        data,
		Status:      entity.EmailStatus(m.Status),
		Attempts:    m.Attempts,
		MaxAttempts: m.MaxAttempts,
		LastError:   m.LastError,
		ProviderID:  m.ProviderID,
		CreatedAt:   m.CreatedAt,
		ScheduledAt: m.ScheduledAt,
	}
	if m.FinishedAt.Valid {
		finished := m.FinishedAt.Time
		job.FinishedAt = &finished
	}
	return job
}

// EmailQueueModelFromEntity maps a domain EmailJob to its row.
func EmailQueueModelFromEntity(job *entity.EmailJob) *EmailQueueModel {
	data, err := json.Marshal(job.Data)
	if err != nil {
		slog.Error("Failed to marshal email template data", "error", err, "job_id", job.ID)
		data = []byte("{}")
	}

	var finishedAt sql.NullTime
	if job.FinishedAt != nil {
		finishedAt = sql.NullTime{Time: *job.FinishedAt, Valid: true}
	}

	return &EmailQueueModel{
		ID:              job.ID,
		EventID:         job.Source.EventID,
		GroupID:         job.Source.GroupID,
		TemplateType:    string(job.Template),
		RecipientUserID: job.Recipient.UserID,
		RecipientEmail:  job.Recipient.Email,
		RecipientName:   job.Recipient.Name,
		Subject:         job.Subject,
		TemplateData:    string(data),
		Status:          string(job.Status),
		Attempts:        job.Attempts,
		MaxAttempts:     job.MaxAttempts,
		LastError:       job.LastError,
		ProviderID:      job.ProviderID,
		CreatedAt:       job.CreatedAt,
		ScheduledAt:     job.ScheduledAt,
		FinishedAt:      finishedAt,
	}
}
