package entity

import (
	"time"

	"github.com/google/uuid"
)

// EmailStatus is the delivery state of a queued notification email.
type EmailStatus string

const (
	EmailStatusPending    EmailStatus = "pending"
	EmailStatusProcessing EmailStatus = "processing"
	EmailStatusSent       EmailStatus = "sent"
	EmailStatusFailed     EmailStatus = "failed"
)

// EmailTemplateType names the template a notification is rendered with.
type EmailTemplateType string

const (
	TemplateNotification          EmailTemplateType = "notification"
	TemplateMemberJoined          EmailTemplateType = "member_joined"
	TemplateClaimDecision         EmailTemplateType = "claim_decision"
	TemplatePayoutRecorded        EmailTemplateType = "payout_recorded"
	TemplateSubscriptionActivated EmailTemplateType = "subscription_activated"
)

const defaultEmailAttempts = 4

// emailBackoff is the wait before attempt n+1 after n failures.
var emailBackoff = []time.Duration{0, time.Minute, 5 * time.Minute, 30 * time.Minute}

// EmailSource identifies the domain event a notification was derived from.
// (EventID, recipient address) is unique, so replaying an event never queues twice.
type EmailSource struct {
	EventID uuid.UUID
	GroupID *uuid.UUID
}

// EmailJob is one notification email waiting for, or done with, delivery.
type EmailJob struct {
	ID          uuid.UUID
	Source      EmailSource
	Template    EmailTemplateType
	Recipient   Recipient
	Subject     string
	Data        map[string]interface{}
	Status      EmailStatus
	Attempts    int
	MaxAttempts int
	LastError   string
	ProviderID  string
	CreatedAt   time.Time
	ScheduledAt time.Time
	FinishedAt  *time.Time
}

// NewEmailJob queues a notification for immediate delivery. A zero EventID gets a
// fresh one, which makes the job unique on its own.
func NewEmailJob(source EmailSource, template EmailTemplateType, recipient Recipient, subject string, data map[string]interface{}, now time.Time) *EmailJob {
	if source.EventID == uuid.Nil {
		source.EventID = uuid.New()
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	return &EmailJob{
		ID:          uuid.New(),
		Source:      source,
		Template:    template,
		Recipient:   recipient,
		Subject:     subject,
		Data:        data,
		Status:      EmailStatusPending,
		MaxAttempts: defaultEmailAttempts,
		CreatedAt:   now,
		ScheduledAt: now,
	}
}

// MarkProcessing claims the job for one delivery attempt.
func (e *EmailJob) MarkProcessing() {
	e.Status = EmailStatusProcessing
}

// MarkSent records the provider message id.
func (e *EmailJob) MarkSent(providerID string, now time.Time) {
	e.Status = EmailStatusSent
	e.ProviderID = providerID
	e.LastError = ""
	e.FinishedAt = &now
}

// MarkFailed records a failed attempt. Permanent failures and exhausted jobs stop,
// the rest go back to pending after the backoff for their attempt count.
func (e *EmailJob) MarkFailed(err error, permanent bool, now time.Time) {
	e.Attempts++
	e.LastError = err.Error()

	if permanent || e.Attempts >= e.MaxAttempts {
		e.Status = EmailStatusFailed
		e.FinishedAt = &now
		return
	}
	e.Status = EmailStatusPending
	e.ScheduledAt = now.Add(emailBackoff[min(e.Attempts, len(emailBackoff)-1)])
}

// Done reports whether the job will not be attempted again.
func (e *EmailJob) Done() bool {
	return e.Status == EmailStatusSent || e.Status == EmailStatusFailed
}
