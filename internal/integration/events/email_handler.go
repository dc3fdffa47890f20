package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/domain/entity"
	"github.com/savings-circle/backend/internal/domain/valueobject"
)

// EmailHandler queues one notification email per addressed recipient.
type EmailHandler struct {
	emails adapter.EmailService
}

// NewEmailHandler creates a new EmailHandler.
func NewEmailHandler(emails adapter.EmailService) *EmailHandler {
	return &EmailHandler{emails: emails}
}

// Name implements Handler.
func (h *EmailHandler) Name() string {
	return "email"
}

// Handle queues the emails. Recipients without an address are skipped.
func (h *EmailHandler) Handle(ctx context.Context, event entity.Event) error {
	if len(event.Notify) == 0 {
		return nil
	}

	template, subject := templateFor(event)
	data := templateData(event)
	source := entity.EmailSource{EventID: event.ID}
	if event.GroupID != uuid.Nil {
		groupID := event.GroupID
		source.GroupID = &groupID
	}

	var errs []error
	for _, recipient := range event.Notify {
		if recipient.Email == "" {
			slog.Debug("Skipping notification without email address",
				"event_type", event.Type,
				"user_id", recipient.UserID,
			)
			continue
		}
		err := h.emails.QueueNotification(ctx, adapter.QueueNotificationInput{
			Source:    source,
			Template:  template,
			Recipient: recipient,
			Subject:   subject,
			Data:      data,
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func templateFor(event entity.Event) (entity.EmailTemplateType, string) {
	group := event.GroupName
	switch event.Type {
	case entity.EventMemberJoined:
		return entity.TemplateMemberJoined, "New member in " + group
	case entity.EventClaimApproved:
		return entity.TemplateClaimDecision, "Contribution approved - " + group
	case entity.EventClaimRejected:
		return entity.TemplateClaimDecision, "Contribution rejected - " + group
	case entity.EventPayoutRecorded:
		return entity.TemplatePayoutRecorded, "Payout recorded - " + group
	case entity.EventSubscriptionActivated:
		return entity.TemplateSubscriptionActivated, "Subscription active - " + group
	}
	if group == "" {
		return entity.TemplateNotification, "Savings Circle update"
	}
	return entity.TemplateNotification, "Update from " + group
}

// templateData flattens the event into JSON friendly template values.
func templateData(event entity.Event) map[string]interface{} {
	data := map[string]interface{}{
		"group_name":  event.GroupName,
		"description": event.Description,
	}
	if cents, ok := event.Metadata["amount_cents"].(int64); ok {
		data["amount"] = valueobject.FormatCents(cents)
	}
	if approved, ok := event.Metadata["approved"].(bool); ok {
		data["approved"] = approved
	}
	if count, ok := event.Metadata["members_count"].(int); ok {
		data["members_count"] = count
	}
	switch endsAt := event.Metadata["ends_at"].(type) {
	case *time.Time:
		if endsAt != nil {
			data["ends_at"] = endsAt.Format("2 Jan 2006")
		}
	case time.Time:
		data["ends_at"] = endsAt.Format("2 Jan 2006")
	}
	return data
}
