package adapter

import (
	"context"

	"github.com/savings-circle/backend/internal/domain/entity"
)

// SendEmailInput is one rendered message handed to the provider.
type SendEmailInput struct {
	To      string
	Name    string
	Subject string
	HTML    string
	Text    string
	// Category tags the message at the provider, e.g. the template name.
	Category string
}

// SendEmailResult carries the provider's id for the accepted message.
type SendEmailResult struct {
	MessageID string
}

// EmailSender delivers rendered messages through an external provider.
type EmailSender interface {
	Send(ctx context.Context, input SendEmailInput) (*SendEmailResult, error)
}

// EmailService queues notification emails derived from domain events.
type EmailService interface {
	QueueNotification(ctx context.Context, input QueueNotificationInput) error
}

// QueueNotificationInput is one notification for one recipient.
type QueueNotificationInput struct {
	Source    entity.EmailSource
	Template  entity.EmailTemplateType
	Recipient entity.Recipient
	Subject   string
	Data      map[string]interface{}
}
