// Package email queues notification emails and delivers them through Resend.
package email

import (
	"context"
	"log/slog"
	"strings"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
)

// Service turns notifications into queued email jobs.
type Service struct {
	queue adapter.EmailQueueRepository
	clock adapter.Clock
}

// NewService creates a new email service.
func NewService(queue adapter.EmailQueueRepository, clock adapter.Clock) *Service {
	return &Service{
		queue: queue,
		clock: clock,
	}
}

// QueueNotification queues one templated email. Recipients without an email address
// are rejected; a notification already queued for the same event is not queued again.
func (s *Service) QueueNotification(ctx context.Context, input adapter.QueueNotificationInput) error {
	recipient := input.Recipient
	recipient.Email = strings.ToLower(strings.TrimSpace(recipient.Email))
	if recipient.Email == "" {
		return domainerror.NewEmailError(
			domainerror.ErrCodeMissingRecipient,
			"recipient "+recipient.UserID+" has no email address",
			domainerror.ErrMissingRecipient,
		)
	}

	job := entity.NewEmailJob(input.Source, input.Template, recipient, input.Subject, input.Data, s.clock.Now())

	created, err := s.queue.Create(ctx, job)
	if err != nil {
		return domainerror.NewEmailError(
			domainerror.ErrCodeEmailQueueFailed,
			"failed to queue notification email",
			err,
		)
	}
	if !created {
		slog.DebugContext(ctx, "Notification already queued",
			"event_id", job.Source.EventID,
			"recipient", recipient.Email,
		)
	}
	return nil
}

var _ adapter.EmailService = (*Service)(nil)
