package email

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/integration/email/templates"
)

// Worker processes the email queue and sends emails.
type Worker struct {
	queue        adapter.EmailQueueRepository
	sender       adapter.EmailSender
	renderer     *templates.Renderer
	clock        adapter.Clock
	appBaseURL   string
	pollInterval time.Duration
	batchSize    int
	retention    time.Duration
	lastCleanup  time.Time
}

// WorkerConfig holds configuration for the email worker.
type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	AppBaseURL   string
	// Retention is how long sent jobs are kept before cleanup. Zero keeps them.
	Retention time.Duration
}

// DefaultWorkerConfig returns the default worker configuration.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval: 5 * time.Second,
		BatchSize:    10,
		Retention:    7 * 24 * time.Hour,
	}
}

// NewWorker creates a new email worker.
func NewWorker(queue adapter.EmailQueueRepository, sender adapter.EmailSender, renderer *templates.Renderer, clock adapter.Clock, config WorkerConfig) *Worker {
	return &Worker{
		queue:        queue,
		sender:       sender,
		renderer:     renderer,
		clock:        clock,
		appBaseURL:   config.AppBaseURL,
		pollInterval: config.PollInterval,
		batchSize:    config.BatchSize,
		retention:    config.Retention,
	}
}

// Start begins the worker loop. It blocks until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("Email worker started",
		"poll_interval", w.pollInterval,
		"batch_size", w.batchSize,
	)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	// Process immediately on start, then on ticker
	w.processBatch(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Email worker shutting down")
			return
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

// processBatch fetches and processes a batch of pending emails.
func (w *Worker) processBatch(ctx context.Context) {
	w.cleanup(ctx)

	jobs, err := w.queue.GetPendingJobs(ctx, w.clock.Now(), w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending email jobs", "error", err)
		return
	}

	if len(jobs) == 0 {
		return
	}

	slog.Debug("Processing email batch", "count", len(jobs))

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
			w.processJob(ctx, job)
		}
	}
}

// processJob makes one delivery attempt for job.
func (w *Worker) processJob(ctx context.Context, job *entity.EmailJob) {
	logger := slog.With(
		"job_id", job.ID,
		"event_id", job.Source.EventID,
		"template", job.Template,
		"recipient", job.Recipient.Email,
	)

	job.MarkProcessing()
	if err := w.queue.Update(ctx, job); err != nil {
		logger.Error("Failed to claim email job", "error", err)
		return
	}

	messageID, err := w.deliver(ctx, job)
	if err != nil {
		job.MarkFailed(err, isPermanent(err), w.clock.Now())
	} else {
		job.MarkSent(messageID, w.clock.Now())
	}
	if updateErr := w.queue.Update(ctx, job); updateErr != nil {
		logger.Error("Failed to record email attempt", "error", updateErr)
		return
	}

	switch job.Status {
	case entity.EmailStatusSent:
		logger.Info("Email sent", "message_id", messageID)
	case entity.EmailStatusFailed:
		logger.Warn("Email job gave up", "attempts", job.Attempts, "last_error", job.LastError)
	default:
		logger.Info("Email job rescheduled", "attempts", job.Attempts, "scheduled_at", job.ScheduledAt, "error", err)
	}
}

// deliver renders and sends the job, returning the provider message id.
func (w *Worker) deliver(ctx context.Context, job *entity.EmailJob) (string, error) {
	html, text, err := w.render(job)
	if err != nil {
		return "", err
	}

	result, err := w.sender.Send(ctx, adapter.SendEmailInput{
		To:       job.Recipient.Email,
		Name:     job.Recipient.Name,
		Subject:  job.Subject,
		HTML:     html,
		Text:     text,
		Category: string(job.Template),
	})
	if err != nil {
		return "", err
	}
	return result.MessageID, nil
}

// isPermanent reports whether retrying err cannot succeed: provider rejections and
// template problems.
func isPermanent(err error) bool {
	var emailErr *domainerror.EmailError
	return errors.As(err, &emailErr) && emailErr.IsPermanent()
}

func (w *Worker) render(job *entity.EmailJob) (html string, text string, err error) {
	switch job.Template {
	case entity.TemplateNotification, entity.TemplateMemberJoined, entity.TemplateClaimDecision,
		entity.TemplatePayoutRecorded, entity.TemplateSubscriptionActivated:
	default:
		return "", "", domainerror.NewEmailError(
			domainerror.ErrCodeInvalidTemplate,
			"unknown template type "+string(job.Template),
			domainerror.ErrInvalidTemplate,
		)
	}

	data := templates.NotificationData{
		RecipientName: job.Recipient.Name,
		GroupName:     getString(job.Data, "group_name"),
		Description:   getString(job.Data, "description"),
		Amount:        getString(job.Data, "amount"),
		Approved:      getBool(job.Data, "approved"),
		MembersCount:  getInt(job.Data, "members_count"),
		EndsAt:        getString(job.Data, "ends_at"),
		AppURL:        w.appBaseURL,
	}
	html, text, err = w.renderer.Render(string(job.Template), data)
	if err != nil {
		return "", "", domainerror.NewEmailError(domainerror.ErrCodeInvalidTemplate, "failed to render email", err)
	}
	return html, text, nil
}

func getString(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return s
}

func getBool(data map[string]interface{}, key string) bool {
	b, _ := data[key].(bool)
	return b
}

// getInt extracts an integer from a map. Values read back from JSON are float64.
func getInt(data map[string]interface{}, key string) int {
	switch v := data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// cleanup removes old sent jobs at most once per hour.
func (w *Worker) cleanup(ctx context.Context) {
	if w.retention <= 0 {
		return
	}
	now := w.clock.Now()
	if now.Sub(w.lastCleanup) < time.Hour {
		return
	}
	w.lastCleanup = now

	removed, err := w.queue.DeleteOldSentJobs(ctx, now.Add(-w.retention))
	if err != nil {
		slog.Warn("Failed to clean up sent email jobs", "error", err)
		return
	}
	if removed > 0 {
		slog.Info("Cleaned up sent email jobs", "count", removed)
	}
}

// ProcessNow processes all pending emails immediately (useful for testing).
func (w *Worker) ProcessNow(ctx context.Context) {
	w.processBatch(ctx)
}
