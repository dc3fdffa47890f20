package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/integration/email/templates"
	"github.com/savings-circle/backend/internal/integration/persistence"
	"github.com/savings-circle/backend/internal/testutil"
)

type workerEnv struct {
	queue  adapter.EmailQueueRepository
	sender *MockEmailSender
	clock  *testutil.Clock
	svc    *Service
	worker *Worker
}

func newWorkerEnv(t *testing.T) *workerEnv {
	t.Helper()

	renderer, err := templates.NewRenderer()
	require.NoError(t, err)

	queue := persistence.NewEmailQueueRepository(testutil.NewDB(t))
	clock := testutil.NewClock(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	sender := NewMockEmailSender()
	config := DefaultWorkerConfig()
	config.AppBaseURL = "https://circle.example"

	return &workerEnv{
		queue:  queue,
		sender: sender,
		clock:  clock,
		svc:    NewService(queue, clock),
		worker: NewWorker(queue, sender, renderer, clock, config),
	}
}

func (env *workerEnv) queueDecision(t *testing.T, email string) {
	t.Helper()
	err := env.svc.QueueNotification(context.Background(), adapter.QueueNotificationInput{
		Template:  entity.TemplateClaimDecision,
		Recipient: entity.Recipient{UserID: "u1", Name: "Ama", Email: email},
		Subject:   "Your contribution was approved",
		Data: map[string]interface{}{
			"group_name": "Market women",
			"amount":     "50.00",
			"approved":   true,
		},
	})
	require.NoError(t, err)
}

func TestWorker_SendsQueuedEmail(t *testing.T) {
	env := newWorkerEnv(t)
	env.queueDecision(t, "ama@example.com")

	env.worker.ProcessNow(context.Background())

	sent := env.sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ama@example.com", sent[0].To)
	assert.Equal(t, "claim_decision", sent[0].Category)
	assert.Contains(t, sent[0].HTML, "was approved")
	assert.Contains(t, sent[0].HTML, "https://circle.example")

	jobs, err := env.queue.GetByRecipient(context.Background(), "ama@example.com")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, entity.EmailStatusSent, jobs[0].Status)
	assert.Equal(t, "mock-1", jobs[0].ProviderID)

	// Nothing left to send
	env.worker.ProcessNow(context.Background())
	assert.Len(t, env.sender.Sent(), 1)
}

func TestWorker_RetriesTemporaryFailures(t *testing.T) {
	env := newWorkerEnv(t)
	env.queueDecision(t, "ama@example.com")
	env.sender.SetFailure(errors.New("503 upstream"), false)
	ctx := context.Background()

	env.worker.ProcessNow(ctx)
	jobs, err := env.queue.GetByRecipient(ctx, "ama@example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.EmailStatusPending, jobs[0].Status)
	assert.Equal(t, 1, jobs[0].Attempts)

	// Rescheduled a minute later
	env.sender.Reset()
	env.worker.ProcessNow(ctx)
	assert.Empty(t, env.sender.Sent())

	env.clock.Advance(2 * time.Minute)
	env.worker.ProcessNow(ctx)
	assert.Len(t, env.sender.Sent(), 1)
}

func TestWorker_PermanentFailureStops(t *testing.T) {
	env := newWorkerEnv(t)
	env.queueDecision(t, "ama@example.com")
	env.sender.SetFailure(errors.New("422 validation"), true)
	ctx := context.Background()

	env.worker.ProcessNow(ctx)

	jobs, err := env.queue.GetByRecipient(ctx, "ama@example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.EmailStatusFailed, jobs[0].Status)
	assert.Contains(t, jobs[0].LastError, "422 validation")
}

func TestService_RequiresAddress(t *testing.T) {
	env := newWorkerEnv(t)

	err := env.svc.QueueNotification(context.Background(), adapter.QueueNotificationInput{
		Template:  entity.TemplateNotification,
		Recipient: entity.Recipient{UserID: "u2"},
	})
	assert.ErrorIs(t, err, domainerror.ErrMissingRecipient)
}

func TestIsPermanentError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("401 unauthorized"), true},
		{errors.New("422 validation_error: invalid `to` field"), true},
		{errors.New("429 rate limit exceeded"), false},
		{errors.New("502 bad gateway"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isPermanentError(tt.err), "%v", tt.err)
	}
}
