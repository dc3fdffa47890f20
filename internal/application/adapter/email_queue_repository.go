package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/domain/entity"
)

// EmailQueueRepository stores notification emails until the worker delivers them.
type EmailQueueRepository interface {
	// Create queues a job and reports whether it was new. Jobs are unique per
	// source event and recipient address.
	Create(ctx context.Context, job *entity.EmailJob) (bool, error)

	// GetPendingJobs retrieves jobs scheduled at or before now, oldest first.
	GetPendingJobs(ctx context.Context, now time.Time, limit int) ([]*entity.EmailJob, error)

	Update(ctx context.Context, job *entity.EmailJob) error

	GetByRecipient(ctx context.Context, email string) ([]*entity.EmailJob, error)

	// ListByGroup returns the emails produced by a group's events, newest first.
	ListByGroup(ctx context.Context, groupID uuid.UUID, limit int) ([]*entity.EmailJob, error)

	// DeleteOldSentJobs removes sent jobs finished before cutoff.
	DeleteOldSentJobs(ctx context.Context, cutoff time.Time) (int64, error)
}
