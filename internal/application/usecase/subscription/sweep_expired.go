package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/domain/entity"
)

// ExpiryObserver is told how many subscriptions a sweep expired.
type ExpiryObserver interface {
	ObserveExpired(n int)
}

// SweepExpiredOutput reports the result of one sweep.
type SweepExpiredOutput struct {
	Scanned int
	Expired int
	Failed  int
}

// SweepExpiredUseCase rewrites every stale active subscription to expired.
type SweepExpiredUseCase struct {
	uow       adapter.UnitOfWork
	clock     adapter.Clock
	sink      adapter.EventSink
	batchSize int
	observer  ExpiryObserver
}

// NewSweepExpiredUseCase creates a new SweepExpiredUseCase instance. observer may be nil.
func NewSweepExpiredUseCase(uow adapter.UnitOfWork, clock adapter.Clock, sink adapter.EventSink, batchSize int, observer ExpiryObserver) *SweepExpiredUseCase {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &SweepExpiredUseCase{
		uow:       uow,
		clock:     clock,
		sink:      sink,
		batchSize: batchSize,
		observer:  observer,
	}
}

// Execute corrects stale rows batch by batch. Each member is corrected in its own unit
// of work, so one failure does not hold back the rest.
func (uc *SweepExpiredUseCase) Execute(ctx context.Context) (*SweepExpiredOutput, error) {
	now := uc.clock.Now()
	out := &SweepExpiredOutput{}

	for {
		var candidates []*entity.Member
		err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
			stale, err := repos.Members.ListStaleActive(ctx, now, uc.batchSize)
			if err != nil {
				return err
			}
			candidates = stale
			return nil
		})
		if err != nil {
			return out, fmt.Errorf("failed to list stale subscriptions: %w", err)
		}

		progressed := 0
		for _, c := range candidates {
			out.Scanned++
			expired, err := expireMember(ctx, uc.uow, c.GroupID, c.UserID, now)
			if err != nil {
				out.Failed++
				slog.Error("Failed to expire subscription", "group_id", c.GroupID, "user_id", c.UserID, "error", err)
				continue
			}
			progressed++
			if expired != nil {
				out.Expired++
				uc.sink.Emit(ctx, expiredEvent(expired, now))
			}
		}

		if len(candidates) < uc.batchSize || progressed == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}
	}

	if uc.observer != nil {
		uc.observer.ObserveExpired(out.Expired)
	}
	if out.Expired > 0 || out.Failed > 0 {
		slog.Info("Subscription sweep finished", "scanned", out.Scanned, "expired", out.Expired, "failed", out.Failed)
	}
	return out, nil
}

// Run sweeps every interval until ctx is cancelled. It blocks.
func (uc *SweepExpiredUseCase) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		out, err := uc.Execute(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "subscription sweep failed", "error", err)
		} else if out.Expired > 0 || out.Failed > 0 {
			slog.InfoContext(ctx, "subscription sweep finished",
				"scanned", out.Scanned,
				"expired", out.Expired,
				"failed", out.Failed,
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
