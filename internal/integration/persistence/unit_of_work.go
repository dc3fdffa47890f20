package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/savings-circle/backend/internal/application/adapter"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
)

// RetryObserver is notified of each retried and each exhausted unit of work.
type RetryObserver interface {
	ObserveRetry()
	ObserveContention()
}

// unitOfWork implements adapter.UnitOfWork on gorm transactions.
type unitOfWork struct {
	db          *gorm.DB
	maxAttempts int
	backoff     time.Duration
	observer    RetryObserver
}

// UnitOfWorkOption configures a unit of work.
type UnitOfWorkOption func(*unitOfWork)

// WithMaxAttempts bounds how often a conflicting unit of work is re-run.
func WithMaxAttempts(n int) UnitOfWorkOption {
	return func(u *unitOfWork) {
		if n > 0 {
			u.maxAttempts = n
		}
	}
}

// WithBackoff sets the base delay between attempts.
func WithBackoff(d time.Duration) UnitOfWorkOption {
	return func(u *unitOfWork) {
		u.backoff = d
	}
}

// WithRetryObserver reports retries to o.
func WithRetryObserver(o RetryObserver) UnitOfWorkOption {
	return func(u *unitOfWork) {
		u.observer = o
	}
}

// NewUnitOfWork creates a unit of work bound to db.
func NewUnitOfWork(db *gorm.DB, opts ...UnitOfWorkOption) adapter.UnitOfWork {
	u := &unitOfWork{
		db:          db,
		maxAttempts: 5,
		backoff:     10 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Do runs fn inside one database transaction and re-runs it on write conflicts.
func (u *unitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos adapter.Repositories) error) error {
	var txOpts []*sql.TxOptions
	if u.db.Dialector.Name() == "postgres" {
		txOpts = append(txOpts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}

	var lastErr error
	for attempt := 1; attempt <= u.maxAttempts; attempt++ {
		err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(ctx, repositoriesFor(tx))
		}, txOpts...)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}

		lastErr = err
		if u.observer != nil {
			u.observer.ObserveRetry()
		}
		slog.Debug("Unit of work conflicted, retrying", "attempt", attempt, "error", err)

		if attempt < u.maxAttempts {
			if err := sleep(ctx, u.jitter(attempt)); err != nil {
				return err
			}
		}
	}

	if u.observer != nil {
		u.observer.ObserveContention()
	}
	slog.Warn("Unit of work gave up after repeated conflicts", "attempts", u.maxAttempts, "error", lastErr)
	return domainerror.NewStoreError(
		domainerror.ErrCodeStoreContention,
		"the resource is busy, please retry",
		lastErr,
	)
}

func (u *unitOfWork) jitter(attempt int) time.Duration {
	if u.backoff <= 0 {
		return 0
	}
	base := u.backoff * time.Duration(attempt)
	return base + time.Duration(rand.Int63n(int64(base)))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func repositoriesFor(tx *gorm.DB) adapter.Repositories {
	return adapter.Repositories{
		Groups:       NewGroupRepository(tx),
		Members:      NewMemberRepository(tx),
		Transactions: NewTransactionRepository(tx),
		FeeRequests:  NewFeeRequestRepository(tx),
	}
}

// isRetryable reports whether err is a lost race that a fresh attempt may win.
// Duplicate keys count only when a repository marked them as a racing insert.
func isRetryable(err error) bool {
	if errors.Is(err, domainerror.ErrConcurrentModification) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return true
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "sqlite_busy")
}

// isDuplicateKey reports whether err is a unique or primary key violation.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// racingInsert marks a duplicate key as a lost race, for rows whose key a
// concurrent writer can claim first: invite codes and memberships.
func racingInsert(err error) error {
	if err != nil && isDuplicateKey(err) {
		return fmt.Errorf("%w: %w", domainerror.ErrConcurrentModification, err)
	}
	return err
}
