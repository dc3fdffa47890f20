package persistence

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
	"github.com/savings-circle/backend/internal/testutil"
)

var now = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

type countingObserver struct {
	retries    int
	contention int
}

func (o *countingObserver) ObserveRetry()      { o.retries++ }
func (o *countingObserver) ObserveContention() { o.contention++ }

func TestUnitOfWork_GivesUpAsUnavailable(t *testing.T) {
	db := testutil.NewDB(t)
	observer := &countingObserver{}
	uow := NewUnitOfWork(db, WithMaxAttempts(3), WithBackoff(0), WithRetryObserver(observer))

	calls := 0
	err := uow.Do(context.Background(), func(ctx context.Context, repos adapter.Repositories) error {
		calls++
		return domainerror.ErrConcurrentModification
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, domainerror.KindUnavailable, domainerror.KindOf(err))
	assert.ErrorIs(t, err, domainerror.ErrConcurrentModification)
	assert.Equal(t, 3, observer.retries)
	assert.Equal(t, 1, observer.contention)
}

func TestUnitOfWork_RetriesUntilSuccess(t *testing.T) {
	db := testutil.NewDB(t)
	uow := NewUnitOfWork(db, WithBackoff(0))

	calls := 0
	err := uow.Do(context.Background(), func(ctx context.Context, repos adapter.Repositories) error {
		calls++
		if calls < 3 {
			return domainerror.ErrConcurrentModification
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestUnitOfWork_DomainErrorsAreNotRetried(t *testing.T) {
	db := testutil.NewDB(t)
	uow := NewUnitOfWork(db, WithBackoff(0))
	boom := domainerror.NewLedgerError(domainerror.ErrCodeInvalidAmount, "bad", domainerror.ErrInvalidAmount)

	calls := 0
	err := uow.Do(context.Background(), func(ctx context.Context, repos adapter.Repositories) error {
		calls++
		return boom
	})

	assert.Same(t, boom, err)
	assert.Equal(t, 1, calls)
}

func TestUnitOfWork_RollsBackOnError(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixture(t, db, now)
	group := fx.Group("owner")
	uow := NewUnitOfWork(db, WithBackoff(0))

	err := uow.Do(context.Background(), func(ctx context.Context, repos adapter.Repositories) error {
		g, err := repos.Groups.FindByID(ctx, group.ID)
		if err != nil {
			return err
		}
		g.Credit(700)
		if err := repos.Groups.Update(ctx, g); err != nil {
			return err
		}
		return errors.New("abort")
	})

	require.EqualError(t, err, "abort")
	stored := fx.Reload(group.ID)
	assert.Equal(t, int64(0), stored.CurrentBalanceCents)
	assert.Equal(t, group.Version, stored.Version)
}

func TestUnitOfWork_DuplicateKeys(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixture(t, db, now)
	group := fx.Group("owner", "alice")
	uow := NewUnitOfWork(db, WithBackoff(0))
	ctx := context.Background()

	t.Run("membership race is retried", func(t *testing.T) {
		calls := 0
		err := uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
			calls++
			if calls == 1 {
				return repos.Members.Create(ctx, entity.NewMember(group.ID, testutil.Principal("alice"), entity.MemberRoleMember, now))
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("other unique violations surface at once", func(t *testing.T) {
		claim := fx.Claim(group.ID, "alice", 1500)

		calls := 0
		err := uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
			calls++
			return repos.Transactions.Create(ctx, claim)
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.NotErrorIs(t, err, domainerror.ErrConcurrentModification)
		assert.Equal(t, domainerror.KindInternal, domainerror.KindOf(err))
	})
}

func TestGroupRepository_UpdateRejectsStaleVersion(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixture(t, db, now)
	group := fx.Group("owner")
	repo := NewGroupRepository(db)
	ctx := context.Background()

	first, err := repo.FindByID(ctx, group.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, group.ID)
	require.NoError(t, err)

	first.Credit(100)
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, group.Version+1, first.Version)

	second.Credit(200)
	assert.ErrorIs(t, repo.Update(ctx, second), domainerror.ErrConcurrentModification)
	assert.Equal(t, int64(100), fx.Reload(group.ID).CurrentBalanceCents)
}

func TestMemberRepository(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixture(t, db, now)
	group := fx.Group("owner", "alice", "bob")
	repo := NewMemberRepository(db)
	ctx := context.Background()

	t.Run("find missing returns nil", func(t *testing.T) {
		m, err := repo.Find(ctx, group.ID, "nobody")
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("duplicate membership fails", func(t *testing.T) {
		dup := entity.NewMember(group.ID, testutil.Principal("alice"), entity.MemberRoleMember, now)
		assert.ErrorIs(t, repo.Create(ctx, dup), domainerror.ErrConcurrentModification)
	})

	t.Run("sum balances", func(t *testing.T) {
		alice, err := repo.Find(ctx, group.ID, "alice")
		require.NoError(t, err)
		alice.ContributionBalanceCents = 1500
		require.NoError(t, repo.Update(ctx, alice))

		sum, err := repo.SumBalances(ctx, group.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), sum)
	})

	t.Run("stale active members", func(t *testing.T) {
		ended := now.Add(-time.Hour)
		fx.SetSubscription(group.ID, "bob", entity.SubscriptionActive, &ended)

		stale, err := repo.ListStaleActive(ctx, now, 10)
		require.NoError(t, err)
		require.Len(t, stale, 1)
		assert.Equal(t, "bob", stale[0].UserID)
	})

	t.Run("delete with stale version", func(t *testing.T) {
		bob, err := repo.Find(ctx, group.ID, "bob")
		require.NoError(t, err)
		bob.Version--
		assert.ErrorIs(t, repo.Delete(ctx, bob), domainerror.ErrConcurrentModification)
		bob.Version++
		require.NoError(t, repo.Delete(ctx, bob))
		assert.Nil(t, fx.ReloadMember(group.ID, "bob"))
	})
}

func TestTransactionRepository_UpdateStatusIsConditional(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixture(t, db, now)
	group := fx.Group("owner", "alice")
	claim := fx.Claim(group.ID, "alice", 900)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	require.NoError(t, claim.Approve("owner", now))
	require.NoError(t, repo.UpdateStatus(ctx, claim, entity.TransactionStatusPending))

	again := fx.ReloadTransaction(claim.ID)
	assert.Equal(t, entity.TransactionStatusApproved, again.Status)

	claim.Status = entity.TransactionStatusRejected
	assert.ErrorIs(t, repo.UpdateStatus(ctx, claim, entity.TransactionStatusPending), domainerror.ErrConcurrentModification)
}
