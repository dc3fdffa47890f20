package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/integration/persistence"
	"github.com/savings-circle/backend/internal/integration/persistence/model"
	"github.com/savings-circle/backend/internal/testutil"
)

var baseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

const period = 30 * 24 * time.Hour

type testEnv struct {
	db        *gorm.DB
	fx        *testutil.Fixture
	clock     *testutil.Clock
	sink      *testutil.RecordingSink
	uow       adapter.UnitOfWork
	fee       *testutil.StaticFee
	operators testutil.Operators
}

func newTestEnv(t *testing.T, feeCents int64) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	return &testEnv{
		db:        db,
		fx:        testutil.NewFixture(t, db, baseTime),
		clock:     testutil.NewClock(baseTime),
		sink:      &testutil.RecordingSink{},
		uow:       persistence.NewUnitOfWork(db, persistence.WithBackoff(0)),
		fee:       &testutil.StaticFee{Cents: feeCents},
		operators: testutil.Operators{"operator"},
	}
}

func (env *testEnv) countFeeRequests(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(&model.FeeRequestModel{}).Count(&n).Error)
	return n
}

func TestPaidActivation_ApproveStartsPeriod(t *testing.T) {
	env := newTestEnv(t, 999)
	group := env.fx.Group("admin", "alice")
	env.fx.SetSubscription(group.ID, "alice", entity.SubscriptionUnpaid, nil)
	ctx := context.Background()

	request := NewRequestActivationUseCase(env.uow, env.fee, env.clock, env.sink)
	out, err := request.Execute(ctx, RequestActivationInput{GroupID: group.ID, UserID: "alice", RefNumber: "BANK-77"})
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionPendingApproval, out.Member.SubscriptionStatus)
	assert.Equal(t, int64(999), out.FeeRequest.AmountCents)
	assert.Equal(t, int64(1), env.countFeeRequests(t))

	_, err = request.Execute(ctx, RequestActivationInput{GroupID: group.ID, UserID: "alice", RefNumber: "BANK-78"})
	assert.ErrorIs(t, err, domainerror.ErrInvalidSubscriptionTransition)
	assert.Equal(t, int64(1), env.countFeeRequests(t), "a second request while pending files nothing")

	env.clock.Advance(2 * time.Hour)
	approve := NewApproveActivationUseCase(env.uow, env.operators, env.clock, env.sink, period)

	_, err = approve.Execute(ctx, ReviewActivationInput{FeeRequestID: out.FeeRequest.ID, OperatorID: "admin"})
	assert.Equal(t, domainerror.KindPermissionDenied, domainerror.KindOf(err), "group admins are not operators")

	reviewed, err := approve.Execute(ctx, ReviewActivationInput{FeeRequestID: out.FeeRequest.ID, OperatorID: "operator"})
	require.NoError(t, err)
	assert.Equal(t, entity.FeeRequestApproved, reviewed.FeeRequest.Status)

	member := env.fx.ReloadMember(group.ID, "alice")
	assert.Equal(t, entity.SubscriptionActive, member.SubscriptionStatus)
	require.NotNil(t, member.SubscriptionEndsAt)
	assert.True(t, member.SubscriptionEndsAt.Equal(baseTime.Add(2*time.Hour+period)))

	var fees []model.LedgerTransactionModel
	require.NoError(t, env.db.Where("type = ?", "fee").Find(&fees).Error)
	require.Len(t, fees, 1)
	assert.Equal(t, int64(999), fees[0].AmountCents)
	assert.Equal(t, int64(0), env.fx.Reload(group.ID).CurrentBalanceCents, "fees never enter the pot")

	_, err = approve.Execute(ctx, ReviewActivationInput{FeeRequestID: out.FeeRequest.ID, OperatorID: "operator"})
	assert.ErrorIs(t, err, domainerror.ErrFeeRequestProcessed)
}

func TestPaidActivation_Guards(t *testing.T) {
	ctx := context.Background()

	t.Run("free tier refuses paid requests", func(t *testing.T) {
		env := newTestEnv(t, 0)
		group := env.fx.Group("admin", "alice")
		uc := NewRequestActivationUseCase(env.uow, env.fee, env.clock, env.sink)
		_, err := uc.Execute(ctx, RequestActivationInput{GroupID: group.ID, UserID: "alice", RefNumber: "X"})
		assert.ErrorIs(t, err, domainerror.ErrNoFeeConfigured)
		assert.Equal(t, domainerror.KindFailedPrecondition, domainerror.KindOf(err))
	})

	t.Run("reference required", func(t *testing.T) {
		env := newTestEnv(t, 500)
		group := env.fx.Group("admin", "alice")
		uc := NewRequestActivationUseCase(env.uow, env.fee, env.clock, env.sink)
		_, err := uc.Execute(ctx, RequestActivationInput{GroupID: group.ID, UserID: "alice", RefNumber: "  "})
		assert.Equal(t, domainerror.KindInvalidArgument, domainerror.KindOf(err))
	})

	t.Run("active members cannot request", func(t *testing.T) {
		env := newTestEnv(t, 500)
		group := env.fx.Group("admin", "alice")
		uc := NewRequestActivationUseCase(env.uow, env.fee, env.clock, env.sink)
		_, err := uc.Execute(ctx, RequestActivationInput{GroupID: group.ID, UserID: "alice", RefNumber: "X"})
		assert.ErrorIs(t, err, domainerror.ErrInvalidSubscriptionTransition)
		assert.Equal(t, int64(0), env.countFeeRequests(t))
	})

	t.Run("expired members can request", func(t *testing.T) {
		env := newTestEnv(t, 500)
		group := env.fx.Group("admin", "alice")
		ended := baseTime.Add(-time.Hour)
		env.fx.SetSubscription(group.ID, "alice", entity.SubscriptionActive, &ended)
		uc := NewRequestActivationUseCase(env.uow, env.fee, env.clock, env.sink)
		_, err := uc.Execute(ctx, RequestActivationInput{GroupID: group.ID, UserID: "alice", RefNumber: "X"})
		require.NoError(t, err)
	})
}

func TestRejectActivation(t *testing.T) {
	env := newTestEnv(t, 500)
	group := env.fx.Group("admin", "fresh", "lapsed")
	env.fx.SetSubscription(group.ID, "fresh", entity.SubscriptionUnpaid, nil)
	ended := baseTime.Add(-time.Hour)
	env.fx.SetSubscription(group.ID, "lapsed", entity.SubscriptionExpired, &ended)
	ctx := context.Background()

	request := NewRequestActivationUseCase(env.uow, env.fee, env.clock, env.sink)
	reject := NewRejectActivationUseCase(env.uow, env.operators, env.clock, env.sink)

	for user, want := range map[string]entity.SubscriptionStatus{
		"fresh":  entity.SubscriptionUnpaid,
		"lapsed": entity.SubscriptionExpired,
	} {
		out, err := request.Execute(ctx, RequestActivationInput{GroupID: group.ID, UserID: user, RefNumber: "R-" + user})
		require.NoError(t, err)

		reviewed, err := reject.Execute(ctx, ReviewActivationInput{FeeRequestID: out.FeeRequest.ID, OperatorID: "operator"})
		require.NoError(t, err)
		assert.Equal(t, entity.FeeRequestRejected, reviewed.FeeRequest.Status)
		assert.Equal(t, want, env.fx.ReloadMember(group.ID, user).SubscriptionStatus, user)
	}
}

func TestActivateFree(t *testing.T) {
	ctx := context.Background()

	t.Run("activates immediately without a fee request", func(t *testing.T) {
		env := newTestEnv(t, 0)
		group := env.fx.Group("admin", "alice")
		env.fx.SetSubscription(group.ID, "alice", entity.SubscriptionUnpaid, nil)

		uc := NewActivateFreeUseCase(env.uow, env.fee, env.clock, env.sink, period)
		member, err := uc.Execute(ctx, ActivateFreeInput{GroupID: group.ID, UserID: "alice"})
		require.NoError(t, err)
		assert.Equal(t, entity.SubscriptionActive, member.SubscriptionStatus)
		assert.True(t, member.SubscriptionEndsAt.Equal(baseTime.Add(period)))
		assert.Equal(t, int64(0), env.countFeeRequests(t))
	})

	t.Run("refused while a fee is configured", func(t *testing.T) {
		env := newTestEnv(t, 100)
		group := env.fx.Group("admin", "alice")

		uc := NewActivateFreeUseCase(env.uow, env.fee, env.clock, env.sink, period)
		_, err := uc.Execute(ctx, ActivateFreeInput{GroupID: group.ID, UserID: "alice"})
		assert.ErrorIs(t, err, domainerror.ErrFeeRequired)
		assert.Equal(t, domainerror.KindFailedPrecondition, domainerror.KindOf(err))
	})
}

func TestGetStatus_DerivesExpiryAndCorrectsRow(t *testing.T) {
	env := newTestEnv(t, 0)
	group := env.fx.Group("admin", "alice")
	endsAt := baseTime.Add(24 * time.Hour)
	env.fx.SetSubscription(group.ID, "alice", entity.SubscriptionActive, &endsAt)
	uc := NewGetStatusUseCase(env.uow, env.fee, env.clock, env.sink)
	ctx := context.Background()

	out, err := uc.Execute(ctx, GetStatusInput{GroupID: group.ID, UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionActive, out.Status)
	assert.False(t, out.Locked)

	env.clock.Advance(25 * time.Hour)
	out, err = uc.Execute(ctx, GetStatusInput{GroupID: group.ID, UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionExpired, out.Status)
	assert.True(t, out.Locked)

	assert.Equal(t, entity.SubscriptionExpired, env.fx.ReloadMember(group.ID, "alice").SubscriptionStatus)
	assert.Equal(t, []entity.EventType{entity.EventSubscriptionExpired}, env.sink.Types())
}

type expiryCounter struct{ n int }

func (c *expiryCounter) ObserveExpired(n int) { c.n += n }

func TestSweepExpired(t *testing.T) {
	env := newTestEnv(t, 0)
	group := env.fx.Group("admin", "a", "b", "c", "d")
	ended := baseTime.Add(-time.Minute)
	for _, user := range []string{"a", "b", "c"} {
		env.fx.SetSubscription(group.ID, user, entity.SubscriptionActive, &ended)
	}

	counter := &expiryCounter{}
	uc := NewSweepExpiredUseCase(env.uow, env.clock, env.sink, 2, counter)
	out, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, out.Expired)
	assert.Equal(t, 0, out.Failed)
	assert.Equal(t, 3, counter.n)

	for _, user := range []string{"a", "b", "c"} {
		assert.Equal(t, entity.SubscriptionExpired, env.fx.ReloadMember(group.ID, user).SubscriptionStatus)
	}
	assert.Equal(t, entity.SubscriptionActive, env.fx.ReloadMember(group.ID, "d").SubscriptionStatus)

	again, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, again.Expired)
}

func TestSweepExpired_Run(t *testing.T) {
	env := newTestEnv(t, 0)
	group := env.fx.Group("admin", "a")
	ended := baseTime.Add(-time.Minute)
	env.fx.SetSubscription(group.ID, "a", entity.SubscriptionActive, &ended)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewSweepExpiredUseCase(env.uow, env.clock, env.sink, 10, nil).Run(ctx, time.Hour)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return env.fx.ReloadMember(group.ID, "a").SubscriptionStatus == entity.SubscriptionExpired
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep loop did not stop")
	}
}

func TestPlatformOperations(t *testing.T) {
	env := newTestEnv(t, 300)
	group := env.fx.Group("admin", "alice")
	env.fx.SetSubscription(group.ID, "alice", entity.SubscriptionUnpaid, nil)
	ctx := context.Background()

	_, err := NewRequestActivationUseCase(env.uow, env.fee, env.clock, env.sink).
		Execute(ctx, RequestActivationInput{GroupID: group.ID, UserID: "alice", RefNumber: "R1"})
	require.NoError(t, err)

	list := NewListFeeRequestsUseCase(env.uow, env.operators)
	pending, err := list.Execute(ctx, ListFeeRequestsInput{OperatorID: "operator"})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "alice", pending[0].UserID)

	_, err = list.Execute(ctx, ListFeeRequestsInput{OperatorID: "alice"})
	assert.Equal(t, domainerror.KindPermissionDenied, domainerror.KindOf(err))
	_, err = list.Execute(ctx, ListFeeRequestsInput{OperatorID: "operator", Status: "lost"})
	assert.Equal(t, domainerror.KindInvalidArgument, domainerror.KindOf(err))

	set := NewSetPlatformFeeUseCase(env.fee, env.operators, env.clock, env.sink)
	assert.Equal(t, domainerror.KindInvalidArgument, domainerror.KindOf(set.Execute(ctx, SetPlatformFeeInput{OperatorID: "operator", FeeCents: -1})))
	require.NoError(t, set.Execute(ctx, SetPlatformFeeInput{OperatorID: "operator", FeeCents: 0}))

	fee, err := env.fee.SubscriptionFeeCents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), fee)

	// The pending request keeps the fee it was filed with.
	assert.Equal(t, int64(300), pending[0].AmountCents)
}
