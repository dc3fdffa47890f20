package payout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/integration/persistence"
	"github.com/savings-circle/backend/internal/testutil"
)

var today = time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type testEnv struct {
	fx    *testutil.Fixture
	clock *testutil.Clock
	sink  *testutil.RecordingSink
	uow   adapter.UnitOfWork
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	return &testEnv{
		fx:    testutil.NewFixture(t, db, today),
		clock: testutil.NewClock(today),
		sink:  &testutil.RecordingSink{},
		uow:   persistence.NewUnitOfWork(db, persistence.WithBackoff(0)),
	}
}

func (env *testEnv) generate(t *testing.T, input GenerateScheduleInput) *ScheduleOutput {
	t.Helper()
	out, err := NewGenerateScheduleUseCase(env.uow, env.clock, env.sink).Execute(context.Background(), input)
	require.NoError(t, err)
	return out
}

func TestGenerateSchedule_Monthly(t *testing.T) {
	env := newTestEnv(t)
	group := env.fx.Group("admin", "b", "c")

	out := env.generate(t, GenerateScheduleInput{
		GroupID:     group.ID,
		MemberOrder: []string{"c", "admin", "b"},
		StartDate:   date(2025, 1, 1),
		Frequency:   "monthly",
		ActorID:     "admin",
	})

	require.Len(t, out.Schedule, 3)
	wantDates := []time.Time{date(2025, 1, 1), date(2025, 2, 1), date(2025, 3, 1)}
	for i, user := range []string{"c", "admin", "b"} {
		assert.Equal(t, user, out.Schedule[i].UserID)
		assert.True(t, wantDates[i].Equal(out.Schedule[i].PayoutDate), "entry %d: %s", i, out.Schedule[i].PayoutDate)
		assert.Equal(t, entity.PayoutStatusPending, out.Schedule[i].Status)
	}

	stored := env.fx.Reload(group.ID)
	require.NotNil(t, stored.NextPayoutDate)
	assert.True(t, date(2025, 1, 1).Equal(*stored.NextPayoutDate))
	assert.Equal(t, []entity.EventType{entity.EventScheduleGenerated}, env.sink.Types())
}

func TestGenerateSchedule_WeeklyAndMonthEnd(t *testing.T) {
	env := newTestEnv(t)
	group := env.fx.Group("admin", "b", "c")

	weekly := env.generate(t, GenerateScheduleInput{
		GroupID: group.ID, MemberOrder: []string{"admin", "b", "c"},
		StartDate: date(2025, 1, 6), Frequency: "weekly", ActorID: "admin",
	})
	assert.True(t, date(2025, 1, 20).Equal(weekly.Schedule[2].PayoutDate))

	monthEnd := env.generate(t, GenerateScheduleInput{
		GroupID: group.ID, MemberOrder: []string{"admin", "b"},
		StartDate: date(2025, 1, 31), Frequency: "monthly", ActorID: "admin",
	})
	require.Len(t, monthEnd.Schedule, 2, "generation overwrites the previous rotation")
	assert.True(t, date(2025, 2, 28).Equal(monthEnd.Schedule[1].PayoutDate))
}

func TestGenerateSchedule_Validation(t *testing.T) {
	env := newTestEnv(t)
	group := env.fx.Group("admin", "b")
	uc := NewGenerateScheduleUseCase(env.uow, env.clock, env.sink)
	valid := GenerateScheduleInput{GroupID: group.ID, MemberOrder: []string{"admin", "b"}, StartDate: today, Frequency: "weekly", ActorID: "admin"}

	tests := []struct {
		name   string
		mutate func(in *GenerateScheduleInput)
		err    error
		kind   domainerror.Kind
	}{
		{"bad frequency", func(in *GenerateScheduleInput) { in.Frequency = "daily" }, domainerror.ErrInvalidFrequency, domainerror.KindInvalidArgument},
		{"empty order", func(in *GenerateScheduleInput) { in.MemberOrder = nil }, domainerror.ErrEmptyMemberOrder, domainerror.KindInvalidArgument},
		{"duplicates", func(in *GenerateScheduleInput) { in.MemberOrder = []string{"b", "b"} }, domainerror.ErrDuplicateScheduleMember, domainerror.KindInvalidArgument},
		{"outsider", func(in *GenerateScheduleInput) { in.MemberOrder = []string{"b", "zoe"} }, domainerror.ErrScheduleMemberNotInGroup, domainerror.KindInvalidArgument},
		{"no start", func(in *GenerateScheduleInput) { in.StartDate = time.Time{} }, domainerror.ErrInvalidPayoutDate, domainerror.KindInvalidArgument},
		{"not admin", func(in *GenerateScheduleInput) { in.ActorID = "b" }, domainerror.ErrNotGroupAdmin, domainerror.KindPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := uc.Execute(context.Background(), in)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.kind, domainerror.KindOf(err))
		})
	}
	assert.Empty(t, env.fx.Reload(group.ID).PayoutSchedule)
}

func TestReorder_KeepsDates(t *testing.T) {
	env := newTestEnv(t)
	group := env.fx.Group("admin", "b", "c")
	env.generate(t, GenerateScheduleInput{
		GroupID: group.ID, MemberOrder: []string{"admin", "b", "c"},
		StartDate: date(2025, 1, 1), Frequency: "monthly", ActorID: "admin",
	})
	uc := NewReorderUseCase(env.uow, env.clock, env.sink)

	out, err := uc.Execute(context.Background(), ReorderInput{GroupID: group.ID, FromIndex: 2, ToIndex: 0, ActorID: "admin"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "admin", "b"}, []string{out.Schedule[0].UserID, out.Schedule[1].UserID, out.Schedule[2].UserID})
	assert.True(t, date(2025, 3, 1).Equal(out.Schedule[0].PayoutDate))

	_, err = uc.Execute(context.Background(), ReorderInput{GroupID: group.ID, FromIndex: 0, ToIndex: 3, ActorID: "admin"})
	assert.ErrorIs(t, err, domainerror.ErrInvalidScheduleIndex)
}

func TestReorder_EmptySchedule(t *testing.T) {
	env := newTestEnv(t)
	group := env.fx.Group("admin", "b")

	_, err := NewReorderUseCase(env.uow, env.clock, env.sink).Execute(context.Background(), ReorderInput{
		GroupID: group.ID, FromIndex: 0, ToIndex: 0, ActorID: "admin",
	})
	assert.ErrorIs(t, err, domainerror.ErrScheduleEntryNotFound)
	assert.Equal(t, domainerror.KindNotFound, domainerror.KindOf(err))
	assert.Empty(t, env.sink.Types())
}

func TestMarkPaidAndNextPayout(t *testing.T) {
	env := newTestEnv(t)
	group := env.fx.Group("admin", "b")
	env.generate(t, GenerateScheduleInput{
		GroupID: group.ID, MemberOrder: []string{"admin", "b"},
		StartDate: date(2025, 1, 1), Frequency: "monthly", ActorID: "admin",
	})
	ctx := context.Background()
	next := NewNextPayoutUseCase(env.uow)

	got, err := next.Execute(ctx, NextPayoutInput{GroupID: group.ID, RequesterID: "b"})
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Entry.UserID)
	assert.Equal(t, 0, got.Position)

	markPaid := NewMarkPaidUseCase(env.uow, env.clock, env.sink)
	_, err = markPaid.Execute(ctx, MarkPaidInput{GroupID: group.ID, UserID: "admin", ActorID: "b"})
	assert.Equal(t, domainerror.KindPermissionDenied, domainerror.KindOf(err))

	out, err := markPaid.Execute(ctx, MarkPaidInput{GroupID: group.ID, UserID: "admin", ActorID: "admin"})
	require.NoError(t, err)
	assert.Equal(t, entity.PayoutStatusPaid, out.Schedule[0].Status)
	require.NotNil(t, out.NextPayoutDate)
	assert.True(t, date(2025, 2, 1).Equal(*out.NextPayoutDate))
	assert.Equal(t, int64(0), env.fx.Reload(group.ID).CurrentBalanceCents, "marking paid moves no money")

	_, err = markPaid.Execute(ctx, MarkPaidInput{GroupID: group.ID, UserID: "admin", ActorID: "admin"})
	assert.ErrorIs(t, err, domainerror.ErrEntryAlreadyPaid)
	_, err = markPaid.Execute(ctx, MarkPaidInput{GroupID: group.ID, UserID: "ghost", ActorID: "admin"})
	assert.ErrorIs(t, err, domainerror.ErrScheduleEntryNotFound)

	got, err = next.Execute(ctx, NextPayoutInput{GroupID: group.ID, RequesterID: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "b", got.Entry.UserID)

	_, err = markPaid.Execute(ctx, MarkPaidInput{GroupID: group.ID, UserID: "b", ActorID: "admin"})
	require.NoError(t, err)
	_, err = next.Execute(ctx, NextPayoutInput{GroupID: group.ID, RequesterID: "admin"})
	assert.ErrorIs(t, err, domainerror.ErrNoPendingPayout)
	assert.Nil(t, env.fx.Reload(group.ID).NextPayoutDate)
}

func TestUpdateEntryDate_TiesFollowListOrder(t *testing.T) {
	env := newTestEnv(t)
	group := env.fx.Group("admin", "b", "c")
	env.generate(t, GenerateScheduleInput{
		GroupID: group.ID, MemberOrder: []string{"admin", "b", "c"},
		StartDate: date(2025, 2, 1), Frequency: "weekly", ActorID: "admin",
	})
	ctx := context.Background()

	uc := NewUpdateEntryDateUseCase(env.uow, env.clock, env.sink)
	out, err := uc.Execute(ctx, UpdateEntryDateInput{GroupID: group.ID, UserID: "c", PayoutDate: date(2025, 2, 1), ActorID: "admin"})
	require.NoError(t, err)
	assert.True(t, date(2025, 2, 1).Equal(out.Schedule[2].PayoutDate))

	got, err := NewNextPayoutUseCase(env.uow).Execute(ctx, NextPayoutInput{GroupID: group.ID, RequesterID: "c"})
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Entry.UserID, "equal dates resolve to the earlier list position")

	_, err = uc.Execute(ctx, UpdateEntryDateInput{GroupID: group.ID, UserID: "c", ActorID: "admin"})
	assert.ErrorIs(t, err, domainerror.ErrInvalidPayoutDate)
}
