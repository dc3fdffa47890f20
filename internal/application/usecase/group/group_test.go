package group

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/integration/persistence"
	"github.com/savings-circle/backend/internal/testutil"
)

var baseTime = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	db    *gorm.DB
	fx    *testutil.Fixture
	clock *testutil.Clock
	sink  *testutil.RecordingSink
	uow   adapter.UnitOfWork
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	return &testEnv{
		db:    db,
		fx:    testutil.NewFixture(t, db, baseTime),
		clock: testutil.NewClock(baseTime),
		sink:  &testutil.RecordingSink{},
		uow:   persistence.NewUnitOfWork(db, persistence.WithBackoff(0)),
	}
}

// codes returns a generator yielding the given codes in order, then failing.
func codes(values ...string) InviteCodeGenerator {
	i := 0
	return func() (string, error) {
		if i >= len(values) {
			return "", errors.New("generator exhausted")
		}
		i++
		return values[i-1], nil
	}
}

func (env *testEnv) create(t *testing.T, owner string, generate InviteCodeGenerator) *CreateGroupOutput {
	t.Helper()
	out, err := NewCreateGroupUseCase(env.uow, env.clock, env.sink, generate).Execute(context.Background(), CreateGroupInput{
		Owner:                   testutil.Principal(owner),
		Name:                    "Market women",
		ContributionAmountCents: 5000,
		Currency:                "kes",
	})
	require.NoError(t, err)
	return out
}

func TestCreateGroup(t *testing.T) {
	env := newTestEnv(t)
	out := env.create(t, "owner", nil)

	assert.Equal(t, "KES", out.Group.Currency)
	assert.Equal(t, []string{"owner"}, out.Group.MemberIDs)
	assert.Equal(t, 1, out.Group.MembersCount)
	assert.Len(t, out.Group.InviteCode, 6)

	owner := env.fx.ReloadMember(out.Group.ID, "owner")
	require.NotNil(t, owner)
	assert.Equal(t, entity.MemberRoleAdmin, owner.Role)
	assert.Equal(t, entity.SubscriptionUnpaid, owner.SubscriptionStatus)
	assert.Equal(t, int64(0), owner.ContributionBalanceCents)
	assert.Equal(t, "User owner", owner.DisplayName)
	assert.Equal(t, []entity.EventType{entity.EventGroupCreated}, env.sink.Types())
}

func TestCreateGroup_Validation(t *testing.T) {
	env := newTestEnv(t)
	uc := NewCreateGroupUseCase(env.uow, env.clock, env.sink, nil)

	tests := []struct {
		name  string
		input CreateGroupInput
		err   error
	}{
		{"missing name", CreateGroupInput{Owner: testutil.Principal("o"), Name: "  "}, domainerror.ErrGroupNameRequired},
		{"long name", CreateGroupInput{Owner: testutil.Principal("o"), Name: string(make([]byte, MaxGroupNameLength+1))}, domainerror.ErrGroupNameTooLong},
		{"bad currency", CreateGroupInput{Owner: testutil.Principal("o"), Name: "g", Currency: "dollars"}, domainerror.ErrInvalidCurrency},
		{"negative contribution", CreateGroupInput{Owner: testutil.Principal("o"), Name: "g", ContributionAmountCents: -5}, domainerror.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, domainerror.KindInvalidArgument, domainerror.KindOf(err))
		})
	}

	_, err := uc.Execute(context.Background(), CreateGroupInput{Name: "g"})
	assert.Equal(t, domainerror.KindUnauthenticated, domainerror.KindOf(err))
}

func TestCreateGroup_InviteCodeCollisions(t *testing.T) {
	env := newTestEnv(t)
	first := env.create(t, "owner", codes("ABC234"))

	second := env.create(t, "other", codes("abc234", "XYZ789"))
	assert.Equal(t, "ABC234", first.Group.InviteCode)
	assert.Equal(t, "XYZ789", second.Group.InviteCode, "a taken code is skipped")

	taken := make([]string, maxInviteCodeAttempts)
	for i := range taken {
		taken[i] = "ABC234"
	}
	_, err := NewCreateGroupUseCase(env.uow, env.clock, env.sink, codes(taken...)).Execute(context.Background(), CreateGroupInput{
		Owner: testutil.Principal("third"), Name: "g",
	})
	assert.ErrorIs(t, err, domainerror.ErrInviteCodeExhausted)
	assert.Equal(t, domainerror.KindUnavailable, domainerror.KindOf(err))
}

func TestRedeemInvite(t *testing.T) {
	env := newTestEnv(t)
	created := env.create(t, "owner", codes("JOIN23"))
	uc := NewRedeemInviteUseCase(env.uow, env.clock, env.sink)
	ctx := context.Background()

	out, err := uc.Execute(ctx, RedeemInviteInput{Code: " join23 ", Principal: testutil.Principal("alice")})
	require.NoError(t, err)
	assert.Equal(t, entity.MemberRoleMember, out.Member.Role)
	assert.Equal(t, entity.SubscriptionUnpaid, out.Member.SubscriptionStatus)

	stored := env.fx.Reload(created.Group.ID)
	assert.Equal(t, []string{"owner", "alice"}, stored.MemberIDs)
	assert.Equal(t, 2, stored.MembersCount)

	for i := 0; i < 2; i++ {
		_, err = uc.Execute(ctx, RedeemInviteInput{Code: "JOIN23", Principal: testutil.Principal("alice")})
		assert.ErrorIs(t, err, domainerror.ErrUserAlreadyMember)
		assert.Equal(t, domainerror.KindFailedPrecondition, domainerror.KindOf(err))
	}
	assert.Equal(t, 2, env.fx.Reload(created.Group.ID).MembersCount)

	joined := env.sink.Events()[1]
	assert.Equal(t, entity.EventMemberJoined, joined.Type)
	require.Len(t, joined.Notify, 1)
	assert.Equal(t, "owner", joined.Notify[0].UserID)
}

func TestRedeemInvite_Errors(t *testing.T) {
	env := newTestEnv(t)
	created := env.create(t, "owner", codes("SLEEP2"))
	env.fx.SetGroupStatus(created.Group.ID, entity.GroupStatusSuspended)
	uc := NewRedeemInviteUseCase(env.uow, env.clock, env.sink)

	tests := []struct {
		name string
		code string
		kind domainerror.Kind
	}{
		{"malformed", "AB", domainerror.KindInvalidArgument},
		{"unknown", "NOPE22", domainerror.KindNotFound},
		{"suspended group", "sleep2", domainerror.KindFailedPrecondition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), RedeemInviteInput{Code: tt.code, Principal: testutil.Principal("alice")})
			assert.Equal(t, tt.kind, domainerror.KindOf(err))
		})
	}
}

func TestRedeemInvite_IsAtomic(t *testing.T) {
	env := newTestEnv(t)
	created := env.create(t, "owner", codes("ATOM22"))
	remove := testutil.FailUpdatesOn(t, env.db, "groups")

	uc := NewRedeemInviteUseCase(env.uow, env.clock, env.sink)
	_, err := uc.Execute(context.Background(), RedeemInviteInput{Code: "ATOM22", Principal: testutil.Principal("alice")})
	require.Error(t, err)
	assert.Equal(t, domainerror.KindInternal, domainerror.KindOf(err))

	assert.Nil(t, env.fx.ReloadMember(created.Group.ID, "alice"), "member row rolled back with the index")
	stored := env.fx.Reload(created.Group.ID)
	assert.Equal(t, 1, stored.MembersCount)
	assert.Equal(t, []string{"owner"}, stored.MemberIDs)

	remove()
	_, err = uc.Execute(context.Background(), RedeemInviteInput{Code: "ATOM22", Principal: testutil.Principal("alice")})
	require.NoError(t, err)
	assert.Equal(t, 2, env.fx.Reload(created.Group.ID).MembersCount)
}

func TestRemoveMember(t *testing.T) {
	env := newTestEnv(t)
	group := env.fx.Group("owner", "admin2", "alice", "bob")
	require.NoError(t, env.db.Exec("UPDATE group_members SET role = 'admin' WHERE user_id = 'admin2'").Error)
	uc := NewRemoveMemberUseCase(env.uow, env.clock, env.sink)
	ctx := context.Background()

	tests := []struct {
		name  string
		input RemoveMemberInput
		err   error
	}{
		{"member cannot remove", RemoveMemberInput{GroupID: group.ID, UserID: "bob", RequesterID: "alice"}, domainerror.ErrNotGroupAdmin},
		{"self", RemoveMemberInput{GroupID: group.ID, UserID: "admin2", RequesterID: "admin2"}, domainerror.ErrCannotRemoveSelf},
		{"owner", RemoveMemberInput{GroupID: group.ID, UserID: "owner", RequesterID: "admin2"}, domainerror.ErrCannotRemoveOwner},
		{"unknown", RemoveMemberInput{GroupID: group.ID, UserID: "zed", RequesterID: "owner"}, domainerror.ErrMemberNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(ctx, tt.input)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	// Pending turns of the removed member leave the rotation.
	stored := env.fx.Reload(group.ID)
	stored.SetSchedule(entity.BuildSchedule([]string{"bob", "alice"}, baseTime, entity.PayoutFrequencyWeekly), baseTime)
	require.NoError(t, persistence.NewGroupRepository(env.db).Update(ctx, stored))

	require.NoError(t, env.db.Exec("UPDATE group_members SET contribution_balance_cents = 700 WHERE user_id = 'bob'").Error)

	out, err := uc.Execute(ctx, RemoveMemberInput{GroupID: group.ID, UserID: "bob", RequesterID: "owner"})
	require.NoError(t, err)
	assert.Equal(t, int64(700), out.Removed.ContributionBalanceCents, "admins may remove members holding a balance")

	after := env.fx.Reload(group.ID)
	assert.NotContains(t, after.MemberIDs, "bob")
	assert.Equal(t, 3, after.MembersCount)
	require.Len(t, after.PayoutSchedule, 1)
	assert.Equal(t, "alice", after.PayoutSchedule[0].UserID)
	assert.Nil(t, env.fx.ReloadMember(group.ID, "bob"))
}

func TestLeaveGroup(t *testing.T) {
	env := newTestEnv(t)
	group := env.fx.Group("owner", "alice", "rich")
	require.NoError(t, env.db.Exec("UPDATE group_members SET contribution_balance_cents = 100 WHERE user_id = 'rich'").Error)
	uc := NewLeaveGroupUseCase(env.uow, env.clock, env.sink)
	ctx := context.Background()

	assert.ErrorIs(t, uc.Execute(ctx, LeaveGroupInput{GroupID: group.ID, UserID: "owner"}), domainerror.ErrOwnerCannotLeave)
	assert.ErrorIs(t, uc.Execute(ctx, LeaveGroupInput{GroupID: group.ID, UserID: "rich"}), domainerror.ErrMemberHasBalance)
	assert.ErrorIs(t, uc.Execute(ctx, LeaveGroupInput{GroupID: group.ID, UserID: "stranger"}), domainerror.ErrNotGroupMember)

	require.NoError(t, uc.Execute(ctx, LeaveGroupInput{GroupID: group.ID, UserID: "alice"}))
	stored := env.fx.Reload(group.ID)
	assert.Equal(t, []string{"owner", "rich"}, stored.MemberIDs)
	assert.Equal(t, 2, stored.MembersCount)
	assert.Equal(t, []entity.EventType{entity.EventMemberLeft}, env.sink.Types())
}

func TestChangeMemberRole(t *testing.T) {
	env := newTestEnv(t)
	group := env.fx.Group("owner", "alice")
	uc := NewChangeMemberRoleUseCase(env.uow, env.clock, env.sink)
	ctx := context.Background()

	member, err := uc.Execute(ctx, ChangeMemberRoleInput{GroupID: group.ID, UserID: "alice", NewRole: entity.MemberRoleAdmin, RequesterID: "owner"})
	require.NoError(t, err)
	assert.True(t, member.IsAdmin())

	_, err = uc.Execute(ctx, ChangeMemberRoleInput{GroupID: group.ID, UserID: "owner", NewRole: entity.MemberRoleMember, RequesterID: "alice"})
	assert.ErrorIs(t, err, domainerror.ErrCannotDemoteOwner)

	_, err = uc.Execute(ctx, ChangeMemberRoleInput{GroupID: group.ID, UserID: "alice", NewRole: "king", RequesterID: "owner"})
	assert.ErrorIs(t, err, domainerror.ErrInvalidMemberRole)

	// Re-applying the current role changes nothing and emits nothing.
	_, err = uc.Execute(ctx, ChangeMemberRoleInput{GroupID: group.ID, UserID: "alice", NewRole: entity.MemberRoleAdmin, RequesterID: "owner"})
	require.NoError(t, err)
	assert.Len(t, env.sink.Events(), 1)
}

func TestGetAndListGroups(t *testing.T) {
	env := newTestEnv(t)
	group := env.fx.Group("owner", "alice")
	ended := baseTime.Add(-time.Hour)
	env.fx.SetSubscription(group.ID, "alice", entity.SubscriptionActive, &ended)
	ctx := context.Background()

	out, err := NewGetGroupUseCase(env.uow, env.clock).Execute(ctx, GetGroupInput{GroupID: group.ID, UserID: "alice"})
	require.NoError(t, err)
	assert.Len(t, out.Members, 2)
	assert.Equal(t, entity.MemberRoleMember, out.UserRole)
	assert.Equal(t, entity.SubscriptionExpired, out.Subscriptions["alice"])
	assert.Equal(t, entity.SubscriptionActive, out.Subscriptions["owner"])

	_, err = NewGetGroupUseCase(env.uow, env.clock).Execute(ctx, GetGroupInput{GroupID: group.ID, UserID: "eve"})
	assert.Equal(t, domainerror.KindPermissionDenied, domainerror.KindOf(err))

	list, err := NewListGroupsUseCase(persistence.NewGroupRepository(env.db)).Execute(ctx, ListGroupsInput{UserID: "alice"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, group.ID, list[0].ID)
	assert.Equal(t, entity.MemberRoleMember, list[0].Role)
}

func TestRegenerateInviteCode(t *testing.T) {
	env := newTestEnv(t)
	created := env.create(t, "owner", codes("OLD234"))
	_, err := NewRedeemInviteUseCase(env.uow, env.clock, env.sink).Execute(context.Background(), RedeemInviteInput{Code: "OLD234", Principal: testutil.Principal("alice")})
	require.NoError(t, err)

	uc := NewRegenerateInviteCodeUseCase(env.uow, env.clock, env.sink, codes("NEW234"))
	_, err = uc.Execute(context.Background(), RegenerateInviteCodeInput{GroupID: created.Group.ID, RequesterID: "alice"})
	assert.ErrorIs(t, err, domainerror.ErrNotGroupAdmin)

	group, err := uc.Execute(context.Background(), RegenerateInviteCodeInput{GroupID: created.Group.ID, RequesterID: "owner"})
	require.NoError(t, err)
	assert.Equal(t, "NEW234", group.InviteCode)

	_, err = NewRedeemInviteUseCase(env.uow, env.clock, env.sink).Execute(context.Background(), RedeemInviteInput{Code: "OLD234", Principal: testutil.Principal("bob")})
	assert.ErrorIs(t, err, domainerror.ErrInviteCodeNotFound)
}

func TestUpdateGroupStatus(t *testing.T) {
	env := newTestEnv(t)
	group := env.fx.Group("owner")
	uc := NewUpdateGroupStatusUseCase(env.uow, testutil.Operators{"ops"}, env.clock, env.sink)
	ctx := context.Background()

	_, err := uc.Execute(ctx, UpdateGroupStatusInput{GroupID: group.ID, Status: entity.GroupStatusSuspended, OperatorID: "owner"})
	assert.ErrorIs(t, err, domainerror.ErrNotPlatformOperator)

	_, err = uc.Execute(ctx, UpdateGroupStatusInput{GroupID: group.ID, Status: "frozen", OperatorID: "ops"})
	assert.ErrorIs(t, err, domainerror.ErrInvalidGroupStatus)

	_, err = uc.Execute(ctx, UpdateGroupStatusInput{GroupID: uuid.New(), Status: entity.GroupStatusArchived, OperatorID: "ops"})
	assert.ErrorIs(t, err, domainerror.ErrGroupNotFound)

	updated, err := uc.Execute(ctx, UpdateGroupStatusInput{GroupID: group.ID, Status: entity.GroupStatusArchived, OperatorID: "ops"})
	require.NoError(t, err)
	assert.Equal(t, entity.GroupStatusArchived, updated.Status)
	assert.Equal(t, entity.GroupStatusArchived, env.fx.Reload(group.ID).Status)
	assert.Equal(t, []entity.EventType{entity.EventGroupStatusChanged}, env.sink.Types())
}

func TestListActivity(t *testing.T) {
	env := newTestEnv(t)
	group := env.fx.Group("owner", "alice")
	audit := persistence.NewAuditLogRepository(env.db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		event := entity.NewEvent(entity.EventClaimSubmitted, group, "alice", "claim", baseTime.Add(time.Duration(i)*time.Minute))
		require.NoError(t, audit.Create(ctx, entity.AuditLogEntryFromEvent(event)))
	}

	uc := NewListActivityUseCase(env.uow, audit)
	entries, err := uc.Execute(ctx, ListActivityInput{GroupID: group.ID, UserID: "alice", Limit: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Timestamp.After(entries[1].Timestamp))

	_, err = uc.Execute(ctx, ListActivityInput{GroupID: group.ID, UserID: "mallory"})
	assert.Equal(t, domainerror.KindPermissionDenied, domainerror.KindOf(err))
}
