package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/testutil"
)

func TestPlatformSettings_DefaultThenSet(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	settings := NewPlatformSettingsRepository(db, nil, 500)

	fee, err := settings.SubscriptionFeeCents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(500), fee)

	require.NoError(t, settings.SetSubscriptionFeeCents(ctx, 750))
	require.NoError(t, settings.SetSubscriptionFeeCents(ctx, 900))

	fee, err = settings.SubscriptionFeeCents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(900), fee)
}

func TestPlatformSettings_RedisCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	db := testutil.NewDB(t)
	settings := NewPlatformSettingsRepository(db, client, 500)

	require.NoError(t, settings.SetSubscriptionFeeCents(ctx, 1200))

	cached, err := mr.Get("circle:platform:subscription_fee_cents")
	require.NoError(t, err)
	assert.Equal(t, "1200", cached)
	assert.Greater(t, mr.TTL("circle:platform:subscription_fee_cents"), time.Duration(0))

	// A cached value wins over the table until it expires.
	require.NoError(t, mr.Set("circle:platform:subscription_fee_cents", "1300"))
	fee, err := settings.SubscriptionFeeCents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1300), fee)

	mr.FastForward(2 * time.Minute)
	fee, err = settings.SubscriptionFeeCents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), fee)
}

func TestPlatformSettings_RedisDownFallsBackToTable(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	db := testutil.NewDB(t)
	settings := NewPlatformSettingsRepository(db, client, 500)
	require.NoError(t, settings.SetSubscriptionFeeCents(ctx, 650))

	mr.Close()

	fee, err := settings.SubscriptionFeeCents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(650), fee)
}

func TestGroupRepository_Lookups(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fixture := testutil.NewFixture(t, db, now)
	repo := NewGroupRepository(db)

	first := fixture.Group("alice", "bob")
	fixture.Group("carol")

	found, err := repo.FindByInviteCode(ctx, first.InviteCode)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)

	missing, err := repo.FindByInviteCode(ctx, "NOPE00")
	require.NoError(t, err)
	assert.Nil(t, missing)

	exists, err := repo.InviteCodeExists(ctx, first.InviteCode)
	require.NoError(t, err)
	assert.True(t, exists)

	byID, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, byID)

	items, err := repo.ListByMember(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, entity.MemberRoleMember, items[0].Role)
	assert.Equal(t, 2, items[0].MembersCount)

	items, err = repo.ListByMember(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, entity.MemberRoleAdmin, items[0].Role)
}

func TestGroupRepository_UpdateDetectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fixture := testutil.NewFixture(t, db, now)
	repo := NewGroupRepository(db)

	group := fixture.Group("alice")
	stale := fixture.Reload(group.ID)

	group.Credit(1000)
	require.NoError(t, repo.Update(ctx, group))
	assert.Equal(t, stale.Version+1, group.Version)

	stale.Credit(5)
	err := repo.Update(ctx, stale)
	assert.ErrorIs(t, err, domainerror.ErrConcurrentModification)
	assert.Equal(t, int64(1000), fixture.Reload(group.ID).CurrentBalanceCents)
}

func TestMemberRepository_ListStaleActive(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fixture := testutil.NewFixture(t, db, now)
	repo := NewMemberRepository(db)

	group := fixture.Group("alice", "bob", "carol")
	past := now.Add(-time.Hour)
	fixture.SetSubscription(group.ID, "bob", entity.SubscriptionActive, &past)
	fixture.SetSubscription(group.ID, "carol", entity.SubscriptionExpired, &past)

	stale, err := repo.ListStaleActive(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "bob", stale[0].UserID)
}

func TestRepositories_OptionalTimesRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fixture := testutil.NewFixture(t, db, now)

	group := fixture.Group("alice", "bob")
	endsAt := now.Add(30 * 24 * time.Hour)
	fixture.SetSubscription(group.ID, "bob", entity.SubscriptionActive, &endsAt)

	member, err := NewMemberRepository(db).Find(ctx, group.ID, "bob")
	require.NoError(t, err)
	require.NotNil(t, member)
	require.NotNil(t, member.SubscriptionEndsAt)
	assert.True(t, endsAt.Equal(*member.SubscriptionEndsAt))

	claim := fixture.Claim(group.ID, "bob", 1500)
	require.NoError(t, claim.Approve("alice", now))
	require.NoError(t, NewTransactionRepository(db).UpdateStatus(ctx, claim, entity.TransactionStatusPending))

	stored := fixture.ReloadTransaction(claim.ID)
	require.NotNil(t, stored.ReviewedAt)
	assert.True(t, now.Equal(*stored.ReviewedAt))
	assert.Nil(t, stored.ProcessedAt)

	request := entity.NewFeeRequest(group.ID, "alice", 500, "BANK-2", now)
	requests := NewFeeRequestRepository(db)
	require.NoError(t, requests.Create(ctx, request))
	require.NoError(t, request.Approve("ops", now))
	require.NoError(t, requests.UpdateStatus(ctx, request))

	reviewed, err := requests.FindByID(ctx, request.ID)
	require.NoError(t, err)
	require.NotNil(t, reviewed)
	require.NotNil(t, reviewed.ReviewedAt)
	assert.True(t, now.Equal(*reviewed.ReviewedAt))
}

func TestTransactionRepository_ListAndTotals(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fixture := testutil.NewFixture(t, db, now)
	repo := NewTransactionRepository(db)

	group := fixture.Group("alice", "bob")
	fixture.Claim(group.ID, "bob", 1500)

	approved, err := entity.NewContributionClaim(group.ID, "alice", 2000, "REF-A", "", now.Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, approved.Approve("alice", now.Add(time.Minute)))
	require.NoError(t, repo.Create(ctx, approved))

	payout, err := entity.NewPayoutRecord(group.ID, "bob", 700, "", "alice", now.Add(2*time.Minute))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, payout))

	fee := entity.NewFeeRecord(group.ID, "bob", 500, "FEE-1", "ops", now.Add(3*time.Minute))
	require.NoError(t, repo.Create(ctx, fee))

	page, err := repo.List(ctx, adapter.TransactionFilter{GroupID: group.ID}, adapter.TransactionPagination{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Transactions, 2)
	assert.Equal(t, fee.ID, page.Transactions[0].ID)
	assert.Equal(t, payout.ID, page.Transactions[1].ID)

	contribution := entity.TransactionTypeContribution
	page, err = repo.List(ctx, adapter.TransactionFilter{GroupID: group.ID, Type: &contribution, UserID: "bob"}, adapter.TransactionPagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 1)
	assert.Equal(t, int64(1500), page.Transactions[0].AmountCents)

	totals, err := repo.Totals(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), totals.ApprovedContributionsCents)
	assert.Equal(t, int64(1500), totals.PendingClaimsCents)
	assert.Equal(t, int64(700), totals.PendingPayoutsCents)
	assert.Equal(t, int64(0), totals.CompletedPayoutsCents)
	assert.Equal(t, int64(500), totals.ApprovedFeesCents)
}

func TestTransactionRepository_UpdateStatusRequiresExpected(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fixture := testutil.NewFixture(t, db, now)
	repo := NewTransactionRepository(db)

	group := fixture.Group("alice", "bob")
	claim := fixture.Claim(group.ID, "bob", 1500)

	require.NoError(t, claim.Approve("alice", now))
	require.NoError(t, repo.UpdateStatus(ctx, claim, entity.TransactionStatusPending))

	err := repo.UpdateStatus(ctx, claim, entity.TransactionStatusPending)
	assert.ErrorIs(t, err, domainerror.ErrConcurrentModification)

	stored := fixture.ReloadTransaction(claim.ID)
	assert.Equal(t, entity.TransactionStatusApproved, stored.Status)
}

func TestFeeRequestRepository_ReviewOnlyOnce(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fixture := testutil.NewFixture(t, db, now)
	repo := NewFeeRequestRepository(db)

	group := fixture.Group("alice")
	request := entity.NewFeeRequest(group.ID, "alice", 500, "BANK-1", now)
	require.NoError(t, repo.Create(ctx, request))

	require.NoError(t, request.Approve("ops", now))
	require.NoError(t, repo.UpdateStatus(ctx, request))

	again := entity.NewFeeRequest(group.ID, "alice", 500, "BANK-1", now)
	again.ID = request.ID
	require.NoError(t, again.Reject("ops", now))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, again), domainerror.ErrConcurrentModification)

	pending := entity.FeeRequestPending
	listed, err := repo.List(ctx, adapter.FeeRequestFilter{Status: &pending}, 10)
	require.NoError(t, err)
	assert.Empty(t, listed)

	stored, err := repo.FindByID(ctx, request.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entity.FeeRequestApproved, stored.Status)
}

func TestAuditLogRepository_IdempotentAndNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewAuditLogRepository(db)
	groupID := uuid.New()

	older := &entity.AuditLogEntry{
		ID:          uuid.New(),
		GroupID:     groupID,
		Action:      entity.EventGroupCreated,
		Description: "created",
		PerformedBy: "alice",
		Timestamp:   now,
	}
	newer := &entity.AuditLogEntry{
		ID:          uuid.New(),
		GroupID:     groupID,
		Action:      entity.EventMemberJoined,
		Description: "bob joined",
		PerformedBy: "bob",
		Metadata:    map[string]interface{}{"role": "member"},
		Timestamp:   now.Add(time.Minute),
	}

	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, newer))

	entries, err := repo.ListByGroup(ctx, groupID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, newer.ID, entries[0].ID)
	assert.Equal(t, "member", entries[0].Metadata["role"])
	assert.Equal(t, older.ID, entries[1].ID)
}

func TestEmailQueueRepository_PendingAndCleanup(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewEmailQueueRepository(db)

	bob := entity.Recipient{UserID: "bob", Name: "Bob", Email: "bob@example.com"}
	carol := entity.Recipient{UserID: "carol", Name: "Carol", Email: "carol@example.com"}
	groupID := uuid.New()
	source := entity.EmailSource{EventID: uuid.New(), GroupID: &groupID}

	due := entity.NewEmailJob(source, entity.TemplateMemberJoined, bob, "Welcome", nil, now.Add(-time.Minute))
	later := entity.NewEmailJob(entity.EmailSource{}, entity.TemplateNotification, bob, "Later", nil, now.Add(time.Hour))
	sent := entity.NewEmailJob(source, entity.TemplateMemberJoined, carol, "Welcome", nil, now.Add(-48*time.Hour))
	for _, job := range []*entity.EmailJob{due, later, sent} {
		created, err := repo.Create(ctx, job)
		require.NoError(t, err)
		assert.True(t, created)
	}

	sent.MarkSent("re_123", now.Add(-47*time.Hour))
	require.NoError(t, repo.Update(ctx, sent))

	pending, err := repo.GetPendingJobs(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, due.ID, pending[0].ID)
	assert.Equal(t, bob, pending[0].Recipient)
	assert.Equal(t, source.EventID, pending[0].Source.EventID)

	byRecipient, err := repo.GetByRecipient(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Len(t, byRecipient, 2)

	byGroup, err := repo.ListByGroup(ctx, groupID, 10)
	require.NoError(t, err)
	assert.Len(t, byGroup, 2)

	deleted, err := repo.DeleteOldSentJobs(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestEmailQueueRepository_SameEventQueuedOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewEmailQueueRepository(testutil.NewDB(t))

	source := entity.EmailSource{EventID: uuid.New()}
	bob := entity.Recipient{UserID: "bob", Email: "bob@example.com"}

	created, err := repo.Create(ctx, entity.NewEmailJob(source, entity.TemplateClaimDecision, bob, "Approved", nil, now))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, entity.NewEmailJob(source, entity.TemplateClaimDecision, bob, "Approved", nil, now))
	require.NoError(t, err)
	assert.False(t, created)

	jobs, err := repo.GetByRecipient(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}
