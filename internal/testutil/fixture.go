package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/savings-circle/backend/internal/domain/entity"
	"github.com/savings-circle/backend/internal/integration/persistence/model"
)

// Fixture seeds rows directly, bypassing the use cases under test.
type Fixture struct {
	t   testing.TB
	db  *gorm.DB
	now time.Time
}

// NewFixture creates a fixture writing to db with timestamps at now.
func NewFixture(t testing.TB, db *gorm.DB, now time.Time) *Fixture {
	return &Fixture{t: t, db: db, now: now}
}

// Principal builds a principal with a predictable profile for userID.
func Principal(userID string) entity.Principal {
	return entity.Principal{
		UserID: userID,
		Name:   "User " + userID,
		Email:  userID + "@example.com",
		Phone:  "+10000000000",
	}
}

// Group creates an active group owned by ownerID with the given additional members.
// The owner is an admin; everyone starts with an active subscription.
func (f *Fixture) Group(ownerID string, memberIDs ...string) *entity.Group {
	f.t.Helper()

	code := uuid.NewString()[:6]
	group := entity.NewGroup("Circle "+ownerID, "", ownerID, 5000, "USD", code, f.now)
	group.AddMember(ownerID)
	for _, id := range memberIDs {
		group.AddMember(id)
	}
	if err := f.db.Create(model.GroupFromEntity(group)).Error; err != nil {
		f.t.Fatalf("seed group: %v", err)
	}

	f.Member(group.ID, ownerID, entity.MemberRoleAdmin)
	for _, id := range memberIDs {
		f.Member(group.ID, id, entity.MemberRoleMember)
	}
	return f.Reload(group.ID)
}

// Member inserts a member row with an active subscription. It does not touch the group index.
func (f *Fixture) Member(groupID uuid.UUID, userID string, role entity.MemberRole) *entity.Member {
	f.t.Helper()

	member := entity.NewMember(groupID, Principal(userID), role, f.now)
	member.ActivateSubscription(f.now, entity.DefaultSubscriptionPeriod)
	if err := f.db.Create(model.MemberFromEntity(member)).Error; err != nil {
		f.t.Fatalf("seed member: %v", err)
	}
	return member
}

// SetSubscription overwrites the stored subscription of a member.
func (f *Fixture) SetSubscription(groupID uuid.UUID, userID string, status entity.SubscriptionStatus, endsAt *time.Time) {
	f.t.Helper()

	err := f.db.Model(&model.MemberModel{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Updates(map[string]interface{}{
			"subscription_status":  string(status),
			"subscription_ends_at": model.ToNullTime(endsAt),
		}).Error
	if err != nil {
		f.t.Fatalf("set subscription: %v", err)
	}
}

// SetGroupBalance overwrites the stored group balance.
func (f *Fixture) SetGroupBalance(groupID uuid.UUID, cents int64) {
	f.t.Helper()

	err := f.db.Model(&model.GroupModel{}).
		Where("id = ?", groupID).
		Update("current_balance_cents", cents).Error
	if err != nil {
		f.t.Fatalf("set group balance: %v", err)
	}
}

// SetGroupStatus overwrites the stored group status.
func (f *Fixture) SetGroupStatus(groupID uuid.UUID, status entity.GroupStatus) {
	f.t.Helper()

	err := f.db.Model(&model.GroupModel{}).
		Where("id = ?", groupID).
		Update("status", string(status)).Error
	if err != nil {
		f.t.Fatalf("set group status: %v", err)
	}
}

// Claim inserts a pending contribution claim.
func (f *Fixture) Claim(groupID uuid.UUID, userID string, amountCents int64) *entity.Transaction {
	f.t.Helper()

	claim, err := entity.NewContributionClaim(groupID, userID, amountCents, "REF-"+uuid.NewString()[:8], "", f.now)
	if err != nil {
		f.t.Fatalf("build claim: %v", err)
	}
	if err := f.db.Create(model.LedgerTransactionFromEntity(claim)).Error; err != nil {
		f.t.Fatalf("seed claim: %v", err)
	}
	return claim
}

// Reload reads a group back from the store.
func (f *Fixture) Reload(groupID uuid.UUID) *entity.Group {
	f.t.Helper()

	var m model.GroupModel
	if err := f.db.WithContext(context.Background()).Where("id = ?", groupID).First(&m).Error; err != nil {
		f.t.Fatalf("reload group: %v", err)
	}
	return m.ToEntity()
}

// ReloadMember reads a member back from the store, or nil when it does not exist.
func (f *Fixture) ReloadMember(groupID uuid.UUID, userID string) *entity.Member {
	f.t.Helper()

	var m model.MemberModel
	result := f.db.Where("group_id = ? AND user_id = ?", groupID, userID).Limit(1).Find(&m)
	if result.Error != nil {
		f.t.Fatalf("reload member: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil
	}
	return m.ToEntity()
}

// ReloadTransaction reads a ledger row back from the store.
func (f *Fixture) ReloadTransaction(id uuid.UUID) *entity.Transaction {
	f.t.Helper()

	var m model.LedgerTransactionModel
	if err := f.db.Where("id = ?", id).First(&m).Error; err != nil {
		f.t.Fatalf("reload transaction: %v", err)
	}
	return m.ToEntity()
}
