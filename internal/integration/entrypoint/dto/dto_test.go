package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savings-circle/backend/internal/domain/entity"
)

func TestNewMoney(t *testing.T) {
	assert.Equal(t, Money{Cents: 5000, Amount: "50.00"}, NewMoney(5000))
	assert.Equal(t, Money{Cents: 5, Amount: "0.05"}, NewMoney(5))
	assert.Equal(t, Money{Cents: -1250, Amount: "-12.50"}, NewMoney(-1250))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-04-01")
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))

	d, err = ParseDate("2026-04-01T10:00:00+03:00")
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2026, 4, 1, 7, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.UTC, d.Location())

	_, err = ParseDate("01/04/2026")
	assert.Error(t, err)
}

func TestToGroupDetailResponse_InviteCodeVisibility(t *testing.T) {
	g := &entity.Group{
		ID:                      uuid.New(),
		Name:                    "Circle",
		OwnerID:                 "owner",
		ContributionAmountCents: 1000,
		Currency:                "KES",
		InviteCode:              "ABC234",
		Status:                  entity.GroupStatusActive,
	}
	members := []*entity.Member{{UserID: "owner", Role: entity.MemberRoleAdmin, SubscriptionStatus: entity.SubscriptionActive}}

	admin := ToGroupDetailResponse(g, members, entity.MemberRoleAdmin, map[string]entity.SubscriptionStatus{"owner": entity.SubscriptionExpired})
	assert.Equal(t, "ABC234", admin.InviteCode)
	require.Len(t, admin.Members, 1)
	assert.Equal(t, "expired", admin.Members[0].SubscriptionStatus)
	assert.Empty(t, admin.PayoutSchedule)

	member := ToGroupDetailResponse(g, members, entity.MemberRoleMember, nil)
	assert.Empty(t, member.InviteCode)
	assert.Equal(t, "active", member.Members[0].SubscriptionStatus)
}

func TestToPayoutEntryResponse(t *testing.T) {
	txID := uuid.New()
	paidAt := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	resp := ToPayoutEntryResponse(entity.PayoutEntry{
		UserID:        "bob",
		PayoutDate:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:        entity.PayoutStatusPaid,
		TransactionID: &txID,
		PaidAt:        &paidAt,
	})

	assert.Equal(t, "2026-04-01", resp.PayoutDate)
	require.NotNil(t, resp.TransactionID)
	assert.Equal(t, txID.String(), *resp.TransactionID)
	require.NotNil(t, resp.PaidAt)
	assert.Equal(t, "2026-04-02T09:00:00Z", *resp.PaidAt)
}
