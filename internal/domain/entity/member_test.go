package entity

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMember_EffectiveSubscriptionStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name       string
		status     SubscriptionStatus
		endsAt     *time.Time
		want       SubscriptionStatus
		wantLocked bool
	}{
		{"active and current", SubscriptionActive, &future, SubscriptionActive, false},
		{"active but past end date", SubscriptionActive, &past, SubscriptionExpired, true},
		{"active without end date", SubscriptionActive, nil, SubscriptionActive, false},
		{"unpaid", SubscriptionUnpaid, nil, SubscriptionUnpaid, true},
		{"pending approval", SubscriptionPendingApproval, nil, SubscriptionPendingApproval, true},
		{"expired stays expired", SubscriptionExpired, &past, SubscriptionExpired, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Member{SubscriptionStatus: tt.status, SubscriptionEndsAt: tt.endsAt}
			if got := m.EffectiveSubscriptionStatus(now); got != tt.want {
				t.Errorf("EffectiveSubscriptionStatus() = %s, want %s", got, tt.want)
			}
			if got := m.IsLocked(now); got != tt.wantLocked {
				t.Errorf("IsLocked() = %v, want %v", got, tt.wantLocked)
			}
		})
	}
}

func TestMember_ActivateSubscription(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	m := NewMember(uuid.New(), Principal{UserID: "u1"}, MemberRoleMember, now)

	m.ActivateSubscription(now, DefaultSubscriptionPeriod)

	if m.SubscriptionStatus != SubscriptionActive {
		t.Fatalf("status = %s", m.SubscriptionStatus)
	}
	if want := now.AddDate(0, 0, 30); !m.SubscriptionEndsAt.Equal(want) {
		t.Errorf("ends at = %s, want %s", m.SubscriptionEndsAt, want)
	}
}

func TestGroup_MemberIndex(t *testing.T) {
	now := time.Now().UTC()
	g := NewGroup("Circle", "", "owner", 5000, "USD", "ABC123", now)

	g.AddMember("owner")
	g.AddMember("u2")
	g.AddMember("u2")

	if g.MembersCount != 2 || len(g.MemberIDs) != 2 {
		t.Fatalf("count = %d, ids = %v", g.MembersCount, g.MemberIDs)
	}

	g.SetSchedule(BuildSchedule([]string{"owner", "u2"}, now, PayoutFrequencyWeekly), now)

	if !g.RemoveMember("u2") {
		t.Fatal("expected removal")
	}
	if g.HasMember("u2") || g.MembersCount != 1 {
		t.Errorf("member index not updated: %v", g.MemberIDs)
	}
	if len(g.PayoutSchedule) != 1 {
		t.Errorf("pending rotation entries of the removed member should be dropped, got %d", len(g.PayoutSchedule))
	}
	if g.RemoveMember("nobody") {
		t.Error("removing an unknown user should report false")
	}
}

func TestCredit_RefusesOverflow(t *testing.T) {
	g := &Group{CurrentBalanceCents: math.MaxInt64 - 10}
	if !g.CanCredit(10) {
		t.Error("crediting up to the maximum should be allowed")
	}
	if g.CanCredit(11) {
		t.Error("crediting past the maximum should be refused")
	}

	m := &Member{ContributionBalanceCents: math.MaxInt64/2 + 1}
	if m.Credit(math.MaxInt64/2 + 1) {
		t.Fatal("expected overflowing credit to be refused")
	}
	if m.ContributionBalanceCents != math.MaxInt64/2+1 {
		t.Errorf("balance changed to %d", m.ContributionBalanceCents)
	}
	if !m.Credit(5) || m.ContributionBalanceCents != math.MaxInt64/2+6 {
		t.Errorf("balance = %d", m.ContributionBalanceCents)
	}
}
