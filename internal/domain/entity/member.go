package entity

import (
	"time"

	"github.com/google/uuid"
)

// MemberRole represents the role of a member in a group.
type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

// IsValid reports whether the role is known.
func (r MemberRole) IsValid() bool {
	return r == MemberRoleAdmin || r == MemberRoleMember
}

// SubscriptionStatus is the stored subscription state of a member.
type SubscriptionStatus string

const (
	SubscriptionUnpaid          SubscriptionStatus = "unpaid"
	SubscriptionPendingApproval SubscriptionStatus = "pending_approval"
	SubscriptionActive          SubscriptionStatus = "active"
	SubscriptionExpired         SubscriptionStatus = "expired"
)

// DefaultSubscriptionPeriod is the length of one paid or free activation.
const DefaultSubscriptionPeriod = 30 * 24 * time.Hour

// Member is a user's membership in one group.
type Member struct {
	GroupID                  uuid.UUID
	UserID                   string
	Role                     MemberRole
	ContributionBalanceCents int64
	SubscriptionStatus       SubscriptionStatus
	SubscriptionEndsAt       *time.Time
	DisplayName              string
	Email                    string
	Phone                    string
	JoinedAt                 time.Time
	Version                  int64
}

// NewMember creates a member with a zero balance and an unpaid subscription.
func NewMember(groupID uuid.UUID, principal Principal, role MemberRole, now time.Time) *Member {
	return &Member{
		GroupID:            groupID,
		UserID:             principal.UserID,
		Role:               role,
		SubscriptionStatus: SubscriptionUnpaid,
		DisplayName:        principal.Name,
		Email:              principal.Email,
		Phone:              principal.Phone,
		JoinedAt:           now,
		Version:            1,
	}
}

// Credit adds an approved contribution to the member's running total. It reports
// false and leaves the total unchanged when the sum would overflow.
func (m *Member) Credit(amountCents int64) bool {
	if !canAdd(m.ContributionBalanceCents, amountCents) {
		return false
	}
	m.ContributionBalanceCents += amountCents
	return true
}

// IsAdmin reports whether the member administers the group.
func (m *Member) IsAdmin() bool {
	return m.Role == MemberRoleAdmin
}

// EffectiveSubscriptionStatus derives expiry at read time: an active subscription
// whose end date has passed is expired even if the stored status lags behind.
func (m *Member) EffectiveSubscriptionStatus(now time.Time) SubscriptionStatus {
	if m.SubscriptionStatus == SubscriptionActive && m.SubscriptionEndsAt != nil && m.SubscriptionEndsAt.Before(now) {
		return SubscriptionExpired
	}
	return m.SubscriptionStatus
}

// IsLocked reports whether gated actions are blocked for the member.
func (m *Member) IsLocked(now time.Time) bool {
	return m.EffectiveSubscriptionStatus(now) != SubscriptionActive
}

// IsStale reports whether the stored status disagrees with the derived one.
func (m *Member) IsStale(now time.Time) bool {
	return m.EffectiveSubscriptionStatus(now) != m.SubscriptionStatus
}

// ActivateSubscription starts a new period from now.
func (m *Member) ActivateSubscription(now time.Time, period time.Duration) {
	endsAt := now.Add(period)
	m.SubscriptionStatus = SubscriptionActive
	m.SubscriptionEndsAt = &endsAt
}

// Notify returns the contact snapshot used for notifications.
func (m *Member) Notify() Recipient {
	return Recipient{
		UserID: m.UserID,
		Name:   m.DisplayName,
		Email:  m.Email,
		Phone:  m.Phone,
	}
}
