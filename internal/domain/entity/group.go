// Package entity defines the core business entities for the domain layer.
package entity

import (
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
)

// GroupStatus represents the lifecycle status of a savings group.
type GroupStatus string

const (
	GroupStatusActive    GroupStatus = "active"
	GroupStatusSuspended GroupStatus = "suspended"
	GroupStatusArchived  GroupStatus = "archived"
)

// IsValid reports whether the status is a known group status.
func (s GroupStatus) IsValid() bool {
	switch s {
	case GroupStatusActive, GroupStatusSuspended, GroupStatusArchived:
		return true
	}
	return false
}

// Group is a savings circle. CurrentBalanceCents and the member index are only
// changed together with the rows they summarize.
type Group struct {
	ID                      uuid.UUID
	Name                    string
	Description             string
	OwnerID                 string
	ContributionAmountCents int64
	Currency                string
	CurrentBalanceCents     int64
	MembersCount            int
	MemberIDs               []string
	InviteCode              string
	Status                  GroupStatus
	PayoutSchedule          []PayoutEntry
	NextPayoutDate          *time.Time
	Version                 int64
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// NewGroup creates a new active Group with no members yet.
func NewGroup(name, description, ownerID string, contributionAmountCents int64, currency, inviteCode string, now time.Time) *Group {
	return &Group{
		ID:                      uuid.New(),
		Name:                    name,
		Description:             description,
		OwnerID:                 ownerID,
		ContributionAmountCents: contributionAmountCents,
		Currency:                currency,
		MemberIDs:               []string{},
		InviteCode:              inviteCode,
		Status:                  GroupStatusActive,
		PayoutSchedule:          []PayoutEntry{},
		Version:                 1,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

// IsActive reports whether the group accepts joins and money movements.
func (g *Group) IsActive() bool {
	return g.Status == GroupStatusActive
}

// IsOwner reports whether userID created the group.
func (g *Group) IsOwner(userID string) bool {
	return g.OwnerID == userID
}

// HasMember reports whether userID is in the member index.
func (g *Group) HasMember(userID string) bool {
	return slices.Contains(g.MemberIDs, userID)
}

// AddMember appends userID to the member index and keeps the count in step.
func (g *Group) AddMember(userID string) {
	if g.HasMember(userID) {
		return
	}
	g.MemberIDs = append(g.MemberIDs, userID)
	g.MembersCount = len(g.MemberIDs)
}

// RemoveMember drops userID from the member index and its pending rotation entries.
func (g *Group) RemoveMember(userID string) bool {
	idx := slices.Index(g.MemberIDs, userID)
	if idx < 0 {
		return false
	}
	g.MemberIDs = slices.Delete(g.MemberIDs, idx, idx+1)
	g.MembersCount = len(g.MemberIDs)

	g.PayoutSchedule = slices.DeleteFunc(g.PayoutSchedule, func(e PayoutEntry) bool {
		return e.UserID == userID && e.Status == PayoutStatusPending
	})
	return true
}

// CanCredit reports whether amountCents can be added without overflowing the balance.
func (g *Group) CanCredit(amountCents int64) bool {
	return canAdd(g.CurrentBalanceCents, amountCents)
}

// Credit adds an approved contribution to the group balance. Callers check CanCredit first.
func (g *Group) Credit(amountCents int64) {
	g.CurrentBalanceCents += amountCents
}

func canAdd(balance, amountCents int64) bool {
	if amountCents >= 0 {
		return balance <= math.MaxInt64-amountCents
	}
	return balance >= math.MinInt64-amountCents
}

// CanDebit reports whether the balance covers amountCents.
func (g *Group) CanDebit(amountCents int64) bool {
	return g.CurrentBalanceCents >= amountCents
}

// Debit removes a confirmed payout from the group balance. Callers check CanDebit first.
func (g *Group) Debit(amountCents int64) {
	g.CurrentBalanceCents -= amountCents
}

// SetSchedule replaces the rotation and recomputes the next payout date.
func (g *Group) SetSchedule(entries []PayoutEntry, today time.Time) {
	g.PayoutSchedule = entries
	g.RefreshNextPayoutDate(today)
}

// RefreshNextPayoutDate recomputes the denormalized next payout date.
func (g *Group) RefreshNextPayoutDate(today time.Time) {
	g.NextPayoutDate = NextPayoutDate(g.PayoutSchedule, today)
}

// GroupListItem represents a group in a list view.
type GroupListItem struct {
	ID                  uuid.UUID
	Name                string
	MembersCount        int
	CurrentBalanceCents int64
	Currency            string
	Status              GroupStatus
	NextPayoutDate      *time.Time
	Role                MemberRole
	CreatedAt           time.Time
}
