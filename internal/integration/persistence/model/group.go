// Package model defines database models for persistence layer.
package model

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/domain/entity"
)

// GroupModel represents the groups table in the database. The member index and the
// rotation are stored as JSON text so the group stays a single row.
type GroupModel struct {
	ID                      uuid.UUID    `gorm:"type:uuid;primaryKey"`
	Name                    string       `gorm:"type:varchar(100);not null"`
	Description             string       `gorm:"type:varchar(500)"`
	OwnerID                 string       `gorm:"type:varchar(128);not null;index"`
	ContributionAmountCents int64        `gorm:"not null;default:0"`
	Currency                string       `gorm:"type:varchar(3);not null"`
	CurrentBalanceCents     int64        `gorm:"not null;default:0"`
	MembersCount            int          `gorm:"not null;default:0"`
	MemberIDs               string       `gorm:"type:text;not null"`
	InviteCode              string       `gorm:"type:varchar(6);not null;uniqueIndex"`
	Status                  string       `gorm:"type:varchar(20);not null;default:'active'"`
	PayoutSchedule          string       `gorm:"type:text;not null"`
	NextPayoutDate          sql.NullTime
	Version                 int64        `gorm:"not null;default:1"`
	CreatedAt               time.Time    `gorm:"not null"`
	UpdatedAt               time.Time    `gorm:"not null"`
}

// TableName returns the table name for the GroupModel.
func (GroupModel) TableName() string {
	return "groups"
}

// ToEntity converts a GroupModel to a domain Group entity.
func (m *GroupModel) ToEntity() *entity.Group {
	memberIDs := []string{}
	if m.MemberIDs != "" {
		if err := json.Unmarshal([]byte(m.MemberIDs), &memberIDs); err != nil {
			slog.Error("Failed to unmarshal group member index", "error", err, "group_id", m.ID)
		}
	}

	schedule := []entity.PayoutEntry{}
	if m.PayoutSchedule != "" {
		if err := json.Unmarshal([]byte(m.PayoutSchedule), &schedule); err != nil {
			slog.Error("Failed to unmarshal payout schedule", "error", err, "group_id", m.ID)
		}
	}

	var nextPayout *time.Time
	if m.NextPayoutDate.Valid {
		d := m.NextPayoutDate.Time.UTC()
		nextPayout = &d
	}

	return &entity.Group{
		ID:                      m.ID,
		Name:                    m.Name,
		Description:             m.Description,
		OwnerID:                 m.OwnerID,
		ContributionAmountCents: m.ContributionAmountCents,
		Currency:                m.Currency,
		CurrentBalanceCents:     m.CurrentBalanceCents,
		MembersCount:            m.MembersCount,
		MemberIDs:               memberIDs,
		InviteCode:              m.InviteCode,
		Status:                  entity.GroupStatus(m.Status),
		PayoutSchedule:          schedule,
		NextPayoutDate:          nextPayout,
		Version:                 m.Version,
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
}

// GroupFromEntity creates a GroupModel from a domain Group entity.
func GroupFromEntity(group *entity.Group) *GroupModel {
	memberIDs := group.MemberIDs
	if memberIDs == nil {
		memberIDs = []string{}
	}
	memberJSON, err := json.Marshal(memberIDs)
	if err != nil {
		slog.Error("Failed to marshal group member index", "error", err, "group_id", group.ID)
		memberJSON = []byte("[]")
	}

	schedule := group.PayoutSchedule
	if schedule == nil {
		schedule = []entity.PayoutEntry{}
	}
	scheduleJSON, err := json.Marshal(schedule)
	if err != nil {
		slog.Error("Failed to marshal payout schedule", "error", err, "group_id", group.ID)
		scheduleJSON = []byte("[]")
	}

	var nextPayout sql.NullTime
	if group.NextPayoutDate != nil {
		nextPayout = sql.NullTime{Time: *group.NextPayoutDate, Valid: true}
	}

	return &GroupModel{
		ID:                      group.ID,
		Name:                    group.Name,
		Description:             group.Description,
		OwnerID:                 group.OwnerID,
		ContributionAmountCents: group.ContributionAmountCents,
		Currency:                group.Currency,
		CurrentBalanceCents:     group.CurrentBalanceCents,
		MembersCount:            group.MembersCount,
		MemberIDs:               string(memberJSON),
		InviteCode:              group.InviteCode,
		Status:                  string(group.Status),
		PayoutSchedule:          string(scheduleJSON),
		NextPayoutDate:          nextPayout,
		Version:                 group.Version,
		CreatedAt:               group.CreatedAt,
		UpdatedAt:               group.UpdatedAt,
	}
}

// MemberModel represents the group_members table. The primary key is the pair
// (group_id, user_id), so a user can hold at most one membership per group.
type MemberModel struct {
	GroupID                  uuid.UUID    `gorm:"type:uuid;primaryKey"`
	UserID                   string       `gorm:"type:varchar(128);primaryKey;index"`
	Role                     string       `gorm:"type:varchar(20);not null"`
	ContributionBalanceCents int64        `gorm:"not null;default:0"`
	SubscriptionStatus       string       `gorm:"type:varchar(20);not null;default:'unpaid';index"`
	SubscriptionEndsAt       sql.NullTime
	DisplayName              string       `gorm:"type:varchar(255)"`
	Email                    string       `gorm:"type:varchar(255)"`
	Phone                    string       `gorm:"type:varchar(32)"`
	JoinedAt                 time.Time    `gorm:"not null"`
	Version                  int64        `gorm:"not null;default:1"`
}

// TableName returns the table name for the MemberModel.
func (MemberModel) TableName() string {
	return "group_members"
}

// ToEntity converts a MemberModel to a domain Member entity.
func (m *MemberModel) ToEntity() *entity.Member {
	var endsAt *time.Time
	if m.SubscriptionEndsAt.Valid {
		t := m.SubscriptionEndsAt.Time.UTC()
		endsAt = &t
	}

	return &entity.Member{
		GroupID:                  m.GroupID,
		UserID:                   m.UserID,
		Role:                     entity.MemberRole(m.Role),
		ContributionBalanceCents: m.ContributionBalanceCents,
		SubscriptionStatus:       entity.SubscriptionStatus(m.SubscriptionStatus),
		SubscriptionEndsAt:       endsAt,
		DisplayName:              m.DisplayName,
		Email:                    m.Email,
		Phone:                    m.Phone,
		JoinedAt:                 m.JoinedAt,
		Version:                  m.Version,
	}
}

// MemberFromEntity creates a MemberModel from a domain Member entity.
func MemberFromEntity(member *entity.Member) *MemberModel {
	var endsAt sql.NullTime
	if member.SubscriptionEndsAt != nil {
		endsAt = sql.NullTime{Time: *member.SubscriptionEndsAt, Valid: true}
	}

	return &MemberModel{
		GroupID:                  member.GroupID,
		UserID:                   member.UserID,
		Role:                     string(member.Role),
		ContributionBalanceCents: member.ContributionBalanceCents,
		SubscriptionStatus:       string(member.SubscriptionStatus),
		SubscriptionEndsAt:       endsAt,
		DisplayName:              member.DisplayName,
		Email:                    member.Email,
		Phone:                    member.Phone,
		JoinedAt:                 member.JoinedAt,
		Version:                  member.Version,
	}
}
