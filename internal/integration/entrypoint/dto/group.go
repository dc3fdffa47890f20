package dto

import (
	"time"

	"github.com/savings-circle/backend/internal/domain/entity"
)

// CreateGroupRequest represents the request body for group creation.
type CreateGroupRequest struct {
	Name               string `json:"name" binding:"required,min=1,max=100"`
	Description        string `json:"description" binding:"max=500"`
	ContributionAmount string `json:"contribution_amount" binding:"required"`
	Currency           string `json:"currency" binding:"required,len=3"`
}

// JoinGroupRequest represents the request body for redeeming an invite code.
type JoinGroupRequest struct {
	InviteCode string `json:"invite_code" binding:"required"`
}

// ChangeMemberRoleRequest represents the request body for changing a member's role.
type ChangeMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin member"`
}

// UpdateGroupStatusRequest represents the request body for an operator status change.
type UpdateGroupStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active suspended archived"`
}

// GroupResponse represents a single group in API responses.
type GroupResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	OwnerID            string    `json:"owner_id"`
	ContributionAmount Money     `json:"contribution_amount"`
	Currency           string    `json:"currency"`
	CurrentBalance     Money     `json:"current_balance"`
	MembersCount       int       `json:"members_count"`
	InviteCode         string    `json:"invite_code,omitempty"`
	Status             string    `json:"status"`
	NextPayoutDate     *string   `json:"next_payout_date"`
	CreatedAt          time.Time `json:"created_at"`
}

// GroupMemberResponse represents a group member in API responses.
type GroupMemberResponse struct {
	UserID              string    `json:"user_id"`
	DisplayName         string    `json:"display_name"`
	Email               string    `json:"email,omitempty"`
	Phone               string    `json:"phone,omitempty"`
	Role                string    `json:"role"`
	ContributionBalance Money     `json:"contribution_balance"`
	SubscriptionStatus  string    `json:"subscription_status"`
	SubscriptionEndsAt  *string   `json:"subscription_ends_at"`
	JoinedAt            time.Time `json:"joined_at"`
}

// GroupDetailResponse represents detailed group information.
type GroupDetailResponse struct {
	GroupResponse
	UserRole       string                `json:"user_role"`
	Members        []GroupMemberResponse `json:"members"`
	PayoutSchedule []PayoutEntryResponse `json:"payout_schedule"`
}

// GroupListResponse represents the response for listing groups.
type GroupListResponse struct {
	Groups []GroupListItemResponse `json:"groups"`
}

// GroupListItemResponse represents a group in list view.
type GroupListItemResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	MembersCount   int       `json:"members_count"`
	CurrentBalance Money     `json:"current_balance"`
	Currency       string    `json:"currency"`
	Status         string    `json:"status"`
	Role           string    `json:"role"`
	NextPayoutDate *string   `json:"next_payout_date"`
	CreatedAt      time.Time `json:"created_at"`
}

// MembershipResponse is returned after joining or creating a group.
type MembershipResponse struct {
	Group  GroupResponse       `json:"group"`
	Member GroupMemberResponse `json:"member"`
}

// ActivityResponse represents one audit entry.
type ActivityResponse struct {
	ID          string                 `json:"id"`
	Action      string                 `json:"action"`
	Description string                 `json:"description"`
	PerformedBy string                 `json:"performed_by"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

// ActivityListResponse represents the activity feed of a group.
type ActivityListResponse struct {
	Activity []ActivityResponse `json:"activity"`
}

// ToGroupResponse converts a domain Group to a GroupResponse DTO. The invite code is
// only shown to admins.
func ToGroupResponse(g *entity.Group, showInvite bool) GroupResponse {
	resp := GroupResponse{
		ID:                 g.ID.String(),
		Name:               g.Name,
		Description:        g.Description,
		OwnerID:            g.OwnerID,
		ContributionAmount: NewMoney(g.ContributionAmountCents),
		Currency:           g.Currency,
		CurrentBalance:     NewMoney(g.CurrentBalanceCents),
		MembersCount:       g.MembersCount,
		Status:             string(g.Status),
		NextPayoutDate:     formatDate(g.NextPayoutDate),
		CreatedAt:          g.CreatedAt,
	}
	if showInvite {
		resp.InviteCode = g.InviteCode
	}
	return resp
}

// ToGroupMemberResponse converts a domain Member. status overrides the stored
// subscription status when the effective one is known.
func ToGroupMemberResponse(m *entity.Member, status entity.SubscriptionStatus) GroupMemberResponse {
	if status == "" {
		status = m.SubscriptionStatus
	}
	return GroupMemberResponse{
		UserID:              m.UserID,
		DisplayName:         m.DisplayName,
		Email:               m.Email,
		Phone:               m.Phone,
		Role:                string(m.Role),
		ContributionBalance: NewMoney(m.ContributionBalanceCents),
		SubscriptionStatus:  string(status),
		SubscriptionEndsAt:  formatDate(m.SubscriptionEndsAt),
		JoinedAt:            m.JoinedAt,
	}
}

// ToGroupDetailResponse builds the detail view for a caller holding role.
func ToGroupDetailResponse(g *entity.Group, members []*entity.Member, role entity.MemberRole, subscriptions map[string]entity.SubscriptionStatus) GroupDetailResponse {
	resp := GroupDetailResponse{
		GroupResponse:  ToGroupResponse(g, role == entity.MemberRoleAdmin),
		UserRole:       string(role),
		Members:        make([]GroupMemberResponse, 0, len(members)),
		PayoutSchedule: ToPayoutEntryResponses(g.PayoutSchedule),
	}
	for _, m := range members {
		resp.Members = append(resp.Members, ToGroupMemberResponse(m, subscriptions[m.UserID]))
	}
	return resp
}

// ToGroupListResponse converts list items.
func ToGroupListResponse(items []*entity.GroupListItem) GroupListResponse {
	resp := GroupListResponse{Groups: make([]GroupListItemResponse, 0, len(items))}
	for _, item := range items {
		resp.Groups = append(resp.Groups, GroupListItemResponse{
			ID:             item.ID.String(),
			Name:           item.Name,
			MembersCount:   item.MembersCount,
			CurrentBalance: NewMoney(item.CurrentBalanceCents),
			Currency:       item.Currency,
			Status:         string(item.Status),
			Role:           string(item.Role),
			NextPayoutDate: formatDate(item.NextPayoutDate),
			CreatedAt:      item.CreatedAt,
		})
	}
	return resp
}

// ToActivityListResponse converts audit entries.
func ToActivityListResponse(entries []*entity.AuditLogEntry) ActivityListResponse {
	resp := ActivityListResponse{Activity: make([]ActivityResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Activity = append(resp.Activity, ActivityResponse{
			ID:          e.ID.String(),
			Action:      string(e.Action),
			Description: e.Description,
			PerformedBy: e.PerformedBy,
			Metadata:    e.Metadata,
			Timestamp:   e.Timestamp,
		})
	}
	return resp
}
