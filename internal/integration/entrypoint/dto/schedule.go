package dto

import (
	"github.com/savings-circle/backend/internal/domain/entity"
)

// GenerateScheduleRequest represents the request body for laying out a rotation.
type GenerateScheduleRequest struct {
	MemberOrder []string `json:"member_order" binding:"required,min=1"`
	StartDate   string   `json:"start_date" binding:"required"`
	Frequency   string   `json:"frequency" binding:"required"`
}

// ReorderScheduleRequest represents the request body for moving one slot.
type ReorderScheduleRequest struct {
	FromIndex *int `json:"from_index" binding:"required"`
	ToIndex   *int `json:"to_index" binding:"required"`
}

// UpdatePayoutDateRequest represents the request body for moving one payout date.
type UpdatePayoutDateRequest struct {
	PayoutDate string `json:"payout_date" binding:"required"`
}

// PayoutEntryResponse represents one turn of the rotation.
type PayoutEntryResponse struct {
	UserID        string  `json:"user_id"`
	PayoutDate    string  `json:"payout_date"`
	Status        string  `json:"status"`
	TransactionID *string `json:"transaction_id"`
	PaidAt        *string `json:"paid_at"`
}

// ScheduleResponse represents a group's rotation.
type ScheduleResponse struct {
	GroupID        string                `json:"group_id"`
	Schedule       []PayoutEntryResponse `json:"schedule"`
	Next           *PayoutEntryResponse  `json:"next"`
	NextPayoutDate *string               `json:"next_payout_date"`
}

// NextPayoutResponse represents the next pending turn.
type NextPayoutResponse struct {
	Entry          PayoutEntryResponse `json:"entry"`
	Position       int                 `json:"position"`
	NextPayoutDate *string             `json:"next_payout_date"`
}

// ToPayoutEntryResponse converts a rotation entry.
func ToPayoutEntryResponse(e entity.PayoutEntry) PayoutEntryResponse {
	resp := PayoutEntryResponse{
		UserID:     e.UserID,
		PayoutDate: e.PayoutDate.UTC().Format(DateLayout),
		Status:     string(e.Status),
		PaidAt:     formatDate(e.PaidAt),
	}
	if e.TransactionID != nil {
		id := e.TransactionID.String()
		resp.TransactionID = &id
	}
	return resp
}

// ToPayoutEntryResponses converts a whole rotation.
func ToPayoutEntryResponses(entries []entity.PayoutEntry) []PayoutEntryResponse {
	out := make([]PayoutEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToPayoutEntryResponse(e))
	}
	return out
}
