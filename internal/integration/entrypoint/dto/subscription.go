package dto

import (
	"time"

	"github.com/savings-circle/backend/internal/domain/entity"
)

// RequestActivationRequest represents the request body for declaring a fee payment.
type RequestActivationRequest struct {
	RefNumber string `json:"ref_number"`
}

// SetPlatformFeeRequest represents the request body for changing the subscription fee.
type SetPlatformFeeRequest struct {
	Fee string `json:"fee" binding:"required"`
}

// SubscriptionResponse represents a member's effective subscription.
type SubscriptionResponse struct {
	Status string  `json:"status"`
	Locked bool    `json:"locked"`
	EndsAt *string `json:"ends_at"`
	Fee    Money   `json:"fee"`
}

// FeeRequestResponse represents a fee request.
type FeeRequestResponse struct {
	ID         string    `json:"id"`
	GroupID    string    `json:"group_id"`
	UserID     string    `json:"user_id"`
	Amount     Money     `json:"amount"`
	RefNumber  string    `json:"ref_number"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	ReviewedAt *string   `json:"reviewed_at"`
	ReviewedBy string    `json:"reviewed_by,omitempty"`
}

// FeeRequestListResponse represents the operator review queue.
type FeeRequestListResponse struct {
	FeeRequests []FeeRequestResponse `json:"fee_requests"`
}

// ActivationResponse represents a fee request together with the member it applies to.
type ActivationResponse struct {
	FeeRequest *FeeRequestResponse `json:"fee_request,omitempty"`
	Member     GroupMemberResponse `json:"member"`
}

// ToFeeRequestResponse converts a domain FeeRequest.
func ToFeeRequestResponse(r *entity.FeeRequest) FeeRequestResponse {
	return FeeRequestResponse{
		ID:         r.ID.String(),
		GroupID:    r.GroupID.String(),
		UserID:     r.UserID,
		Amount:     NewMoney(r.AmountCents),
		RefNumber:  r.RefNumber,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
		ReviewedAt: formatDate(r.ReviewedAt),
		ReviewedBy: r.ReviewedBy,
	}
}

// ToFeeRequestListResponse converts the review queue.
func ToFeeRequestListResponse(requests []*entity.FeeRequest) FeeRequestListResponse {
	resp := FeeRequestListResponse{FeeRequests: make([]FeeRequestResponse, 0, len(requests))}
	for _, r := range requests {
		resp.FeeRequests = append(resp.FeeRequests, ToFeeRequestResponse(r))
	}
	return resp
}

// ToActivationResponse converts an activation result. request may be nil.
func ToActivationResponse(request *entity.FeeRequest, member *entity.Member) ActivationResponse {
	resp := ActivationResponse{Member: ToGroupMemberResponse(member, "")}
	if request != nil {
		fr := ToFeeRequestResponse(request)
		resp.FeeRequest = &fr
	}
	return resp
}

// PlatformFeeResponse represents the configured subscription fee.
type PlatformFeeResponse struct {
	Fee Money `json:"fee"`
}
