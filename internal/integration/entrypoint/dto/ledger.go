package dto

import (
	"time"

	"github.com/savings-circle/backend/internal/domain/entity"
)

// SubmitClaimRequest represents the request body for declaring a contribution.
type SubmitClaimRequest struct {
	Amount      string `json:"amount" binding:"required"`
	Reference   string `json:"reference"`
	Description string `json:"description" binding:"max=500"`
}

// ProcessClaimRequest represents the request body for an admin review.
type ProcessClaimRequest struct {
	Action string `json:"action" binding:"required"`
}

// RecordPayoutRequest represents the request body for recording a payout.
type RecordPayoutRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description" binding:"max=500"`
}

// TransactionResponse represents a ledger entry in API responses.
type TransactionResponse struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"group_id"`
	Type        string    `json:"type"`
	Amount      Money     `json:"amount"`
	Status      string    `json:"status"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description,omitempty"`
	Reference   string    `json:"reference,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	ReviewedAt  *string   `json:"reviewed_at"`
	ReviewedBy  string    `json:"reviewed_by,omitempty"`
	ProcessedAt *string   `json:"processed_at"`
}

// TransactionListResponse represents one page of the ledger.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   PaginationResponse    `json:"pagination"`
}

// ClaimListResponse represents one page of claims.
type ClaimListResponse struct {
	Claims     []TransactionResponse `json:"claims"`
	Pagination PaginationResponse    `json:"pagination"`
}

// ProcessClaimResponse represents the result of a claim review.
type ProcessClaimResponse struct {
	Success      bool                `json:"success"`
	Message      string              `json:"message"`
	Claim        TransactionResponse `json:"claim"`
	GroupBalance Money               `json:"group_balance"`
}

// PostingResponse represents the state touched by a payout operation.
type PostingResponse struct {
	Transaction   TransactionResponse `json:"transaction"`
	GroupBalance  Money               `json:"group_balance"`
	MemberBalance Money               `json:"member_balance"`
}

// LedgerSummaryResponse reconciles a group's stored balance against its sources.
type LedgerSummaryResponse struct {
	GroupID               string `json:"group_id"`
	GroupBalance          Money  `json:"group_balance"`
	MemberBalancesTotal   Money  `json:"member_balances_total"`
	ExpectedBalance       Money  `json:"expected_balance"`
	LedgerBalance         Money  `json:"ledger_balance"`
	ApprovedContributions Money  `json:"approved_contributions"`
	CompletedPayouts      Money  `json:"completed_payouts"`
	PendingClaims         Money  `json:"pending_claims"`
	PendingPayouts        Money  `json:"pending_payouts"`
	ApprovedFees          Money  `json:"approved_fees"`
	Consistent            bool   `json:"consistent"`
}

// ToTransactionResponse converts a domain Transaction.
func ToTransactionResponse(t *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID.String(),
		GroupID:     t.GroupID.String(),
		Type:        string(t.Type),
		Amount:      NewMoney(t.AmountCents),
		Status:      string(t.Status),
		UserID:      t.UserID,
		Description: t.Description,
		Reference:   t.Reference,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		ReviewedAt:  formatDate(t.ReviewedAt),
		ReviewedBy:  t.ReviewedBy,
		ProcessedAt: formatDate(t.ProcessedAt),
	}
}

// ToTransactionResponses converts a slice of transactions.
func ToTransactionResponses(txs []*entity.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, ToTransactionResponse(t))
	}
	return out
}

// ToPostingResponse converts the committed state of a payout operation.
func ToPostingResponse(tx *entity.Transaction, group *entity.Group, member *entity.Member) PostingResponse {
	resp := PostingResponse{
		Transaction:  ToTransactionResponse(tx),
		GroupBalance: NewMoney(group.CurrentBalanceCents),
	}
	if member != nil {
		resp.MemberBalance = NewMoney(member.ContributionBalanceCents)
	}
	return resp
}

// ConfirmPayoutRequest represents the recipient confirming the amount they received.
type ConfirmPayoutRequest struct {
	Amount string `json:"amount" binding:"required"`
}
