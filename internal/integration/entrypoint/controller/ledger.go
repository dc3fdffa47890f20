package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/savings-circle/backend/internal/application/usecase/ledger"
	"github.com/savings-circle/backend/internal/integration/entrypoint/dto"
)

// LedgerController handles ledger reads and payout endpoints.
type LedgerController struct {
	engine            *ledger.Engine
	listUseCase       *ledger.ListTransactionsUseCase
	getSummaryUseCase *ledger.GetLedgerSummaryUseCase
}

// NewLedgerController creates a new ledger controller instance.
func NewLedgerController(
	engine *ledger.Engine,
	listUseCase *ledger.ListTransactionsUseCase,
	getSummaryUseCase *ledger.GetLedgerSummaryUseCase,
) *LedgerController {
	return &LedgerController{
		engine:            engine,
		listUseCase:       listUseCase,
		getSummaryUseCase: getSummaryUseCase,
	}
}

// ListTransactions handles GET /groups/:id/transactions requests.
func (c *LedgerController) ListTransactions(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), ledger.ListTransactionsInput{
		GroupID:     groupID,
		RequesterID: principal.UserID,
		Type:        ctx.Query("type"),
		Status:      ctx.Query("status"),
		UserID:      ctx.Query("user_id"),
		Page:        queryInt(ctx, "page", 1),
		Limit:       queryInt(ctx, "limit", 0),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.TransactionListResponse{
		Transactions: dto.ToTransactionResponses(output.Transactions),
		Pagination: dto.PaginationResponse{
			Page:       output.Page,
			Limit:      output.Limit,
			Total:      output.Total,
			TotalPages: output.TotalPages,
		},
	})
}

// Summary handles GET /groups/:id/ledger/summary requests.
func (c *LedgerController) Summary(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	out, err := c.getSummaryUseCase.Execute(ctx.Request.Context(), ledger.GetLedgerSummaryInput{
		GroupID:     groupID,
		RequesterID: principal.UserID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.LedgerSummaryResponse{
		GroupID:               out.GroupID.String(),
		GroupBalance:          dto.NewMoney(out.GroupBalanceCents),
		MemberBalancesTotal:   dto.NewMoney(out.MemberBalancesTotalCents),
		ExpectedBalance:       dto.NewMoney(out.ExpectedBalanceCents),
		LedgerBalance:         dto.NewMoney(out.LedgerBalanceCents),
		ApprovedContributions: dto.NewMoney(out.Totals.ApprovedContributionsCents),
		CompletedPayouts:      dto.NewMoney(out.Totals.CompletedPayoutsCents),
		PendingClaims:         dto.NewMoney(out.Totals.PendingClaimsCents),
		PendingPayouts:        dto.NewMoney(out.Totals.PendingPayoutsCents),
		ApprovedFees:          dto.NewMoney(out.Totals.ApprovedFeesCents),
		Consistent:            out.Consistent,
	})
}

// RecordPayout handles POST /groups/:id/payouts requests.
func (c *LedgerController) RecordPayout(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	var req dto.RecordPayoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badLedgerRequest(ctx, err)
		return
	}
	amount, ok := parseAmount(ctx, req.Amount)
	if !ok {
		return
	}

	posting, err := c.engine.RecordPayout(ctx.Request.Context(), ledger.RecordPayoutInput{
		GroupID:     groupID,
		RecipientID: req.RecipientID,
		AmountCents: amount,
		Description: req.Description,
		ActorID:     principal.UserID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToPostingResponse(posting.Transaction, posting.Group, posting.Member))
}

// ConfirmPayout handles POST /groups/:id/payouts/:transaction_id/confirm requests.
func (c *LedgerController) ConfirmPayout(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}
	txID, ok := transactionIDParam(ctx, "transaction_id")
	if !ok {
		return
	}

	var req dto.ConfirmPayoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badLedgerRequest(ctx, err)
		return
	}
	amount, ok := parseAmount(ctx, req.Amount)
	if !ok {
		return
	}

	posting, err := c.engine.PostPayoutConfirmed(ctx.Request.Context(), ledger.PostPayoutConfirmedInput{
		GroupID:       groupID,
		TransactionID: txID,
		AmountCents:   amount,
		ActorID:       principal.UserID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToPostingResponse(posting.Transaction, posting.Group, posting.Member))
}
