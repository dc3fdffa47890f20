package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/savings-circle/backend/internal/application/usecase/claim"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/domain/valueobject"
	"github.com/savings-circle/backend/internal/integration/entrypoint/dto"
)

// ClaimController handles contribution claim endpoints.
type ClaimController struct {
	submitUseCase  *claim.SubmitClaimUseCase
	listUseCase    *claim.ListClaimsUseCase
	processUseCase *claim.ProcessClaimUseCase
}

// NewClaimController creates a new claim controller instance.
func NewClaimController(
	submitUseCase *claim.SubmitClaimUseCase,
	listUseCase *claim.ListClaimsUseCase,
	processUseCase *claim.ProcessClaimUseCase,
) *ClaimController {
	return &ClaimController{
		submitUseCase:  submitUseCase,
		listUseCase:    listUseCase,
		processUseCase: processUseCase,
	}
}

func badLedgerRequest(ctx *gin.Context, err error) {
	respondError(ctx, domainerror.NewLedgerError(
		domainerror.ErrCodeMissingLedgerFields,
		"Invalid request body: "+err.Error(),
		err,
	))
}

func parseAmount(ctx *gin.Context, raw string) (int64, bool) {
	cents, err := valueobject.ParseAmount(raw)
	if err != nil {
		respondError(ctx, domainerror.NewLedgerError(domainerror.ErrCodeInvalidAmount, err.Error(), domainerror.ErrInvalidAmount))
		return 0, false
	}
	return cents, true
}

// Submit handles POST /groups/:id/claims requests.
func (c *ClaimController) Submit(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	var req dto.SubmitClaimRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badLedgerRequest(ctx, err)
		return
	}
	amount, ok := parseAmount(ctx, req.Amount)
	if !ok {
		return
	}

	output, err := c.submitUseCase.Execute(ctx.Request.Context(), claim.SubmitClaimInput{
		GroupID:     groupID,
		UserID:      principal.UserID,
		AmountCents: amount,
		Reference:   req.Reference,
		Description: req.Description,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToTransactionResponse(output.Claim))
}

// List handles GET /groups/:id/claims requests.
func (c *ClaimController) List(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), claim.ListClaimsInput{
		GroupID:     groupID,
		RequesterID: principal.UserID,
		Status:      ctx.Query("status"),
		Page:        queryInt(ctx, "page", 1),
		Limit:       queryInt(ctx, "limit", 0),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ClaimListResponse{
		Claims: dto.ToTransactionResponses(output.Claims),
		Pagination: dto.PaginationResponse{
			Page:       output.Page,
			Limit:      output.Limit,
			Total:      output.Total,
			TotalPages: output.TotalPages,
		},
	})
}

// Process handles POST /groups/:id/claims/:claim_id/process requests.
func (c *ClaimController) Process(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}
	claimID, ok := transactionIDParam(ctx, "claim_id")
	if !ok {
		return
	}

	var req dto.ProcessClaimRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badLedgerRequest(ctx, err)
		return
	}

	output, err := c.processUseCase.Execute(ctx.Request.Context(), claim.ProcessClaimInput{
		GroupID:        groupID,
		ClaimID:        claimID,
		ActingAdminUID: principal.UserID,
		Action:         req.Action,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ProcessClaimResponse{
		Success:      output.Success,
		Message:      output.Message,
		Claim:        dto.ToTransactionResponse(output.Claim),
		GroupBalance: dto.NewMoney(output.Group.CurrentBalanceCents),
	})
}
