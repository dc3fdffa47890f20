package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/usecase/subscription"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/domain/valueobject"
	"github.com/savings-circle/backend/internal/integration/entrypoint/dto"
)

// SubscriptionController handles a member's own subscription endpoints.
type SubscriptionController struct {
	getStatusUseCase    *subscription.GetStatusUseCase
	requestUseCase      *subscription.RequestActivationUseCase
	activateFreeUseCase *subscription.ActivateFreeUseCase
}

// NewSubscriptionController creates a new subscription controller instance.
func NewSubscriptionController(
	getStatusUseCase *subscription.GetStatusUseCase,
	requestUseCase *subscription.RequestActivationUseCase,
	activateFreeUseCase *subscription.ActivateFreeUseCase,
) *SubscriptionController {
	return &SubscriptionController{
		getStatusUseCase:    getStatusUseCase,
		requestUseCase:      requestUseCase,
		activateFreeUseCase: activateFreeUseCase,
	}
}

// Status handles GET /groups/:id/subscription requests.
func (c *SubscriptionController) Status(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	out, err := c.getStatusUseCase.Execute(ctx.Request.Context(), subscription.GetStatusInput{
		GroupID: groupID,
		UserID:  principal.UserID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	resp := dto.SubscriptionResponse{
		Status: string(out.Status),
		Locked: out.Locked,
		Fee:    dto.NewMoney(out.FeeCents),
	}
	if out.EndsAt != nil {
		s := out.EndsAt.UTC().Format(time.RFC3339)
		resp.EndsAt = &s
	}
	ctx.JSON(http.StatusOK, resp)
}

// RequestActivation handles POST /groups/:id/subscription/request requests.
func (c *SubscriptionController) RequestActivation(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	var req dto.RequestActivationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, domainerror.NewSubscriptionError(
			domainerror.ErrCodeRefNumberRequired,
			"Invalid request body: "+err.Error(),
			err,
		))
		return
	}

	out, err := c.requestUseCase.Execute(ctx.Request.Context(), subscription.RequestActivationInput{
		GroupID:   groupID,
		UserID:    principal.UserID,
		RefNumber: req.RefNumber,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToActivationResponse(out.FeeRequest, out.Member))
}

// ActivateFree handles POST /groups/:id/subscription/free requests.
func (c *SubscriptionController) ActivateFree(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	member, err := c.activateFreeUseCase.Execute(ctx.Request.Context(), subscription.ActivateFreeInput{
		GroupID: groupID,
		UserID:  principal.UserID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToActivationResponse(nil, member))
}

// PlatformController handles operator endpoints.
type PlatformController struct {
	listUseCase    *subscription.ListFeeRequestsUseCase
	approveUseCase *subscription.ApproveActivationUseCase
	rejectUseCase  *subscription.RejectActivationUseCase
	setFeeUseCase  *subscription.SetPlatformFeeUseCase
}

// NewPlatformController creates a new platform controller instance.
func NewPlatformController(
	listUseCase *subscription.ListFeeRequestsUseCase,
	approveUseCase *subscription.ApproveActivationUseCase,
	rejectUseCase *subscription.RejectActivationUseCase,
	setFeeUseCase *subscription.SetPlatformFeeUseCase,
) *PlatformController {
	return &PlatformController{
		listUseCase:    listUseCase,
		approveUseCase: approveUseCase,
		rejectUseCase:  rejectUseCase,
		setFeeUseCase:  setFeeUseCase,
	}
}

func feeRequestIDParam(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		respondError(ctx, domainerror.NewSubscriptionError(domainerror.ErrCodeInvalidFeeRequestID, "invalid fee request id", err))
		return uuid.Nil, false
	}
	return id, true
}

// ListFeeRequests handles GET /platform/fee-requests requests.
func (c *PlatformController) ListFeeRequests(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	input := subscription.ListFeeRequestsInput{
		OperatorID: principal.UserID,
		Status:     ctx.Query("status"),
		UserID:     ctx.Query("user_id"),
		Limit:      queryInt(ctx, "limit", 0),
	}
	if raw := ctx.Query("group_id"); raw != "" {
		groupID, err := uuid.Parse(raw)
		if err != nil {
			respondError(ctx, domainerror.NewGroupError(domainerror.ErrCodeInvalidGroupID, "invalid group id", err))
			return
		}
		input.GroupID = groupID
	}

	requests, err := c.listUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToFeeRequestListResponse(requests))
}

// Approve handles POST /platform/fee-requests/:id/approve requests.
func (c *PlatformController) Approve(ctx *gin.Context) {
	c.review(ctx, c.approveUseCase.Execute)
}

// Reject handles POST /platform/fee-requests/:id/reject requests.
func (c *PlatformController) Reject(ctx *gin.Context) {
	c.review(ctx, c.rejectUseCase.Execute)
}

func (c *PlatformController) review(ctx *gin.Context, execute func(ctx context.Context, input subscription.ReviewActivationInput) (*subscription.ReviewActivationOutput, error)) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	requestID, ok := feeRequestIDParam(ctx)
	if !ok {
		return
	}

	out, err := execute(ctx.Request.Context(), subscription.ReviewActivationInput{
		FeeRequestID: requestID,
		OperatorID:   principal.UserID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToActivationResponse(out.FeeRequest, out.Member))
}

// SetFee handles PUT /platform/fee requests.
func (c *PlatformController) SetFee(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	var req dto.SetPlatformFeeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, domainerror.NewSubscriptionError(
			domainerror.ErrCodeInvalidFeeAmount,
			"Invalid request body: "+err.Error(),
			err,
		))
		return
	}
	fee, err := valueobject.ParseAmount(req.Fee)
	if err != nil {
		respondError(ctx, domainerror.NewSubscriptionError(domainerror.ErrCodeInvalidFeeAmount, err.Error(), domainerror.ErrInvalidFeeAmount))
		return
	}

	if err := c.setFeeUseCase.Execute(ctx.Request.Context(), subscription.SetPlatformFeeInput{
		OperatorID: principal.UserID,
		FeeCents:   fee,
	}); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.PlatformFeeResponse{Fee: dto.NewMoney(fee)})
}
