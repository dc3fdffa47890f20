package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/savings-circle/backend/internal/application/usecase/payout"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/integration/entrypoint/dto"
)

// ScheduleController handles payout rotation endpoints.
type ScheduleController struct {
	generateUseCase   *payout.GenerateScheduleUseCase
	reorderUseCase    *payout.ReorderUseCase
	updateDateUseCase *payout.UpdateEntryDateUseCase
	markPaidUseCase   *payout.MarkPaidUseCase
	nextUseCase       *payout.NextPayoutUseCase
}

// NewScheduleController creates a new schedule controller instance.
func NewScheduleController(
	generateUseCase *payout.GenerateScheduleUseCase,
	reorderUseCase *payout.ReorderUseCase,
	updateDateUseCase *payout.UpdateEntryDateUseCase,
	markPaidUseCase *payout.MarkPaidUseCase,
	nextUseCase *payout.NextPayoutUseCase,
) *ScheduleController {
	return &ScheduleController{
		generateUseCase:   generateUseCase,
		reorderUseCase:    reorderUseCase,
		updateDateUseCase: updateDateUseCase,
		markPaidUseCase:   markPaidUseCase,
		nextUseCase:       nextUseCase,
	}
}

func badScheduleRequest(ctx *gin.Context, err error) {
	respondError(ctx, domainerror.NewPayoutError(
		domainerror.ErrCodeMissingScheduleFields,
		"Invalid request body: "+err.Error(),
		err,
	))
}

func parsePayoutDate(ctx *gin.Context, raw string) (time.Time, bool) {
	date, err := dto.ParseDate(raw)
	if err != nil {
		respondError(ctx, domainerror.NewPayoutError(
			domainerror.ErrCodeInvalidPayoutDate,
			"dates must look like 2006-01-02",
			domainerror.ErrInvalidPayoutDate,
		))
		return time.Time{}, false
	}
	return date, true
}

func toScheduleResponse(out *payout.ScheduleOutput) dto.ScheduleResponse {
	resp := dto.ScheduleResponse{
		GroupID:  out.GroupID.String(),
		Schedule: dto.ToPayoutEntryResponses(out.Schedule),
	}
	if out.Next != nil {
		next := dto.ToPayoutEntryResponse(*out.Next)
		resp.Next = &next
	}
	if out.NextPayoutDate != nil {
		s := out.NextPayoutDate.UTC().Format(time.RFC3339)
		resp.NextPayoutDate = &s
	}
	return resp
}

// Generate handles PUT /groups/:id/schedule requests.
func (c *ScheduleController) Generate(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	var req dto.GenerateScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badScheduleRequest(ctx, err)
		return
	}
	start, ok := parsePayoutDate(ctx, req.StartDate)
	if !ok {
		return
	}

	out, err := c.generateUseCase.Execute(ctx.Request.Context(), payout.GenerateScheduleInput{
		GroupID:     groupID,
		MemberOrder: req.MemberOrder,
		StartDate:   start,
		Frequency:   req.Frequency,
		ActorID:     principal.UserID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toScheduleResponse(out))
}

// Reorder handles PATCH /groups/:id/schedule/reorder requests.
func (c *ScheduleController) Reorder(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	var req dto.ReorderScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badScheduleRequest(ctx, err)
		return
	}

	out, err := c.reorderUseCase.Execute(ctx.Request.Context(), payout.ReorderInput{
		GroupID:   groupID,
		FromIndex: *req.FromIndex,
		ToIndex:   *req.ToIndex,
		ActorID:   principal.UserID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toScheduleResponse(out))
}

// UpdateDate handles PATCH /groups/:id/schedule/:user_id requests.
func (c *ScheduleController) UpdateDate(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	var req dto.UpdatePayoutDateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badScheduleRequest(ctx, err)
		return
	}
	date, ok := parsePayoutDate(ctx, req.PayoutDate)
	if !ok {
		return
	}

	out, err := c.updateDateUseCase.Execute(ctx.Request.Context(), payout.UpdateEntryDateInput{
		GroupID:    groupID,
		UserID:     ctx.Param("user_id"),
		PayoutDate: date,
		ActorID:    principal.UserID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toScheduleResponse(out))
}

// MarkPaid handles POST /groups/:id/schedule/:user_id/paid requests.
func (c *ScheduleController) MarkPaid(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	out, err := c.markPaidUseCase.Execute(ctx.Request.Context(), payout.MarkPaidInput{
		GroupID: groupID,
		UserID:  ctx.Param("user_id"),
		ActorID: principal.UserID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toScheduleResponse(out))
}

// Next handles GET /groups/:id/schedule/next requests.
func (c *ScheduleController) Next(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	out, err := c.nextUseCase.Execute(ctx.Request.Context(), payout.NextPayoutInput{
		GroupID:     groupID,
		RequesterID: principal.UserID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	resp := dto.NextPayoutResponse{
		Entry:    dto.ToPayoutEntryResponse(out.Entry),
		Position: out.Position,
	}
	if out.NextPayoutDate != nil {
		s := out.NextPayoutDate.UTC().Format(time.RFC3339)
		resp.NextPayoutDate = &s
	}
	ctx.JSON(http.StatusOK, resp)
}
