package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/savings-circle/backend/internal/application/usecase/group"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/domain/valueobject"
	"github.com/savings-circle/backend/internal/integration/entrypoint/dto"
)

// GroupController handles group and membership endpoints.
type GroupController struct {
	createUseCase       *group.CreateGroupUseCase
	listUseCase         *group.ListGroupsUseCase
	getUseCase          *group.GetGroupUseCase
	redeemUseCase       *group.RedeemInviteUseCase
	regenerateUseCase   *group.RegenerateInviteCodeUseCase
	changeRoleUseCase   *group.ChangeMemberRoleUseCase
	removeMemberUseCase *group.RemoveMemberUseCase
	leaveUseCase        *group.LeaveGroupUseCase
	updateStatusUseCase *group.UpdateGroupStatusUseCase
	activityUseCase     *group.ListActivityUseCase
}

// NewGroupController creates a new group controller instance.
func NewGroupController(
	createUseCase *group.CreateGroupUseCase,
	listUseCase *group.ListGroupsUseCase,
	getUseCase *group.GetGroupUseCase,
	redeemUseCase *group.RedeemInviteUseCase,
	regenerateUseCase *group.RegenerateInviteCodeUseCase,
	changeRoleUseCase *group.ChangeMemberRoleUseCase,
	removeMemberUseCase *group.RemoveMemberUseCase,
	leaveUseCase *group.LeaveGroupUseCase,
	updateStatusUseCase *group.UpdateGroupStatusUseCase,
	activityUseCase *group.ListActivityUseCase,
) *GroupController {
	return &GroupController{
		createUseCase:       createUseCase,
		listUseCase:         listUseCase,
		getUseCase:          getUseCase,
		redeemUseCase:       redeemUseCase,
		regenerateUseCase:   regenerateUseCase,
		changeRoleUseCase:   changeRoleUseCase,
		removeMemberUseCase: removeMemberUseCase,
		leaveUseCase:        leaveUseCase,
		updateStatusUseCase: updateStatusUseCase,
		activityUseCase:     activityUseCase,
	}
}

func badGroupRequest(ctx *gin.Context, err error) {
	respondError(ctx, domainerror.NewGroupError(
		domainerror.ErrCodeMissingGroupFields,
		"Invalid request body: "+err.Error(),
		err,
	))
}

// Create handles POST /groups requests.
func (c *GroupController) Create(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	// Parse request body
	var req dto.CreateGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badGroupRequest(ctx, err)
		return
	}

	amount, err := valueobject.ParseAmount(req.ContributionAmount)
	if err != nil {
		respondError(ctx, domainerror.NewLedgerError(domainerror.ErrCodeInvalidAmount, err.Error(), domainerror.ErrInvalidAmount))
		return
	}

	output, err := c.createUseCase.Execute(ctx.Request.Context(), group.CreateGroupInput{
		Owner:                   principal,
		Name:                    req.Name,
		Description:             req.Description,
		ContributionAmountCents: amount,
		Currency:                req.Currency,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.MembershipResponse{
		Group:  dto.ToGroupResponse(output.Group, true),
		Member: dto.ToGroupMemberResponse(output.Owner, ""),
	})
}

// List handles GET /groups requests.
func (c *GroupController) List(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	items, err := c.listUseCase.Execute(ctx.Request.Context(), group.ListGroupsInput{UserID: principal.UserID})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToGroupListResponse(items))
}

// Get handles GET /groups/:id requests.
func (c *GroupController) Get(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	output, err := c.getUseCase.Execute(ctx.Request.Context(), group.GetGroupInput{
		GroupID: groupID,
		UserID:  principal.UserID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToGroupDetailResponse(output.Group, output.Members, output.UserRole, output.Subscriptions))
}

// Join handles POST /groups/join requests.
func (c *GroupController) Join(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	var req dto.JoinGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badGroupRequest(ctx, err)
		return
	}

	output, err := c.redeemUseCase.Execute(ctx.Request.Context(), group.RedeemInviteInput{
		Code:      req.InviteCode,
		Principal: principal,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.MembershipResponse{
		Group:  dto.ToGroupResponse(output.Group, false),
		Member: dto.ToGroupMemberResponse(output.Member, ""),
	})
}

// RegenerateInviteCode handles POST /groups/:id/invite-code requests.
func (c *GroupController) RegenerateInviteCode(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	g, err := c.regenerateUseCase.Execute(ctx.Request.Context(), group.RegenerateInviteCodeInput{
		GroupID:     groupID,
		RequesterID: principal.UserID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToGroupResponse(g, true))
}

// ChangeMemberRole handles PUT /groups/:id/members/:user_id/role requests.
func (c *GroupController) ChangeMemberRole(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	var req dto.ChangeMemberRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badGroupRequest(ctx, err)
		return
	}

	member, err := c.changeRoleUseCase.Execute(ctx.Request.Context(), group.ChangeMemberRoleInput{
		GroupID:     groupID,
		UserID:      ctx.Param("user_id"),
		NewRole:     entity.MemberRole(req.Role),
		RequesterID: principal.UserID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToGroupMemberResponse(member, ""))
}

// RemoveMember handles DELETE /groups/:id/members/:user_id requests.
func (c *GroupController) RemoveMember(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	output, err := c.removeMemberUseCase.Execute(ctx.Request.Context(), group.RemoveMemberInput{
		GroupID:     groupID,
		UserID:      ctx.Param("user_id"),
		RequesterID: principal.UserID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.MessageResponse{
		Message: output.Removed.DisplayName + " was removed from " + output.Group.Name,
	})
}

// Leave handles DELETE /groups/:id/members/me requests.
func (c *GroupController) Leave(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	if err := c.leaveUseCase.Execute(ctx.Request.Context(), group.LeaveGroupInput{
		GroupID: groupID,
		UserID:  principal.UserID,
	}); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "You left the group"})
}

// UpdateStatus handles PATCH /groups/:id/status requests.
func (c *GroupController) UpdateStatus(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	var req dto.UpdateGroupStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badGroupRequest(ctx, err)
		return
	}

	g, err := c.updateStatusUseCase.Execute(ctx.Request.Context(), group.UpdateGroupStatusInput{
		GroupID:    groupID,
		Status:     entity.GroupStatus(req.Status),
		OperatorID: principal.UserID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToGroupResponse(g, false))
}

// Activity handles GET /groups/:id/activity requests.
func (c *GroupController) Activity(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	entries, err := c.activityUseCase.Execute(ctx.Request.Context(), group.ListActivityInput{
		GroupID: groupID,
		UserID:  principal.UserID,
		Limit:   queryInt(ctx, "limit", 0),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToActivityListResponse(entries))
}
