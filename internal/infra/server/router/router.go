// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/savings-circle/backend/internal/integration/entrypoint/controller"
	"github.com/savings-circle/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine                 *gin.Engine
	healthController       *controller.HealthController
	groupController        *controller.GroupController
	claimController        *controller.ClaimController
	ledgerController       *controller.LedgerController
	scheduleController     *controller.ScheduleController
	subscriptionController *controller.SubscriptionController
	platformController     *controller.PlatformController
	rateLimiter            *middleware.RateLimiter
	authMiddleware         *middleware.AuthMiddleware
	requestObserver        middleware.RequestObserver
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	groupController *controller.GroupController,
	claimController *controller.ClaimController,
	ledgerController *controller.LedgerController,
	scheduleController *controller.ScheduleController,
	subscriptionController *controller.SubscriptionController,
	platformController *controller.PlatformController,
	rateLimiter *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
	requestObserver middleware.RequestObserver,
) *Router {
	return &Router{
		healthController:       healthController,
		groupController:        groupController,
		claimController:        claimController,
		ledgerController:       ledgerController,
		scheduleController:     scheduleController,
		subscriptionController: subscriptionController,
		platformController:     platformController,
		rateLimiter:            rateLimiter,
		authMiddleware:         authMiddleware,
		requestObserver:        requestObserver,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	r.engine = gin.New()
	r.engine.Use(gin.Recovery(), middleware.RequestLogger(r.requestObserver))

	// Setup routes
	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check and metrics endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// setupAPIRoutes configures the main API routes. Every route requires authentication.
func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")
	v1.Use(r.authMiddleware.Authenticate())
	if r.rateLimiter != nil {
		v1.Use(r.rateLimiter.Middleware())
	}

	// Group routes
	groups := v1.Group("/groups")
	{
		groups.POST("", r.groupController.Create)
		groups.GET("", r.groupController.List)
		groups.POST("/join", r.groupController.Join)
		groups.GET("/:id", r.groupController.Get)
		groups.GET("/:id/activity", r.groupController.Activity)
		groups.POST("/:id/invite-code", r.groupController.RegenerateInviteCode)
		groups.PATCH("/:id/status", r.groupController.UpdateStatus)
		groups.PUT("/:id/members/:user_id/role", r.groupController.ChangeMemberRole)
		groups.DELETE("/:id/members/:user_id", r.groupController.RemoveMember)
		groups.DELETE("/:id/members/me", r.groupController.Leave)

		// Claim routes
		groups.POST("/:id/claims", r.claimController.Submit)
		groups.GET("/:id/claims", r.claimController.List)
		groups.POST("/:id/claims/:claim_id/process", r.claimController.Process)

		// Ledger routes
		groups.GET("/:id/transactions", r.ledgerController.ListTransactions)
		groups.GET("/:id/ledger/summary", r.ledgerController.Summary)
		groups.POST("/:id/payouts", r.ledgerController.RecordPayout)
		groups.POST("/:id/payouts/:transaction_id/confirm", r.ledgerController.ConfirmPayout)

		// Schedule routes
		groups.GET("/:id/schedule/next", r.scheduleController.Next)
		groups.PUT("/:id/schedule", r.scheduleController.Generate)
		groups.PATCH("/:id/schedule/reorder", r.scheduleController.Reorder)
		groups.PATCH("/:id/schedule/:user_id", r.scheduleController.UpdateDate)
		groups.POST("/:id/schedule/:user_id/paid", r.scheduleController.MarkPaid)

		// Subscription routes
		groups.GET("/:id/subscription", r.subscriptionController.Status)
		groups.POST("/:id/subscription/request", r.subscriptionController.RequestActivation)
		groups.POST("/:id/subscription/free", r.subscriptionController.ActivateFree)
	}

	// Platform operator routes
	platform := v1.Group("/platform")
	{
		platform.GET("/fee-requests", r.platformController.ListFeeRequests)
		platform.POST("/fee-requests/:id/approve", r.platformController.Approve)
		platform.POST("/fee-requests/:id/reject", r.platformController.Reject)
		platform.PUT("/fee", r.platformController.SetFee)
	}
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
