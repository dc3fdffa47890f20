// Package dependency provides dependency injection for the application.
package dependency

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/savings-circle/backend/config"
	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/claim"
	"github.com/savings-circle/backend/internal/application/usecase/group"
	"github.com/savings-circle/backend/internal/application/usecase/ledger"
	"github.com/savings-circle/backend/internal/application/usecase/payout"
	"github.com/savings-circle/backend/internal/application/usecase/subscription"
	"github.com/savings-circle/backend/internal/domain/valueobject"
	"github.com/savings-circle/backend/internal/infra/db"
	"github.com/savings-circle/backend/internal/infra/observability"
	"github.com/savings-circle/backend/internal/infra/server/router"
	"github.com/savings-circle/backend/internal/integration/adapters"
	"github.com/savings-circle/backend/internal/integration/email"
	"github.com/savings-circle/backend/internal/integration/email/templates"
	"github.com/savings-circle/backend/internal/integration/entrypoint/controller"
	"github.com/savings-circle/backend/internal/integration/entrypoint/middleware"
	"github.com/savings-circle/backend/internal/integration/events"
	"github.com/savings-circle/backend/internal/integration/persistence"
)

// Injector holds all application dependencies.
type Injector struct {
	Config       *config.Config
	DB           *gorm.DB
	Redis        *redis.Client
	Router       *router.Router
	Dispatcher   *events.Dispatcher
	EmailWorker  *email.Worker
	Sweeper      *subscription.SweepExpiredUseCase
	TokenService adapter.TokenService
	Settings     adapter.PlatformSettings
	// EmailSender is the sender used by the worker. Tests swap in a mock sender.
	EmailSender adapter.EmailSender
}

// Option customises an Injector before it is wired.
type Option func(*options)

type options struct {
	clock  adapter.Clock
	sender adapter.EmailSender
}

// WithClock replaces the system clock.
func WithClock(clock adapter.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithEmailSender replaces the email sender chosen from configuration.
func WithEmailSender(sender adapter.EmailSender) Option {
	return func(o *options) { o.sender = sender }
}

// NewInjector creates a new dependency injector with all dependencies wired. redisClient
// may be nil, in which case every Redis backed feature falls back or is disabled.
func NewInjector(cfg *config.Config, gormDB *gorm.DB, redisClient *redis.Client, opts ...Option) (*Injector, error) {
	o := options{clock: adapters.SystemClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	clock := o.clock

	// Create repositories
	uow := persistence.NewUnitOfWork(gormDB,
		persistence.WithMaxAttempts(cfg.Ledger.MaxTxAttempts),
		persistence.WithBackoff(cfg.Ledger.TxBackoff),
		persistence.WithRetryObserver(observability.StoreObserver{}),
	)
	groupRepo := persistence.NewGroupRepository(gormDB)
	auditRepo := persistence.NewAuditLogRepository(gormDB)
	emailQueueRepo := persistence.NewEmailQueueRepository(gormDB)
	settings := persistence.NewPlatformSettingsRepository(gormDB, redisClient, cfg.Platform.DefaultFeeCents)

	// Create adapters/services
	operators := adapters.NewOperatorDirectory(cfg.Platform.OperatorIDs)
	tokenService := adapters.NewTokenService(cfg.Identity.Secret, cfg.Identity.Issuer, clock)
	emailService := email.NewService(emailQueueRepo, clock)

	// Create event dispatch
	handlers := []events.Handler{
		events.NewAuditHandler(auditRepo),
		events.NewEmailHandler(emailService),
	}
	if redisClient != nil && cfg.Events.PublishToRedis {
		handlers = append(handlers, events.NewRedisPublisher(redisClient, cfg.Events.RedisChannel))
	}
	dispatcher := events.NewDispatcher(cfg.Events.BufferSize, observability.EventMetrics{}, handlers...)
	recorder := observability.PostingMetrics{}

	// Create email worker
	sender := o.sender
	if sender == nil {
		if cfg.Email.ResendAPIKey != "" {
			resendClient := email.NewResendClient(cfg.Email.ResendAPIKey, cfg.Email.FromName, cfg.Email.FromEmail)
			if cfg.Email.ResendBaseURL != "" {
				if err := resendClient.SetBaseURL(cfg.Email.ResendBaseURL); err != nil {
					return nil, fmt.Errorf("invalid resend base url: %w", err)
				}
			}
			sender = resendClient
		} else {
			slog.Warn("RESEND_API_KEY not set, emails are logged and discarded")
			sender = email.NewMockEmailSender()
		}
	}
	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}
	workerCfg := email.DefaultWorkerConfig()
	workerCfg.AppBaseURL = cfg.Email.AppBaseURL
	if cfg.Email.PollInterval > 0 {
		workerCfg.PollInterval = cfg.Email.PollInterval
	}
	if cfg.Email.BatchSize > 0 {
		workerCfg.BatchSize = cfg.Email.BatchSize
	}
	emailWorker := email.NewWorker(emailQueueRepo, sender, renderer, clock, workerCfg)

	// Create ledger use cases
	engine := ledger.NewEngine(uow, clock, dispatcher, recorder)
	listTransactionsUseCase := ledger.NewListTransactionsUseCase(uow)
	getSummaryUseCase := ledger.NewGetLedgerSummaryUseCase(uow)

	// Create claim use cases
	submitClaimUseCase := claim.NewSubmitClaimUseCase(uow, clock, dispatcher)
	listClaimsUseCase := claim.NewListClaimsUseCase(uow)
	processClaimUseCase := claim.NewProcessClaimUseCase(uow, clock, dispatcher, recorder)

	// Create group use cases
	createGroupUseCase := group.NewCreateGroupUseCase(uow, clock, dispatcher, valueobject.GenerateInviteCode)
	listGroupsUseCase := group.NewListGroupsUseCase(groupRepo)
	getGroupUseCase := group.NewGetGroupUseCase(uow, clock)
	redeemInviteUseCase := group.NewRedeemInviteUseCase(uow, clock, dispatcher)
	regenerateInviteUseCase := group.NewRegenerateInviteCodeUseCase(uow, clock, dispatcher, valueobject.GenerateInviteCode)
	changeRoleUseCase := group.NewChangeMemberRoleUseCase(uow, clock, dispatcher)
	removeMemberUseCase := group.NewRemoveMemberUseCase(uow, clock, dispatcher)
	leaveGroupUseCase := group.NewLeaveGroupUseCase(uow, clock, dispatcher)
	updateStatusUseCase := group.NewUpdateGroupStatusUseCase(uow, operators, clock, dispatcher)
	listActivityUseCase := group.NewListActivityUseCase(uow, auditRepo)

	// Create payout schedule use cases
	generateScheduleUseCase := payout.NewGenerateScheduleUseCase(uow, clock, dispatcher)
	reorderUseCase := payout.NewReorderUseCase(uow, clock, dispatcher)
	updateDateUseCase := payout.NewUpdateEntryDateUseCase(uow, clock, dispatcher)
	markPaidUseCase := payout.NewMarkPaidUseCase(uow, clock, dispatcher)
	nextPayoutUseCase := payout.NewNextPayoutUseCase(uow)

	// Create subscription use cases
	period := cfg.Ledger.SubscriptionPeriod
	getStatusUseCase := subscription.NewGetStatusUseCase(uow, settings, clock, dispatcher)
	requestActivationUseCase := subscription.NewRequestActivationUseCase(uow, settings, clock, dispatcher)
	activateFreeUseCase := subscription.NewActivateFreeUseCase(uow, settings, clock, dispatcher, period)
	listFeeRequestsUseCase := subscription.NewListFeeRequestsUseCase(uow, operators)
	approveUseCase := subscription.NewApproveActivationUseCase(uow, operators, clock, dispatcher, period)
	rejectUseCase := subscription.NewRejectActivationUseCase(uow, operators, clock, dispatcher)
	setFeeUseCase := subscription.NewSetPlatformFeeUseCase(settings, operators, clock, dispatcher)
	sweeper := subscription.NewSweepExpiredUseCase(uow, clock, dispatcher, cfg.Ledger.SweepBatchSize, observability.ExpiryMetrics{})

	// Create controllers
	healthController := controller.NewHealthController(func() bool {
		sqlDB, err := gormDB.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, db.RedisHealthCheck(redisClient))

	groupController := controller.NewGroupController(
		createGroupUseCase,
		listGroupsUseCase,
		getGroupUseCase,
		redeemInviteUseCase,
		regenerateInviteUseCase,
		changeRoleUseCase,
		removeMemberUseCase,
		leaveGroupUseCase,
		updateStatusUseCase,
		listActivityUseCase,
	)
	claimController := controller.NewClaimController(submitClaimUseCase, listClaimsUseCase, processClaimUseCase)
	ledgerController := controller.NewLedgerController(engine, listTransactionsUseCase, getSummaryUseCase)
	scheduleController := controller.NewScheduleController(
		generateScheduleUseCase,
		reorderUseCase,
		updateDateUseCase,
		markPaidUseCase,
		nextPayoutUseCase,
	)
	subscriptionController := controller.NewSubscriptionController(getStatusUseCase, requestActivationUseCase, activateFreeUseCase)
	platformController := controller.NewPlatformController(listFeeRequestsUseCase, approveUseCase, rejectUseCase, setFeeUseCase)

	// Create middleware
	// Use higher rate limits for E2E/test environments to prevent flaky tests
	var rateLimiter *middleware.RateLimiter
	if cfg.IsTest() {
		rateLimiter = middleware.NewRateLimiterWithConfig(10000, cfg.RateLimit.Window, nil, nil)
	} else {
		rateLimiter = middleware.NewRateLimiterWithConfig(cfg.RateLimit.Requests, cfg.RateLimit.Window, redisClient, observability.HTTPMetrics{})
	}
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Create router
	r := router.NewRouter(
		healthController,
		groupController,
		claimController,
		ledgerController,
		scheduleController,
		subscriptionController,
		platformController,
		rateLimiter,
		authMiddleware,
		observability.HTTPMetrics{},
	)

	return &Injector{
		Config:       cfg,
		DB:           gormDB,
		Redis:        redisClient,
		Router:       r,
		Dispatcher:   dispatcher,
		EmailWorker:  emailWorker,
		Sweeper:      sweeper,
		TokenService: tokenService,
		Settings:     settings,
		EmailSender:  sender,
	}, nil
}
