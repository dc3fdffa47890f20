// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/savings-circle/backend/config"
	"github.com/savings-circle/backend/internal/infra/dependency"
	"github.com/savings-circle/backend/internal/integration/persistence/model"
	"github.com/savings-circle/backend/test/integration/mock"
)

const (
	testJWTSecret   = "test-jwt-secret-key-for-testing-purposes"
	operatorID      = "ops"
	eventsChannel   = "circle.events.test"
	asyncStepBudget = 3 * time.Second
)

var scenarioStart = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

type testContext struct {
	server   *httptest.Server
	client   *http.Client
	injector *dependency.Injector
	db       *mock.Db
	redis    *mock.Redis
	emailAPI *mock.ApiMock
	timeMock *mock.Time
	events   *redis.PubSub

	headers     map[string]string
	accessToken string
	response    *response

	// vars holds values captured from responses, referenced as {name} in steps.
	vars map[string]string
	// groupOwner is the creator of the group under test.
	groupOwner string
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// InitializeTestSuite sets up resources before any scenarios run.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)
	})
}

// InitializeScenario registers all step definitions around a fresh application per scenario.
func InitializeScenario(ctx *godog.ScenarioContext) {
	test := &testContext{
		client:   &http.Client{Timeout: 10 * time.Second},
		db:       mock.NewDb(model.All()),
		redis:    mock.NewRedis(),
		emailAPI: mock.NewApiServer(),
	}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, test.before()
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		test.after()
		return ctx, nil
	})

	registerAPISteps(ctx, test)
	registerCircleSteps(ctx, test)
}

func (t *testContext) before() error {
	t.headers = make(map[string]string)
	t.accessToken = ""
	t.response = nil
	t.vars = make(map[string]string)
	t.groupOwner = ""
	t.timeMock = mock.NewTime(scenarioStart)

	if err := t.db.ClearDB(); err != nil {
		return err
	}
	if err := t.redis.Clear(); err != nil {
		return err
	}

	t.emailAPI.Start()
	t.emailAPI.SetResponse(http.MethodPost, "/emails", http.StatusOK, func(n int) any {
		return map[string]any{"id": fmt.Sprintf("re_%d", n)}
	})

	t.events = t.redis.Client.Subscribe(context.Background(), eventsChannel)
	if _, err := t.events.Receive(context.Background()); err != nil {
		return fmt.Errorf("failed to subscribe to events: %w", err)
	}

	injector, err := dependency.NewInjector(t.config(), t.db.DbConn, t.redis.Client,
		dependency.WithClock(t.timeMock),
	)
	if err != nil {
		return err
	}
	injector.Dispatcher.Start()
	t.injector = injector

	t.server = httptest.NewServer(injector.Router.Setup(injector.Config.Server.Environment))
	return nil
}

func (t *testContext) after() {
	if t.server != nil {
		t.server.Close()
	}
	if t.injector != nil {
		ctx, cancel := context.WithTimeout(context.Background(), asyncStepBudget)
		_ = t.injector.Dispatcher.Close(ctx)
		cancel()
	}
	if t.events != nil {
		_ = t.events.Close()
	}
	t.emailAPI.Close()
	t.emailAPI.Reset()
}

func (t *testContext) config() *config.Config {
	cfg := config.Load()
	cfg.Server.Environment = "test"
	cfg.Identity.Secret = testJWTSecret
	cfg.Identity.Issuer = "circle-integration"
	cfg.Platform.OperatorIDs = []string{operatorID}
	cfg.Platform.DefaultFeeCents = 0
	cfg.Email.ResendAPIKey = "re_integration"
	cfg.Email.ResendBaseURL = t.emailAPI.GetUrl()
	cfg.Email.WorkerEnabled = false
	cfg.Events.PublishToRedis = true
	cfg.Events.RedisChannel = eventsChannel
	cfg.Ledger.TxBackoff = time.Millisecond
	return cfg
}

// eventually retries check until it passes or the async budget runs out.
func eventually(check func() error) error {
	deadline := time.Now().Add(asyncStepBudget)
	for {
		err := check()
		if err == nil || time.Now().After(deadline) {
			return err
		}
		time.Sleep(25 * time.Millisecond)
	}
}
