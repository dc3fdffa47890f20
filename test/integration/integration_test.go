//go:build integration

// Package integration runs the Savings Circle API feature suite against an
// in-process server.
package integration

import (
	"os"
	"testing"

	"github.com/cucumber/godog"
	"github.com/cucumber/godog/colors"

	"github.com/savings-circle/backend/test/integration/steps"
)

// TestFeatures runs every scenario under features/. GODOG_TAGS narrows the run
// (default skips @wip) and GODOG_FORMAT switches the formatter.
func TestFeatures(t *testing.T) {
	opts := godog.Options{
		Format:      envOr("GODOG_FORMAT", "pretty"),
		Paths:       []string{"features"},
		Tags:        envOr("GODOG_TAGS", "~@wip"),
		Output:      colors.Colored(os.Stdout),
		Concurrency: 1, // scenarios share one in-memory database and one miniredis
		Strict:      true,
		TestingT:    t,
	}

	suite := godog.TestSuite{
		Name:                 "savings-circle-api",
		ScenarioInitializer:  steps.InitializeScenario,
		TestSuiteInitializer: steps.InitializeTestSuite,
		Options:              &opts,
	}

	if status := suite.Run(); status != 0 {
		t.Fatalf("feature suite failed with status %d", status)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
