package main

import (
	"github.com/savings-circle/backend/config"
	"github.com/savings-circle/backend/internal/infra/db"
	"github.com/savings-circle/backend/internal/infra/observability"
	"github.com/savings-circle/backend/internal/integration/adapters"
	"github.com/savings-circle/backend/internal/integration/email"
	"github.com/savings-circle/backend/internal/integration/events"
	"github.com/savings-circle/backend/internal/integration/persistence"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	cfg        *config.Config
}

func (a *app) loadConfig() error {
	cfg, err := config.LoadFile(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	observability.SetupLogging(cfg.Server.Environment, cfg.Server.LogLevel)
	return nil
}

// openDatabase connects and migrates, so every command sees the current schema.
func (a *app) openDatabase() (*db.Database, error) {
	database, err := db.NewConnection(&a.cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(); err != nil {
		_ = database.Close()
		return nil, err
	}
	return database, nil
}

// newDispatcher records events to the audit log and queues their emails. Callers must
// Close it before the command exits.
func (a *app) newDispatcher(database *db.Database) *events.Dispatcher {
	gormDB := database.DB()
	dispatcher := events.NewDispatcher(a.cfg.Events.BufferSize, observability.EventMetrics{},
		events.NewAuditHandler(persistence.NewAuditLogRepository(gormDB)),
		events.NewEmailHandler(email.NewService(persistence.NewEmailQueueRepository(gormDB), adapters.SystemClock{})),
	)
	dispatcher.Start()
	return dispatcher
}
