// Package testutil provides an in-memory store, a settable clock and fixtures for tests.
package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/savings-circle/backend/internal/integration/persistence/model"
)

// NewDB opens a private in-memory SQLite database with every table migrated.
// A single connection serializes writers the same way the production store does.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	dbSQL, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	dbSQL.SetMaxOpenConns(1)

	dbConn, err := gorm.Open(sqlite.Dialector{Conn: dbSQL}, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}

	if err := dbConn.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		_ = dbSQL.Close()
	})
	return dbConn
}

// FailUpdatesOn makes every UPDATE against table fail until the returned function is called.
func FailUpdatesOn(t testing.TB, db *gorm.DB, table string) (remove func()) {
	t.Helper()

	name := "testutil:fail_" + table + "_" + uuid.NewString()
	armed := true
	err := db.Callback().Update().Before("gorm:update").Register(name, func(tx *gorm.DB) {
		if armed && tx.Statement.Table == table {
			_ = tx.AddError(fmt.Errorf("injected failure updating %s", table))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	remove = func() {
		armed = false
		_ = db.Callback().Update().Remove(name)
	}
	t.Cleanup(remove)
	return remove
}
