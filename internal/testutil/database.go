// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/gnzdotmx/okane-track-sub000/internal/database"
	"github.com/gnzdotmx/okane-track-sub000/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultBaseCurrency is the base currency seeded by SetupTestDB.
const DefaultBaseCurrency = "MXN"

var dbCounter atomic.Int64

// SetupTestDB creates an isolated in-memory SQLite database with all models
// migrated and the reference data seeded with DefaultBaseCurrency as base.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return SetupTestDBWithBase(t, DefaultBaseCurrency)
}

// SetupTestDBWithBase is SetupTestDB with a chosen base currency. An empty
// code seeds no currency at all.
func SetupTestDBWithBase(t *testing.T, baseCurrency string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get underlying DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	if err := database.Seed(db, baseCurrency); err != nil {
		t.Fatalf("failed to seed test database: %v", err)
	}

	t.Cleanup(func() { TeardownTestDB(t, db) })
	return db
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	_ = sqlDB.Close()
}
