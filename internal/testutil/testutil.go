// Package testutil provides shared helpers for tests that need a real
// database. Tests run on in-memory SQLite with the full schema migrated.
package testutil

import (
	"testing"

	"github.com/shulesync/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTestDB opens a fresh in-memory SQLite database and migrates the full
// schema. A single connection keeps every session on the same memory store.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(persistence.AllModels()...))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}
