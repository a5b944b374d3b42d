// Package testutil opens throw-away SQLite databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"bellissimo/config"
	"bellissimo/internal/database"

	"gorm.io/gorm"
)

// NewDB returns a migrated and seeded database in t's temp dir. A single
// connection serializes concurrent transactions the way row locks would.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := database.SeedDefaults(db); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
