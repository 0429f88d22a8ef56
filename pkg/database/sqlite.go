package database

import (
	"fmt"

	"github.com/Alwanly/service-env-state/internal/env"
	"github.com/Alwanly/service-env-state/internal/models"
	"github.com/Alwanly/service-env-state/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SeedActionType marks the snapshot written into an empty database.
const SeedActionType = "@@INIT"

func NewSQLiteDB(path string) (*gorm.DB, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every pooled connection to :memory: would open its own empty database
	if path == ":memory:" {
		conn, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database connection: %w", err)
		}
		conn.SetMaxOpenConns(1)
	}

	return db, nil
}

func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.EnvSnapshot{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SeedInitialData writes initial as version 0 when no snapshot exists yet.
// A nil initial seeds the reducer default.
func SeedInitialData(db *gorm.DB, initial *env.State) error {
	var count int64
	if err := db.Model(&models.EnvSnapshot{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check existing snapshots: %w", err)
	}
	if count > 0 {
		return nil
	}

	if initial == nil {
		initial = env.InitialState()
	}
	seed := models.NewEnvSnapshot(initial, 0, store.ETagFor(0, initial), SeedActionType, "")
	if err := db.Create(seed).Error; err != nil {
		return fmt.Errorf("failed to seed initial snapshot: %w", err)
	}
	return nil
}
