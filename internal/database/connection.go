// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fuelwatch/compliance-backend/internal/config"
	"github.com/fuelwatch/compliance-backend/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	}
}

func RunMigrations(db *gorm.DB) error {
	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Station{},
		&models.CatalogVersion{},
		&models.Obligation{},
		&models.SubmissionPeriod{},
		&models.Submission{},
		&models.SubmissionCheck{},
		&models.Evidence{},
		&models.BulkForwardBatch{},
		&models.BulkForwardItem{},
		&models.Task{},
		&models.TaskMessage{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Station indexes
		"CREATE INDEX IF NOT EXISTS idx_stations_company_active ON stations(company_id, active)",

		// Period indexes
		"CREATE INDEX IF NOT EXISTS idx_periods_start_date ON submission_periods(start_date)",
		"CREATE INDEX IF NOT EXISTS idx_periods_end_date ON submission_periods(end_date DESC)",

		// Submission indexes
		"CREATE INDEX IF NOT EXISTS idx_submissions_station_status ON submissions(station_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_submissions_period_status ON submissions(period_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_submissions_forwarded_at ON submissions(forwarded_at)",

		// Forward batch indexes
		"CREATE INDEX IF NOT EXISTS idx_forward_batches_company_period ON bulk_forward_batches(company_id, period_id)",
		"CREATE INDEX IF NOT EXISTS idx_forward_items_batch_position ON bulk_forward_items(batch_id, position)",

		// Task indexes
		"CREATE INDEX IF NOT EXISTS idx_tasks_station_status ON tasks(station_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_task_messages_task_created ON task_messages(task_id, created_at)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs(entity_type, entity_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	// Create default system admin
	var adminCount int64
	db.Model(&models.User{}).Where("role = ?", models.RoleSystemAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.User{
			Email:    "admin@fuelwatch.example",
			FullName: "System Administrator",
			Role:     models.RoleSystemAdmin,
			Status:   models.UserStatusActive,
		}

		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}
	}

	// Seed the initial obligation catalog if none exists
	var versionCount int64
	db.Model(&models.CatalogVersion{}).Count(&versionCount)

	if versionCount == 0 {
		version := &models.CatalogVersion{
			Label:         "v1",
			EffectiveDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			Notes:         "Initial obligation catalog",
		}
		if err := db.Create(version).Error; err != nil {
			return fmt.Errorf("failed to create catalog version: %w", err)
		}

		obligations := []models.Obligation{
			{CatalogVersionID: version.ID, Code: "OBL-001", Title: "Operating licence valid", FieldType: models.FieldTypeBoolean, Frequency: models.FrequencyAnnual, Criticality: models.CriticalityCritical},
			{CatalogVersionID: version.ID, Code: "OBL-002", Title: "Fiscal memory device sealed", FieldType: models.FieldTypeBoolean, Frequency: models.FrequencyPeriodic, Criticality: models.CriticalityCritical},
			{CatalogVersionID: version.ID, Code: "OBL-003", Title: "Fuel quality certificate on file", FieldType: models.FieldTypeBoolean, Frequency: models.FrequencyPeriodic, Criticality: models.CriticalityCritical},
			{CatalogVersionID: version.ID, Code: "OBL-004", Title: "Calibration of dispensers current", FieldType: models.FieldTypeBoolean, Frequency: models.FrequencyAnnual, Criticality: models.CriticalityCritical},
			{CatalogVersionID: version.ID, Code: "OBL-005", Title: "Stock ledger reconciled", FieldType: models.FieldTypeBoolean, Frequency: models.FrequencyPeriodic, Criticality: models.CriticalityCritical},
			{CatalogVersionID: version.ID, Code: "OBL-006", Title: "Customs declarations filed", FieldType: models.FieldTypeBoolean, Frequency: models.FrequencyPeriodic, Criticality: models.CriticalityCritical},
			{CatalogVersionID: version.ID, Code: "OBL-007", Title: "Safety inspection passed", FieldType: models.FieldTypeBoolean, Frequency: models.FrequencyAnnual, Criticality: models.CriticalityCritical},
			{CatalogVersionID: version.ID, Code: "OBL-008", Title: "Staff training log updated", FieldType: models.FieldTypeText, Frequency: models.FrequencyPerChange, Criticality: models.CriticalityMinor},
		}

		for _, obligation := range obligations {
			if err := db.Create(&obligation).Error; err != nil {
				return fmt.Errorf("failed to create obligation %s: %w", obligation.Code, err)
			}
		}
	}

	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
