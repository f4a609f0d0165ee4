package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"carslink-backend/config"
	"carslink-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs AutoMigrate for every CarsLink model. Split out so tests can
// run it against an in-memory database.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Account{},
		&model.Vehicle{},
		&model.Garage{},
		&model.GarageService{},
		&model.Appointment{},
		&model.RepairTracking{},
		&model.Chat{},
		&model.ChatMessage{},
		&model.Notification{},
		&model.PushSubscription{},
		&model.SupportTicket{},
		&model.Invoice{},
		&model.AppSetting{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}
