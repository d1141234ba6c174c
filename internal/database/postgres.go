package database

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stars-bot/internal/config"
	"stars-bot/internal/models"
)

func ConnectPostgres(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := OpenPostgres(dsn, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"host": cfg.DBHost, "db": cfg.DBName}).Info("Connected to PostgreSQL")
	return db, nil
}

// OpenPostgres opens dsn (key/value or URL form) and migrates the schema.
func OpenPostgres(dsn, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newGormLogger(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Account{}, &models.LedgerEntry{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// newGormLogger maps the application log level onto gorm's, keeping SQL
// tracing for debug only.
func newGormLogger(level string) logger.Interface {
	var logLevel logger.LogLevel
	switch level {
	case "debug", "trace":
		logLevel = logger.Info
	case "info", "warn", "warning":
		logLevel = logger.Warn
	case "silent":
		logLevel = logger.Silent
	default:
		logLevel = logger.Error
	}
	return logger.Default.LogMode(logLevel)
}
