package database

import (
	"context"
	"fmt"
	"log/slog"

	"disaster-backend/internal/config"
	"disaster-backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the configured store and migrates the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseDSN)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	level := gormlogger.Warn
	if cfg.SlogLevel() <= slog.LevelDebug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, Options(level))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if cfg.DatabaseDriver == config.DriverSQLite {
		// sqlite allows a single writer, keep one connection so writes never see SQLITE_BUSY
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	slog.Info("database connected and migrated", "driver", cfg.DatabaseDriver)
	return db, nil
}

// Options is the gorm configuration shared by every dialect.
// Relations are kept as plain id columns without foreign keys: deleting a
// reporter or a volunteer leaves their disasters and assignments in place.
func Options(level gormlogger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(level),
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Disaster{},
		&models.VolunteerAssignment{},
		&models.HelpRequest{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Ping checks that the underlying connection is alive.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
