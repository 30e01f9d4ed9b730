package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fieldtrace/fieldtracebackend/config"
	"github.com/fieldtrace/fieldtracebackend/models"
)

// Init opens the relational store described by cfg and returns a GORM
// database instance. A non-empty DATABASE_DSN selects MySQL; otherwise the
// SQLite file at DatabasePath is used. SQLite connections get foreign key
// enforcement switched on via the DSN so it applies to every pooled
// connection; cascade deletes depend on it.
func Init(cfg config.Config, logger *zap.Logger) (*gorm.DB, error) {
	gormLevel := gormlogger.Warn
	if cfg.LogLevel == "debug" {
		gormLevel = gormlogger.Info
	}
	gormLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	var dialector gorm.Dialector
	if cfg.DatabaseDSN != "" {
		dialector = mysql.Open(cfg.DatabaseDSN)
	} else {
		dsn := cfg.DatabasePath
		if strings.Contains(dsn, "?") {
			dsn += "&_foreign_keys=on"
		} else {
			dsn += "?_foreign_keys=on"
		}
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database using GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB from GORM: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if cfg.DatabaseDSN == "" {
		// WAL is a property of the database file, one statement is enough
		if err := db.Exec("PRAGMA journal_mode=WAL;").Error; err != nil {
			logger.Warn("failed to set WAL mode", zap.Error(err))
		}
		logger.Info("database initialized", zap.String("engine", "sqlite"), zap.String("path", cfg.DatabasePath))
	} else {
		logger.Info("database initialized", zap.String("engine", "mysql"))
	}

	return db, nil
}

// InitSchema creates any missing tables. Each table is checked against the
// engine's catalog first and created only when absent, so running this
// against an already-initialized database is a no-op. Tables are ordered so
// foreign key references always point at tables that already exist.
func InitSchema(db *gorm.DB, logger *zap.Logger) error {
	tables := []interface{}{
		&models.Video{},
		&models.Audio{},
		&models.Transcription{},
		&models.TextSegment{},
		&models.WordSegment{},
		&models.GPSPing{},
	}

	migrator := db.Migrator()
	for _, table := range tables {
		name := fmt.Sprintf("%T", table)
		if tabler, ok := table.(interface{ TableName() string }); ok {
			name = tabler.TableName()
		}
		if migrator.HasTable(table) {
			logger.Debug("table already exists, skipping", zap.String("table", name))
			continue
		}
		if err := migrator.CreateTable(table); err != nil {
			return fmt.Errorf("failed to create table %s: %w", name, err)
		}
		logger.Info("created table", zap.String("table", name))
	}

	return nil
}
