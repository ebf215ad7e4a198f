// media-service/internal/store/database.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"media-service/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // драйвер PostgreSQL для sqlx
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const pingTimeout = 5 * time.Second

func applyPoolSettings(db *sql.DB, cfg config.Config) {
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
}

// OpenGorm открывает пул через gorm и проверяет соединение.
func OpenGorm(ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from gorm: %w", err)
	}
	applyPoolSettings(sqlDB, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return db, nil
}

// OpenSQLX открывает пул через sqlx (драйвер lib/pq) и проверяет соединение.
func OpenSQLX(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	applyPoolSettings(db.DB, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return db, nil
}

// NewMediaStore открывает хранилище, выбранное в конфигурации.
func NewMediaStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (MediaStore, error) {
	logger.Info("Attempting to connect to media database",
		slog.String("driver", cfg.StoreDriver),
		slog.String("dbURL_used", cfg.RedactedDatabaseURL()))

	switch cfg.StoreDriver {
	case config.StoreDriverGorm:
		db, err := OpenGorm(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("Successfully connected to media database (gorm).")
		return NewGormMediaStore(db, logger)
	case config.StoreDriverSQLX:
		db, err := OpenSQLX(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("Successfully connected to media database (sqlx).")
		return NewPostgresMediaStore(db, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
