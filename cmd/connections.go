package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"manifest/internal/adapters/out/postgres/recordrepo"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// NewLogger builds the JSON process logger. Unknown levels fall back to info.
func NewLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// OpenRedis connects to the snapshot and cache server. It returns nil, nil when
// no address is configured.
func OpenRedis(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return client, nil
}

// OpenDatabase connects to the sync backend and migrates its schema. It returns
// nil, nil when sync is not configured.
func OpenDatabase(ctx context.Context, cfg Config, logger *slog.Logger) (*gorm.DB, error) {
	if !cfg.SyncEnabled() {
		return nil, nil
	}

	gormLog := gormlogger.New(
		slog.NewLogLogger(logger.With("component", "gorm").Handler(), slog.LevelWarn),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Error,
			IgnoreRecordNotFoundError: true,
		},
	)

	var (
		db  *gorm.DB
		err error
	)
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{Logger: gormLog})
		if err == nil {
			break
		}
		logger.Warn("database not ready", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := db.WithContext(ctx).AutoMigrate(&recordrepo.SyncRecordDTO{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate sync schema: %w", err)
	}
	return db, nil
}
