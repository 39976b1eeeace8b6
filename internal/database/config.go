package database

import (
	"context"
	"fmt"
	"time"

	"foodshare/internal/config"
	"foodshare/internal/models"
	"foodshare/internal/utils"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// pollingQueries are issued by the sweeps every run and would flood the SQL log.
var pollingQueries = []string{
	`FROM "group_membership" WHERE lastseen_at <=`,
	`FROM "group_membership" WHERE inactive_at <=`,
	`FROM "group_membership" WHERE removal_notification_at <=`,
}

// InitDB opens the postgres connection, retrying while the server comes up,
// and migrates the schema.
func InitDB(ctx context.Context, cfg config.Database, log *zap.Logger) (*gorm.DB, error) {
	gormConfig := NewGormConfig(log)

	var db *gorm.DB
	open := func() error {
		var err error
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err != nil {
			log.Warn("Database connection attempt failed", zap.Error(err))
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.MaxInterval = 5 * time.Second
	policy.MaxElapsedTime = cfg.ConnectTimeout
	if err := backoff.Retry(open, backoff.WithContext(policy, ctx)); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("Database connection established and migrations completed")
	return db, nil
}

// NewGormConfig returns the gorm settings shared by every dialect.
func NewGormConfig(log *zap.Logger) *gorm.Config {
	baseLogger := logger.New(
		utils.NewZapWriter(log.Named("gorm")),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	return &gorm.Config{
		Logger: utils.NewCustomGormLogger(baseLogger, pollingQueries...),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: false,
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMembership{},
		&models.History{},
		&models.Message{},
		&models.Activity{},
		&models.ActivityParticipant{},
		&models.Feedback{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
