package database

import (
	"context"
	"fmt"

	"github.com/sangkips/posbilling/internal/config"
	"github.com/sangkips/posbilling/internal/domain/entity"
	"github.com/sangkips/posbilling/internal/domain/enum"
	"github.com/sangkips/posbilling/internal/infrastructure/repository"
	"github.com/sangkips/posbilling/pkg/logger"
	"github.com/sangkips/posbilling/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens the configured database and applies pool settings
func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	case "postgres", "":
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.DSN(),
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// a single writer keeps sqlite from returning SQLITE_BUSY under load
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	return db, nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.User{},
		&entity.Product{},
		&entity.Denomination{},
		&entity.Purchase{},
		&entity.PurchaseItem{},
		&entity.InvoiceNotification{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SeedDefaultData creates the till slots and the first admin account when they are missing
func SeedDefaultData(ctx context.Context, db *gorm.DB, cfg *config.Config, log *logger.Logger) error {
	denominations := repository.NewDenominationRepository(db)
	if err := denominations.EnsureDefaults(ctx, cfg.Shop.Denominations, cfg.Shop.DefaultDenominationCount); err != nil {
		return fmt.Errorf("failed to seed denominations: %w", err)
	}

	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		log.Warn(ctx, "ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin account")
		return nil
	}

	users := repository.NewUserRepository(db)
	email := utils.NormalizeEmail(cfg.Admin.Email)
	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up admin: %w", err)
	}
	if existing != nil {
		return nil
	}

	hashed, err := utils.HashPassword(cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	name := cfg.Admin.Name
	if name == "" {
		name = "Shop Admin"
	}
	admin := &entity.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     enum.StaffRoleAdmin,
		IsActive: true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	log.Info(log.WithField(ctx, "email", email), "admin account created")
	return nil
}
