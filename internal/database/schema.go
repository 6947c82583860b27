package database

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"bagportal/internal/config"
	"bagportal/internal/models"
	"bagportal/internal/observability"

	"gorm.io/gorm"
)

// DB_SCHEMA_MODE values.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaPlan is what ApplySchema does for a configuration.
type SchemaPlan struct {
	Mode        string
	SQL         bool
	AutoMigrate bool
}

// SchemaStatus reports the plan, the migration history and whether the sector
// catalog has been installed.
type SchemaStatus struct {
	SchemaPlan
	Environment       string
	AppliedVersions   []int
	PendingMigrations []Migration
	Sectors           int64
}

var deployedEnvs = []string{"production", "prod", "staging", "stage"}

// PlanSchema decides how the schema is managed. Deployed environments never run
// AutoMigrate; request rows are the quota history and must not be reshaped by it.
func PlanSchema(cfg *config.Config) (SchemaPlan, error) {
	deployed := slices.Contains(deployedEnvs, cfg.Env)
	mode := cfg.DBSchemaMode
	if mode == "" {
		mode = SchemaModeHybrid
	}
	plan := SchemaPlan{Mode: mode}

	// The embedded migrations are PostgreSQL; sqlite is for local runs and tests.
	if driverName(cfg) == "sqlite" {
		if deployed {
			return plan, fmt.Errorf("sqlite is not supported in %q", cfg.Env)
		}
		plan.AutoMigrate = true
		return plan, nil
	}

	switch mode {
	case SchemaModeSQL:
		plan.SQL = true
	case SchemaModeHybrid:
		plan.SQL, plan.AutoMigrate = true, !deployed
	case SchemaModeAuto:
		if deployed {
			return plan, fmt.Errorf("DB_SCHEMA_MODE=auto is refused in %q; use sql migrations", cfg.Env)
		}
		plan.AutoMigrate = true
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
	return plan, nil
}

// ApplySchema brings the schema up to date according to PlanSchema.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return err
	}
	if plan.SQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if plan.AutoMigrate {
		observability.Logger.Info("Running GORM AutoMigrate",
			slog.String("mode", plan.Mode), slog.String("env", cfg.Env))
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return nil
}

// GetSchemaStatus reports the plan, pending SQL migrations and the number of
// installed sectors (zero before the first migration).
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{SchemaPlan: plan, Environment: cfg.Env}

	if db.Migrator().HasTable(&models.Sector{}) {
		if err := db.WithContext(ctx).Model(&models.Sector{}).Count(&status.Sectors).Error; err != nil {
			return nil, fmt.Errorf("count sectors: %w", err)
		}
	}

	if !plan.SQL {
		return status, nil
	}
	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	status.AppliedVersions = applied
	for _, m := range GetMigrations() {
		if !slices.Contains(applied, m.Version) {
			status.PendingMigrations = append(status.PendingMigrations, m)
		}
	}
	return status, nil
}
