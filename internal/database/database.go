package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lounaagency/agri-admin-dashboard/internal/config"
	"github.com/lounaagency/agri-admin-dashboard/internal/cultures"
	"github.com/lounaagency/agri-admin-dashboard/internal/finance"
	"github.com/lounaagency/agri-admin-dashboard/internal/projects"
	"github.com/lounaagency/agri-admin-dashboard/internal/users"
)

// Open connects to PostgreSQL and configures the connection pool
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	gormLog := gormlogger.New(
		zap.NewStdLog(logger.Named("gorm")),
		gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseURL()), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if cfg.MaxConnections > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("db_name", cfg.DBName),
	)
	return db, nil
}

// Models lists every table owned by the service, in dependency order
func Models() []interface{} {
	return []interface{}{
		&users.Role{},
		&users.User{},
		&users.UserRole{},
		&cultures.Culture{},
		&projects.Project{},
		&projects.ProjectCulture{},
		&projects.Milestone{},
		&projects.ProjectMilestone{},
		&finance.Investment{},
		&finance.Cost{},
		&finance.Payment{},
	}
}

// postgisStatements derive a spatial column from the stored GeoJSON
var postgisStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,
	`ALTER TABLE projet ADD COLUMN IF NOT EXISTS geom geometry(Geometry, 4326)
		GENERATED ALWAYS AS (ST_SetSRID(ST_GeomFromGeoJSON(geom_geojson::text), 4326)) STORED`,
	`CREATE INDEX IF NOT EXISTS idx_projet_geom ON projet USING GIST (geom)`,
}

// Migrate creates or updates the schema and seeds the role catalogue
func Migrate(ctx context.Context, db *gorm.DB, enablePostGIS bool, logger *zap.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	if err := users.NewRepository(db).EnsureRoles(ctx, users.Roles); err != nil {
		return err
	}

	if enablePostGIS {
		for _, stmt := range postgisStatements {
			if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to enable spatial column: %w", err)
			}
		}
	}

	logger.Info("Schema migrated",
		zap.Int("tables", len(Models())),
		zap.Bool("postgis", enablePostGIS),
	)
	return nil
}
