// Package app wires repositories, services and handlers for the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lounaagency/agri-admin-dashboard/internal/config"
	"github.com/lounaagency/agri-admin-dashboard/internal/cultures"
	"github.com/lounaagency/agri-admin-dashboard/internal/dashboard"
	"github.com/lounaagency/agri-admin-dashboard/internal/database"
	"github.com/lounaagency/agri-admin-dashboard/internal/finance"
	"github.com/lounaagency/agri-admin-dashboard/internal/integrity"
	"github.com/lounaagency/agri-admin-dashboard/internal/projects"
	"github.com/lounaagency/agri-admin-dashboard/internal/reports"
	"github.com/lounaagency/agri-admin-dashboard/internal/users"
	"github.com/lounaagency/agri-admin-dashboard/pkg/storage"
)

// App holds the services built on one database connection
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	DB        *gorm.DB
	Cultures  cultures.Service
	Projects  projects.Service
	Users     users.Service
	Finance   finance.Service
	Dashboard dashboard.Service
	Integrity integrity.Service
	Reports   *reports.Service
}

// New connects to the database and builds every service
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	return Build(ctx, db, cfg, logger)
}

// Build wires the services on an open connection
func Build(ctx context.Context, db *gorm.DB, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger, DB: db}

	a.Cultures = cultures.NewService(cultures.NewRepository(db), logger)
	a.Projects = projects.NewService(projects.NewRepository(db), logger)
	a.Users = users.NewService(users.NewRepository(db), logger)
	a.Finance = finance.NewService(finance.NewRepository(db), logger)
	a.Dashboard = dashboard.NewAggregator(dashboard.NewRepository(db), logger.Named("dashboard"), cfg.Dashboard)
	a.Integrity = integrity.NewService(integrity.NewRepository(db), a.Users, a.Finance, logger.Named("integrity"))

	var store storage.S3Client
	if cfg.Storage.Enabled {
		s3c, err := storage.NewS3Client(ctx, storage.Options{
			Region:          cfg.Storage.Region,
			Endpoint:        cfg.Storage.Endpoint,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to configure report archive: %w", err)
		}
		store = s3c
		logger.Info("Report archiving enabled", zap.String("bucket", cfg.Storage.Bucket))
	}
	a.Reports = reports.NewService(a.Projects, a.Finance, a.Dashboard, store, cfg.Storage, logger.Named("reports"))

	return a, nil
}

// RegisterRoutes mounts every handler on rg
func (a *App) RegisterRoutes(rg *gin.RouterGroup) {
	cultures.NewHandler(a.Cultures).RegisterRoutes(rg)
	projects.NewHandler(a.Projects).RegisterRoutes(rg)
	users.NewHandler(a.Users).RegisterRoutes(rg)
	finance.NewHandler(a.Finance).RegisterRoutes(rg)
	dashboard.NewHandler(a.Dashboard).RegisterRoutes(rg)
	integrity.NewHandler(a.Integrity).RegisterRoutes(rg)
	reports.NewHandler(a.Reports, a.Logger).RegisterRoutes(rg)
}

// Close releases the connection pool
func (a *App) Close() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
