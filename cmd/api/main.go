package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lounaagency/agri-admin-dashboard/internal/app"
	"github.com/lounaagency/agri-admin-dashboard/internal/config"
	"github.com/lounaagency/agri-admin-dashboard/internal/database"
	"github.com/lounaagency/agri-admin-dashboard/internal/logger"
	"github.com/lounaagency/agri-admin-dashboard/internal/middleware"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	migrate := flag.Bool("migrate", false, "run schema migrations before serving")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		zap.NewExample().Fatal("Invalid configuration", zap.Error(err))
	}

	log := logger.Must(cfg.Logging)
	defer log.Sync()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialise application", zap.Error(err))
	}
	defer a.Close()

	if *migrate {
		if err := database.Migrate(ctx, a.DB, cfg.Database.EnablePostGIS, log); err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}
	}

	if cfg.Logging.Format != "console" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(log.Named("http")),
		middleware.Metrics(),
		middleware.CORS(cfg.Server.AllowedOrigin),
	)
	if cfg.Server.RequestsPerMinute > 0 {
		router.Use(middleware.RateLimit(cfg.Server.RequestsPerMinute, cfg.Server.Burst))
	}

	a.RegisterRoutes(router.Group("/api/v1"))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if sqlDB, err := a.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now(),
		})
	})

	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exiting")
}
