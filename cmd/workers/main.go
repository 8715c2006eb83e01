package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/lounaagency/agri-admin-dashboard/internal/app"
	"github.com/lounaagency/agri-admin-dashboard/internal/config"
	"github.com/lounaagency/agri-admin-dashboard/internal/integrity"
	"github.com/lounaagency/agri-admin-dashboard/internal/logger"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	runNow := flag.Bool("now", false, "run one sweep at startup")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		zap.NewExample().Fatal("Invalid configuration", zap.Error(err))
	}

	log := logger.Must(cfg.Logging)
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialise application", zap.Error(err))
	}
	defer a.Close()

	worker := integrity.NewWorker(a.Integrity, log.Named("worker"), cfg.Worker.IntegritySchedule, cfg.Worker.AutoRepair)
	if *runNow {
		worker.RunOnce(ctx)
	}
	if err := worker.Start(ctx); err != nil {
		log.Fatal("Failed to start integrity worker", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("Shutdown signal received")

	cancel()
	worker.Stop()
	log.Info("Integrity worker stopped")
}
