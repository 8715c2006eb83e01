package integrity

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Worker runs the integrity sweep on a cron schedule
type Worker struct {
	cron       *cron.Cron
	service    Service
	logger     *zap.Logger
	schedule   string
	autoRepair bool
	mu         sync.Mutex
	running    bool
	// sweeps do not overlap: a tick arriving during a sweep is skipped
	busy sync.Mutex
}

// NewWorker creates a worker. schedule uses the six-field cron syntax with seconds.
func NewWorker(service Service, logger *zap.Logger, schedule string, autoRepair bool) *Worker {
	return &Worker{
		cron:       cron.New(cron.WithSeconds()),
		service:    service,
		logger:     logger,
		schedule:   schedule,
		autoRepair: autoRepair,
	}
}

// Start registers the sweep and starts the scheduler. The sweep stops with ctx.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("integrity worker already running")
	}

	if _, err := w.cron.AddFunc(w.schedule, func() { w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid integrity schedule %q: %w", w.schedule, err)
	}

	w.logger.Info("Starting integrity worker",
		zap.String("schedule", w.schedule),
		zap.Bool("auto_repair", w.autoRepair))
	w.cron.Start()
	w.running = true
	return nil
}

// Stop stops the scheduler and waits for a running sweep
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}

	w.logger.Info("Stopping integrity worker")
	<-w.cron.Stop().Done()
	w.running = false
}

// RunOnce scans, and repairs when auto repair is on. It reports whether a sweep ran.
func (w *Worker) RunOnce(ctx context.Context) bool {
	if !w.busy.TryLock() {
		w.logger.Warn("Previous integrity sweep still running, skipping")
		return false
	}
	defer w.busy.Unlock()

	if ctx.Err() != nil {
		return false
	}

	if w.autoRepair {
		result, err := w.service.Repair(ctx)
		if err != nil {
			w.logger.Error("Integrity repair failed", zap.Error(err))
			return true
		}
		if len(result.Failures) > 0 {
			w.logger.Warn("Integrity repair left failures", zap.Strings("failures", result.Failures))
		}
		return true
	}

	report, err := w.service.Scan(ctx)
	if err != nil {
		w.logger.Error("Integrity scan failed", zap.Error(err))
		return true
	}
	w.logger.Info("Integrity scan finished", zap.Int("issues", report.Total()))
	return true
}
