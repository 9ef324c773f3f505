package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	portssvc "github.com/courierly/wallet-backend/internal/core/ports/services"
	"github.com/courierly/wallet-backend/internal/middleware"
)

// CompensationWorker drains the compensation task queue on a fixed schedule.
// Task claiming uses row-level locks, so any number of worker instances can
// run against the same database.
type CompensationWorker struct {
	compensationSvc portssvc.CompensationSvcFacade
	logger          *slog.Logger
	interval        time.Duration
	cron            *cron.Cron
}

// NewCompensationWorker creates a worker polling at the given interval.
func NewCompensationWorker(compensationSvc portssvc.CompensationSvcFacade, logger *slog.Logger, interval time.Duration) *CompensationWorker {
	return &CompensationWorker{
		compensationSvc: compensationSvc,
		logger:          logger,
		interval:        interval,
		cron:            cron.New(),
	}
}

// Start schedules the polling job and launches the scheduler goroutine.
func (w *CompensationWorker) Start() error {
	spec := fmt.Sprintf("@every %s", w.interval)
	_, err := w.cron.AddFunc(spec, w.runOnce)
	if err != nil {
		return fmt.Errorf("failed to schedule compensation worker: %w", err)
	}
	w.cron.Start()
	w.logger.Info("Compensation worker started", slog.Duration("interval", w.interval))
	return nil
}

// Stop halts the scheduler and waits for an in-flight run to finish.
func (w *CompensationWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	w.logger.Info("Compensation worker stopped")
}

func (w *CompensationWorker) runOnce() {
	runLogger := w.logger.With(slog.String("job", "compensation_worker"))
	ctx := middleware.WithLogger(context.Background(), runLogger)

	processed, err := w.compensationSvc.ProcessDueTasks(ctx)
	if err != nil {
		runLogger.Error("Compensation poll failed", slog.String("error", err.Error()))
		return
	}
	if processed > 0 {
		runLogger.Info("Compensation poll finished", slog.Int("processed", processed))
	}
}
