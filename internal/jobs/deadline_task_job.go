package jobs

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/application/scheduling"
	"orderflow/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// claimBatchSize caps how many due tasks a single tick processes.
const claimBatchSize = 100

// TaskSource claims scheduled deadline tasks that are due for delivery.
type TaskSource interface {
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]ports.DeadlineTask, error)
}

// DeadlineTaskJob polls the scheduled task store and delivers fired tasks
// to the stage deadline scheduler. Runs every fifteen seconds so warnings
// land close to their computed fire time.
type DeadlineTaskJob struct {
	source    TaskSource
	scheduler *scheduling.StageDeadlineScheduler
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewDeadlineTaskJob creates a new job for delivering fired deadline tasks.
func NewDeadlineTaskJob(source TaskSource, scheduler *scheduling.StageDeadlineScheduler, logger *slog.Logger) *DeadlineTaskJob {
	return &DeadlineTaskJob{
		source:    source,
		scheduler: scheduler,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "deadline_task_job"),
	}
}

// Start begins the deadline task job to run every fifteen seconds.
func (j *DeadlineTaskJob) Start() error {
	_, err := j.cron.AddFunc("*/15 * * * * *", func() {
		ctx := context.Background()

		tasks, err := j.source.ClaimDue(ctx, time.Now().UTC(), claimBatchSize)
		if err != nil {
			j.logger.ErrorContext(ctx, "Claiming due deadline tasks failed", "error", err)
			return
		}

		for _, task := range tasks {
			if err := j.scheduler.HandleFired(ctx, task); err != nil {
				// The sweep job re-evaluates every order, so a dropped task is recovered there.
				j.logger.ErrorContext(ctx, "Handling fired deadline task failed",
					"task_id", task.ID, "order_id", task.OrderID.String(), "error", err)
			}
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Deadline task job started (running every 15 seconds)")
	return nil
}

// Stop stops the deadline task job.
func (j *DeadlineTaskJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Deadline task job stopped")
}
