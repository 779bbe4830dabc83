package jobs

import (
	"context"
	"log/slog"

	"orderflow/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// EscalationSweepJob periodically re-checks every active order against its
// stage deadlines. It is the safety net behind the scheduled deadline tasks:
// if a task was lost or never armed, the sweep still escalates the order.
type EscalationSweepJob struct {
	handler commands.SweepEscalationsCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewEscalationSweepJob creates a new job for sweeping overdue orders.
// Uses SweepEscalationsCommandHandler to evaluate deadlines every minute.
func NewEscalationSweepJob(handler commands.SweepEscalationsCommandHandler, logger *slog.Logger) *EscalationSweepJob {
	return &EscalationSweepJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "escalation_sweep_job"),
	}
}

// Start begins the escalation sweep job to run once a minute.
func (j *EscalationSweepJob) Start() error {
	_, err := j.cron.AddFunc("0 * * * * *", func() {
		ctx := context.Background()
		cmd, err := commands.NewSweepEscalationsCommand()
		if err != nil {
			j.logger.ErrorContext(ctx, "Escalation sweep job failed", "error", err)
			return
		}

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Escalation sweep job failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Escalation sweep job started (running every minute)")
	return nil
}

// Stop stops the escalation sweep job.
func (j *EscalationSweepJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Escalation sweep job stopped")
}
