package jobs

import (
	"fmt"
	"log/slog"

	"orderflow/internal/core/application/scheduling"
	"orderflow/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	deadlineTaskJob    *DeadlineTaskJob
	escalationSweepJob *EscalationSweepJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes the task source, scheduler and sweep handler to wire up job execution.
func NewJobManager(
	taskSource TaskSource,
	deadlineScheduler *scheduling.StageDeadlineScheduler,
	sweepHandler commands.SweepEscalationsCommandHandler,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		deadlineTaskJob:    NewDeadlineTaskJob(taskSource, deadlineScheduler, logger),
		escalationSweepJob: NewEscalationSweepJob(sweepHandler, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.deadlineTaskJob.Start(); err != nil {
		return fmt.Errorf("failed to start deadline task job: %w", err)
	}

	if err := jm.escalationSweepJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.deadlineTaskJob.Stop()
		return fmt.Errorf("failed to start escalation sweep job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.escalationSweepJob.Stop()
	jm.deadlineTaskJob.Stop()
}
