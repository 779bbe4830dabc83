// Package jobs provides scheduled background tasks for the order workflow.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to drive the time-based escalation engine.
//
// # Available Jobs
//
// 1. DeadlineTaskJob - Runs every 15 seconds to claim due deadline tasks and deliver them to the stage deadline scheduler
// 2. EscalationSweepJob - Runs every minute to re-check all active orders against their deadlines
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required dependencies
//	jobManager := jobs.NewJobManager(taskSource, deadlineScheduler, sweepHandler, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The deadline task job uses "*/15 * * * * *" so fired tasks are delivered
// within seconds of their computed fire time. The sweep job uses
// "0 * * * * *" because it is a recovery mechanism, not the primary path.
//
// # Error Handling
//
// - Per-task delivery failures are logged and the batch continues
// - Sweep failures are logged; the next minute retries the whole sweep
// - Failed job starts will stop any already running jobs
package jobs
