// Package scheduling arms and delivers the per-stage deadline alerts.
// It sits between the workflow commands and the delayed-task service:
// commands re-arm deadlines after committed transitions, and fired tasks
// come back through here on their way to the escalation handler.
package scheduling

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
)

// StageDeadlineScheduler translates a store's time budget into scheduled
// warning and overdue tasks for an order's current stage.
//
// Deadlines are cumulative from the order's creation time, so re-arming
// after a late transition can find a deadline already in the past. In that
// case the scheduler escalates immediately instead of scheduling a task
// that would fire the moment it lands.
type StageDeadlineScheduler struct {
	tasks    ports.TaskScheduler
	stores   ports.StoreRepository
	escalate commands.EscalateOrderHandler
	calc     services.DeadlineCalculator
	logger   *slog.Logger
	now      func() time.Time
}

// NewStageDeadlineScheduler creates a scheduler over the given delayed-task
// service and store configuration source.
func NewStageDeadlineScheduler(
	tasks ports.TaskScheduler,
	stores ports.StoreRepository,
	escalate commands.EscalateOrderHandler,
	logger *slog.Logger,
) *StageDeadlineScheduler {
	return &StageDeadlineScheduler{
		tasks:    tasks,
		stores:   stores,
		escalate: escalate,
		calc:     services.NewDeadlineCalculator(),
		logger:   logger.With("component", "stage_deadline_scheduler"),
		now:      time.Now,
	}
}

// Rearm cancels any previously scheduled deadline tasks for the order and
// arms the warning and overdue alerts for the given stage. Deadlines that
// already passed are escalated inline rather than scheduled.
func (s *StageDeadlineScheduler) Rearm(
	ctx context.Context,
	orderID kernel.UUID,
	stage order.Stage,
	storeID kernel.UUID,
	createdAt time.Time,
) error {
	if err := s.tasks.CancelAll(ctx, orderID); err != nil {
		// stale tasks are harmless: the fire handler re-checks the stage
		s.logger.WarnContext(ctx, "Failed to cancel stale deadline tasks",
			"order_id", orderID.String(), "error", err)
	}

	st, err := s.stores.Get(ctx, storeID)
	if err != nil {
		return err
	}

	warningAt, overdueAt, err := s.calc.Deadlines(createdAt, st.TimeBudget(), stage)
	if err != nil {
		return err
	}

	now := s.now()
	switch {
	case !now.Before(overdueAt):
		return s.escalateNow(ctx, orderID, stage, order.Red)
	case !now.Before(warningAt):
		if err := s.escalateNow(ctx, orderID, stage, order.Yellow); err != nil {
			return err
		}
		return s.schedule(ctx, orderID, stage, storeID, ports.TaskKindOverdue, overdueAt)
	default:
		if err := s.schedule(ctx, orderID, stage, storeID, ports.TaskKindWarning, warningAt); err != nil {
			return err
		}
		return s.schedule(ctx, orderID, stage, storeID, ports.TaskKindOverdue, overdueAt)
	}
}

// CancelAll cancels every pending deadline task for the order.
func (s *StageDeadlineScheduler) CancelAll(ctx context.Context, orderID kernel.UUID) error {
	return s.tasks.CancelAll(ctx, orderID)
}

// HandleFired delivers a fired deadline task to the escalation handler.
// The handler re-checks the order's stage and alert status, so a task that
// outlived its stage or got delivered twice ends as a no-op there.
func (s *StageDeadlineScheduler) HandleFired(ctx context.Context, task ports.DeadlineTask) error {
	cmd, err := commands.NewEscalateOrderCommand(task.OrderID, task.Stage, task.Kind.Severity())
	if err != nil {
		return err
	}
	return s.escalate.Handle(ctx, cmd)
}

func (s *StageDeadlineScheduler) escalateNow(
	ctx context.Context,
	orderID kernel.UUID,
	stage order.Stage,
	severity order.AlertStatus,
) error {
	cmd, err := commands.NewEscalateOrderCommand(orderID, stage, severity)
	if err != nil {
		return err
	}
	return s.escalate.Handle(ctx, cmd)
}

func (s *StageDeadlineScheduler) schedule(
	ctx context.Context,
	orderID kernel.UUID,
	stage order.Stage,
	storeID kernel.UUID,
	kind ports.TaskKind,
	fireAt time.Time,
) error {
	return s.tasks.Schedule(ctx, ports.DeadlineTask{
		ID:      ports.DeadlineTaskID(orderID, kind, stage),
		Kind:    kind,
		OrderID: orderID,
		Stage:   stage,
		StoreID: storeID,
		FireAt:  fireAt,
	})
}

// WithClock replaces the scheduler's time source. Used by tests.
func (s *StageDeadlineScheduler) WithClock(now func() time.Time) *StageDeadlineScheduler {
	s.now = now
	return s
}
