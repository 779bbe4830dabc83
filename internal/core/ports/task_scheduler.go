package ports

import (
	"context"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// TaskKind identifies which of the two deadline alerts a scheduled task
// will deliver when it fires.
type TaskKind string

const (
	// TaskKindWarning fires at 75% of the cumulative stage budget.
	TaskKindWarning TaskKind = "warning"

	// TaskKindOverdue fires at 100% of the cumulative stage budget.
	TaskKindOverdue TaskKind = "overdue"
)

// Severity maps the task kind to the alert status it delivers.
func (k TaskKind) Severity() order.AlertStatus {
	if k == TaskKindOverdue {
		return order.Red
	}
	return order.Yellow
}

// DeadlineTask is the durable record handed to the delayed-task service.
// The payload carries everything the fire handler needs to re-check the
// order and deliver the alert; the ID is deterministic so a duplicate
// scheduling request for the same order/stage/kind collapses to one task.
type DeadlineTask struct {
	ID      string
	Kind    TaskKind
	OrderID kernel.UUID
	Stage   order.Stage
	StoreID kernel.UUID
	FireAt  time.Time
}

// DeadlineTaskID builds the deterministic task identifier
// {orderId}_{warning|overdue}_{stage}.
func DeadlineTaskID(orderID kernel.UUID, kind TaskKind, stage order.Stage) string {
	return fmt.Sprintf("%s_%s_%d", orderID.String(), kind, stage)
}

// TaskScheduler is the delayed-task service contract: durable tasks that are
// delivered to the fire handler at-or-after their fire time, at least once.
//
// Delivery may be late or duplicated and cancellation is best-effort; the
// fire handler tolerates both by re-checking the order's stage before acting.
type TaskScheduler interface {
	// Schedule creates or overwrites the task with the given deterministic ID.
	Schedule(ctx context.Context, task DeadlineTask) error

	// Cancel removes a single pending task by ID. Cancelling a task that
	// already fired or never existed is not an error.
	Cancel(ctx context.Context, taskID string) error

	// CancelAll removes every pending task for the given order.
	CancelAll(ctx context.Context, orderID kernel.UUID) error
}
