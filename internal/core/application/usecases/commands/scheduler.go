package commands

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// DeadlineScheduler is the stage-deadline side of the workflow commands:
// after a committed transition the handler re-arms the deadline alerts for
// the order's new stage, or cancels them all when the order went terminal.
//
// Both operations run post-commit and best-effort; a failure is logged by
// the handler and never affects the transition outcome.
type DeadlineScheduler interface {
	// Rearm cancels any previously scheduled deadline tasks for the order
	// and arms the warning/overdue alerts for the given stage.
	Rearm(ctx context.Context, orderID kernel.UUID, stage order.Stage, storeID kernel.UUID, createdAt time.Time) error

	// CancelAll cancels every pending deadline task for the order.
	CancelAll(ctx context.Context, orderID kernel.UUID) error
}
