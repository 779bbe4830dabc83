package commands

import (
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrEscalateOrderCommandIsNotConstructed = errors.New(
	"EscalateOrderCommand must be created via NewEscalateOrderCommand constructor",
)

// EscalateOrderCommand represents a request to raise an order's alert status
// for a specific stage. Both escalation delivery paths — the fired deadline
// task and the periodic reconciler sweep — funnel through this command, so
// the monotonic severity gate lives in exactly one place.
//
// The stage is the stage the alert was computed for; when the order has
// since moved on the escalation is stale and handled as a no-op.
type EscalateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	stage    order.Stage
	severity order.AlertStatus

	guard guard.ConstructorGuard
}

// NewEscalateOrderCommand creates a command to raise an order's alert status.
// severity must be Yellow or Red; Green is only ever set by stage changes.
func NewEscalateOrderCommand(
	orderID kernel.UUID,
	stage order.Stage,
	severity order.AlertStatus,
) (EscalateOrderCommand, error) {
	cmd := EscalateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setStage(stage),
		cmd.setSeverity(severity),
	); err != nil {
		return EscalateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrEscalateOrderCommandIsNotConstructed if validation fails.
func (c EscalateOrderCommand) Validate() error {
	return c.guard.Validate(ErrEscalateOrderCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to escalate.
func (c EscalateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Stage returns the stage the escalation was computed for.
func (c EscalateOrderCommand) Stage() order.Stage {
	return c.stage
}

// Severity returns the alert status to raise the order to.
func (c EscalateOrderCommand) Severity() order.AlertStatus {
	return c.severity
}

func (c *EscalateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *EscalateOrderCommand) setStage(stage order.Stage) error {
	if err := stage.Validate(); err != nil {
		return err
	}

	c.stage = stage
	return nil
}

func (c *EscalateOrderCommand) setSeverity(severity order.AlertStatus) error {
	if severity != order.Yellow && severity != order.Red {
		return errs.NewValueIsInvalidErrorWithCause(
			"severity",
			fmt.Errorf("%s is not an escalation severity", severity.String()),
		)
	}

	c.severity = severity
	return nil
}
