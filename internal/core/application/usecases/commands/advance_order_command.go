package commands

import (
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var (
	ErrAdvanceOrderCommandIsNotConstructed = errors.New(
		"AdvanceOrderCommand must be created via NewAdvanceOrderCommand constructor",
	)
	ErrMinutesSpentIsInvalid = errors.New("minutesSpent must be greater than or equal to 0")
)

// AdvanceOrderCommand represents an operator's request to move an order one
// stage forward in the fulfillment sequence.
//
// The command carries the stage the operator observed (fromStage) as an
// optimistic fence: the handler rejects the transition with ErrStageConflict
// when the order has meanwhile moved on, instead of silently overwriting the
// concurrent change.
//
// Example:
//
//	cmd, err := NewAdvanceOrderCommand(orderID, order.AwaitingConfirmation, order.InProduction, 4)
//	if err != nil {
//	    return fmt.Errorf("invalid transition request: %w", err)
//	}
//	cmd.SetBatchNumber(7)
//
//	switch err := handler.Handle(ctx, cmd); {
//	case errors.Is(err, ErrStageConflict):
//	    // order changed underneath the operator; refresh and retry
//	case errors.Is(err, ErrOrderNotFound):
//	    // unknown order id
//	}
type AdvanceOrderCommand struct { //nolint:recvcheck //using for validation
	orderID      kernel.UUID
	fromStage    order.Stage
	toStage      order.Stage
	minutesSpent int

	batchNumber   *int
	deliveryManID *kernel.UUID

	guard guard.ConstructorGuard
}

// NewAdvanceOrderCommand creates a command to advance an order from the stage
// the caller observed to the next one, recording the operator-reported
// minutes spent. Validates identifiers, stage values, and the duration.
func NewAdvanceOrderCommand(
	orderID kernel.UUID,
	fromStage order.Stage,
	toStage order.Stage,
	minutesSpent int,
) (AdvanceOrderCommand, error) {
	cmd := AdvanceOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setStages(fromStage, toStage),
		cmd.setMinutesSpent(minutesSpent),
	); err != nil {
		return AdvanceOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrAdvanceOrderCommandIsNotConstructed if validation fails.
func (c AdvanceOrderCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceOrderCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to advance.
func (c AdvanceOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// FromStage returns the stage the operator observed before requesting the transition.
func (c AdvanceOrderCommand) FromStage() order.Stage {
	return c.fromStage
}

// ToStage returns the stage the order should move to.
func (c AdvanceOrderCommand) ToStage() order.Stage {
	return c.toStage
}

// MinutesSpent returns the operator-reported minutes the completed stage took.
func (c AdvanceOrderCommand) MinutesSpent() int {
	return c.minutesSpent
}

// BatchNumber returns the optional production batch number attached to the
// transition, or nil when none was supplied.
func (c AdvanceOrderCommand) BatchNumber() *int {
	return c.batchNumber
}

// DeliveryManID returns the optional delivery man assignment attached to the
// transition, or nil when none was supplied.
func (c AdvanceOrderCommand) DeliveryManID() *kernel.UUID {
	return c.deliveryManID
}

// SetBatchNumber attaches a production batch number to the transition.
func (c *AdvanceOrderCommand) SetBatchNumber(batchNumber int) {
	c.batchNumber = &batchNumber
}

// SetDeliveryManID attaches a delivery man assignment to the transition.
func (c *AdvanceOrderCommand) SetDeliveryManID(deliveryManID kernel.UUID) {
	c.deliveryManID = &deliveryManID
}

func (c *AdvanceOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *AdvanceOrderCommand) setStages(fromStage, toStage order.Stage) error {
	if err := fromStage.Validate(); err != nil {
		return fmt.Errorf("fromStage: %w", err)
	}
	if err := toStage.Validate(); err != nil {
		return fmt.Errorf("toStage: %w", err)
	}

	c.fromStage = fromStage
	c.toStage = toStage
	return nil
}

func (c *AdvanceOrderCommand) setMinutesSpent(minutesSpent int) error {
	if minutesSpent < 0 {
		return ErrMinutesSpentIsInvalid
	}

	c.minutesSpent = minutesSpent
	return nil
}
