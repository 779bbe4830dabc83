// Package queries contains read-only operations for retrieving system state.
// Implements the Query side of the CQRS architecture: handlers read the
// storage directly, bypassing the aggregates, and return plain response
// structs shaped for the API.
package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrGetOrderStatusQueryIsNotConstructed = errors.New(
	"GetOrderStatusQuery must be created via NewGetOrderStatusQuery constructor",
)

// GetOrderStatusQuery retrieves the workflow status of a single order:
// the current stage, the alert status, and the stage history.
//
// Example:
//
//	query, err := NewGetOrderStatusQuery(orderID)
//	if err != nil {
//	    return err
//	}
//
//	status, err := handler.Handle(ctx, query)
//	if errors.Is(err, ErrOrderNotFound) {
//	    // unknown order id
//	}
type GetOrderStatusQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderStatusQuery creates a query for one order's workflow status.
func NewGetOrderStatusQuery(orderID kernel.UUID) (GetOrderStatusQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderStatusQuery{}, err
	}

	return GetOrderStatusQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetOrderStatusQueryIsNotConstructed if validation fails.
func (q GetOrderStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderStatusQueryIsNotConstructed)
}

// OrderID returns the identifier of the order to look up.
func (q GetOrderStatusQuery) OrderID() kernel.UUID {
	return q.orderID
}

// WorkflowStep is one completed stage in an order's history.
type WorkflowStep struct {
	Stage        order.Stage
	MinutesSpent int
	CompletedAt  time.Time
}

// GetOrderStatusQueryResponse represents an order's workflow status.
type GetOrderStatusQueryResponse struct {
	OrderID        kernel.UUID
	Stage          order.Stage
	StageEnteredAt time.Time
	AlertStatus    order.AlertStatus
	History        []WorkflowStep
	BatchNumber    *int
	DeliveryManID  *kernel.UUID
	CancelReason   string
}
