package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
//
// The Order row is the sole coordination point between the synchronous
// transition API, the deadline scheduler, and the escalation reconciler,
// so writes must be conditional on the aggregate version: Update persists
// only when the stored version still matches the version the aggregate was
// read at, and reports errs.ErrConcurrencyConflict otherwise.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate, conditional on
	// the version the aggregate was read at. Returns an error wrapping
	// errs.ErrConcurrencyConflict when a concurrent writer got there first.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its business identifier.
	// Returns an error wrapping errs.ErrObjectNotFound when no such order exists.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAllActive retrieves all orders in a non-terminal stage.
	// Used by the escalation reconciler to sweep for missed alerts.
	GetAllActive(ctx context.Context) ([]*order.Order, error)
}
