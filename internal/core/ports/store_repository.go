package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/store"
)

// StoreRepository defines read access to store configuration.
// The workflow engine never mutates stores; time budgets are owned by
// the store-configuration collaborator.
type StoreRepository interface {
	// Add persists a new store. Used by configuration tooling and tests.
	Add(ctx context.Context, aggregate *store.Store) error

	// Get retrieves a store by its identifier.
	// Returns an error wrapping errs.ErrObjectNotFound when no such store exists.
	Get(ctx context.Context, id kernel.UUID) (*store.Store, error)
}
