// Package storerepo provides data transfer objects and mapping functions for
// store configuration persistence. Stores carry the per-stage time budgets
// the deadline engine derives every SLA from.
package storerepo

import (
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/store"

	"github.com/google/uuid"
)

// StoreDTO represents the database structure for persisting store configuration.
type StoreDTO struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name                string
	Channel             string
	ConfirmationMinutes int
	ProductionMinutes   int
	DeliveryMinutes     int
}

// TableName specifies the database table name for store entities.
// Overrides GORM's default naming convention to use "stores".
func (StoreDTO) TableName() string {
	return "stores"
}

// fromDomain converts a store aggregate to its database representation.
func fromDomain(aggregate *store.Store) StoreDTO {
	budget := aggregate.TimeBudget()
	return StoreDTO{
		ID:                  aggregate.ID().Bytes(),
		Name:                aggregate.Name(),
		Channel:             aggregate.Channel(),
		ConfirmationMinutes: budget.ConfirmationMinutes(),
		ProductionMinutes:   budget.ProductionMinutes(),
		DeliveryMinutes:     budget.DeliveryMinutes(),
	}
}

// toDomain converts a database DTO to a store aggregate using RestoreStore.
func toDomain(dto StoreDTO) (*store.Store, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	budget, err := store.NewTimeBudget(
		dto.ConfirmationMinutes, dto.ProductionMinutes, dto.DeliveryMinutes)
	if err != nil {
		return nil, err
	}

	return store.RestoreStore(id, dto.Name, dto.Channel, budget)
}
