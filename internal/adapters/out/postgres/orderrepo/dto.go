// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"encoding/json"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// The items and history collections are stored as jsonb documents; the
// current_stage column is indexed for the reconciler's active-order sweep and
// the version column carries the optimistic concurrency fence.
type OrderDTO struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	StoreID          uuid.UUID `gorm:"type:uuid;index"`
	CustomerName     string
	PhoneNumber      string
	Items            []byte `gorm:"type:jsonb"`
	Total            float64
	CreatedAt        time.Time
	CurrentStage     int `gorm:"index"`
	StageEnteredAt   time.Time
	StageProcessedAt time.Time
	History          []byte `gorm:"type:jsonb"`
	AlertStatus      int
	BatchNumber      *int
	DeliveryManID    *uuid.UUID `gorm:"type:uuid"`
	CancelReason     string
	Version          int64
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// itemRow is the JSON shape of one order line in the items column.
type itemRow struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// historyEntryRow is the JSON shape of one completed stage in the history column.
type historyEntryRow struct {
	Stage        int       `json:"stage"`
	MinutesSpent int       `json:"minutesSpent"`
	CompletedAt  time.Time `json:"completedAt"`
}

// fromDomain converts an order domain aggregate to its database representation.
// The version column is written as-is; Update bumps it when fencing the write.
func fromDomain(aggregate *order.Order) (OrderDTO, error) {
	items := make([]itemRow, 0, len(aggregate.Items()))
	for _, it := range aggregate.Items() {
		items = append(items, itemRow{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	rawItems, err := json.Marshal(items)
	if err != nil {
		return OrderDTO{}, err
	}

	history := make([]historyEntryRow, 0, len(aggregate.History()))
	for _, e := range aggregate.History() {
		history = append(history, historyEntryRow{
			Stage:        int(e.Stage),
			MinutesSpent: e.MinutesSpent,
			CompletedAt:  e.CompletedAt,
		})
	}
	rawHistory, err := json.Marshal(history)
	if err != nil {
		return OrderDTO{}, err
	}

	var deliveryManID *uuid.UUID
	if id := aggregate.DeliveryManID(); id != nil {
		raw := id.Bytes()
		deliveryManID = &raw
	}

	flow := aggregate.CurrentFlow()

	return OrderDTO{
		ID:               aggregate.ID().Bytes(),
		StoreID:          aggregate.StoreID().Bytes(),
		CustomerName:     aggregate.CustomerName(),
		PhoneNumber:      aggregate.PhoneNumber(),
		Items:            rawItems,
		Total:            aggregate.Total(),
		CreatedAt:        aggregate.CreatedAt(),
		CurrentStage:     int(flow.Stage),
		StageEnteredAt:   flow.EnteredAt,
		StageProcessedAt: flow.ProcessedAt,
		History:          rawHistory,
		AlertStatus:      int(aggregate.AlertStatus()),
		BatchNumber:      aggregate.BatchNumber(),
		DeliveryManID:    deliveryManID,
		CancelReason:     aggregate.CancelReason(),
		Version:          aggregate.Version(),
	}, nil
}

// toDomain converts a database DTO to an order domain aggregate.
// Reconstructs the complete aggregate including stage history using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	storeID, err := kernel.UUIDFromBytes(dto.StoreID[:])
	if err != nil {
		return nil, err
	}

	var deliveryManID *kernel.UUID
	if dto.DeliveryManID != nil {
		dmID, dmErr := kernel.UUIDFromBytes((*dto.DeliveryManID)[:])
		if dmErr != nil {
			return nil, dmErr
		}
		deliveryManID = &dmID
	}

	var itemRows []itemRow
	if err = json.Unmarshal(dto.Items, &itemRows); err != nil {
		return nil, err
	}
	items := make([]order.Item, 0, len(itemRows))
	for _, it := range itemRows {
		items = append(items, order.Item{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}

	var historyRows []historyEntryRow
	if len(dto.History) > 0 {
		if err = json.Unmarshal(dto.History, &historyRows); err != nil {
			return nil, err
		}
	}
	history := make([]order.WorkflowEntry, 0, len(historyRows))
	for _, e := range historyRows {
		history = append(history, order.WorkflowEntry{
			Stage:        order.Stage(e.Stage),
			MinutesSpent: e.MinutesSpent,
			CompletedAt:  e.CompletedAt,
		})
	}

	return order.RestoreOrder(
		id,
		storeID,
		dto.CustomerName,
		dto.PhoneNumber,
		items,
		dto.Total,
		dto.CreatedAt,
		order.CurrentFlow{
			Stage:       order.Stage(dto.CurrentStage),
			EnteredAt:   dto.StageEnteredAt,
			ProcessedAt: dto.StageProcessedAt,
		},
		history,
		order.AlertStatus(dto.AlertStatus),
		dto.BatchNumber,
		deliveryManID,
		dto.CancelReason,
		dto.Version,
	)
}
