package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrOrderNotFound is returned when the order does not exist.
var ErrOrderNotFound = errors.New("order not found")

// historyEntryRow mirrors the JSON shape the order repository persists the
// stage history in.
type historyEntryRow struct {
	Stage        int       `json:"stage"`
	MinutesSpent int       `json:"minutesSpent"`
	CompletedAt  time.Time `json:"completedAt"`
}

// GetOrderStatusQueryHandler retrieves an order's workflow status from the
// database. Reads the order row directly; no aggregate is materialized.
type GetOrderStatusQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderStatusQueryHandler creates a handler for order status queries.
// Requires a GORM database connection for query execution.
func NewGetOrderStatusQueryHandler(db *gorm.DB) GetOrderStatusQueryHandler {
	return GetOrderStatusQueryHandler{db: db}
}

// Handle executes the query for one order's workflow status.
// Returns ErrOrderNotFound when no such order exists.
func (h GetOrderStatusQueryHandler) Handle(
	ctx context.Context,
	query GetOrderStatusQuery,
) (GetOrderStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			current_stage,
			stage_entered_at,
			alert_status,
			history,
			batch_number,
			delivery_man_id,
			cancel_reason
		FROM orders
		WHERE id = ?
	`, query.OrderID().String()).Row()

	var (
		id             uuid.UUID
		currentStage   int
		stageEnteredAt time.Time
		alertStatus    int
		history        []byte
		batchNumber    *int
		deliveryManID  *uuid.UUID
		cancelReason   string
	)

	err := row.Scan(
		&id,
		&currentStage,
		&stageEnteredAt,
		&alertStatus,
		&history,
		&batchNumber,
		&deliveryManID,
		&cancelReason,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetOrderStatusQueryResponse{}, ErrOrderNotFound
	}
	if err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	resp := GetOrderStatusQueryResponse{
		OrderID:        orderID,
		Stage:          order.Stage(currentStage),
		StageEnteredAt: stageEnteredAt,
		AlertStatus:    order.AlertStatus(alertStatus),
		BatchNumber:    batchNumber,
		CancelReason:   cancelReason,
	}

	if deliveryManID != nil {
		dmID, idErr := kernel.UUIDFromBytes(deliveryManID[:])
		if idErr != nil {
			return GetOrderStatusQueryResponse{}, idErr
		}
		resp.DeliveryManID = &dmID
	}

	steps, err := unmarshalHistory(history)
	if err != nil {
		return GetOrderStatusQueryResponse{}, err
	}
	resp.History = steps

	return resp, nil
}

func unmarshalHistory(raw []byte) ([]WorkflowStep, error) {
	steps := make([]WorkflowStep, 0)
	if len(raw) == 0 {
		return steps, nil
	}

	var rows []historyEntryRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}

	for _, r := range rows {
		steps = append(steps, WorkflowStep{
			Stage:        order.Stage(r.Stage),
			MinutesSpent: r.MinutesSpent,
			CompletedAt:  r.CompletedAt,
		})
	}
	return steps, nil
}
