// Package taskrepo persists deadline tasks as rows in a polled job table.
// A scheduled task is durable from Schedule until it is either cancelled by
// a stage transition or claimed by the poller; claiming is atomic across
// concurrent pollers via row locking.
package taskrepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"github.com/google/uuid"
)

// TaskDTO represents one pending deadline task. The primary key is the
// deterministic task identifier, so re-scheduling the same order/stage/kind
// is an upsert rather than a duplicate row.
type TaskDTO struct {
	ID      string    `gorm:"primaryKey"`
	Kind    string
	OrderID uuid.UUID `gorm:"type:uuid;index"`
	Stage   int
	StoreID uuid.UUID `gorm:"type:uuid"`
	FireAt  time.Time `gorm:"index"`
}

// TableName specifies the database table name for scheduled tasks.
func (TaskDTO) TableName() string {
	return "scheduled_tasks"
}

func fromTask(task ports.DeadlineTask) TaskDTO {
	return TaskDTO{
		ID:      task.ID,
		Kind:    string(task.Kind),
		OrderID: task.OrderID.Bytes(),
		Stage:   int(task.Stage),
		StoreID: task.StoreID.Bytes(),
		FireAt:  task.FireAt,
	}
}

func toTask(dto TaskDTO) (ports.DeadlineTask, error) {
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return ports.DeadlineTask{}, err
	}

	storeID, err := kernel.UUIDFromBytes(dto.StoreID[:])
	if err != nil {
		return ports.DeadlineTask{}, err
	}

	return ports.DeadlineTask{
		ID:      dto.ID,
		Kind:    ports.TaskKind(dto.Kind),
		OrderID: orderID,
		Stage:   order.Stage(dto.Stage),
		StoreID: storeID,
		FireAt:  dto.FireAt,
	}, nil
}
