package taskrepo

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskScheduler implements the delayed-task service over a Postgres job
// table. Scheduling is an upsert on the deterministic task ID, cancellation
// is a delete, and the poller claims due tasks with SELECT ... FOR UPDATE
// SKIP LOCKED so concurrent pollers never deliver the same task twice.
type GormTaskScheduler struct {
	db *gorm.DB
}

// NewGormTaskScheduler creates a task scheduler over the given database.
func NewGormTaskScheduler(db *gorm.DB) *GormTaskScheduler {
	return &GormTaskScheduler{db: db}
}

// Schedule creates or overwrites the task with the given deterministic ID.
func (s *GormTaskScheduler) Schedule(ctx context.Context, task ports.DeadlineTask) error {
	dto := fromTask(task)
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&dto).Error
}

// Cancel removes a single pending task by ID. Removing a task that already
// fired or never existed is not an error.
func (s *GormTaskScheduler) Cancel(ctx context.Context, taskID string) error {
	return s.db.WithContext(ctx).Delete(&TaskDTO{}, "id = ?", taskID).Error
}

// CancelAll removes every pending task for the given order.
func (s *GormTaskScheduler) CancelAll(ctx context.Context, orderID kernel.UUID) error {
	return s.db.WithContext(ctx).Delete(&TaskDTO{}, "order_id = ?", orderID.Bytes()).Error
}

// ClaimDue atomically claims up to limit tasks whose fire time has passed.
// Claimed rows are locked, deleted, and returned in one transaction; a task
// is therefore delivered to exactly one poller, and a poller crash before
// commit releases the rows for the next run.
func (s *GormTaskScheduler) ClaimDue(ctx context.Context, now time.Time, limit int) ([]ports.DeadlineTask, error) {
	var claimed []ports.DeadlineTask

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dtos []TaskDTO
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("fire_at <= ?", now).
			Order("fire_at").
			Limit(limit).
			Find(&dtos).Error
		if err != nil {
			return err
		}

		if len(dtos) == 0 {
			return nil
		}

		ids := make([]string, 0, len(dtos))
		for _, dto := range dtos {
			ids = append(ids, dto.ID)
		}
		if err = tx.Delete(&TaskDTO{}, "id IN ?", ids).Error; err != nil {
			return err
		}

		claimed = make([]ports.DeadlineTask, 0, len(dtos))
		for _, dto := range dtos {
			task, taskErr := toTask(dto)
			if taskErr != nil {
				return taskErr
			}
			claimed = append(claimed, task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return claimed, nil
}
