package services

import (
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/store"
	"orderflow/internal/pkg/errs"
)

// warningFraction is the share of the cumulative budget after which the
// warning alert fires. The overdue alert fires at the full budget.
const warningFraction = 0.75

// DeadlineCalculator is a domain service that derives per-stage SLA deadlines
// from a store's time budget.
//
// Deadlines are cumulative and anchored on the order's creation time:
// the budget for a stage is the sum of the per-stage minutes for every stage
// up to and including it, so the clock measures the end-to-end SLA rather
// than the time spent in the current stage alone.
//
// Business rules:
//   - cumulativeBudget(stage) is non-decreasing in stage
//   - warningAt is always strictly before overdueAt
//   - terminal stages have no budget and no deadlines
//
// Example usage:
//
//	calc := NewDeadlineCalculator()
//	warningAt, overdueAt, err := calc.Deadlines(order.CreatedAt(), store.TimeBudget(), order.Stage())
//	if err != nil {
//	    return err
//	}
//	if !now.Before(overdueAt) {
//	    // dispatch overdue alert
//	}
type DeadlineCalculator struct{}

// NewDeadlineCalculator creates a new deadline calculator.
func NewDeadlineCalculator() DeadlineCalculator {
	return DeadlineCalculator{}
}

// CumulativeBudget returns the total time allowed from order creation until
// the given stage must be finished: the sum of the store's per-stage minutes
// for every stage from AwaitingConfirmation up to and including stage.
//
// Returns an error for stages without a time budget (Delivered, Cancelled,
// and invalid values) and for unconstructed budgets.
func (c DeadlineCalculator) CumulativeBudget(budget store.TimeBudget, stage order.Stage) (time.Duration, error) {
	if err := budget.Validate(); err != nil {
		return 0, err
	}
	if !stage.HasTimeBudget() {
		return 0, errs.NewValueIsInvalidErrorWithCause("stage",
			fmt.Errorf("%s has no time budget", stage.String()))
	}

	minutes := budget.ConfirmationMinutes()
	if stage >= order.InProduction {
		minutes += budget.ProductionMinutes()
	}
	if stage >= order.OutForDelivery {
		minutes += budget.DeliveryMinutes()
	}

	return time.Duration(minutes) * time.Minute, nil
}

// Deadlines computes the warning and overdue timestamps for an order in the
// given stage: warningAt at 75% of the cumulative budget past createdAt,
// overdueAt at 100%.
func (c DeadlineCalculator) Deadlines(
	createdAt time.Time,
	budget store.TimeBudget,
	stage order.Stage,
) (warningAt, overdueAt time.Time, err error) {
	cumulative, err := c.CumulativeBudget(budget, stage)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	warningAt = createdAt.Add(time.Duration(float64(cumulative) * warningFraction))
	overdueAt = createdAt.Add(cumulative)
	return warningAt, overdueAt, nil
}
