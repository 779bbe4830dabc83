package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// Stage represents the fulfillment step an order is currently in.
// It implements a state machine with defined transitions to ensure
// orders follow the fixed fulfillment sequence.
//
// State transitions:
//
//	AwaitingConfirmation ──> InProduction ──> OutForDelivery ──> Delivered
//	          │                    │                 │
//	          └────────────────────┴─────────────────┴──> Cancelled
//
// Delivered and Cancelled are terminal: no outgoing transitions exist.
// Stage is a value object that validates state transitions and provides
// string representations for persistence and display.
type Stage int

const (
	// StageUnknown represents an invalid or undefined stage.
	// This value (0) helps catch uninitialized Stage values.
	StageUnknown Stage = iota

	// AwaitingConfirmation is the initial stage when an order is first created.
	// The store has not yet confirmed it will prepare the order.
	AwaitingConfirmation

	// InProduction indicates the store confirmed the order and is preparing it.
	InProduction

	// OutForDelivery indicates the order left the store with a delivery man.
	OutForDelivery

	// Delivered indicates the order reached the customer.
	// This is a terminal stage with no further transitions allowed.
	Delivered

	// Cancelled indicates the order was cancelled before delivery.
	// This is a terminal stage with no further transitions allowed.
	Cancelled
)

// getStageStrings returns a map of Stage values to their string representations.
func getStageStrings() map[Stage]string {
	return map[Stage]string{
		StageUnknown:         "Unknown",
		AwaitingConfirmation: "AwaitingConfirmation",
		InProduction:         "InProduction",
		OutForDelivery:       "OutForDelivery",
		Delivered:            "Delivered",
		Cancelled:            "Cancelled",
	}
}

// getValidStageStrings returns a map of only valid Stage values.
func getValidStageStrings() map[Stage]string {
	//nolint:exhaustive // StageUnknown is intentionally excluded as it's invalid
	return map[Stage]string{
		AwaitingConfirmation: "AwaitingConfirmation",
		InProduction:         "InProduction",
		OutForDelivery:       "OutForDelivery",
		Delivered:            "Delivered",
		Cancelled:            "Cancelled",
	}
}

// Validate checks if the Stage value is valid.
//
// Valid stages are AwaitingConfirmation, InProduction, OutForDelivery,
// Delivered, and Cancelled. StageUnknown (0) and any other values are invalid.
func (s Stage) Validate() error {
	if _, ok := getValidStageStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("stage is invalid", fmt.Errorf("%d is not a valid stage", s))
	}
	return nil
}

// String returns the human-readable name of the stage.
// Returns "Unknown" for invalid stage values. Implements fmt.Stringer.
func (s Stage) String() string {
	if str, ok := getStageStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether the stage has no outgoing transitions.
// Delivered and Cancelled orders are immutable.
func (s Stage) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// HasTimeBudget reports whether the stage is measured against a store
// time budget. Terminal stages have no budget and no deadlines.
func (s Stage) HasTimeBudget() bool {
	return s == AwaitingConfirmation || s == InProduction || s == OutForDelivery
}

// Advance transitions the stage one step forward in the fulfillment sequence.
//
// Valid transitions:
//   - AwaitingConfirmation -> InProduction
//   - InProduction -> OutForDelivery
//   - OutForDelivery -> Delivered
//
// Returns:
//   - (next, nil) when next is the direct successor of the current stage
//   - (0, error) for terminal stages, backward moves, and stage skips
func (s Stage) Advance(next Stage) (Stage, error) {
	if err := next.Validate(); err != nil {
		return 0, err
	}

	if !s.HasTimeBudget() || next != s+1 {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"stage is invalid",
			fmt.Errorf("%s -> %s is not a valid stage transition", s.String(), next.String()),
		)
	}

	return next, nil
}

// Cancel transitions the stage to Cancelled.
//
// Valid from any non-terminal stage. Returns (0, error) when the order
// is already Delivered or Cancelled.
func (s Stage) Cancel() (Stage, error) {
	if s.IsTerminal() {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"stage is invalid",
			fmt.Errorf("%s is not a valid stage to cancel", s.String()),
		)
	}
	if err := s.Validate(); err != nil {
		return 0, err
	}

	return Cancelled, nil
}
