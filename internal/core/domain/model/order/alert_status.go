package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// AlertStatus represents the escalation level of the current stage's SLA.
// It is monotonic within a stage: Green -> Yellow -> Red, never backward,
// and resets to Green exactly when the stage changes.
type AlertStatus int

const (
	// AlertStatusUnknown represents an invalid or undefined alert status.
	AlertStatusUnknown AlertStatus = iota

	// Green means the stage is within its time budget.
	Green

	// Yellow means the stage passed 75% of its cumulative time budget
	// and a warning alert has been delivered.
	Yellow

	// Red means the stage exceeded its cumulative time budget
	// and an overdue alert has been delivered.
	Red
)

// getAlertStatusStrings returns a map of AlertStatus values to their string representations.
func getAlertStatusStrings() map[AlertStatus]string {
	return map[AlertStatus]string{
		AlertStatusUnknown: "Unknown",
		Green:              "Green",
		Yellow:             "Yellow",
		Red:                "Red",
	}
}

// Validate checks if the AlertStatus value is valid.
// Valid statuses are Green, Yellow, and Red.
func (a AlertStatus) Validate() error {
	if a != Green && a != Yellow && a != Red {
		return errs.NewValueIsInvalidErrorWithCause(
			"alert status is invalid",
			fmt.Errorf("%d is not a valid alert status", a),
		)
	}
	return nil
}

// String returns the human-readable name of the alert status.
// Returns "Unknown" for invalid values. Implements fmt.Stringer.
func (a AlertStatus) String() string {
	if str, ok := getAlertStatusStrings()[a]; ok {
		return str
	}
	return "Unknown"
}

// IsMoreSevereThan reports whether a is strictly more severe than other.
// Severity ordering is Green < Yellow < Red. The escalation paths use this
// check to guarantee alerts never downgrade and never re-send a level.
func (a AlertStatus) IsMoreSevereThan(other AlertStatus) bool {
	return a > other
}
