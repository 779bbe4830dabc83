package commands

import (
	"errors"

	"orderflow/internal/pkg/guard"
)

var ErrSweepEscalationsCommandIsNotConstructed = errors.New(
	"SweepEscalationsCommand must be created via NewSweepEscalationsCommand constructor",
)

// SweepEscalationsCommand represents a request to reconcile the alert status
// of every active order against its stage deadlines. The sweep is the safety
// net behind the scheduled deadline tasks: an alert whose task was lost or
// delayed is still delivered on the next sweep.
type SweepEscalationsCommand struct {
	guard guard.ConstructorGuard
}

// NewSweepEscalationsCommand creates a command to run one reconciliation sweep.
func NewSweepEscalationsCommand() (SweepEscalationsCommand, error) {
	return SweepEscalationsCommand{
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrSweepEscalationsCommandIsNotConstructed if validation fails.
func (c SweepEscalationsCommand) Validate() error {
	return c.guard.Validate(ErrSweepEscalationsCommandIsNotConstructed)
}
