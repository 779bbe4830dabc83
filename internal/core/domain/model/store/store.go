package store

import (
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var (
	// ErrStoreIsNotConstructed is returned when a Store instance was not created
	// through the NewStore or RestoreStore factory methods.
	ErrStoreIsNotConstructed = errors.New("Store must be created via NewStore or RestoreStore constructor")

	// ErrTimeBudgetIsNotConstructed is returned when a TimeBudget was not created
	// through the NewTimeBudget constructor.
	ErrTimeBudgetIsNotConstructed = errors.New("TimeBudget must be created via NewTimeBudget constructor")
)

// TimeBudget is a value object holding the per-stage SLA minutes configured
// for a store: how long confirmation, production, and delivery may take.
// It is read-only at alert-computation time.
type TimeBudget struct {
	confirmationMinutes int
	productionMinutes   int
	deliveryMinutes     int

	isConstructed bool
}

// NewTimeBudget creates a validated per-stage time budget.
// All three budgets must be positive: a zero budget would make an order
// overdue the moment it is created.
func NewTimeBudget(confirmationMinutes, productionMinutes, deliveryMinutes int) (TimeBudget, error) {
	budget := TimeBudget{isConstructed: true}

	if err := errors.Join(
		budget.setConfirmationMinutes(confirmationMinutes),
		budget.setProductionMinutes(productionMinutes),
		budget.setDeliveryMinutes(deliveryMinutes),
	); err != nil {
		return TimeBudget{}, err
	}

	return budget, nil
}

// Validate ensures the TimeBudget was properly constructed through NewTimeBudget.
func (b TimeBudget) Validate() error {
	if !b.isConstructed {
		return ErrTimeBudgetIsNotConstructed
	}
	return nil
}

// ConfirmationMinutes returns the budget for the AwaitingConfirmation stage.
func (b TimeBudget) ConfirmationMinutes() int {
	return b.confirmationMinutes
}

// ProductionMinutes returns the budget for the InProduction stage.
func (b TimeBudget) ProductionMinutes() int {
	return b.productionMinutes
}

// DeliveryMinutes returns the budget for the OutForDelivery stage.
func (b TimeBudget) DeliveryMinutes() int {
	return b.deliveryMinutes
}

func (b *TimeBudget) setConfirmationMinutes(minutes int) error {
	if minutes <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("confirmationMinutes",
			fmt.Errorf("%d is not greater than 0", minutes))
	}
	b.confirmationMinutes = minutes
	return nil
}

func (b *TimeBudget) setProductionMinutes(minutes int) error {
	if minutes <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("productionMinutes",
			fmt.Errorf("%d is not greater than 0", minutes))
	}
	b.productionMinutes = minutes
	return nil
}

func (b *TimeBudget) setDeliveryMinutes(minutes int) error {
	if minutes <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("deliveryMinutes",
			fmt.Errorf("%d is not greater than 0", minutes))
	}
	b.deliveryMinutes = minutes
	return nil
}

// Store represents a store participating in the fulfillment workflow.
// It owns the notification channel operators are alerted on and the
// per-stage time budget its orders are measured against.
type Store struct {
	// id is the store's unique identifier
	id kernel.UUID

	// name is the store's display name used in notifications
	name string

	// channel is the messaging channel stage and escalation alerts are sent to
	channel string

	// timeBudget holds the per-stage SLA minutes
	timeBudget TimeBudget

	// isConstructed ensures the store was created via a factory method
	isConstructed bool
}

// NewStore creates a new Store instance with validation.
func NewStore(id kernel.UUID, name, channel string, timeBudget TimeBudget) (*Store, error) {
	s := &Store{isConstructed: true}

	if err := errors.Join(
		s.setID(id),
		s.setName(name),
		s.setChannel(channel),
		s.setTimeBudget(timeBudget),
	); err != nil {
		return nil, err
	}

	return s, nil
}

// RestoreStore reconstructs a Store from persistence.
func RestoreStore(id kernel.UUID, name, channel string, timeBudget TimeBudget) (*Store, error) {
	return NewStore(id, name, channel, timeBudget)
}

// Validate ensures the Store instance was properly constructed through a factory method.
func (s *Store) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrStoreIsNotConstructed
	}
	return nil
}

// ID returns the store's unique identifier.
func (s *Store) ID() kernel.UUID {
	return s.id
}

// Name returns the store's display name.
func (s *Store) Name() string {
	return s.name
}

// Channel returns the messaging channel the store is alerted on.
func (s *Store) Channel() string {
	return s.channel
}

// TimeBudget returns the store's per-stage SLA minutes.
func (s *Store) TimeBudget() TimeBudget {
	return s.timeBudget
}

func (s *Store) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.id = id
	return nil
}

func (s *Store) setName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("store name")
	}
	s.name = name
	return nil
}

func (s *Store) setChannel(channel string) error {
	if channel == "" {
		return errs.NewValueIsRequiredError("store channel")
	}
	s.channel = channel
	return nil
}

func (s *Store) setTimeBudget(timeBudget TimeBudget) error {
	if err := timeBudget.Validate(); err != nil {
		return err
	}
	s.timeBudget = timeBudget
	return nil
}
