package order

import (
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through the NewOrder or RestoreOrder factory methods.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	// ErrStageMismatch is returned when a transition's fromStage no longer matches
	// the order's persisted stage. The caller observed stale state and lost the
	// race to a concurrent transition.
	ErrStageMismatch = errors.New("order stage does not match the expected stage")

	// ErrOrderIsTerminal is returned when a mutation is attempted on a Delivered
	// or Cancelled order.
	ErrOrderIsTerminal = errors.New("order is in a terminal stage")
)

// Item is a single order line: a product name, how many were ordered,
// and the unit price agreed at ordering time.
type Item struct {
	Name     string
	Quantity int
	Price    float64
}

// CurrentFlow captures the order's position in the fulfillment sequence:
// the stage it is in, when it entered that stage, and when an operator
// last touched it.
type CurrentFlow struct {
	Stage       Stage
	EnteredAt   time.Time
	ProcessedAt time.Time
}

// WorkflowEntry is one completed step in the order's history: the stage that
// was finished, the minutes the operator reported for it, and when it closed.
// The history is append-only.
type WorkflowEntry struct {
	Stage        Stage
	MinutesSpent int
	CompletedAt  time.Time
}

// Order is the aggregate root of the fulfillment workflow. It owns the
// current stage, the append-only workflow history, and the SLA alert status.
//
// Order maintains these invariants:
//   - The stage only moves forward through AwaitingConfirmation, InProduction,
//     OutForDelivery, or jumps to a terminal stage (Delivered via advance,
//     Cancelled via cancel)
//   - Once terminal, currentFlow, alertStatus, and workflowHistory never change
//   - alertStatus is monotonic within a stage and resets to Green exactly
//     when the stage changes
//   - workflowHistory is append-only
//
// All mutation goes through Advance, Cancel, and Escalate; the struct uses
// private fields so the invariants cannot be bypassed.
type Order struct {
	// id is the business-visible order identifier
	id kernel.UUID

	// storeID identifies the store fulfilling the order
	storeID kernel.UUID

	// customerName and phoneNumber identify the recipient
	customerName string
	phoneNumber  string

	// items and total are frozen at ordering time
	items []Item
	total float64

	// createdAt is the immutable creation timestamp; all stage deadlines
	// are computed from it
	createdAt time.Time

	// currentFlow is the order's position in the fulfillment sequence
	currentFlow CurrentFlow

	// history records every completed stage, append-only
	history []WorkflowEntry

	// alertStatus is the SLA escalation level of the current stage
	alertStatus AlertStatus

	// batchNumber and deliveryManID are operator-assigned fulfillment details
	batchNumber   *int
	deliveryManID *kernel.UUID

	// cancelReason is set when the order reaches Cancelled
	cancelReason string

	// version supports optimistic concurrency control in the repository
	version int64

	// isConstructed ensures the order was created via a factory method
	isConstructed bool
}

// NewOrder creates a new Order at the AwaitingConfirmation stage.
// The creation timestamp anchors every deadline computed for the order later,
// so callers must pass the moment the customer placed the order.
//
// Returns a validation error when the identifiers are invalid, the customer
// contact is missing, or the item list is empty.
func NewOrder(
	id kernel.UUID,
	storeID kernel.UUID,
	customerName string,
	phoneNumber string,
	items []Item,
	total float64,
	now time.Time,
) (*Order, error) {
	o := &Order{
		createdAt: now,
		currentFlow: CurrentFlow{
			Stage:       AwaitingConfirmation,
			EnteredAt:   now,
			ProcessedAt: now,
		},
		history:       make([]WorkflowEntry, 0),
		alertStatus:   Green,
		version:       1,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setStoreID(storeID),
		o.setCustomer(customerName, phoneNumber),
		o.setItems(items, total),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder reconstructs an Order from persistence.
// Unlike NewOrder it accepts any valid stage and alert status, but it still
// verifies every invariant so corrupted rows cannot produce an invalid aggregate.
func RestoreOrder(
	id kernel.UUID,
	storeID kernel.UUID,
	customerName string,
	phoneNumber string,
	items []Item,
	total float64,
	createdAt time.Time,
	currentFlow CurrentFlow,
	history []WorkflowEntry,
	alertStatus AlertStatus,
	batchNumber *int,
	deliveryManID *kernel.UUID,
	cancelReason string,
	version int64,
) (*Order, error) {
	o := &Order{
		createdAt:     createdAt,
		currentFlow:   currentFlow,
		history:       history,
		alertStatus:   alertStatus,
		batchNumber:   batchNumber,
		deliveryManID: deliveryManID,
		cancelReason:  cancelReason,
		version:       version,
		isConstructed: true,
	}
	if o.history == nil {
		o.history = make([]WorkflowEntry, 0)
	}

	if err := errors.Join(
		o.setID(id),
		o.setStoreID(storeID),
		o.setCustomer(customerName, phoneNumber),
		o.setItems(items, total),
		currentFlow.Stage.Validate(),
		alertStatus.Validate(),
	); err != nil {
		return nil, err
	}

	if version < 1 {
		return nil, errs.NewVersionIsInvalidError("order version", fmt.Errorf("%d is not a positive version", version))
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed through a factory method.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their business identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's business-visible identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// StoreID returns the identifier of the store fulfilling the order.
func (o *Order) StoreID() kernel.UUID {
	return o.storeID
}

// CustomerName returns the recipient's name.
func (o *Order) CustomerName() string {
	return o.customerName
}

// PhoneNumber returns the recipient's phone number.
func (o *Order) PhoneNumber() string {
	return o.phoneNumber
}

// Items returns a copy of the order lines.
func (o *Order) Items() []Item {
	items := make([]Item, len(o.items))
	copy(items, o.items)
	return items
}

// Total returns the order total frozen at ordering time.
func (o *Order) Total() float64 {
	return o.total
}

// CreatedAt returns the immutable creation timestamp.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// CurrentFlow returns the order's position in the fulfillment sequence.
func (o *Order) CurrentFlow() CurrentFlow {
	return o.currentFlow
}

// Stage returns the fulfillment stage the order is currently in.
func (o *Order) Stage() Stage {
	return o.currentFlow.Stage
}

// History returns a copy of the append-only workflow history.
func (o *Order) History() []WorkflowEntry {
	history := make([]WorkflowEntry, len(o.history))
	copy(history, o.history)
	return history
}

// AlertStatus returns the SLA escalation level of the current stage.
func (o *Order) AlertStatus() AlertStatus {
	return o.alertStatus
}

// BatchNumber returns the operator-assigned production batch number.
// Returns nil when no batch has been assigned.
func (o *Order) BatchNumber() *int {
	return o.batchNumber
}

// DeliveryManID returns the assigned delivery man's identifier.
// Returns nil when no delivery man has been assigned.
func (o *Order) DeliveryManID() *kernel.UUID {
	return o.deliveryManID
}

// CancelReason returns the reason recorded when the order was cancelled.
func (o *Order) CancelReason() string {
	return o.cancelReason
}

// Version returns the aggregate version used for optimistic concurrency control.
func (o *Order) Version() int64 {
	return o.version
}

// Advance moves the order one stage forward in the fulfillment sequence.
//
// from is the stage the caller observed; when it no longer matches the
// order's current stage the transition is rejected with ErrStageMismatch
// instead of silently overwriting a concurrent change. minutesSpent is the
// operator-reported duration recorded in the workflow history.
// batchNumber and deliveryManID are optional fulfillment details attached
// as part of the same transition.
//
// On success the completed stage is appended to the history, the order
// enters the new stage at now, and the alert status resets to Green.
//
// Returns ErrOrderIsTerminal for Delivered/Cancelled orders, ErrStageMismatch
// on a lost race, and a validation error for illegal transitions.
func (o *Order) Advance(
	from Stage,
	to Stage,
	minutesSpent int,
	now time.Time,
	batchNumber *int,
	deliveryManID *kernel.UUID,
) error {
	if o.currentFlow.Stage.IsTerminal() {
		return ErrOrderIsTerminal
	}
	if o.currentFlow.Stage != from {
		return ErrStageMismatch
	}
	if minutesSpent < 0 {
		return errs.NewValueIsOutOfRangeError("minutesSpent", minutesSpent, 0, int(^uint(0)>>1))
	}

	next, err := o.currentFlow.Stage.Advance(to)
	if err != nil {
		return err
	}

	o.history = append(o.history, WorkflowEntry{
		Stage:        from,
		MinutesSpent: minutesSpent,
		CompletedAt:  now,
	})
	o.currentFlow = CurrentFlow{
		Stage:       next,
		EnteredAt:   now,
		ProcessedAt: now,
	}
	o.alertStatus = Green

	if batchNumber != nil {
		n := *batchNumber
		o.batchNumber = &n
	}
	if deliveryManID != nil {
		id := *deliveryManID
		o.deliveryManID = &id
	}

	return nil
}

// Cancel transitions the order to the Cancelled stage.
//
// Cancel is idempotent: cancelling an already-cancelled order reports
// changed=false with no error and no mutation. Cancelling a Delivered order
// returns ErrOrderIsTerminal.
//
// On success the interrupted stage is appended to the history with the time
// actually spent in it, the reason is recorded, and the batch number and
// delivery man assignment are cleared.
func (o *Order) Cancel(reason string, now time.Time) (bool, error) {
	if o.currentFlow.Stage == Cancelled {
		return false, nil
	}

	next, err := o.currentFlow.Stage.Cancel()
	if err != nil {
		return false, ErrOrderIsTerminal
	}

	minutesSpent := int(now.Sub(o.currentFlow.EnteredAt).Minutes())
	if minutesSpent < 0 {
		minutesSpent = 0
	}

	o.history = append(o.history, WorkflowEntry{
		Stage:        o.currentFlow.Stage,
		MinutesSpent: minutesSpent,
		CompletedAt:  now,
	})
	o.currentFlow = CurrentFlow{
		Stage:       next,
		EnteredAt:   now,
		ProcessedAt: now,
	}
	o.alertStatus = Green
	o.cancelReason = reason
	o.batchNumber = nil
	o.deliveryManID = nil

	return true, nil
}

// Escalate raises the alert status for the given stage.
//
// The stage parameter is the stage the alert was computed for. When the order
// has since moved to a different stage the alert is stale and Escalate is a
// no-op; the same holds for terminal orders and for severities that are not
// strictly above the current one. This single gate makes both escalation
// delivery paths idempotent and monotonic.
//
// Returns changed=true only when the alert status was actually raised.
func (o *Order) Escalate(stage Stage, severity AlertStatus) (bool, error) {
	if err := severity.Validate(); err != nil {
		return false, err
	}

	if o.currentFlow.Stage.IsTerminal() {
		return false, nil
	}
	if o.currentFlow.Stage != stage {
		return false, nil
	}
	if !severity.IsMoreSevereThan(o.alertStatus) {
		return false, nil
	}

	o.alertStatus = severity
	return true, nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setStoreID(storeID kernel.UUID) error {
	if err := storeID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("storeID", err)
	}
	o.storeID = storeID
	return nil
}

func (o *Order) setCustomer(name, phoneNumber string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("customerName")
	}
	if phoneNumber == "" {
		return errs.NewValueIsRequiredError("phoneNumber")
	}
	o.customerName = name
	o.phoneNumber = phoneNumber
	return nil
}

func (o *Order) setItems(items []Item, total float64) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for _, item := range items {
		if item.Name == "" {
			return errs.NewValueIsRequiredError("item name")
		}
		if item.Quantity <= 0 {
			return errs.NewValueIsInvalidErrorWithCause("item quantity",
				fmt.Errorf("%d is not greater than 0", item.Quantity))
		}
	}
	if total < 0 {
		return errs.NewValueIsInvalidErrorWithCause("total",
			fmt.Errorf("%f is not greater or equal to 0", total))
	}

	o.items = make([]Item, len(items))
	copy(o.items, items)
	o.total = total
	return nil
}
