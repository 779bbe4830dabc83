// Package notifier renders workflow events into human-readable messages
// and fans them out through the messaging gateway.
package notifier

import (
	"context"
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/store"
	"orderflow/internal/core/ports"
)

// Dispatcher implements the alert dispatching contract. It decides who
// hears about an event and with what wording; delivery itself is the
// gateway's problem.
type Dispatcher struct {
	gateway ports.MessagingGateway
}

// NewDispatcher creates a dispatcher over the given messaging gateway.
func NewDispatcher(gateway ports.MessagingGateway) *Dispatcher {
	return &Dispatcher{gateway: gateway}
}

// NotifyStageChange informs the customer and the store about a stage
// transition. from is StageUnknown for the initial order-received message.
// Both messages are attempted even if one fails; failures are joined.
func (d *Dispatcher) NotifyStageChange(
	ctx context.Context,
	o *order.Order,
	st *store.Store,
	from, to order.Stage,
) error {
	shortID := shortOrderID(o)

	return errors.Join(
		d.gateway.SendCustomerMessage(ctx, o.PhoneNumber(), customerStageText(o, shortID, to)),
		d.gateway.SendStoreMessage(ctx, st.Channel(), storeStageText(o, shortID, from, to)),
	)
}

// NotifyEscalation alerts the store channel and its registered devices that
// the order's current stage reached the given severity.
func (d *Dispatcher) NotifyEscalation(
	ctx context.Context,
	o *order.Order,
	st *store.Store,
	severity order.AlertStatus,
) error {
	shortID := shortOrderID(o)
	text := escalationText(o, shortID, severity)

	return errors.Join(
		d.gateway.SendStoreMessage(ctx, st.Channel(), text),
		d.gateway.PushToStoreDevices(ctx, st.ID(), ports.PushNotification{
			Title: escalationTitle(shortID, severity),
			Body:  text,
		}),
	)
}

func customerStageText(o *order.Order, shortID string, to order.Stage) string {
	switch to {
	case order.AwaitingConfirmation:
		return fmt.Sprintf(
			"Hi %s! We received your order %s (total %.2f). The store will confirm it shortly.",
			o.CustomerName(), shortID, o.Total())
	case order.InProduction:
		return fmt.Sprintf("Good news! Your order %s was confirmed and is being prepared.", shortID)
	case order.OutForDelivery:
		return fmt.Sprintf("Your order %s is on its way!", shortID)
	case order.Delivered:
		return fmt.Sprintf("Your order %s was delivered. Enjoy!", shortID)
	case order.Cancelled:
		return fmt.Sprintf("Your order %s was cancelled: %s.", shortID, o.CancelReason())
	default:
		return fmt.Sprintf("Your order %s was updated.", shortID)
	}
}

func storeStageText(o *order.Order, shortID string, from, to order.Stage) string {
	switch {
	case from == order.StageUnknown:
		return fmt.Sprintf("New order %s from %s, %d items, total %.2f.",
			shortID, o.CustomerName(), len(o.Items()), o.Total())
	case to == order.Cancelled:
		return fmt.Sprintf("Order %s was cancelled at stage %s: %s.",
			shortID, from.String(), o.CancelReason())
	default:
		return fmt.Sprintf("Order %s moved from %s to %s.",
			shortID, from.String(), to.String())
	}
}

func escalationText(o *order.Order, shortID string, severity order.AlertStatus) string {
	if severity == order.Red {
		return fmt.Sprintf("OVERDUE: order %s exceeded its %s time budget.",
			shortID, o.Stage().String())
	}
	return fmt.Sprintf("Warning: order %s is running out of time in %s.",
		shortID, o.Stage().String())
}

func escalationTitle(shortID string, severity order.AlertStatus) string {
	if severity == order.Red {
		return fmt.Sprintf("Order %s overdue", shortID)
	}
	return fmt.Sprintf("Order %s needs attention", shortID)
}

// shortOrderID renders the first uuid segment, enough to identify the order
// in a phone message without pasting the whole identifier.
func shortOrderID(o *order.Order) string {
	id := o.ID().String()
	if len(id) > 8 {
		id = id[:8]
	}
	return "#" + id
}
