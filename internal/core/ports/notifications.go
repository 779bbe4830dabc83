package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/store"
)

// PushNotification is the payload delivered to a store's registered devices.
type PushNotification struct {
	Title string
	Body  string
}

// MessagingGateway is the outbound messaging contract. Implementations hand
// messages to the customer messaging channel, the store's operator channel,
// and the store's push devices; they do not retry or guarantee delivery.
type MessagingGateway interface {
	// SendCustomerMessage sends a text message to a customer's phone number.
	SendCustomerMessage(ctx context.Context, phoneNumber, text string) error

	// SendStoreMessage sends a text message to a store's operator channel.
	SendStoreMessage(ctx context.Context, channel, text string) error

	// PushToStoreDevices pushes a notification to all devices registered
	// for the given store.
	PushToStoreDevices(ctx context.Context, storeID kernel.UUID, notification PushNotification) error
}

// AlertDispatcher renders and delivers workflow notifications.
//
// Dispatch failures never affect the committed transition that triggered
// them: callers log the returned error and move on. The escalation
// reconciler is the only compensating mechanism, and only for escalation
// alerts.
type AlertDispatcher interface {
	// NotifyStageChange informs the customer and the store that the order
	// moved from one stage to another. from is StageUnknown for the initial
	// order-received notification.
	NotifyStageChange(ctx context.Context, o *order.Order, st *store.Store, from, to order.Stage) error

	// NotifyEscalation alerts the store channel and its devices that the
	// order's current stage reached the given severity.
	NotifyEscalation(ctx context.Context, o *order.Order, st *store.Store, severity order.AlertStatus) error
}
