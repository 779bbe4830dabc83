package amqp

import (
	"context"
	"encoding/json"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"
)

const notificationsExchange = "notifications_topic"

// Routing keys for the notification exchange. Downstream consumers bind
// per destination: the customer messaging worker, the store channel
// worker, and the push delivery worker.
const (
	customerKey = "notifications.customer"
	storeKey    = "notifications.store"
	pushKey     = "notifications.push"
)

type customerMessage struct {
	PhoneNumber string    `json:"phoneNumber"`
	Text        string    `json:"text"`
	SentAt      time.Time `json:"sentAt"`
}

type storeMessage struct {
	Channel string    `json:"channel"`
	Text    string    `json:"text"`
	SentAt  time.Time `json:"sentAt"`
}

type pushMessage struct {
	StoreID string    `json:"storeId"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sentAt"`
}

// Gateway implements the outbound messaging contract over a topic exchange.
type Gateway struct {
	client *Client
}

// NewGateway declares the notifications exchange and returns a gateway
// publishing to it.
func NewGateway(client *Client) (*Gateway, error) {
	err := client.Channel().ExchangeDeclare(
		notificationsExchange, "topic", true, false, false, false, nil)
	if err != nil {
		return nil, err
	}
	return &Gateway{client: client}, nil
}

// SendCustomerMessage publishes a text message for the customer messaging worker.
func (g *Gateway) SendCustomerMessage(ctx context.Context, phoneNumber, text string) error {
	return g.publish(ctx, customerKey, customerMessage{
		PhoneNumber: phoneNumber,
		Text:        text,
		SentAt:      time.Now().UTC(),
	})
}

// SendStoreMessage publishes a text message for the store's operator channel.
func (g *Gateway) SendStoreMessage(ctx context.Context, channel, text string) error {
	return g.publish(ctx, storeKey, storeMessage{
		Channel: channel,
		Text:    text,
		SentAt:  time.Now().UTC(),
	})
}

// PushToStoreDevices publishes a notification for the push delivery worker.
func (g *Gateway) PushToStoreDevices(
	ctx context.Context,
	storeID kernel.UUID,
	notification ports.PushNotification,
) error {
	return g.publish(ctx, pushKey, pushMessage{
		StoreID: storeID.String(),
		Title:   notification.Title,
		Body:    notification.Body,
		SentAt:  time.Now().UTC(),
	})
}

func (g *Gateway) publish(ctx context.Context, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return g.client.Publish(ctx, notificationsExchange, key, body)
}
