package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hotelops/intervention/pkg/domain/interfaces"
	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	amqp "github.com/rabbitmq/amqp091-go"
)

// channel is the part of *amqp.Channel the publisher needs
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher forwards notification requests to a RabbitMQ topic exchange.
// Delivery collaborators bind queues on "notification.<type>" keys.
type Publisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
}

var _ interfaces.NotificationPublisher = &Publisher{}

// NewPublisher dials url and declares exchange as a durable topic exchange
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to broker", goerr.V("exchange", exchange))
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, goerr.Wrap(err, "failed to open broker channel")
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, goerr.Wrap(err, "failed to declare exchange", goerr.V("exchange", exchange))
	}

	return &Publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// notificationMessage is the wire format consumed by delivery collaborators
type notificationMessage struct {
	ID              string    `json:"id"`
	EstablishmentID string    `json:"establishmentId"`
	UserID          string    `json:"userId,omitempty"`
	Type            string    `json:"type"`
	Title           string    `json:"title"`
	Message         string    `json:"message"`
	Room            string    `json:"room,omitempty"`
	InterventionID  string    `json:"interventionId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// RoutingKey returns the topic a notification is published on
func RoutingKey(n *model.Notification) string {
	return "notification." + n.Type.String()
}

func (p *Publisher) Publish(ctx context.Context, n *model.Notification) error {
	if p == nil {
		return nil
	}

	body, err := json.Marshal(notificationMessage{
		ID:              string(n.ID),
		EstablishmentID: n.EstablishmentID,
		UserID:          n.UserID,
		Type:            n.Type.String(),
		Title:           n.Title,
		Message:         n.Message,
		Room:            n.Room.String(),
		InterventionID:  n.InterventionID.String(),
		CreatedAt:       n.CreatedAt,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to encode notification", goerr.V("notification_id", n.ID))
	}

	key := RoutingKey(n)
	if err := p.channel.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    string(n.ID),
		Timestamp:    n.CreatedAt,
		Body:         body,
	}); err != nil {
		return goerr.Wrap(err, "failed to publish notification",
			goerr.V("notification_id", n.ID),
			goerr.V("routing_key", key))
	}

	logging.From(ctx).Debug("notification published",
		"notification_id", n.ID,
		"routing_key", key)
	return nil
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if err := p.channel.Close(); err != nil {
		logging.Default().Warn("failed to close broker channel", "error", err)
	}
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
