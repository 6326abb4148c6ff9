package broker

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PublishedMessage is a message captured by a fake channel
type PublishedMessage struct {
	Exchange string
	Key      string
	Msg      amqp.Publishing
}

type fakeChannel struct {
	published []PublishedMessage
	err       error
	closed    bool
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.published = append(c.published, PublishedMessage{Exchange: exchange, Key: key, Msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

// NewTestPublisher returns a publisher writing to an in-memory channel and
// an accessor for what was published
func NewTestPublisher(exchange string, publishErr error) (*Publisher, func() []PublishedMessage) {
	ch := &fakeChannel{err: publishErr}
	return &Publisher{channel: ch, exchange: exchange}, func() []PublishedMessage {
		return ch.published
	}
}
