package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type channelSource interface {
	acquire(ctx context.Context) (channel, error)
	release(channel)
}

// Publisher sends events as persistent JSON messages routed by event type.
type Publisher struct {
	source   channelSource
	exchange string
	timeout  time.Duration
	now      func() time.Time
}

func NewPublisher(pool *ChannelPool) *Publisher {
	return newPublisher(pool, pool.exchange)
}

func newPublisher(source channelSource, exchange string) *Publisher {
	return &Publisher{source: source, exchange: exchange, timeout: 5 * time.Second, now: time.Now}
}

func (p *Publisher) Publish(ctx context.Context, eventType, eventID string, payload []byte) error {
	ch, err := p.source.acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire channel: %w", err)
	}
	defer p.source.release(ch)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = ch.PublishWithContext(ctx, p.exchange, eventType, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    eventID,
		Type:         eventType,
		Timestamp:    p.now(),
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("publish %s %s: %w", eventType, eventID, err)
	}
	return nil
}
