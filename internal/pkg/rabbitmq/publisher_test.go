package rabbitmq

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	sent []sent
	err  error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sent{exchange: exchange, key: key, msg: msg})
	return nil
}

type fakeSource struct {
	ch       *fakeChannel
	err      error
	released int
}

func (f *fakeSource) acquire(context.Context) (channel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ch, nil
}

func (f *fakeSource) release(channel) { f.released++ }

func TestPublisher_Publish(t *testing.T) {
	src := &fakeSource{ch: &fakeChannel{}}
	p := newPublisher(src, "catalog.events")
	stamp := time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC)
	p.now = func() time.Time { return stamp }

	require.NoError(t, p.Publish(context.Background(), "product.created", "ev-1", []byte(`{"product_id":"p1"}`)))

	require.Len(t, src.ch.sent, 1)
	got := src.ch.sent[0]
	assert.Equal(t, "catalog.events", got.exchange)
	assert.Equal(t, "product.created", got.key)
	assert.Equal(t, "ev-1", got.msg.MessageId)
	assert.Equal(t, uint8(amqp.Persistent), got.msg.DeliveryMode)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, stamp, got.msg.Timestamp)
	assert.JSONEq(t, `{"product_id":"p1"}`, string(got.msg.Body))
	assert.Equal(t, 1, src.released)
}

func TestPublisher_Errors(t *testing.T) {
	boom := errors.New("boom")

	src := &fakeSource{err: boom}
	err := newPublisher(src, "x").Publish(context.Background(), "tag.created", "ev-2", nil)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, src.released)

	src = &fakeSource{ch: &fakeChannel{err: boom}}
	err = newPublisher(src, "x").Publish(context.Background(), "tag.created", "ev-2", nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, src.released)
}
