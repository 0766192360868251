package outbox

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/catalog-service/internal/app/shared"
	"github.com/light-bringer/catalog-service/internal/models/m_outbox"
)

type fakeSource struct {
	pending   []Event
	published []string
	failed    map[string]string
}

func (f *fakeSource) ListPending(_ context.Context, limit int) ([]Event, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeSource) MarkPublished(_ context.Context, id string) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeSource) MarkFailed(_ context.Context, ev Event, reason string) error {
	if f.failed == nil {
		f.failed = map[string]string{}
	}
	f.failed[ev.EventID] = reason
	return nil
}

type fakePublisher struct {
	failFor map[string]bool
	sent    []string
}

func (p *fakePublisher) Publish(_ context.Context, eventType, eventID string, _ []byte) error {
	if p.failFor[eventID] {
		return errors.New("broker unavailable")
	}
	p.sent = append(p.sent, eventType+":"+eventID)
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRelay_RunOnce(t *testing.T) {
	src := &fakeSource{pending: []Event{
		{EventID: "e1", EventType: "product.created"},
		{EventID: "e2", EventType: "product.updated"},
		{EventID: "e3", EventType: "product.deleted"},
	}}
	pub := &fakePublisher{failFor: map[string]bool{"e2": true}}

	relay := NewRelay(src, pub, RelayConfig{BatchSize: 10}, quietLogger())
	n, err := relay.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"product.created:e1", "product.deleted:e3"}, pub.sent)
	assert.Equal(t, []string{"e1", "e3"}, src.published)
	assert.Equal(t, map[string]string{"e2": "broker unavailable"}, src.failed)
}

func TestRelay_RunOnceRespectsBatchSize(t *testing.T) {
	src := &fakeSource{pending: []Event{{EventID: "e1"}, {EventID: "e2"}}}
	pub := &fakePublisher{}

	n, err := NewRelay(src, pub, RelayConfig{BatchSize: 1}, quietLogger()).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRelay_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRelay(&fakeSource{}, &fakePublisher{}, RelayConfig{}, quietLogger()).Run(ctx)
	assert.NoError(t, err)
}

type testEvent struct {
	ID string `json:"id"`
}

func (e testEvent) EventType() string   { return "test.happened" }
func (e testEvent) AggregateID() string { return e.ID }

func TestInsertMuts(t *testing.T) {
	muts, err := InsertMuts(m_outbox.NewModel(), []shared.DomainEvent{testEvent{ID: "a"}, testEvent{ID: "b"}})
	require.NoError(t, err)
	assert.Len(t, muts, 2)

	none, err := InsertMuts(m_outbox.NewModel(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
