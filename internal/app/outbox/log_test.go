package outbox

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/catalog-service/internal/app/shared"
	"github.com/light-bringer/catalog-service/internal/models/m_outbox"
	"github.com/light-bringer/catalog-service/internal/pkg/clock"
)

type loggedEvent struct {
	Type string `json:"-"`
	ID   string `json:"id"`
}

func (e loggedEvent) EventType() string   { return e.Type }
func (e loggedEvent) AggregateID() string { return e.ID }

func TestMemoryLog(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC))
	events := NewMemoryLog(clk.Now, logrus.New())

	events.Record([]shared.DomainEvent{loggedEvent{"product.created", "p1"}, loggedEvent{"tag.created", "t1"}})
	clk.Advance(time.Minute)
	events.Record([]shared.DomainEvent{loggedEvent{"product.updated", "p1"}})

	all, total, err := events.List(context.Background(), EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, all, 3)
	assert.Equal(t, "product.updated", all[0].EventType)
	assert.Equal(t, m_outbox.StatusPending, all[0].Status)
	assert.JSONEq(t, `{"id":"p1"}`, string(all[0].Payload))

	p1, total, err := events.List(context.Background(), EventFilter{AggregateID: "p1", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, p1, 1)
	assert.Equal(t, "product.updated", p1[0].EventType)

	none, total, err := events.List(context.Background(), EventFilter{Status: m_outbox.StatusPublished})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)
}

func TestEventFilter_Limit(t *testing.T) {
	assert.Equal(t, defaultListLimit, EventFilter{}.limit())
	assert.Equal(t, 5, EventFilter{Limit: 5}.limit())
	assert.Equal(t, maxListLimit, EventFilter{Limit: 50000}.limit())
}
