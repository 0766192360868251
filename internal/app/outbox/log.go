package outbox

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/light-bringer/catalog-service/internal/app/shared"
	"github.com/light-bringer/catalog-service/internal/models/m_outbox"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// EventFilter narrows an event listing. Empty fields match everything.
type EventFilter struct {
	EventType   string
	AggregateID string
	Status      string
	Limit       int
}

func (f EventFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return defaultListLimit
	case f.Limit > maxListLimit:
		return maxListLimit
	}
	return f.Limit
}

func (f EventFilter) conditions() []query.Condition {
	var conds []query.Condition
	if f.EventType != "" {
		conds = append(conds, query.Eq(m_outbox.EventType, f.EventType))
	}
	if f.AggregateID != "" {
		conds = append(conds, query.Eq(m_outbox.AggregateID, f.AggregateID))
	}
	if f.Status != "" {
		conds = append(conds, query.Eq(m_outbox.Status, f.Status))
	}
	return conds
}

func (f EventFilter) match(ev Event) bool {
	return (f.EventType == "" || ev.EventType == f.EventType) &&
		(f.AggregateID == "" || ev.AggregateID == f.AggregateID) &&
		(f.Status == "" || ev.Status == f.Status)
}

// MemoryLog keeps events raised by the in-memory repositories. Nothing
// relays them, so they stay pending.
type MemoryLog struct {
	mu     sync.RWMutex
	events []Event
	now    func() time.Time
	logger logrus.FieldLogger
}

func NewMemoryLog(now func() time.Time, logger logrus.FieldLogger) *MemoryLog {
	return &MemoryLog{now: now, logger: logger}
}

// Record has the shared.EventSink signature.
func (l *MemoryLog) Record(events []shared.DomainEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			l.logger.WithError(err).WithField("event_type", ev.EventType()).Error("dropping unencodable event")
			continue
		}
		l.events = append(l.events, Event{
			EventID:     uuid.NewString(),
			EventType:   ev.EventType(),
			AggregateID: ev.AggregateID(),
			Payload:     payload,
			Status:      m_outbox.StatusPending,
			CreatedAt:   l.now(),
		})
	}
}

func (l *MemoryLog) List(_ context.Context, f EventFilter) ([]Event, int64, error) {
	l.mu.RLock()
	var matched []Event
	for _, ev := range l.events {
		if f.match(ev) {
			matched = append(matched, ev)
		}
	}
	l.mu.RUnlock()

	// newest first; insertion order breaks ties
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	if len(matched) > f.limit() {
		matched = matched[:f.limit()]
	}
	return matched, total, nil
}
