// Package outbox persists domain events next to the documents that raised
// them and relays pending events to the message broker.
package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/google/uuid"

	"github.com/light-bringer/catalog-service/internal/app/shared"
	"github.com/light-bringer/catalog-service/internal/models/m_outbox"
)

// Event is a stored outbox row.
type Event struct {
	EventID     string
	EventType   string
	AggregateID string
	Payload     []byte
	Status      string
	RetryCount  int64
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// InsertMuts converts domain events into outbox insert mutations.
func InsertMuts(model *m_outbox.Model, events []shared.DomainEvent) ([]*spanner.Mutation, error) {
	muts := make([]*spanner.Mutation, 0, len(events))
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return nil, fmt.Errorf("marshal %s event: %w", ev.EventType(), err)
		}
		muts = append(muts, model.InsertMut(&m_outbox.Data{
			EventID:     uuid.NewString(),
			EventType:   ev.EventType(),
			AggregateID: ev.AggregateID(),
			Payload:     spanner.NullJSON{Value: json.RawMessage(payload), Valid: true},
		}))
	}
	return muts, nil
}

func dataToEvent(d *m_outbox.Data) (Event, error) {
	ev := Event{
		EventID:     d.EventID,
		EventType:   d.EventType,
		AggregateID: d.AggregateID,
		Status:      d.Status,
		RetryCount:  d.RetryCount,
		CreatedAt:   d.CreatedAt,
	}
	if d.ProcessedAt.Valid {
		t := d.ProcessedAt.Time
		ev.ProcessedAt = &t
	}
	if d.Payload.Valid {
		raw, err := json.Marshal(d.Payload.Value)
		if err != nil {
			return Event{}, fmt.Errorf("encode payload of %s: %w", d.EventID, err)
		}
		ev.Payload = raw
	}
	return ev, nil
}
