package outbox

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Source is the outbox store the relay drains.
type Source interface {
	ListPending(ctx context.Context, limit int) ([]Event, error)
	MarkPublished(ctx context.Context, eventID string) error
	MarkFailed(ctx context.Context, ev Event, reason string) error
}

// Publisher delivers one event to the broker.
type Publisher interface {
	Publish(ctx context.Context, eventType, eventID string, payload []byte) error
}

// RelayConfig tunes the polling loop.
type RelayConfig struct {
	Interval  time.Duration
	BatchSize int
}

// Relay polls the outbox and publishes pending events in creation order.
type Relay struct {
	source Source
	pub    Publisher
	cfg    RelayConfig
	log    logrus.FieldLogger
}

// NewRelay creates a Relay.
func NewRelay(source Source, pub Publisher, cfg RelayConfig, log logrus.FieldLogger) *Relay {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Relay{source: source, pub: pub, cfg: cfg, log: log.WithField("component", "outbox-relay")}
}

// Run polls until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.log.WithFields(logrus.Fields{
		"interval":   r.cfg.Interval.String(),
		"batch_size": r.cfg.BatchSize,
	}).Info("outbox relay started")

	for {
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			r.log.WithError(err).Error("outbox relay batch failed")
		}
		select {
		case <-ctx.Done():
			r.log.Info("outbox relay stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce publishes one batch and returns how many events were published.
// A publish failure is recorded on the event and does not stop the batch.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	events, err := r.source.ListPending(ctx, r.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, ev := range events {
		entry := r.log.WithFields(logrus.Fields{
			"event_id":     ev.EventID,
			"event_type":   ev.EventType,
			"aggregate_id": ev.AggregateID,
		})

		if err := r.pub.Publish(ctx, ev.EventType, ev.EventID, ev.Payload); err != nil {
			entry.WithError(err).Warn("publish failed")
			if markErr := r.source.MarkFailed(ctx, ev, err.Error()); markErr != nil {
				return published, markErr
			}
			continue
		}
		if err := r.source.MarkPublished(ctx, ev.EventID); err != nil {
			return published, err
		}
		published++
		entry.Debug("event published")
	}
	return published, nil
}
