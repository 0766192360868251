package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"

	"github.com/light-bringer/catalog-service/internal/app/shared"
	"github.com/light-bringer/catalog-service/internal/models/m_outbox"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
)

// Repo reads and updates outbox rows in Spanner.
type Repo struct {
	client     *spanner.Client
	model      *m_outbox.Model
	maxRetries int64
}

// NewRepo creates a Repo. Events that fail maxRetries times are parked as
// failed.
func NewRepo(client *spanner.Client, maxRetries int64) *Repo {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &Repo{client: client, model: m_outbox.NewModel(), maxRetries: maxRetries}
}

// InsertMuts builds insert mutations for events, to be committed alongside
// the aggregate write.
func (r *Repo) InsertMuts(events []shared.DomainEvent) ([]*spanner.Mutation, error) {
	return InsertMuts(r.model, events)
}

// ListPending returns up to limit pending events, oldest first.
func (r *Repo) ListPending(ctx context.Context, limit int) ([]Event, error) {
	stmt := query.From(m_outbox.TableName).
		Select(m_outbox.Columns...).
		Where(query.Eq(m_outbox.Status, m_outbox.StatusPending)).
		OrderBy(m_outbox.CreatedAt, query.Asc).
		Limit(int64(limit)).
		Build()

	events, err := r.collect(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("query pending events: %w", err)
	}
	return events, nil
}

// List returns the newest events matching f and the total number of
// matches.
func (r *Repo) List(ctx context.Context, f EventFilter) ([]Event, int64, error) {
	conds := f.conditions()
	base := query.From(m_outbox.TableName).Where(conds...)

	iter := r.client.Single().Query(ctx, base.Count().Build())
	defer iter.Stop()
	row, err := iter.Next()
	if err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	var total int64
	if err := row.Columns(&total); err != nil {
		return nil, 0, fmt.Errorf("parse count: %w", err)
	}

	stmt := base.Select(m_outbox.Columns...).
		OrderBy(m_outbox.CreatedAt, query.Desc).
		Limit(int64(f.limit())).
		Build()
	events, err := r.collect(ctx, stmt)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (r *Repo) collect(ctx context.Context, stmt spanner.Statement) ([]Event, error) {
	iter := r.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	var events []Event
	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return events, nil
		}
		if err != nil {
			return nil, err
		}
		var data m_outbox.Data
		if err := row.ToStruct(&data); err != nil {
			return nil, fmt.Errorf("parse outbox row: %w", err)
		}
		ev, err := dataToEvent(&data)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
}

// MarkPublished records a successful publish.
func (r *Repo) MarkPublished(ctx context.Context, eventID string) error {
	if _, err := r.client.Apply(ctx, []*spanner.Mutation{r.model.MarkPublishedMut(eventID)}); err != nil {
		return fmt.Errorf("mark event %s published: %w", eventID, err)
	}
	return nil
}

// MarkFailed records a failed publish attempt.
func (r *Repo) MarkFailed(ctx context.Context, ev Event, reason string) error {
	mut := r.model.MarkAttemptFailedMut(ev.EventID, ev.RetryCount+1, r.maxRetries, reason)
	if _, err := r.client.Apply(ctx, []*spanner.Mutation{mut}); err != nil {
		return fmt.Errorf("mark event %s failed: %w", ev.EventID, err)
	}
	return nil
}

// CountExpired counts published events processed before publishedCutoff
// and failed events created before failedCutoff.
func (r *Repo) CountExpired(ctx context.Context, publishedCutoff, failedCutoff time.Time) (int64, error) {
	stmt := query.From(m_outbox.TableName).
		Where(expiredCondition(publishedCutoff, failedCutoff)).
		Count().
		Build()

	iter := r.client.Single().Query(ctx, stmt)
	defer iter.Stop()
	row, err := iter.Next()
	if err != nil {
		return 0, fmt.Errorf("count expired events: %w", err)
	}
	var n int64
	if err := row.Columns(&n); err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return n, nil
}

// DeleteExpired removes the rows CountExpired counts, using partitioned DML.
func (r *Repo) DeleteExpired(ctx context.Context, publishedCutoff, failedCutoff time.Time) (int64, error) {
	fragment, params := expiredCondition(publishedCutoff, failedCutoff).SQL(0)
	stmt := spanner.Statement{
		SQL:    "DELETE FROM " + m_outbox.TableName + " WHERE " + fragment,
		Params: params,
	}
	n, err := r.client.PartitionedUpdate(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("delete expired events: %w", err)
	}
	return n, nil
}

func expiredCondition(publishedCutoff, failedCutoff time.Time) query.Condition {
	return query.Or(
		query.And(query.Eq(m_outbox.Status, m_outbox.StatusPublished), query.Lt(m_outbox.ProcessedAt, publishedCutoff)),
		query.And(query.Eq(m_outbox.Status, m_outbox.StatusFailed), query.Lt(m_outbox.CreatedAt, failedCutoff)),
	)
}
