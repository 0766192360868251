package m_outbox

import (
	"cloud.google.com/go/spanner"
)

// Model builds mutations for the outbox_events table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// InsertMut inserts a pending event. created_at is the commit timestamp.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.Insert(TableName, Columns, []interface{}{
		data.EventID,
		data.EventType,
		data.AggregateID,
		data.Payload,
		StatusPending,
		spanner.CommitTimestamp,
		spanner.NullTime{},
		int64(0),
		spanner.NullString{},
	})
}

// MarkPublishedMut moves an event to published and stamps processed_at.
func (m *Model) MarkPublishedMut(eventID string) *spanner.Mutation {
	return spanner.Update(TableName,
		[]string{EventID, Status, ProcessedAt, ErrorMessage},
		[]interface{}{eventID, StatusPublished, spanner.CommitTimestamp, spanner.NullString{}},
	)
}

// MarkAttemptFailedMut records a failed publish. The event stays pending
// until retries reach the limit, then it is parked as failed.
func (m *Model) MarkAttemptFailedMut(eventID string, retries int64, maxRetries int64, reason string) *spanner.Mutation {
	status := StatusPending
	if retries >= maxRetries {
		status = StatusFailed
	}
	return spanner.Update(TableName,
		[]string{EventID, Status, RetryCount, ErrorMessage},
		[]interface{}{eventID, status, retries, spanner.NullString{StringVal: reason, Valid: reason != ""}},
	)
}
