package m_outbox

const (
	TableName = "outbox_events"

	EventID      = "event_id"
	EventType    = "event_type"
	AggregateID  = "aggregate_id"
	Payload      = "payload"
	Status       = "status"
	CreatedAt    = "created_at"
	ProcessedAt  = "processed_at"
	RetryCount   = "retry_count"
	ErrorMessage = "error_message"
)

// Event status values.
const (
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusFailed    = "failed"
)

// Columns is the full column list in Data order.
var Columns = []string{
	EventID, EventType, AggregateID, Payload, Status,
	CreatedAt, ProcessedAt, RetryCount, ErrorMessage,
}
