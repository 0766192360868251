// Package shared holds the building blocks common to the catalog aggregates.
package shared

// DomainEvent is a fact recorded by an aggregate and written to the outbox
// in the same commit as the aggregate itself.
type DomainEvent interface {
	EventType() string
	AggregateID() string
}

// EventSink receives events persisted by a store that has no outbox table.
type EventSink func(events []DomainEvent)
