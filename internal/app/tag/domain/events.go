package domain

import "time"

const (
	EventTagCreated = "tag.created"
	EventTagUpdated = "tag.updated"
	EventTagDeleted = "tag.deleted"
)

type TagCreatedEvent struct {
	TagID     string    `json:"tagId"`
	Title     string    `json:"title"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (e *TagCreatedEvent) EventType() string   { return EventTagCreated }
func (e *TagCreatedEvent) AggregateID() string { return e.TagID }

type TagUpdatedEvent struct {
	TagID     string    `json:"tagId"`
	Fields    []string  `json:"fields"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (e *TagUpdatedEvent) EventType() string   { return EventTagUpdated }
func (e *TagUpdatedEvent) AggregateID() string { return e.TagID }

type TagDeletedEvent struct {
	TagID     string    `json:"tagId"`
	DeletedAt time.Time `json:"deletedAt"`
}

func (e *TagDeletedEvent) EventType() string   { return EventTagDeleted }
func (e *TagDeletedEvent) AggregateID() string { return e.TagID }
