package domain

import "time"

const (
	EventProductCreated  = "product.created"
	EventProductUpdated  = "product.updated"
	EventProductReplaced = "product.replaced"
	EventProductDeleted  = "product.deleted"
)

// ProductCreatedEvent is emitted when a product is created.
type ProductCreatedEvent struct {
	ProductID  string    `json:"productId"`
	Name       string    `json:"name"`
	CategoryID string    `json:"categoryId,omitempty"`
	Hidden     bool      `json:"hidden"`
	Thumbnail  string    `json:"thumbnail,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (e *ProductCreatedEvent) EventType() string   { return EventProductCreated }
func (e *ProductCreatedEvent) AggregateID() string { return e.ProductID }

// ProductUpdatedEvent is emitted by partial updates and lists the fields
// that actually changed.
type ProductUpdatedEvent struct {
	ProductID string    `json:"productId"`
	Fields    []string  `json:"fields"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (e *ProductUpdatedEvent) EventType() string   { return EventProductUpdated }
func (e *ProductUpdatedEvent) AggregateID() string { return e.ProductID }

// ProductReplacedEvent is emitted by a full replace. Thumbnail is the new
// thumbnail filename, empty when the product has none.
type ProductReplacedEvent struct {
	ProductID        string    `json:"productId"`
	Fields           []string  `json:"fields"`
	Thumbnail        string    `json:"thumbnail,omitempty"`
	ThumbnailChanged bool      `json:"thumbnailChanged"`
	ReplacedAt       time.Time `json:"replacedAt"`
}

func (e *ProductReplacedEvent) EventType() string   { return EventProductReplaced }
func (e *ProductReplacedEvent) AggregateID() string { return e.ProductID }

type ProductDeletedEvent struct {
	ProductID string    `json:"productId"`
	DeletedAt time.Time `json:"deletedAt"`
}

func (e *ProductDeletedEvent) EventType() string   { return EventProductDeleted }
func (e *ProductDeletedEvent) AggregateID() string { return e.ProductID }
