// Package domain holds the product tag aggregate.
package domain

import (
	"strings"
	"time"

	"github.com/light-bringer/catalog-service/internal/app/shared"
)

const (
	FieldID     = "id"
	FieldTitle  = "title"
	FieldColor  = "color"
	FieldExtras = "extras"
)

// ReservedFields are the fixed tag fields extensions may not shadow.
var ReservedFields = []string{FieldID, FieldTitle, FieldColor}

type Attributes struct {
	Title  string
	Color  string
	Extras shared.Extras
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Title  *string
	Color  *string
	Extras shared.Extras
}

func (p Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrEmptyTitle
	}
	return p.Extras.Validate(ReservedFields...)
}

// Tag is a label that can be attached to products.
type Tag struct {
	id     string
	title  string
	color  string
	extras shared.Extras

	changes *shared.ChangeTracker
	events  []shared.DomainEvent
}

func NewTag(id string, attrs Attributes, now time.Time) (*Tag, error) {
	if strings.TrimSpace(attrs.Title) == "" {
		return nil, ErrEmptyTitle
	}
	if err := attrs.Extras.Validate(ReservedFields...); err != nil {
		return nil, err
	}
	t := &Tag{
		id:      id,
		title:   attrs.Title,
		color:   attrs.Color,
		extras:  attrs.Extras.Clone(),
		changes: shared.NewChangeTracker(),
	}
	t.changes.MarkDirty(FieldTitle, FieldColor, FieldExtras)
	t.events = append(t.events, &TagCreatedEvent{TagID: id, Title: t.title, Color: t.color, CreatedAt: now})
	return t, nil
}

func ReconstructTag(id string, attrs Attributes) *Tag {
	return &Tag{
		id:      id,
		title:   attrs.Title,
		color:   attrs.Color,
		extras:  attrs.Extras.Clone(),
		changes: shared.NewChangeTracker(),
	}
}

func (t *Tag) ID() string                         { return t.id }
func (t *Tag) Title() string                      { return t.title }
func (t *Tag) Color() string                      { return t.color }
func (t *Tag) Extras() shared.Extras              { return t.extras.Clone() }
func (t *Tag) Changes() *shared.ChangeTracker     { return t.changes }
func (t *Tag) DomainEvents() []shared.DomainEvent { return t.events }
func (t *Tag) ClearEvents()                       { t.events = nil }

func (t *Tag) Attributes() Attributes {
	return Attributes{Title: t.title, Color: t.color, Extras: t.extras.Clone()}
}

// Field returns the value of a filterable field, nil when unset.
func (t *Tag) Field(name string) interface{} {
	switch name {
	case FieldID:
		return t.id
	case FieldTitle:
		return t.title
	case FieldColor:
		if t.color == "" {
			return nil
		}
		return t.color
	}
	return nil
}

// Update applies patch and records tag.updated when anything changed.
func (t *Tag) Update(patch Patch, now time.Time) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	var changed []string
	if patch.Title != nil && *patch.Title != t.title {
		t.title = *patch.Title
		changed = append(changed, FieldTitle)
	}
	if patch.Color != nil && *patch.Color != t.color {
		t.color = *patch.Color
		changed = append(changed, FieldColor)
	}
	if len(patch.Extras) > 0 {
		merged := t.extras.Merge(patch.Extras)
		if err := merged.Validate(ReservedFields...); err != nil {
			return err
		}
		if !merged.Equal(t.extras) {
			t.extras = merged
			changed = append(changed, FieldExtras)
		}
	}
	if len(changed) == 0 {
		return nil
	}
	t.changes.MarkDirty(changed...)
	t.events = append(t.events, &TagUpdatedEvent{TagID: t.id, Fields: changed, UpdatedAt: now})
	return nil
}

func (t *Tag) MarkDeleted(now time.Time) {
	t.events = append(t.events, &TagDeletedEvent{TagID: t.id, DeletedAt: now})
}
