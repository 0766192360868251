package domain

import (
	"strings"
	"time"

	"github.com/light-bringer/catalog-service/internal/app/shared"
)

// Document field names. They double as change-tracking keys.
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldCategoryID  = "categoryId"
	FieldDescription = "description"
	FieldMedias      = "medias"
	FieldHidden      = "hidden"
	FieldExtras      = "extras"
)

// ReservedFields are the fixed product fields extensions may not shadow.
var ReservedFields = []string{FieldID, FieldName, FieldCategoryID, FieldDescription, FieldMedias, FieldHidden}

// Attributes are the client-writable fixed fields plus extensions.
type Attributes struct {
	Name        string
	CategoryID  string
	Description string
	Hidden      bool
	Extras      shared.Extras
}

// Patch is a partial update. Nil fields are left untouched; Extras are
// merged key by key.
type Patch struct {
	Name        *string
	CategoryID  *string
	Description *string
	Hidden      *bool
	Extras      shared.Extras
}

// IsEmpty reports whether the patch sets nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.CategoryID == nil && p.Description == nil && p.Hidden == nil && len(p.Extras) == 0
}

// Validate checks the patch on its own, without a product.
func (p Patch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrEmptyName
	}
	return p.Extras.Validate(ReservedFields...)
}

// Product is the catalog document aggregate.
type Product struct {
	id          string
	name        string
	categoryID  string
	description string
	medias      Medias
	hidden      bool
	extras      shared.Extras

	changes *shared.ChangeTracker
	events  []shared.DomainEvent
}

// NewProduct creates a product with a single thumbnail entry, which may be
// the empty placeholder.
func NewProduct(id string, attrs Attributes, thumbnail ProductMedia, now time.Time) (*Product, error) {
	if strings.TrimSpace(attrs.Name) == "" {
		return nil, ErrEmptyName
	}
	if err := attrs.Extras.Validate(ReservedFields...); err != nil {
		return nil, err
	}

	p := &Product{
		id:          id,
		name:        attrs.Name,
		categoryID:  attrs.CategoryID,
		description: attrs.Description,
		medias:      Medias{Images: []ProductMedia{}, Thumbnail: []ProductMedia{thumbnail}},
		hidden:      attrs.Hidden,
		extras:      attrs.Extras.Clone(),
		changes:     shared.NewChangeTracker(),
	}
	p.changes.MarkDirty(FieldName, FieldCategoryID, FieldDescription, FieldMedias, FieldHidden, FieldExtras)

	p.recordEvent(&ProductCreatedEvent{
		ProductID:  id,
		Name:       p.name,
		CategoryID: p.categoryID,
		Hidden:     p.hidden,
		Thumbnail:  thumbnail.Filename,
		CreatedAt:  now,
	})
	return p, nil
}

// ReconstructProduct rebuilds a stored product without validation or events.
func ReconstructProduct(id string, attrs Attributes, medias Medias) *Product {
	return &Product{
		id:          id,
		name:        attrs.Name,
		categoryID:  attrs.CategoryID,
		description: attrs.Description,
		medias:      medias.clone(),
		hidden:      attrs.Hidden,
		extras:      attrs.Extras.Clone(),
		changes:     shared.NewChangeTracker(),
	}
}

func (p *Product) ID() string                         { return p.id }
func (p *Product) Name() string                       { return p.name }
func (p *Product) CategoryID() string                 { return p.categoryID }
func (p *Product) Description() string                { return p.description }
func (p *Product) Hidden() bool                       { return p.hidden }
func (p *Product) Medias() Medias                     { return p.medias.clone() }
func (p *Product) Extras() shared.Extras              { return p.extras.Clone() }
func (p *Product) Changes() *shared.ChangeTracker     { return p.changes }
func (p *Product) DomainEvents() []shared.DomainEvent { return p.events }

// ClearEvents drops recorded events once they have been persisted.
func (p *Product) ClearEvents() {
	p.events = nil
}

// Attributes returns the writable fields.
func (p *Product) Attributes() Attributes {
	return Attributes{
		Name:        p.name,
		CategoryID:  p.categoryID,
		Description: p.description,
		Hidden:      p.hidden,
		Extras:      p.extras.Clone(),
	}
}

// Thumbnail returns the first thumbnail entry, if any.
func (p *Product) Thumbnail() (ProductMedia, bool) {
	if len(p.medias.Thumbnail) == 0 {
		return ProductMedia{}, false
	}
	return p.medias.Thumbnail[0], true
}

// Field returns the value of a filterable field, nil when unset.
func (p *Product) Field(name string) interface{} {
	switch name {
	case FieldID:
		return p.id
	case FieldName:
		return p.name
	case FieldCategoryID:
		return nilIfEmpty(p.categoryID)
	case FieldDescription:
		return nilIfEmpty(p.description)
	case FieldHidden:
		return p.hidden
	}
	return nil
}

// Update applies a partial update and records product.updated when
// anything changed.
func (p *Product) Update(patch Patch, now time.Time) error {
	changed, err := p.applyPatch(patch)
	if err != nil {
		return err
	}
	if len(changed) == 0 {
		return nil
	}
	p.recordEvent(&ProductUpdatedEvent{ProductID: p.id, Fields: changed, UpdatedAt: now})
	return nil
}

// Replacement describes a full replace: field overrides plus what to do
// with the thumbnail.
type Replacement struct {
	Patch       Patch
	File        *UploadedFile
	RemoveThumb bool
}

// Replace applies r and returns the filename of the thumbnail file that is
// no longer referenced, or "" when none was released.
//
// A new file updates the existing thumbnail entry in place when that entry
// points at a file, otherwise it becomes a fresh entry. Without a file,
// RemoveThumb clears the thumbnail list.
func (p *Product) Replace(r Replacement, now time.Time) (string, error) {
	changed, err := p.applyPatch(r.Patch)
	if err != nil {
		return "", err
	}

	var stale string
	current, hasCurrent := p.Thumbnail()
	thumbnailChanged := false
	switch {
	case r.File != nil:
		next := NewProductMedia(r.File, now)
		if hasCurrent && current.HasFile() {
			next = UpdateProductMedia(current, r.File, now)
			stale = current.Filename
		}
		p.medias.Thumbnail = []ProductMedia{next}
		thumbnailChanged = true
	case r.RemoveThumb:
		if hasCurrent && current.HasFile() {
			stale = current.Filename
		}
		p.medias.Thumbnail = []ProductMedia{}
		thumbnailChanged = hasCurrent
	}
	if thumbnailChanged {
		p.changes.MarkDirty(FieldMedias)
		changed = append(changed, FieldMedias)
	}

	thumb, _ := p.Thumbnail()
	p.recordEvent(&ProductReplacedEvent{
		ProductID:        p.id,
		Fields:           changed,
		Thumbnail:        thumb.Filename,
		ThumbnailChanged: thumbnailChanged,
		ReplacedAt:       now,
	})
	return stale, nil
}

// MarkDeleted records product.deleted. The stored file is left in place.
func (p *Product) MarkDeleted(now time.Time) {
	p.recordEvent(&ProductDeletedEvent{ProductID: p.id, DeletedAt: now})
}

func (p *Product) applyPatch(patch Patch) ([]string, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var changed []string
	setString := func(field string, dst *string, v *string) {
		if v != nil && *v != *dst {
			*dst = *v
			changed = append(changed, field)
		}
	}
	setString(FieldName, &p.name, patch.Name)
	setString(FieldCategoryID, &p.categoryID, patch.CategoryID)
	setString(FieldDescription, &p.description, patch.Description)
	if patch.Hidden != nil && *patch.Hidden != p.hidden {
		p.hidden = *patch.Hidden
		changed = append(changed, FieldHidden)
	}
	if len(patch.Extras) > 0 {
		merged := p.extras.Merge(patch.Extras)
		if err := merged.Validate(ReservedFields...); err != nil {
			return nil, err
		}
		if !merged.Equal(p.extras) {
			p.extras = merged
			changed = append(changed, FieldExtras)
		}
	}
	p.changes.MarkDirty(changed...)
	return changed, nil
}

func (p *Product) recordEvent(e shared.DomainEvent) {
	p.events = append(p.events, e)
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
