package http

import (
	"encoding/json"
	"fmt"

	"github.com/light-bringer/catalog-service/internal/app/outbox"
	productdomain "github.com/light-bringer/catalog-service/internal/app/product/domain"
	"github.com/light-bringer/catalog-service/internal/app/shared"
	tagdomain "github.com/light-bringer/catalog-service/internal/app/tag/domain"
)

// removeThumbField is the replace form flag that clears the thumbnail.
const removeThumbField = "removeThumb"

// parseToBoolean accepts only the literal "true" as true.
func parseToBoolean(v string) bool {
	return v == "true"
}

type productInput struct {
	Name        *string `json:"name" validate:"omitempty,max=512"`
	CategoryID  *string `json:"categoryId" validate:"omitempty,max=256"`
	Description *string `json:"description" validate:"omitempty,max=16384"`
	Hidden      *bool   `json:"hidden"`
	Extras      shared.Extras
}

func (in productInput) attributes() productdomain.Attributes {
	return productdomain.Attributes{
		Name:        deref(in.Name),
		CategoryID:  deref(in.CategoryID),
		Description: deref(in.Description),
		Hidden:      in.Hidden != nil && *in.Hidden,
		Extras:      in.Extras,
	}
}

func (in productInput) patch() productdomain.Patch {
	return productdomain.Patch{
		Name:        in.Name,
		CategoryID:  in.CategoryID,
		Description: in.Description,
		Hidden:      in.Hidden,
		Extras:      in.Extras,
	}
}

// productInputFromForm maps multipart values. Every value is a string;
// hidden goes through parseToBoolean and unknown keys become extensions.
func productInputFromForm(values map[string]string) (productInput, error) {
	in := productInput{Extras: shared.Extras{}}
	for k, v := range values {
		v := v
		switch k {
		case productdomain.FieldName:
			in.Name = &v
		case productdomain.FieldCategoryID:
			in.CategoryID = &v
		case productdomain.FieldDescription:
			in.Description = &v
		case productdomain.FieldHidden:
			b := parseToBoolean(v)
			in.Hidden = &b
		case removeThumbField:
		case productdomain.FieldID, productdomain.FieldMedias:
			return productInput{}, fmt.Errorf("%w: %s", errReadOnlyField, k)
		default:
			in.Extras[k] = v
		}
	}
	return in, validateInput(in)
}

func productInputFromJSON(body []byte) (productInput, error) {
	in := productInput{}
	extras, err := decodeDocument(body, map[string]interface{}{
		productdomain.FieldName:        &in.Name,
		productdomain.FieldCategoryID:  &in.CategoryID,
		productdomain.FieldDescription: &in.Description,
		productdomain.FieldHidden:      &in.Hidden,
	}, productdomain.FieldID, productdomain.FieldMedias)
	if err != nil {
		return productInput{}, err
	}
	in.Extras = extras
	return in, validateInput(in)
}

type tagInput struct {
	Title  *string `json:"title" validate:"omitempty,max=256"`
	Color  *string `json:"color" validate:"omitempty,max=64"`
	Extras shared.Extras
}

func (in tagInput) attributes() tagdomain.Attributes {
	return tagdomain.Attributes{Title: deref(in.Title), Color: deref(in.Color), Extras: in.Extras}
}

func (in tagInput) patch() tagdomain.Patch {
	return tagdomain.Patch{Title: in.Title, Color: in.Color, Extras: in.Extras}
}

func tagInputFromJSON(body []byte) (tagInput, error) {
	in := tagInput{}
	extras, err := decodeDocument(body, map[string]interface{}{
		tagdomain.FieldTitle: &in.Title,
		tagdomain.FieldColor: &in.Color,
	}, tagdomain.FieldID)
	if err != nil {
		return tagInput{}, err
	}
	in.Extras = extras
	return in, validateInput(in)
}

// decodeDocument decodes a JSON object whose fixed keys go into the given
// targets and whose remaining keys are returned as extensions.
func decodeDocument(body []byte, fixed map[string]interface{}, readOnly ...string) (shared.Extras, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	for _, k := range readOnly {
		if _, ok := raw[k]; ok {
			return nil, fmt.Errorf("%w: %s", errReadOnlyField, k)
		}
	}
	extras := shared.Extras{}
	for k, v := range raw {
		if target, ok := fixed[k]; ok {
			if err := json.Unmarshal(v, target); err != nil {
				return nil, &inputError{msg: fmt.Sprintf("%s has the wrong type", k), cause: errInvalidField}
			}
			continue
		}
		var val interface{}
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidBody, err)
		}
		extras[k] = val
	}
	return extras, nil
}

// productToResponse flattens extensions next to the fixed fields. Unset
// optional fields are omitted.
func productToResponse(p *productdomain.Product) map[string]interface{} {
	out := flatten(p.Extras())
	out[productdomain.FieldID] = p.ID()
	out[productdomain.FieldName] = p.Name()
	if v := p.CategoryID(); v != "" {
		out[productdomain.FieldCategoryID] = v
	}
	if v := p.Description(); v != "" {
		out[productdomain.FieldDescription] = v
	}
	out[productdomain.FieldMedias] = p.Medias()
	out[productdomain.FieldHidden] = p.Hidden()
	return out
}

func productsToResponse(ps []*productdomain.Product) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(ps))
	for _, p := range ps {
		out = append(out, productToResponse(p))
	}
	return out
}

func tagToResponse(t *tagdomain.Tag) map[string]interface{} {
	out := flatten(t.Extras())
	out[tagdomain.FieldID] = t.ID()
	out[tagdomain.FieldTitle] = t.Title()
	if v := t.Color(); v != "" {
		out[tagdomain.FieldColor] = v
	}
	return out
}

func tagsToResponse(ts []*tagdomain.Tag) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(ts))
	for _, t := range ts {
		out = append(out, tagToResponse(t))
	}
	return out
}

func flatten(extras shared.Extras) map[string]interface{} {
	out := make(map[string]interface{}, len(extras)+6)
	for k, v := range extras {
		out[k] = v
	}
	return out
}

// EventResponse is one outbox event as listed by GET /events.
type EventResponse struct {
	EventID     string          `json:"eventId"`
	EventType   string          `json:"eventType"`
	AggregateID string          `json:"aggregateId"`
	Payload     json.RawMessage `json:"payload"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"createdAt"`
	ProcessedAt *string         `json:"processedAt,omitempty"`
}

type EventListResponse struct {
	Events     []EventResponse `json:"events"`
	TotalCount int64           `json:"totalCount"`
}

func eventToResponse(ev outbox.Event) EventResponse {
	out := EventResponse{
		EventID:     ev.EventID,
		EventType:   ev.EventType,
		AggregateID: ev.AggregateID,
		Payload:     json.RawMessage(ev.Payload),
		Status:      ev.Status,
		CreatedAt:   ev.CreatedAt.Format(timeFormat),
	}
	if ev.ProcessedAt != nil {
		s := ev.ProcessedAt.Format(timeFormat)
		out.ProcessedAt = &s
	}
	if len(out.Payload) == 0 {
		out.Payload = json.RawMessage("null")
	}
	return out
}

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
