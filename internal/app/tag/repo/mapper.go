package repo

import (
	"encoding/json"
	"fmt"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/catalog-service/internal/app/shared"
	"github.com/light-bringer/catalog-service/internal/app/tag/domain"
	"github.com/light-bringer/catalog-service/internal/models/m_tag"
)

func domainToData(t *domain.Tag) *m_tag.Data {
	extras := t.Extras()
	return &m_tag.Data{
		TagID:  t.ID(),
		Title:  t.Title(),
		Color:  spanner.NullString{StringVal: t.Color(), Valid: t.Color() != ""},
		Extras: spanner.NullJSON{Value: map[string]interface{}(extras), Valid: len(extras) > 0},
	}
}

func rowToDomain(row *spanner.Row) (*domain.Tag, error) {
	var data m_tag.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("parse tag row: %w", err)
	}
	var extras shared.Extras
	if data.Extras.Valid && data.Extras.Value != nil {
		raw, err := json.Marshal(data.Extras.Value)
		if err != nil {
			return nil, fmt.Errorf("encode extras of %s: %w", data.TagID, err)
		}
		if err := json.Unmarshal(raw, &extras); err != nil {
			return nil, fmt.Errorf("decode extras of %s: %w", data.TagID, err)
		}
	}
	return domain.ReconstructTag(data.TagID, domain.Attributes{
		Title:  data.Title,
		Color:  data.Color.StringVal,
		Extras: extras,
	}), nil
}
