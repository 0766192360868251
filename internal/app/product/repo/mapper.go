package repo

import (
	"encoding/json"
	"fmt"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/catalog-service/internal/app/product/domain"
	"github.com/light-bringer/catalog-service/internal/app/shared"
	"github.com/light-bringer/catalog-service/internal/models/m_product"
)

func domainToData(p *domain.Product) *m_product.Data {
	medias := p.Medias()
	extras := p.Extras()
	return &m_product.Data{
		ProductID:   p.ID(),
		Name:        p.Name(),
		CategoryID:  nullString(p.CategoryID()),
		Description: nullString(p.Description()),
		Medias:      spanner.NullJSON{Value: medias, Valid: true},
		Hidden:      p.Hidden(),
		Extras:      spanner.NullJSON{Value: map[string]interface{}(extras), Valid: len(extras) > 0},
	}
}

func rowToDomain(row *spanner.Row) (*domain.Product, error) {
	var data m_product.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("parse product row: %w", err)
	}
	return dataToDomain(&data)
}

func dataToDomain(data *m_product.Data) (*domain.Product, error) {
	var medias domain.Medias
	if err := decodeJSON(data.Medias, &medias); err != nil {
		return nil, fmt.Errorf("decode medias of %s: %w", data.ProductID, err)
	}
	var extras shared.Extras
	if err := decodeJSON(data.Extras, &extras); err != nil {
		return nil, fmt.Errorf("decode extras of %s: %w", data.ProductID, err)
	}
	return domain.ReconstructProduct(data.ProductID, domain.Attributes{
		Name:        data.Name,
		CategoryID:  data.CategoryID.StringVal,
		Description: data.Description.StringVal,
		Hidden:      data.Hidden,
		Extras:      extras,
	}, medias), nil
}

// decodeJSON re-decodes a JSON column, which the client hands back as
// generic maps, into dst.
func decodeJSON(n spanner.NullJSON, dst interface{}) error {
	if !n.Valid || n.Value == nil {
		return nil
	}
	raw, err := json.Marshal(n.Value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func nullString(s string) spanner.NullString {
	return spanner.NullString{StringVal: s, Valid: s != ""}
}
