package m_product

import (
	"cloud.google.com/go/spanner"
)

// Model builds mutations for the products table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// InsertMut inserts a new product. Both timestamps are the commit timestamp.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.Insert(TableName, Columns, []interface{}{
		data.ProductID,
		data.Name,
		data.CategoryID,
		data.Description,
		data.Medias,
		data.Hidden,
		data.Extras,
		spanner.CommitTimestamp,
		spanner.CommitTimestamp,
	})
}

// ReplaceMut overwrites every document column of an existing product.
// created_at is kept.
func (m *Model) ReplaceMut(data *Data) *spanner.Mutation {
	return spanner.Update(TableName,
		[]string{ProductID, Name, CategoryID, Description, Medias, Hidden, Extras, UpdatedAt},
		[]interface{}{
			data.ProductID,
			data.Name,
			data.CategoryID,
			data.Description,
			data.Medias,
			data.Hidden,
			data.Extras,
			spanner.CommitTimestamp,
		},
	)
}

// UpdateMut updates the given columns and bumps updated_at. It returns nil
// when there is nothing to update.
func (m *Model) UpdateMut(productID string, updates map[string]interface{}) *spanner.Mutation {
	if len(updates) == 0 {
		return nil
	}

	columns := make([]string, 0, len(updates)+2)
	values := make([]interface{}, 0, len(updates)+2)
	columns = append(columns, ProductID)
	values = append(values, productID)
	for col, val := range updates {
		if col == ProductID || col == UpdatedAt {
			continue
		}
		columns = append(columns, col)
		values = append(values, val)
	}
	columns = append(columns, UpdatedAt)
	values = append(values, spanner.CommitTimestamp)

	return spanner.Update(TableName, columns, values)
}

// DeleteMut deletes a product.
func (m *Model) DeleteMut(productID string) *spanner.Mutation {
	return spanner.Delete(TableName, spanner.Key{productID})
}
