package m_tag

import "cloud.google.com/go/spanner"

// Model builds mutations for the product_tags table.
type Model struct{}

func NewModel() *Model {
	return &Model{}
}

func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.Insert(TableName, Columns, []interface{}{
		data.TagID,
		data.Title,
		data.Color,
		data.Extras,
		spanner.CommitTimestamp,
		spanner.CommitTimestamp,
	})
}

// UpdateMut updates the given columns and bumps updated_at.
func (m *Model) UpdateMut(tagID string, updates map[string]interface{}) *spanner.Mutation {
	if len(updates) == 0 {
		return nil
	}
	columns := []string{TagID}
	values := []interface{}{tagID}
	for col, val := range updates {
		if col == TagID || col == UpdatedAt {
			continue
		}
		columns = append(columns, col)
		values = append(values, val)
	}
	columns = append(columns, UpdatedAt)
	values = append(values, spanner.CommitTimestamp)
	return spanner.Update(TableName, columns, values)
}

func (m *Model) DeleteMut(tagID string) *spanner.Mutation {
	return spanner.Delete(TableName, spanner.Key{tagID})
}
