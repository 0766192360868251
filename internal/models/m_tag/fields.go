package m_tag

import "github.com/light-bringer/catalog-service/internal/pkg/query"

const (
	TableName = "product_tags"

	TagID     = "tag_id"
	Title     = "title"
	Color     = "color"
	Extras    = "extras"
	CreatedAt = "created_at"
	UpdatedAt = "updated_at"
)

var Columns = []string{TagID, Title, Color, Extras, CreatedAt, UpdatedAt}

// Filterable maps public tag fields onto columns for filters.
var Filterable = query.Schema{
	"id":    {Column: TagID, Kind: query.KindString},
	"title": {Column: Title, Kind: query.KindString},
	"color": {Column: Color, Kind: query.KindString},
}
