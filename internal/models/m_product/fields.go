package m_product

import "github.com/light-bringer/catalog-service/internal/pkg/query"

const (
	TableName = "products"

	ProductID   = "product_id"
	Name        = "name"
	CategoryID  = "category_id"
	Description = "description"
	Medias      = "medias"
	Hidden      = "hidden"
	Extras      = "extras"
	CreatedAt   = "created_at"
	UpdatedAt   = "updated_at"
)

// Columns is the full column list in Data order.
var Columns = []string{
	ProductID, Name, CategoryID, Description, Medias, Hidden, Extras, CreatedAt, UpdatedAt,
}

// Filterable maps public document fields onto columns for filters.
var Filterable = query.Schema{
	"id":          {Column: ProductID, Kind: query.KindString},
	"name":        {Column: Name, Kind: query.KindString},
	"categoryId":  {Column: CategoryID, Kind: query.KindString},
	"description": {Column: Description, Kind: query.KindString},
	"hidden":      {Column: Hidden, Kind: query.KindBool},
}
