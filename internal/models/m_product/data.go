package m_product

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Data is one row of the products table. Medias and Extras hold the
// document parts as JSON.
type Data struct {
	ProductID   string             `spanner:"product_id"`
	Name        string             `spanner:"name"`
	CategoryID  spanner.NullString `spanner:"category_id"`
	Description spanner.NullString `spanner:"description"`
	Medias      spanner.NullJSON   `spanner:"medias"`
	Hidden      bool               `spanner:"hidden"`
	Extras      spanner.NullJSON   `spanner:"extras"`
	CreatedAt   time.Time          `spanner:"created_at"`
	UpdatedAt   time.Time          `spanner:"updated_at"`
}
