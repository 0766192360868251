package m_tag

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Data is one row of the product_tags table.
type Data struct {
	TagID     string             `spanner:"tag_id"`
	Title     string             `spanner:"title"`
	Color     spanner.NullString `spanner:"color"`
	Extras    spanner.NullJSON   `spanner:"extras"`
	CreatedAt time.Time          `spanner:"created_at"`
	UpdatedAt time.Time          `spanner:"updated_at"`
}
