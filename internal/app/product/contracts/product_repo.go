package contracts

import (
	"context"
	"time"

	"github.com/light-bringer/catalog-service/internal/app/product/domain"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
)

// ProductRepository persists product documents. Every write also persists
// the aggregate's recorded events and clears them.
type ProductRepository interface {
	// Insert stores a new product.
	Insert(ctx context.Context, p *domain.Product) error

	// GetByID returns domain.ErrProductNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// Find returns the products matching the filter. A nil filter matches
	// everything.
	Find(ctx context.Context, f *query.Filter) ([]*domain.Product, error)

	Count(ctx context.Context, where query.Where) (int64, error)

	// Update writes the product's dirty fields.
	Update(ctx context.Context, p *domain.Product) error

	// UpdateAll applies patch to every product matching where and returns
	// how many matched.
	UpdateAll(ctx context.Context, where query.Where, patch domain.Patch, now time.Time) (int64, error)

	// Replace overwrites the whole stored document.
	Replace(ctx context.Context, p *domain.Product) error

	Delete(ctx context.Context, p *domain.Product) error
}

// MediaStore removes stored media files.
type MediaStore interface {
	// Delete removes a file by name. A missing file is not an error.
	Delete(ctx context.Context, filename string) error
}
