package get_product

import (
	"context"

	"github.com/light-bringer/catalog-service/internal/app/product/contracts"
	"github.com/light-bringer/catalog-service/internal/app/product/domain"
)

// Query loads a single product.
type Query struct {
	repo contracts.ProductRepository
}

// NewQuery creates a new get product query.
func NewQuery(repo contracts.ProductRepository) *Query {
	return &Query{repo: repo}
}

// Execute returns domain.ErrProductNotFound for unknown ids.
func (q *Query) Execute(ctx context.Context, productID string) (*domain.Product, error) {
	return q.repo.GetByID(ctx, productID)
}
