package find_products

import (
	"context"

	"github.com/light-bringer/catalog-service/internal/app/product/contracts"
	"github.com/light-bringer/catalog-service/internal/app/product/domain"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
)

// Query serves filtered product reads.
type Query struct {
	repo contracts.ProductRepository
}

// NewQuery creates a new find products query.
func NewQuery(repo contracts.ProductRepository) *Query {
	return &Query{repo: repo}
}

// Find returns the products matching f.
func (q *Query) Find(ctx context.Context, f *query.Filter) ([]*domain.Product, error) {
	return q.repo.Find(ctx, f)
}

// FindActive is Find restricted to products that are not hidden. The
// restriction is ANDed with the caller's where, so it cannot be overridden.
func (q *Query) FindActive(ctx context.Context, f *query.Filter) ([]*domain.Product, error) {
	active := query.Filter{}
	if f != nil {
		active = *f
	}
	active.Where = active.Where.With(query.Predicate{Field: domain.FieldHidden, Op: query.OpEq, Value: false})
	return q.repo.Find(ctx, &active)
}

// Count counts the products matching where.
func (q *Query) Count(ctx context.Context, where query.Where) (int64, error) {
	return q.repo.Count(ctx, where)
}
