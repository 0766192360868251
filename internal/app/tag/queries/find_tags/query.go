package find_tags

import (
	"context"

	"github.com/light-bringer/catalog-service/internal/app/tag/contracts"
	"github.com/light-bringer/catalog-service/internal/app/tag/domain"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
)

// Query serves tag reads.
type Query struct {
	repo contracts.TagRepository
}

func NewQuery(repo contracts.TagRepository) *Query {
	return &Query{repo: repo}
}

func (q *Query) Get(ctx context.Context, id string) (*domain.Tag, error) {
	return q.repo.GetByID(ctx, id)
}

func (q *Query) Find(ctx context.Context, f *query.Filter) ([]*domain.Tag, error) {
	return q.repo.Find(ctx, f)
}

func (q *Query) Count(ctx context.Context, where query.Where) (int64, error) {
	return q.repo.Count(ctx, where)
}
