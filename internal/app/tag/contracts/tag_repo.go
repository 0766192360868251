package contracts

import (
	"context"

	"github.com/light-bringer/catalog-service/internal/app/tag/domain"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
)

// TagRepository persists tags together with their recorded events.
type TagRepository interface {
	Insert(ctx context.Context, t *domain.Tag) error
	// GetByID returns domain.ErrTagNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (*domain.Tag, error)
	Find(ctx context.Context, f *query.Filter) ([]*domain.Tag, error)
	Count(ctx context.Context, where query.Where) (int64, error)
	Update(ctx context.Context, t *domain.Tag) error
	Delete(ctx context.Context, t *domain.Tag) error
}
