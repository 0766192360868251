package repo

import (
	"context"
	"sync"

	"github.com/light-bringer/catalog-service/internal/app/shared"
	"github.com/light-bringer/catalog-service/internal/app/tag/domain"
	"github.com/light-bringer/catalog-service/internal/models/m_tag"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
)

// MemoryTagRepo keeps tags in process memory.
type MemoryTagRepo struct {
	mu    sync.RWMutex
	items map[string]*domain.Tag
	order []string
	sink  shared.EventSink
}

func NewMemoryTagRepo(sink shared.EventSink) *MemoryTagRepo {
	return &MemoryTagRepo{items: make(map[string]*domain.Tag), sink: sink}
}

func (r *MemoryTagRepo) Insert(_ context.Context, t *domain.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[t.ID()]; ok {
		return domain.ErrTagExists
	}
	r.items[t.ID()] = snapshot(t)
	r.order = append(r.order, t.ID())
	r.flush(t)
	return nil
}

func (r *MemoryTagRepo) GetByID(_ context.Context, id string) (*domain.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.items[id]
	if !ok {
		return nil, domain.ErrTagNotFound
	}
	return snapshot(t), nil
}

func (r *MemoryTagRepo) Find(_ context.Context, f *query.Filter) ([]*domain.Tag, error) {
	if f == nil {
		f = &query.Filter{}
	}
	where, err := m_tag.Filterable.Normalize(f.Where)
	if err != nil {
		return nil, err
	}
	if err := m_tag.Filterable.CheckOrder(f.Order); err != nil {
		return nil, err
	}
	r.mu.RLock()
	matched := r.match(where)
	r.mu.RUnlock()

	query.SortBy(matched, f.Order, (*domain.Tag).Field)
	return query.Paginate(matched, f.Skip, f.Limit), nil
}

func (r *MemoryTagRepo) Count(_ context.Context, where query.Where) (int64, error) {
	nw, err := m_tag.Filterable.Normalize(where)
	if err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.match(nw))), nil
}

func (r *MemoryTagRepo) Update(_ context.Context, t *domain.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[t.ID()]; !ok {
		return domain.ErrTagNotFound
	}
	r.items[t.ID()] = snapshot(t)
	r.flush(t)
	return nil
}

func (r *MemoryTagRepo) Delete(_ context.Context, t *domain.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[t.ID()]; !ok {
		return nil
	}
	delete(r.items, t.ID())
	for i, id := range r.order {
		if id == t.ID() {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.flush(t)
	return nil
}

func (r *MemoryTagRepo) match(where query.Where) []*domain.Tag {
	var out []*domain.Tag
	for _, id := range r.order {
		if t := r.items[id]; where.Match(t.Field) {
			out = append(out, snapshot(t))
		}
	}
	return out
}

func (r *MemoryTagRepo) flush(t *domain.Tag) {
	if r.sink != nil && len(t.DomainEvents()) > 0 {
		r.sink(t.DomainEvents())
	}
	t.ClearEvents()
	t.Changes().Clear()
}

func snapshot(t *domain.Tag) *domain.Tag {
	return domain.ReconstructTag(t.ID(), t.Attributes())
}
