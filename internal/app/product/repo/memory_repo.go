package repo

import (
	"context"
	"sync"
	"time"

	"github.com/light-bringer/catalog-service/internal/app/product/domain"
	"github.com/light-bringer/catalog-service/internal/app/shared"
	"github.com/light-bringer/catalog-service/internal/models/m_product"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
)

// MemoryProductRepo keeps products in process memory. It is used for local
// development and tests.
type MemoryProductRepo struct {
	mu    sync.RWMutex
	items map[string]*domain.Product
	order []string
	sink  shared.EventSink
}

// NewMemoryProductRepo creates an empty repository. sink may be nil.
func NewMemoryProductRepo(sink shared.EventSink) *MemoryProductRepo {
	return &MemoryProductRepo{items: make(map[string]*domain.Product), sink: sink}
}

func (r *MemoryProductRepo) Insert(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID()]; ok {
		return domain.ErrProductExists
	}
	r.items[p.ID()] = snapshot(p)
	r.order = append(r.order, p.ID())
	r.flush(p)
	return nil
}

func (r *MemoryProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return snapshot(p), nil
}

func (r *MemoryProductRepo) Find(_ context.Context, f *query.Filter) ([]*domain.Product, error) {
	if f == nil {
		f = &query.Filter{}
	}
	where, err := m_product.Filterable.Normalize(f.Where)
	if err != nil {
		return nil, err
	}
	if err := m_product.Filterable.CheckOrder(f.Order); err != nil {
		return nil, err
	}

	r.mu.RLock()
	matched := r.match(where)
	r.mu.RUnlock()

	query.SortBy(matched, f.Order, (*domain.Product).Field)
	return query.Paginate(matched, f.Skip, f.Limit), nil
}

func (r *MemoryProductRepo) Count(_ context.Context, where query.Where) (int64, error) {
	nw, err := m_product.Filterable.Normalize(where)
	if err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.match(nw))), nil
}

func (r *MemoryProductRepo) Update(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID()]; !ok {
		return domain.ErrProductNotFound
	}
	r.items[p.ID()] = snapshot(p)
	r.flush(p)
	return nil
}

func (r *MemoryProductRepo) UpdateAll(_ context.Context, where query.Where, patch domain.Patch, now time.Time) (int64, error) {
	nw, err := m_product.Filterable.Normalize(where)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	matched := r.match(nw)
	// validate against every match before writing any
	for _, p := range matched {
		if err := p.Update(patch, now); err != nil {
			return 0, err
		}
	}
	for _, p := range matched {
		r.items[p.ID()] = snapshot(p)
		r.flush(p)
	}
	return int64(len(matched)), nil
}

func (r *MemoryProductRepo) Replace(ctx context.Context, p *domain.Product) error {
	return r.Update(ctx, p)
}

func (r *MemoryProductRepo) Delete(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID()]; !ok {
		return nil
	}
	delete(r.items, p.ID())
	for i, id := range r.order {
		if id == p.ID() {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.flush(p)
	return nil
}

// match returns snapshots of matching products in insertion order. Callers
// hold the lock.
func (r *MemoryProductRepo) match(where query.Where) []*domain.Product {
	var out []*domain.Product
	for _, id := range r.order {
		p := r.items[id]
		if where.Match(p.Field) {
			out = append(out, snapshot(p))
		}
	}
	return out
}

func (r *MemoryProductRepo) flush(p *domain.Product) {
	if r.sink != nil && len(p.DomainEvents()) > 0 {
		r.sink(p.DomainEvents())
	}
	p.ClearEvents()
	p.Changes().Clear()
}

func snapshot(p *domain.Product) *domain.Product {
	return domain.ReconstructProduct(p.ID(), p.Attributes(), p.Medias())
}
