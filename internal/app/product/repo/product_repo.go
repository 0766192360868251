package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/catalog-service/internal/app/outbox"
	"github.com/light-bringer/catalog-service/internal/app/product/domain"
	"github.com/light-bringer/catalog-service/internal/models/m_product"
	"github.com/light-bringer/catalog-service/internal/pkg/committer"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
	"github.com/light-bringer/catalog-service/internal/pkg/telemetry"
)

const dbSystem = "spanner"

// ProductRepo stores products in Spanner.
type ProductRepo struct {
	client    *spanner.Client
	committer *committer.Committer
	outbox    *outbox.Repo
	model     *m_product.Model
}

// NewProductRepo creates a new ProductRepo.
func NewProductRepo(client *spanner.Client, comm *committer.Committer, outboxRepo *outbox.Repo) *ProductRepo {
	return &ProductRepo{
		client:    client,
		committer: comm,
		outbox:    outboxRepo,
		model:     m_product.NewModel(),
	}
}

func (r *ProductRepo) Insert(ctx context.Context, p *domain.Product) (err error) {
	ctx, span := telemetry.StartDBSpan(ctx, dbSystem, "insert", m_product.TableName)
	defer telemetry.EndSpan(span, &err)

	data := domainToData(p)
	plan := committer.NewPlan()
	plan.Add(r.model.InsertMut(data))
	if err := r.addEvents(plan, p); err != nil {
		return err
	}
	if err := r.committer.Apply(ctx, plan); err != nil {
		if spanner.ErrCode(err) == codes.AlreadyExists {
			return domain.ErrProductExists
		}
		return fmt.Errorf("insert product %s: %w", p.ID(), err)
	}
	p.ClearEvents()
	p.Changes().Clear()
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	ctx, span := telemetry.StartDBSpan(ctx, dbSystem, "read", m_product.TableName)
	defer telemetry.EndSpan(span, &err)

	row, err := r.client.Single().ReadRow(ctx, m_product.TableName, spanner.Key{id}, m_product.Columns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("read product %s: %w", id, err)
	}
	return rowToDomain(row)
}

func (r *ProductRepo) Find(ctx context.Context, f *query.Filter) (_ []*domain.Product, err error) {
	ctx, span := telemetry.StartDBSpan(ctx, dbSystem, "select", m_product.TableName)
	defer telemetry.EndSpan(span, &err)

	stmt, err := findStatement(f)
	if err != nil {
		return nil, err
	}
	iter := r.client.Single().Query(ctx, stmt)
	defer iter.Stop()
	return collect(iter)
}

func (r *ProductRepo) Count(ctx context.Context, where query.Where) (_ int64, err error) {
	ctx, span := telemetry.StartDBSpan(ctx, dbSystem, "count", m_product.TableName)
	defer telemetry.EndSpan(span, &err)

	conds, err := m_product.Filterable.Conditions(where)
	if err != nil {
		return 0, err
	}
	stmt := query.From(m_product.TableName).Where(conds...).Count().Build()

	iter := r.client.Single().Query(ctx, stmt)
	defer iter.Stop()
	row, err := iter.Next()
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	var n int64
	if err := row.Columns(&n); err != nil {
		return 0, fmt.Errorf("parse product count: %w", err)
	}
	return n, nil
}

func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) (err error) {
	ctx, span := telemetry.StartDBSpan(ctx, dbSystem, "update", m_product.TableName)
	defer telemetry.EndSpan(span, &err)

	plan := committer.NewPlan()
	plan.Add(r.updateMut(p))
	if err := r.addEvents(plan, p); err != nil {
		return err
	}
	if err := r.committer.Apply(ctx, plan); err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("update product %s: %w", p.ID(), err)
	}
	p.ClearEvents()
	p.Changes().Clear()
	return nil
}

func (r *ProductRepo) UpdateAll(ctx context.Context, where query.Where, patch domain.Patch, now time.Time) (_ int64, err error) {
	ctx, span := telemetry.StartDBSpan(ctx, dbSystem, "update_all", m_product.TableName)
	defer telemetry.EndSpan(span, &err)

	stmt, err := findStatement(&query.Filter{Where: where})
	if err != nil {
		return 0, err
	}

	var matched int64
	err = r.committer.ApplyWithReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) (*committer.CommitPlan, error) {
		matched = 0
		iter := txn.Query(ctx, stmt)
		products, err := collect(iter)
		iter.Stop()
		if err != nil {
			return nil, err
		}

		plan := committer.NewPlan()
		for _, p := range products {
			matched++
			if err := p.Update(patch, now); err != nil {
				return nil, err
			}
			plan.Add(r.updateMut(p))
			if err := r.addEvents(plan, p); err != nil {
				return nil, err
			}
		}
		return plan, nil
	})
	if err != nil {
		return 0, err
	}
	return matched, nil
}

func (r *ProductRepo) Replace(ctx context.Context, p *domain.Product) (err error) {
	ctx, span := telemetry.StartDBSpan(ctx, dbSystem, "replace", m_product.TableName)
	defer telemetry.EndSpan(span, &err)

	data := domainToData(p)
	plan := committer.NewPlan()
	plan.Add(r.model.ReplaceMut(data))
	if err := r.addEvents(plan, p); err != nil {
		return err
	}
	if err := r.committer.Apply(ctx, plan); err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("replace product %s: %w", p.ID(), err)
	}
	p.ClearEvents()
	p.Changes().Clear()
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, p *domain.Product) (err error) {
	ctx, span := telemetry.StartDBSpan(ctx, dbSystem, "delete", m_product.TableName)
	defer telemetry.EndSpan(span, &err)

	plan := committer.NewPlan()
	plan.Add(r.model.DeleteMut(p.ID()))
	if err := r.addEvents(plan, p); err != nil {
		return err
	}
	if err := r.committer.Apply(ctx, plan); err != nil {
		return fmt.Errorf("delete product %s: %w", p.ID(), err)
	}
	p.ClearEvents()
	return nil
}

func (r *ProductRepo) addEvents(plan *committer.CommitPlan, p *domain.Product) error {
	muts, err := r.outbox.InsertMuts(p.DomainEvents())
	if err != nil {
		return err
	}
	plan.AddMultiple(muts)
	return nil
}

// updateMut writes only the dirty columns. It returns nil when nothing
// changed.
func (r *ProductRepo) updateMut(p *domain.Product) *spanner.Mutation {
	changes := p.Changes()
	if !changes.HasChanges() {
		return nil
	}
	data := domainToData(p)
	updates := make(map[string]interface{})
	if changes.Dirty(domain.FieldName) {
		updates[m_product.Name] = data.Name
	}
	if changes.Dirty(domain.FieldCategoryID) {
		updates[m_product.CategoryID] = data.CategoryID
	}
	if changes.Dirty(domain.FieldDescription) {
		updates[m_product.Description] = data.Description
	}
	if changes.Dirty(domain.FieldHidden) {
		updates[m_product.Hidden] = data.Hidden
	}
	if changes.Dirty(domain.FieldMedias) {
		updates[m_product.Medias] = data.Medias
	}
	if changes.Dirty(domain.FieldExtras) {
		updates[m_product.Extras] = data.Extras
	}
	return r.model.UpdateMut(p.ID(), updates)
}

func findStatement(f *query.Filter) (spanner.Statement, error) {
	b := query.From(m_product.TableName).Select(m_product.Columns...)
	b, err := m_product.Filterable.Apply(b, f)
	if err != nil {
		return spanner.Statement{}, err
	}
	// insertion order breaks ties and is the default
	b = b.OrderBy(m_product.CreatedAt, query.Asc).OrderBy(m_product.ProductID, query.Asc)
	return b.Build(), nil
}

func collect(iter *spanner.RowIterator) ([]*domain.Product, error) {
	var out []*domain.Product
	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("query products: %w", err)
		}
		p, err := rowToDomain(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
}
