package repo

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/catalog-service/internal/app/outbox"
	"github.com/light-bringer/catalog-service/internal/app/tag/domain"
	"github.com/light-bringer/catalog-service/internal/models/m_tag"
	"github.com/light-bringer/catalog-service/internal/pkg/committer"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
	"github.com/light-bringer/catalog-service/internal/pkg/telemetry"
)

// TagRepo stores tags in Spanner.
type TagRepo struct {
	client    *spanner.Client
	committer *committer.Committer
	outbox    *outbox.Repo
	model     *m_tag.Model
}

func NewTagRepo(client *spanner.Client, comm *committer.Committer, outboxRepo *outbox.Repo) *TagRepo {
	return &TagRepo{client: client, committer: comm, outbox: outboxRepo, model: m_tag.NewModel()}
}

func (r *TagRepo) Insert(ctx context.Context, t *domain.Tag) (err error) {
	ctx, span := telemetry.StartDBSpan(ctx, "spanner", "insert", m_tag.TableName)
	defer telemetry.EndSpan(span, &err)

	plan := committer.NewPlan()
	plan.Add(r.model.InsertMut(domainToData(t)))
	if err := r.commit(ctx, plan, t); err != nil {
		if spanner.ErrCode(err) == codes.AlreadyExists {
			return domain.ErrTagExists
		}
		return fmt.Errorf("insert tag %s: %w", t.ID(), err)
	}
	return nil
}

func (r *TagRepo) GetByID(ctx context.Context, id string) (_ *domain.Tag, err error) {
	ctx, span := telemetry.StartDBSpan(ctx, "spanner", "read", m_tag.TableName)
	defer telemetry.EndSpan(span, &err)

	row, err := r.client.Single().ReadRow(ctx, m_tag.TableName, spanner.Key{id}, m_tag.Columns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrTagNotFound
		}
		return nil, fmt.Errorf("read tag %s: %w", id, err)
	}
	return rowToDomain(row)
}

func (r *TagRepo) Find(ctx context.Context, f *query.Filter) (_ []*domain.Tag, err error) {
	ctx, span := telemetry.StartDBSpan(ctx, "spanner", "select", m_tag.TableName)
	defer telemetry.EndSpan(span, &err)

	b, err := m_tag.Filterable.Apply(query.From(m_tag.TableName).Select(m_tag.Columns...), f)
	if err != nil {
		return nil, err
	}
	stmt := b.OrderBy(m_tag.CreatedAt, query.Asc).OrderBy(m_tag.TagID, query.Asc).Build()

	iter := r.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	var out []*domain.Tag
	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("query tags: %w", err)
		}
		t, err := rowToDomain(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
}

func (r *TagRepo) Count(ctx context.Context, where query.Where) (_ int64, err error) {
	ctx, span := telemetry.StartDBSpan(ctx, "spanner", "count", m_tag.TableName)
	defer telemetry.EndSpan(span, &err)

	conds, err := m_tag.Filterable.Conditions(where)
	if err != nil {
		return 0, err
	}
	iter := r.client.Single().Query(ctx, query.From(m_tag.TableName).Where(conds...).Count().Build())
	defer iter.Stop()
	row, err := iter.Next()
	if err != nil {
		return 0, fmt.Errorf("count tags: %w", err)
	}
	var n int64
	if err := row.Columns(&n); err != nil {
		return 0, fmt.Errorf("parse tag count: %w", err)
	}
	return n, nil
}

func (r *TagRepo) Update(ctx context.Context, t *domain.Tag) (err error) {
	ctx, span := telemetry.StartDBSpan(ctx, "spanner", "update", m_tag.TableName)
	defer telemetry.EndSpan(span, &err)

	changes := t.Changes()
	data := domainToData(t)
	updates := make(map[string]interface{})
	if changes.Dirty(domain.FieldTitle) {
		updates[m_tag.Title] = data.Title
	}
	if changes.Dirty(domain.FieldColor) {
		updates[m_tag.Color] = data.Color
	}
	if changes.Dirty(domain.FieldExtras) {
		updates[m_tag.Extras] = data.Extras
	}

	plan := committer.NewPlan()
	plan.Add(r.model.UpdateMut(t.ID(), updates))
	if err := r.commit(ctx, plan, t); err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return domain.ErrTagNotFound
		}
		return fmt.Errorf("update tag %s: %w", t.ID(), err)
	}
	return nil
}

func (r *TagRepo) Delete(ctx context.Context, t *domain.Tag) (err error) {
	ctx, span := telemetry.StartDBSpan(ctx, "spanner", "delete", m_tag.TableName)
	defer telemetry.EndSpan(span, &err)

	plan := committer.NewPlan()
	plan.Add(r.model.DeleteMut(t.ID()))
	if err := r.commit(ctx, plan, t); err != nil {
		return fmt.Errorf("delete tag %s: %w", t.ID(), err)
	}
	return nil
}

func (r *TagRepo) commit(ctx context.Context, plan *committer.CommitPlan, t *domain.Tag) error {
	muts, err := r.outbox.InsertMuts(t.DomainEvents())
	if err != nil {
		return err
	}
	plan.AddMultiple(muts)
	if err := r.committer.Apply(ctx, plan); err != nil {
		return err
	}
	t.ClearEvents()
	t.Changes().Clear()
	return nil
}
