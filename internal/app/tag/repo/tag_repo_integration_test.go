//go:build integration

package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/catalog-service/internal/app/outbox"
	"github.com/light-bringer/catalog-service/internal/app/shared"
	"github.com/light-bringer/catalog-service/internal/app/tag/domain"
	"github.com/light-bringer/catalog-service/internal/pkg/committer"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
	"github.com/light-bringer/catalog-service/internal/testutil"
)

func TestTagRepo_Spanner(t *testing.T) {
	client := testutil.SetupSpannerTest(t)
	r := NewTagRepo(client, committer.NewCommitter(client), outbox.NewRepo(client, 5))
	ctx := context.Background()
	now := time.Now()

	tag, err := domain.NewTag("t1", domain.Attributes{Title: "sale", Color: "#f00", Extras: shared.Extras{"rank": float64(2)}}, now)
	require.NoError(t, err)
	require.NoError(t, r.Insert(ctx, tag))
	assert.Equal(t, int64(1), testutil.CountOutboxEvents(t, client, domain.EventTagCreated))

	dup, err := domain.NewTag("t1", domain.Attributes{Title: "again"}, now)
	require.NoError(t, err)
	assert.ErrorIs(t, r.Insert(ctx, dup), domain.ErrTagExists)

	got, err := r.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "sale", got.Title())
	assert.Equal(t, "#f00", got.Color())
	assert.Equal(t, shared.Extras{"rank": float64(2)}, got.Extras())

	title := "clearance"
	require.NoError(t, got.Update(domain.Patch{Title: &title}, now))
	require.NoError(t, r.Update(ctx, got))
	assert.Equal(t, int64(1), testutil.CountOutboxEvents(t, client, domain.EventTagUpdated))

	f, err := query.ParseFilter(`{"where":{"title":"clearance"}}`)
	require.NoError(t, err)
	found, err := r.Find(ctx, f)
	require.NoError(t, err)
	require.Len(t, found, 1)

	n, err := r.Count(ctx, query.Where{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got.MarkDeleted(now)
	require.NoError(t, r.Delete(ctx, got))
	_, err = r.GetByID(ctx, "t1")
	assert.ErrorIs(t, err, domain.ErrTagNotFound)
}
