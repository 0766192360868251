//go:build integration

package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/catalog-service/internal/app/outbox"
	"github.com/light-bringer/catalog-service/internal/app/product/domain"
	"github.com/light-bringer/catalog-service/internal/app/shared"
	"github.com/light-bringer/catalog-service/internal/pkg/committer"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
	"github.com/light-bringer/catalog-service/internal/testutil"
)

func TestProductRepo_Spanner(t *testing.T) {
	client := testutil.SetupSpannerTest(t)
	r := NewProductRepo(client, committer.NewCommitter(client), outbox.NewRepo(client, 5))
	ctx := context.Background()

	file := &domain.UploadedFile{OriginalName: "a.png", Filename: "file-1-1.png", Size: 3}
	p, err := domain.NewProduct("p1", domain.Attributes{
		Name:   "Mug",
		Extras: shared.Extras{"sku": "M-1"},
	}, domain.NewProductMedia(file, now), now)
	require.NoError(t, err)
	require.NoError(t, r.Insert(ctx, p))
	assert.Equal(t, int64(1), testutil.CountOutboxEvents(t, client, domain.EventProductCreated))

	got, err := r.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Mug", got.Name())
	assert.Equal(t, shared.Extras{"sku": "M-1"}, got.Extras())
	thumb, ok := got.Thumbnail()
	require.True(t, ok)
	assert.Equal(t, "/media/file-1-1.png", thumb.Path)

	hidden := true
	n, err := r.UpdateAll(ctx, query.Where{}, domain.Patch{Hidden: &hidden}, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	w, err := query.ParseWhere(`{"hidden":true}`)
	require.NoError(t, err)
	count, err := r.Count(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	f, err := query.ParseFilter(`{"where":{"name":{"like":"M%"}},"limit":1}`)
	require.NoError(t, err)
	found, err := r.Find(ctx, f)
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = got.Replace(domain.Replacement{RemoveThumb: true}, now)
	require.NoError(t, err)
	require.NoError(t, r.Replace(ctx, got))

	got.MarkDeleted(now)
	require.NoError(t, r.Delete(ctx, got))
	_, err = r.GetByID(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	ghost := domain.ReconstructProduct("ghost", domain.Attributes{Name: "x"}, domain.Medias{})
	assert.ErrorIs(t, r.Replace(ctx, ghost), domain.ErrProductNotFound)
}
