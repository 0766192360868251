package create_product

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/catalog-service/internal/app/product/domain"
	"github.com/light-bringer/catalog-service/internal/app/product/repo"
	"github.com/light-bringer/catalog-service/internal/app/shared"
	"github.com/light-bringer/catalog-service/internal/pkg/clock"
)

type recordingStore struct{ deleted []string }

func (s *recordingStore) Delete(_ context.Context, name string) error {
	s.deleted = append(s.deleted, name)
	return nil
}

func newInteractor(r *repo.MemoryProductRepo, s *recordingStore) *Interactor {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewInteractor(r, s, clock.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), l)
}

func TestExecute_WithFile(t *testing.T) {
	r := repo.NewMemoryProductRepo(nil)
	file := &domain.UploadedFile{OriginalName: "a.png", Filename: "file-1-2.png", Size: 5}

	p, err := newInteractor(r, &recordingStore{}).Execute(context.Background(), &Request{
		Attributes: domain.Attributes{Name: "Mug", Extras: shared.Extras{"sku": "X"}},
		File:       file,
	})
	require.NoError(t, err)

	require.NotEmpty(t, p.ID())
	thumb, ok := p.Thumbnail()
	require.True(t, ok)
	assert.Equal(t, "/media/file-1-2.png", thumb.Path)

	stored, err := r.GetByID(context.Background(), p.ID())
	require.NoError(t, err)
	assert.Equal(t, shared.Extras{"sku": "X"}, stored.Extras())
}

func TestExecute_WithoutFileHasPlaceholder(t *testing.T) {
	p, err := newInteractor(repo.NewMemoryProductRepo(nil), &recordingStore{}).Execute(context.Background(), &Request{
		Attributes: domain.Attributes{Name: "Mug"},
	})
	require.NoError(t, err)

	thumbs := p.Medias().Thumbnail
	require.Len(t, thumbs, 1)
	assert.Equal(t, domain.ProductMedia{}, thumbs[0])
}

func TestExecute_InvalidRemovesUpload(t *testing.T) {
	store := &recordingStore{}
	_, err := newInteractor(repo.NewMemoryProductRepo(nil), store).Execute(context.Background(), &Request{
		Attributes: domain.Attributes{Name: ""},
		File:       &domain.UploadedFile{Filename: "file-1-2.png"},
	})
	assert.ErrorIs(t, err, domain.ErrEmptyName)
	assert.Equal(t, []string{"file-1-2.png"}, store.deleted)
}
