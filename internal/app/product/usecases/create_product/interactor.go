package create_product

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/light-bringer/catalog-service/internal/app/product/contracts"
	"github.com/light-bringer/catalog-service/internal/app/product/domain"
	"github.com/light-bringer/catalog-service/internal/pkg/clock"
)

// Request carries the parsed form fields and the uploaded file, if any.
// The file has already been written to the media store.
type Request struct {
	Attributes domain.Attributes
	File       *domain.UploadedFile
}

// Interactor handles the create product use case.
type Interactor struct {
	repo   contracts.ProductRepository
	media  contracts.MediaStore
	clock  clock.Clock
	logger logrus.FieldLogger
}

// NewInteractor creates a new create product interactor.
func NewInteractor(repo contracts.ProductRepository, media contracts.MediaStore, clk clock.Clock, logger logrus.FieldLogger) *Interactor {
	return &Interactor{repo: repo, media: media, clock: clk, logger: logger}
}

// Execute creates a product whose single thumbnail entry describes the
// uploaded file, or is the empty placeholder when there is none. When the
// product cannot be stored the uploaded file is removed again.
func (i *Interactor) Execute(ctx context.Context, req *Request) (_ *domain.Product, err error) {
	defer func() {
		if err != nil && req.File != nil {
			i.discard(ctx, req.File.Filename)
		}
	}()

	now := i.clock.Now()
	product, err := domain.NewProduct(uuid.NewString(), req.Attributes, domain.NewProductMedia(req.File, now), now)
	if err != nil {
		return nil, err
	}
	if err := i.repo.Insert(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

func (i *Interactor) discard(ctx context.Context, filename string) {
	if err := i.media.Delete(context.WithoutCancel(ctx), filename); err != nil {
		i.logger.WithError(err).WithField("filename", filename).Warn("could not remove upload of failed create")
	}
}
