package replace_product

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/light-bringer/catalog-service/internal/app/product/contracts"
	"github.com/light-bringer/catalog-service/internal/app/product/domain"
	"github.com/light-bringer/catalog-service/internal/pkg/clock"
)

// Request describes a full replace. File, when set, is already stored.
type Request struct {
	ProductID   string
	Patch       domain.Patch
	File        *domain.UploadedFile
	RemoveThumb bool
}

// Result reports the replaced product and any media files that are no
// longer referenced but could not be removed.
type Result struct {
	Product       *domain.Product
	OrphanedMedia []string
}

// Interactor handles the replace product use case.
type Interactor struct {
	repo   contracts.ProductRepository
	media  contracts.MediaStore
	clock  clock.Clock
	logger logrus.FieldLogger
}

// NewInteractor creates a new replace product interactor.
func NewInteractor(repo contracts.ProductRepository, media contracts.MediaStore, clk clock.Clock, logger logrus.FieldLogger) *Interactor {
	return &Interactor{repo: repo, media: media, clock: clk, logger: logger}
}

// Execute replaces the product document. The record is written first; the
// file it no longer references is removed afterwards. If the write fails
// the new upload is removed and the old file is kept.
func (i *Interactor) Execute(ctx context.Context, req *Request) (_ *Result, err error) {
	defer func() {
		if err != nil && req.File != nil {
			i.removeOrWarn(ctx, req.File.Filename, "could not remove upload of failed replace")
		}
	}()

	product, err := i.repo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	stale, err := product.Replace(domain.Replacement{
		Patch:       req.Patch,
		File:        req.File,
		RemoveThumb: req.RemoveThumb,
	}, i.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := i.repo.Replace(ctx, product); err != nil {
		return nil, fmt.Errorf("replace product %s: %w", req.ProductID, err)
	}

	result := &Result{Product: product}
	if stale != "" && !i.removeOrWarn(ctx, stale, "old thumbnail left orphaned") {
		result.OrphanedMedia = append(result.OrphanedMedia, stale)
	}
	return result, nil
}

func (i *Interactor) removeOrWarn(ctx context.Context, filename, msg string) bool {
	if err := i.media.Delete(context.WithoutCancel(ctx), filename); err != nil {
		i.logger.WithError(err).WithField("filename", filename).Warn(msg)
		return false
	}
	return true
}
