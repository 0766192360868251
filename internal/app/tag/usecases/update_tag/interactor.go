package update_tag

import (
	"context"
	"fmt"

	"github.com/light-bringer/catalog-service/internal/app/tag/contracts"
	"github.com/light-bringer/catalog-service/internal/app/tag/domain"
	"github.com/light-bringer/catalog-service/internal/pkg/clock"
)

type Interactor struct {
	repo  contracts.TagRepository
	clock clock.Clock
}

func NewInteractor(repo contracts.TagRepository, clk clock.Clock) *Interactor {
	return &Interactor{repo: repo, clock: clk}
}

// Execute applies patch to the tag. A patch that changes nothing is not
// written.
func (i *Interactor) Execute(ctx context.Context, tagID string, patch domain.Patch) error {
	tag, err := i.repo.GetByID(ctx, tagID)
	if err != nil {
		return err
	}
	if err := tag.Update(patch, i.clock.Now()); err != nil {
		return err
	}
	if !tag.Changes().HasChanges() {
		return nil
	}
	if err := i.repo.Update(ctx, tag); err != nil {
		return fmt.Errorf("update tag %s: %w", tagID, err)
	}
	return nil
}
