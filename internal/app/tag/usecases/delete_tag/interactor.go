package delete_tag

import (
	"context"
	"fmt"

	"github.com/light-bringer/catalog-service/internal/app/tag/contracts"
	"github.com/light-bringer/catalog-service/internal/pkg/clock"
)

type Interactor struct {
	repo  contracts.TagRepository
	clock clock.Clock
}

func NewInteractor(repo contracts.TagRepository, clk clock.Clock) *Interactor {
	return &Interactor{repo: repo, clock: clk}
}

// Execute returns domain.ErrTagNotFound for unknown ids.
func (i *Interactor) Execute(ctx context.Context, tagID string) error {
	tag, err := i.repo.GetByID(ctx, tagID)
	if err != nil {
		return err
	}
	tag.MarkDeleted(i.clock.Now())
	if err := i.repo.Delete(ctx, tag); err != nil {
		return fmt.Errorf("delete tag %s: %w", tagID, err)
	}
	return nil
}
