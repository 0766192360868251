package create_tag

import (
	"context"
	"fmt"

	"github.com/google/uuid"

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

// Execute stores a new tag under a generated id.
func (i *Interactor) Execute(ctx context.Context, attrs domain.Attributes) (*domain.Tag, error) {
	tag, err := domain.NewTag(uuid.NewString(), attrs, i.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := i.repo.Insert(ctx, tag); err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return tag, nil
}
