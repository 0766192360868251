package update_product

import (
	"context"
	"fmt"

	"github.com/light-bringer/catalog-service/internal/app/product/contracts"
	"github.com/light-bringer/catalog-service/internal/app/product/domain"
	"github.com/light-bringer/catalog-service/internal/pkg/clock"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
)

// Interactor applies partial updates. It never touches media files.
type Interactor struct {
	repo  contracts.ProductRepository
	clock clock.Clock
}

// NewInteractor creates a new update product interactor.
func NewInteractor(repo contracts.ProductRepository, clk clock.Clock) *Interactor {
	return &Interactor{repo: repo, clock: clk}
}

// Execute patches one product.
func (i *Interactor) Execute(ctx context.Context, productID string, patch domain.Patch) error {
	product, err := i.repo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if err := product.Update(patch, i.clock.Now()); err != nil {
		return err
	}
	if !product.Changes().HasChanges() {
		return nil
	}
	if err := i.repo.Update(ctx, product); err != nil {
		return fmt.Errorf("update product %s: %w", productID, err)
	}
	return nil
}

// ExecuteAll patches every product matching where and returns the number
// of matches.
func (i *Interactor) ExecuteAll(ctx context.Context, where query.Where, patch domain.Patch) (int64, error) {
	if err := patch.Validate(); err != nil {
		return 0, err
	}
	n, err := i.repo.UpdateAll(ctx, where, patch, i.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("update products: %w", err)
	}
	return n, nil
}
