package delete_product

import (
	"context"
	"fmt"

	"github.com/light-bringer/catalog-service/internal/app/product/contracts"
	"github.com/light-bringer/catalog-service/internal/pkg/clock"
)

// Interactor deletes product records. Media files are left in place.
type Interactor struct {
	repo  contracts.ProductRepository
	clock clock.Clock
}

func NewInteractor(repo contracts.ProductRepository, clk clock.Clock) *Interactor {
	return &Interactor{repo: repo, clock: clk}
}

// Execute returns domain.ErrProductNotFound for unknown ids.
func (i *Interactor) Execute(ctx context.Context, productID string) error {
	product, err := i.repo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	product.MarkDeleted(i.clock.Now())
	if err := i.repo.Delete(ctx, product); err != nil {
		return fmt.Errorf("delete product %s: %w", productID, err)
	}
	return nil
}
