package product

import (
	"context"

	"github.com/netspire/billing/internal/types"
)

// Repository defines the interface for product persistence operations
type Repository interface {
	Create(ctx context.Context, product *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter *types.ProductFilter) ([]*Product, error)
	Count(ctx context.Context, filter *types.ProductFilter) (int, error)
}
