package testutil

import (
	"context"

	"github.com/netspire/billing/internal/domain/product"
	"github.com/netspire/billing/internal/types"
	"github.com/samber/lo"
)

// InMemoryProductStore implements product.Repository
type InMemoryProductStore struct {
	*InMemoryStore[*product.Product]
}

// NewInMemoryProductStore creates a new in-memory product store
func NewInMemoryProductStore() *InMemoryProductStore {
	return &InMemoryProductStore{
		InMemoryStore: NewInMemoryStore[*product.Product](),
	}
}

func copyProduct(p *product.Product) *product.Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (s *InMemoryProductStore) Create(ctx context.Context, p *product.Product) error {
	return s.InMemoryStore.Create(ctx, p.ID, copyProduct(p))
}

func (s *InMemoryProductStore) Get(ctx context.Context, id string) (*product.Product, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyProduct(p), nil
}

func (s *InMemoryProductStore) Update(ctx context.Context, p *product.Product) error {
	return s.InMemoryStore.Update(ctx, p.ID, copyProduct(p))
}

func (s *InMemoryProductStore) Delete(ctx context.Context, id string) error {
	return s.InMemoryStore.Delete(ctx, id)
}

func productFilterFn(ctx context.Context, p *product.Product, filter interface{}) bool {
	f, ok := filter.(*types.ProductFilter)
	if !ok || f == nil {
		return true
	}
	if len(f.ProductIDs) > 0 && !lo.Contains(f.ProductIDs, p.ID) {
		return false
	}
	if f.Category != nil && p.Category != *f.Category {
		return false
	}
	if f.IsActive != nil && p.IsActive != *f.IsActive {
		return false
	}
	return true
}

func productSortFn(i, j *product.Product) bool {
	return i.CreatedAt.After(j.CreatedAt)
}

func (s *InMemoryProductStore) List(ctx context.Context, filter *types.ProductFilter) ([]*product.Product, error) {
	products, err := s.InMemoryStore.List(ctx, filter, productFilterFn, productSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(products, func(p *product.Product, _ int) *product.Product {
		return copyProduct(p)
	}), nil
}

func (s *InMemoryProductStore) Count(ctx context.Context, filter *types.ProductFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, productFilterFn)
}
