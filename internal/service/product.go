package service

import (
	"context"

	"github.com/netspire/billing/internal/api/dto"
	"github.com/netspire/billing/internal/domain/product"
	"github.com/netspire/billing/internal/types"
	"github.com/samber/lo"
)

type ProductService interface {
	CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error)
	UpdateProduct(ctx context.Context, id string, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context, filter *types.ProductFilter) (*dto.ListProductsResponse, error)
}

type productService struct {
	ServiceParams
}

func NewProductService(params ServiceParams) ProductService {
	return &productService{
		ServiceParams: params,
	}
}

func (s *productService) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := req.ToProduct(ctx)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.ProductRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.Logger.Infow("created product", "product_id", p.ID, "name", p.Name)

	return &dto.ProductResponse{Product: p}, nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := s.ProductRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.ProductResponse{Product: p}, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id string, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.ProductRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.Touch(ctx)

	if err := s.ProductRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	return &dto.ProductResponse{Product: p}, nil
}

// DeleteProduct removes a catalog entry. Line items that referenced the
// product keep their snapshot and are unaffected.
func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	return s.ProductRepo.Delete(ctx, id)
}

func (s *productService) ListProducts(ctx context.Context, filter *types.ProductFilter) (*dto.ListProductsResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	products, err := s.ProductRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.ProductRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(products, func(p *product.Product, _ int) *dto.ProductResponse {
		return &dto.ProductResponse{Product: p}
	})

	response := types.NewListResponse(items, count, filter.GetLimit(), filter.GetOffset())
	return &response, nil
}
