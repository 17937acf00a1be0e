package dto

import (
	"context"

	"github.com/netspire/billing/internal/domain/product"
	"github.com/netspire/billing/internal/types"
	"github.com/netspire/billing/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name        string                `json:"name" validate:"required,max=255"`
	Description string                `json:"description" validate:"omitempty,max=1000"`
	Price       decimal.Decimal       `json:"price" validate:"required"`
	TaxRate     *decimal.Decimal      `json:"tax_rate"`
	Category    types.ProductCategory `json:"category" validate:"required"`
	IsActive    *bool                 `json:"is_active"`
	Unit        string                `json:"unit" validate:"omitempty,max=50"`
	SKU         string                `json:"sku" validate:"omitempty,max=100"`
}

type UpdateProductRequest struct {
	Name        *string                `json:"name" validate:"omitempty,max=255"`
	Description *string                `json:"description" validate:"omitempty,max=1000"`
	Price       *decimal.Decimal       `json:"price"`
	TaxRate     *decimal.Decimal       `json:"tax_rate"`
	Category    *types.ProductCategory `json:"category"`
	IsActive    *bool                  `json:"is_active"`
	Unit        *string                `json:"unit" validate:"omitempty,max=50"`
	SKU         *string                `json:"sku" validate:"omitempty,max=100"`
}

type ProductResponse struct {
	*product.Product
}

// ListProductsResponse represents the response for listing products
type ListProductsResponse = types.ListResponse[*ProductResponse]

func (r *CreateProductRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Category.Validate()
}

func (r *CreateProductRequest) ToProduct(ctx context.Context) *product.Product {
	taxRate := product.DefaultTaxRate
	if r.TaxRate != nil {
		taxRate = *r.TaxRate
	}
	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}

	return &product.Product{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PRODUCT),
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		TaxRate:     taxRate,
		Category:    r.Category,
		IsActive:    isActive,
		Unit:        r.Unit,
		SKU:         r.SKU,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}

func (r *UpdateProductRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Category != nil {
		return r.Category.Validate()
	}
	return nil
}

// Apply merges the non-nil fields onto an existing product
func (r *UpdateProductRequest) Apply(p *product.Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.TaxRate != nil {
		p.TaxRate = *r.TaxRate
	}
	if r.Category != nil {
		p.Category = *r.Category
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	if r.Unit != nil {
		p.Unit = *r.Unit
	}
	if r.SKU != nil {
		p.SKU = *r.SKU
	}
}
