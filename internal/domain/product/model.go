package product

import (
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/types"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the catalog default tax rate fraction for new products
var DefaultTaxRate = decimal.NewFromFloat(0.08)

// Product represents a catalog entry. Price and description are copied into
// invoice line items at creation time; later catalog edits do not touch
// existing invoices (snapshot semantics).
type Product struct {
	ID          string                `json:"id" dynamodbav:"id"`
	Name        string                `json:"name" dynamodbav:"name"`
	Description string                `json:"description,omitempty" dynamodbav:"description"`
	Price       decimal.Decimal       `json:"price" dynamodbav:"price"`
	TaxRate     decimal.Decimal       `json:"tax_rate" dynamodbav:"tax_rate"`
	Category    types.ProductCategory `json:"category" dynamodbav:"category"`
	IsActive    bool                  `json:"is_active" dynamodbav:"is_active"`
	Unit        string                `json:"unit,omitempty" dynamodbav:"unit"`
	SKU         string                `json:"sku,omitempty" dynamodbav:"sku"`

	types.BaseModel
}

// Validate validates the product
func (p *Product) Validate() error {
	if p.Name == "" {
		return ierr.NewError("product validation failed").
			WithHint("Name is required").
			Mark(ierr.ErrValidation)
	}
	if p.Price.IsNegative() {
		return ierr.NewError("product validation failed").
			WithHint("Price must be non negative").
			Mark(ierr.ErrValidation)
	}
	if p.TaxRate.IsNegative() {
		return ierr.NewError("product validation failed").
			WithHint("Tax rate must be non negative").
			Mark(ierr.ErrValidation)
	}
	if err := p.Category.Validate(); err != nil {
		return err
	}
	return nil
}
