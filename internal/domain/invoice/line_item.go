package invoice

import (
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/types"
	"github.com/shopspring/decimal"
)

// LineItem represents a single billed line belonging to exactly one invoice.
// Amount is always recomputed as round2(Quantity * Rate) and never settable
// independently. The item snapshots the product's rate and description at
// creation time; ProductID is informational only afterwards.
type LineItem struct {
	ID          string          `json:"id" dynamodbav:"id"`
	InvoiceID   string          `json:"invoice_id" dynamodbav:"invoice_id"`
	ProductID   *string         `json:"product_id,omitempty" dynamodbav:"product_id"`
	Description string          `json:"description" dynamodbav:"description"`
	Quantity    decimal.Decimal `json:"quantity" dynamodbav:"quantity"`
	Rate        decimal.Decimal `json:"rate" dynamodbav:"rate"`
	Amount      decimal.Decimal `json:"amount" dynamodbav:"amount"`
	TaxRate     decimal.Decimal `json:"tax_rate" dynamodbav:"tax_rate"`

	types.BaseModel
}

// Validate validates the invoice line item
func (li *LineItem) Validate() error {
	if li.Description == "" {
		return ierr.NewError("invoice line item validation failed").
			WithHint("Description is required").
			Mark(ierr.ErrValidation)
	}
	if !li.Quantity.IsPositive() {
		return ierr.NewError("invoice line item validation failed").
			WithHint("Quantity must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	if li.Rate.IsNegative() {
		return ierr.NewError("invoice line item validation failed").
			WithHint("Rate must be non negative").
			Mark(ierr.ErrValidation)
	}
	if li.TaxRate.IsNegative() {
		return ierr.NewError("invoice line item validation failed").
			WithHint("Tax rate must be non negative").
			Mark(ierr.ErrValidation)
	}
	if !li.Amount.Equal(LineAmount(li.Quantity, li.Rate)) {
		return ierr.NewError("invoice line item validation failed").
			WithHint("Amount must equal quantity * rate").
			Mark(ierr.ErrValidation)
	}
	return nil
}
