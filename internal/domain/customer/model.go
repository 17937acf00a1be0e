package customer

import (
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/types"
	"github.com/shopspring/decimal"
)

// Customer represents a billable customer account
type Customer struct {
	ID              string               `json:"id" dynamodbav:"id"`
	Name            string               `json:"name" dynamodbav:"name"`
	Email           string               `json:"email" dynamodbav:"email"`
	Phone           string               `json:"phone,omitempty" dynamodbav:"phone"`
	Address         string               `json:"address,omitempty" dynamodbav:"address"`
	BillingAddress  string               `json:"billing_address,omitempty" dynamodbav:"billing_address"`
	ShippingAddress string               `json:"shipping_address,omitempty" dynamodbav:"shipping_address"`
	TaxID           string               `json:"tax_id,omitempty" dynamodbav:"tax_id"`
	CustomerStatus  types.CustomerStatus `json:"customer_status" dynamodbav:"customer_status"`
	PaymentTerms    int                  `json:"payment_terms,omitempty" dynamodbav:"payment_terms"`
	CreditLimit     decimal.Decimal      `json:"credit_limit" dynamodbav:"credit_limit"`

	// Advisory running totals; reporting convenience, never authoritative sums
	TotalBilled decimal.Decimal `json:"total_billed" dynamodbav:"total_billed"`
	TotalPaid   decimal.Decimal `json:"total_paid" dynamodbav:"total_paid"`

	types.BaseModel
}

// Validate validates the customer
func (c *Customer) Validate() error {
	if c.Name == "" {
		return ierr.NewError("customer validation failed").
			WithHint("Name is required").
			Mark(ierr.ErrValidation)
	}
	if c.Email == "" {
		return ierr.NewError("customer validation failed").
			WithHint("Email is required").
			Mark(ierr.ErrValidation)
	}
	if err := c.CustomerStatus.Validate(); err != nil {
		return err
	}
	if c.CreditLimit.IsNegative() {
		return ierr.NewError("customer validation failed").
			WithHint("Credit limit must be non negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}
