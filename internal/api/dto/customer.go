package dto

import (
	"context"

	"github.com/netspire/billing/internal/domain/customer"
	"github.com/netspire/billing/internal/types"
	"github.com/netspire/billing/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateCustomerRequest struct {
	Name            string                `json:"name" validate:"required,max=255"`
	Email           string                `json:"email" validate:"required,email"`
	Phone           string                `json:"phone" validate:"omitempty,max=50"`
	Address         string                `json:"address" validate:"omitempty,max=500"`
	BillingAddress  string                `json:"billing_address" validate:"omitempty,max=500"`
	ShippingAddress string                `json:"shipping_address" validate:"omitempty,max=500"`
	TaxID           string                `json:"tax_id" validate:"omitempty,max=100"`
	CustomerStatus  *types.CustomerStatus `json:"customer_status"`
	PaymentTerms    *int                  `json:"payment_terms" validate:"omitempty,gte=0"`
	CreditLimit     *decimal.Decimal      `json:"credit_limit"`
}

type UpdateCustomerRequest struct {
	Name            *string               `json:"name" validate:"omitempty,max=255"`
	Email           *string               `json:"email" validate:"omitempty,email"`
	Phone           *string               `json:"phone" validate:"omitempty,max=50"`
	Address         *string               `json:"address" validate:"omitempty,max=500"`
	BillingAddress  *string               `json:"billing_address" validate:"omitempty,max=500"`
	ShippingAddress *string               `json:"shipping_address" validate:"omitempty,max=500"`
	TaxID           *string               `json:"tax_id" validate:"omitempty,max=100"`
	CustomerStatus  *types.CustomerStatus `json:"customer_status"`
	PaymentTerms    *int                  `json:"payment_terms" validate:"omitempty,gte=0"`
	CreditLimit     *decimal.Decimal      `json:"credit_limit"`
}

type CustomerResponse struct {
	*customer.Customer
}

// ListCustomersResponse represents the response for listing customers
type ListCustomersResponse = types.ListResponse[*CustomerResponse]

func (r *CreateCustomerRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.CustomerStatus != nil {
		return r.CustomerStatus.Validate()
	}
	return nil
}

func (r *CreateCustomerRequest) ToCustomer(ctx context.Context) *customer.Customer {
	status := types.CustomerStatusActive
	if r.CustomerStatus != nil {
		status = *r.CustomerStatus
	}

	c := &customer.Customer{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER),
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		Address:         r.Address,
		BillingAddress:  r.BillingAddress,
		ShippingAddress: r.ShippingAddress,
		TaxID:           r.TaxID,
		CustomerStatus:  status,
		CreditLimit:     decimal.Zero,
		TotalBilled:     decimal.Zero,
		TotalPaid:       decimal.Zero,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	if r.PaymentTerms != nil {
		c.PaymentTerms = *r.PaymentTerms
	}
	if r.CreditLimit != nil {
		c.CreditLimit = *r.CreditLimit
	}
	return c
}

func (r *UpdateCustomerRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.CustomerStatus != nil {
		return r.CustomerStatus.Validate()
	}
	return nil
}

// Apply merges the non-nil fields onto an existing customer
func (r *UpdateCustomerRequest) Apply(c *customer.Customer) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Email != nil {
		c.Email = *r.Email
	}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
	if r.Address != nil {
		c.Address = *r.Address
	}
	if r.BillingAddress != nil {
		c.BillingAddress = *r.BillingAddress
	}
	if r.ShippingAddress != nil {
		c.ShippingAddress = *r.ShippingAddress
	}
	if r.TaxID != nil {
		c.TaxID = *r.TaxID
	}
	if r.CustomerStatus != nil {
		c.CustomerStatus = *r.CustomerStatus
	}
	if r.PaymentTerms != nil {
		c.PaymentTerms = *r.PaymentTerms
	}
	if r.CreditLimit != nil {
		c.CreditLimit = *r.CreditLimit
	}
}
