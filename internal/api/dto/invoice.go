package dto

import (
	"context"
	"time"

	"github.com/netspire/billing/internal/domain/invoice"
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/types"
	"github.com/netspire/billing/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateInvoiceLineItemRequest struct {
	ProductID   *string          `json:"product_id"`
	Description string           `json:"description" validate:"required,max=500"`
	Quantity    decimal.Decimal  `json:"quantity" validate:"required"`
	Rate        decimal.Decimal  `json:"rate"`
	TaxRate     *decimal.Decimal `json:"tax_rate"`
}

type CreateInvoiceRequest struct {
	CustomerID     string                          `json:"customer_id" validate:"required"`
	InvoiceNumber  string                          `json:"invoice_number" validate:"omitempty,max=50"`
	IssueDate      time.Time                       `json:"issue_date" validate:"required"`
	DueDate        time.Time                       `json:"due_date" validate:"required,gtefield=IssueDate"`
	TaxAmount      *decimal.Decimal                `json:"tax_amount"`
	DiscountAmount *decimal.Decimal                `json:"discount_amount"`
	Notes          string                          `json:"notes" validate:"omitempty,max=2000"`
	Terms          string                          `json:"terms" validate:"omitempty,max=2000"`
	LineItems      []*CreateInvoiceLineItemRequest `json:"line_items" validate:"required,min=1,dive"`
}

type UpdateInvoiceRequest struct {
	DueDate        *time.Time       `json:"due_date"`
	TaxAmount      *decimal.Decimal `json:"tax_amount"`
	DiscountAmount *decimal.Decimal `json:"discount_amount"`
	Notes          *string          `json:"notes" validate:"omitempty,max=2000"`
	Terms          *string          `json:"terms" validate:"omitempty,max=2000"`

	// LineItems, when present, replaces the full set of items
	LineItems []*CreateInvoiceLineItemRequest `json:"line_items" validate:"omitempty,min=1,dive"`
}

// SendInvoiceRequest carries optional overrides for the outbound email
type SendInvoiceRequest struct {
	To          string `json:"to" validate:"omitempty,email"`
	Subject     string `json:"subject" validate:"omitempty,max=255"`
	Message     string `json:"message" validate:"omitempty,max=5000"`
	GeneratePDF *bool  `json:"generate_pdf"`
}

type InvoiceResponse struct {
	*invoice.Invoice

	// EffectiveStatus reflects overdue derivation at read time
	EffectiveStatus types.InvoiceStatus `json:"effective_status"`

	AmountPaid *decimal.Decimal `json:"amount_paid,omitempty"`
	BalanceDue *decimal.Decimal `json:"balance_due,omitempty"`
}

// SendInvoiceResponse reports the outcome of an invoice dispatch
type SendInvoiceResponse struct {
	InvoiceID     string              `json:"invoice_id"`
	MessageID     string              `json:"message_id"`
	InvoiceStatus types.InvoiceStatus `json:"invoice_status"`
	PDFGenerated  bool                `json:"pdf_generated"`
	PDFURL        *string             `json:"pdf_url,omitempty"`
}

// ListInvoicesResponse represents the response for listing invoices
type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		Invoice:         inv,
		EffectiveStatus: inv.EffectiveStatus(time.Now().UTC()),
	}
}

func (r *CreateInvoiceLineItemRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if !r.Quantity.IsPositive() {
		return ierr.NewError("invalid line item").
			WithHint("Quantity must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	if r.Rate.IsNegative() {
		return ierr.NewError("invalid line item").
			WithHint("Rate must be non negative").
			Mark(ierr.ErrValidation)
	}
	if r.TaxRate != nil && r.TaxRate.IsNegative() {
		return ierr.NewError("invalid line item").
			WithHint("Tax rate must be non negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.TaxAmount != nil && r.TaxAmount.IsNegative() {
		return ierr.NewError("invalid invoice").
			WithHint("Tax amount must be non negative").
			Mark(ierr.ErrValidation)
	}
	if r.DiscountAmount != nil && r.DiscountAmount.IsNegative() {
		return ierr.NewError("invalid invoice").
			WithHint("Discount amount must be non negative").
			Mark(ierr.ErrValidation)
	}
	for _, item := range r.LineItems {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ToLineItem builds a line item row for the given invoice id
func (r *CreateInvoiceLineItemRequest) ToLineItem(ctx context.Context, invoiceID string) *invoice.LineItem {
	taxRate := decimal.Zero
	if r.TaxRate != nil {
		taxRate = *r.TaxRate
	}

	return &invoice.LineItem{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
		InvoiceID:   invoiceID,
		ProductID:   r.ProductID,
		Description: r.Description,
		Quantity:    r.Quantity,
		Rate:        r.Rate,
		Amount:      invoice.LineAmount(r.Quantity, r.Rate),
		TaxRate:     taxRate,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}

// ToInvoice builds a draft invoice with its line items and computed totals
func (r *CreateInvoiceRequest) ToInvoice(ctx context.Context) *invoice.Invoice {
	invoiceNumber := r.InvoiceNumber
	if invoiceNumber == "" {
		invoiceNumber = types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_INVOICE)
	}

	taxAmount := decimal.Zero
	if r.TaxAmount != nil {
		taxAmount = *r.TaxAmount
	}
	discountAmount := decimal.Zero
	if r.DiscountAmount != nil {
		discountAmount = *r.DiscountAmount
	}

	inv := &invoice.Invoice{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber:  invoiceNumber,
		CustomerID:     r.CustomerID,
		IssueDate:      r.IssueDate,
		DueDate:        r.DueDate,
		InvoiceStatus:  types.InvoiceStatusDraft,
		TaxAmount:      taxAmount,
		DiscountAmount: discountAmount,
		Notes:          r.Notes,
		Terms:          r.Terms,
		Version:        1,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}

	for _, item := range r.LineItems {
		inv.LineItems = append(inv.LineItems, item.ToLineItem(ctx, inv.ID))
	}

	totals := invoice.Aggregate(inv.LineItems, taxAmount, discountAmount)
	inv.Subtotal = totals.Subtotal
	inv.Total = totals.Total

	return inv
}

func (r *UpdateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.TaxAmount != nil && r.TaxAmount.IsNegative() {
		return ierr.NewError("invalid invoice").
			WithHint("Tax amount must be non negative").
			Mark(ierr.ErrValidation)
	}
	if r.DiscountAmount != nil && r.DiscountAmount.IsNegative() {
		return ierr.NewError("invalid invoice").
			WithHint("Discount amount must be non negative").
			Mark(ierr.ErrValidation)
	}
	for _, item := range r.LineItems {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r *SendInvoiceRequest) Validate() error {
	return validator.ValidateRequest(r)
}
