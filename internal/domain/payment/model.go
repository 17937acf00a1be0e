package payment

import (
	"time"

	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/types"
	"github.com/shopspring/decimal"
)

// Payment represents a payment recorded against an invoice. A payment is
// immutable once recorded; corrections are made by recording an offsetting
// refund payment.
type Payment struct {
	ID            string              `json:"id" dynamodbav:"id"`
	InvoiceID     string              `json:"invoice_id" dynamodbav:"invoice_id"`
	Amount        decimal.Decimal     `json:"amount" dynamodbav:"amount"`
	PaymentDate   time.Time           `json:"payment_date" dynamodbav:"payment_date"`
	Method        types.PaymentMethod `json:"method" dynamodbav:"method"`
	PaymentStatus types.PaymentStatus `json:"payment_status" dynamodbav:"payment_status"`
	Reference     string              `json:"reference,omitempty" dynamodbav:"reference"`
	Notes         string              `json:"notes,omitempty" dynamodbav:"notes"`
	ProcessingFee decimal.Decimal     `json:"processing_fee" dynamodbav:"processing_fee"`

	types.BaseModel
}

// Validate validates the payment
func (p *Payment) Validate() error {
	if p.InvoiceID == "" {
		return ierr.NewError("payment validation failed").
			WithHint("Invoice id is required").
			Mark(ierr.ErrValidation)
	}
	if !p.Amount.IsPositive() {
		return ierr.NewError("payment validation failed").
			WithHint("Amount must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	if p.PaymentDate.IsZero() {
		return ierr.NewError("payment validation failed").
			WithHint("Payment date is required").
			Mark(ierr.ErrValidation)
	}
	if err := p.Method.Validate(); err != nil {
		return err
	}
	if err := p.PaymentStatus.Validate(); err != nil {
		return err
	}
	if p.ProcessingFee.IsNegative() {
		return ierr.NewError("payment validation failed").
			WithHint("Processing fee must be non negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}
