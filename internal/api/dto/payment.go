package dto

import (
	"context"
	"time"

	ierr "github.com/netspire/billing/internal/errors"

	"github.com/netspire/billing/internal/domain/payment"
	"github.com/netspire/billing/internal/types"
	"github.com/netspire/billing/internal/validator"
	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	InvoiceID     string               `json:"invoice_id" validate:"required"`
	Amount        decimal.Decimal      `json:"amount" validate:"required"`
	PaymentDate   time.Time            `json:"payment_date" validate:"required"`
	Method        types.PaymentMethod  `json:"method" validate:"required"`
	PaymentStatus *types.PaymentStatus `json:"payment_status"`
	Reference     string               `json:"reference" validate:"omitempty,max=255"`
	Notes         string               `json:"notes" validate:"omitempty,max=2000"`
	ProcessingFee *decimal.Decimal     `json:"processing_fee"`
}

type PaymentResponse struct {
	*payment.Payment
}

// ListPaymentsResponse represents the response for listing payments
type ListPaymentsResponse = types.ListResponse[*PaymentResponse]

// BillingSummaryResponse is the aggregate reporting view across all
// invoices and payments. Cancelled invoices are excluded from the
// invoiced total but still counted by status.
type BillingSummaryResponse struct {
	InvoiceCounts    map[types.InvoiceStatus]int `json:"invoice_counts"`
	TotalInvoiced    decimal.Decimal             `json:"total_invoiced"`
	TotalCollected   decimal.Decimal             `json:"total_collected"`
	TotalOutstanding decimal.Decimal             `json:"total_outstanding"`
}

func (r *CreatePaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return ierr.NewError("invalid payment").
			WithHint("Amount must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	if err := r.Method.Validate(); err != nil {
		return err
	}
	if r.PaymentStatus != nil {
		if err := r.PaymentStatus.Validate(); err != nil {
			return err
		}
	}
	if r.ProcessingFee != nil && r.ProcessingFee.IsNegative() {
		return ierr.NewError("invalid payment").
			WithHint("Processing fee must be non negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreatePaymentRequest) ToPayment(ctx context.Context) *payment.Payment {
	status := types.PaymentStatusCompleted
	if r.PaymentStatus != nil {
		status = *r.PaymentStatus
	}
	fee := decimal.Zero
	if r.ProcessingFee != nil {
		fee = *r.ProcessingFee
	}

	return &payment.Payment{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		InvoiceID:     r.InvoiceID,
		Amount:        r.Amount,
		PaymentDate:   r.PaymentDate,
		Method:        r.Method,
		PaymentStatus: status,
		Reference:     r.Reference,
		Notes:         r.Notes,
		ProcessingFee: fee,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}
