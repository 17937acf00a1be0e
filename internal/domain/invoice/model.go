package invoice

import (
	"time"

	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice represents the invoice domain model. Monetary fields are derived
// from the line items via the calculator and must satisfy
// Total == round2(Subtotal + TaxAmount - DiscountAmount) after every write.
type Invoice struct {
	ID             string              `json:"id" dynamodbav:"id"`
	InvoiceNumber  string              `json:"invoice_number" dynamodbav:"invoice_number"`
	CustomerID     string              `json:"customer_id" dynamodbav:"customer_id"`
	IssueDate      time.Time           `json:"issue_date" dynamodbav:"issue_date"`
	DueDate        time.Time           `json:"due_date" dynamodbav:"due_date"`
	InvoiceStatus  types.InvoiceStatus `json:"invoice_status" dynamodbav:"invoice_status"`
	Subtotal       decimal.Decimal     `json:"subtotal" dynamodbav:"subtotal"`
	TaxAmount      decimal.Decimal     `json:"tax_amount" dynamodbav:"tax_amount"`
	DiscountAmount decimal.Decimal     `json:"discount_amount" dynamodbav:"discount_amount"`
	Total          decimal.Decimal     `json:"total" dynamodbav:"total"`
	Notes          string              `json:"notes,omitempty" dynamodbav:"notes"`
	Terms          string              `json:"terms,omitempty" dynamodbav:"terms"`
	PDFURL         *string             `json:"pdf_url,omitempty" dynamodbav:"pdf_url"`
	SentAt         *time.Time          `json:"sent_at,omitempty" dynamodbav:"sent_at"`
	ViewedAt       *time.Time          `json:"viewed_at,omitempty" dynamodbav:"viewed_at"`
	PaidAt         *time.Time          `json:"paid_at,omitempty" dynamodbav:"paid_at"`
	Version        int                 `json:"version" dynamodbav:"version"`

	// LineItems is populated by the service layer; items are stored as
	// their own rows keyed by InvoiceID.
	LineItems []*LineItem `json:"line_items,omitempty" dynamodbav:"-"`

	types.BaseModel
}

// Validate validates the invoice header and its monetary invariant
func (i *Invoice) Validate() error {
	if i.InvoiceNumber == "" {
		return ierr.NewError("invoice validation failed").
			WithHint("Invoice number is required").
			Mark(ierr.ErrValidation)
	}
	if i.CustomerID == "" {
		return ierr.NewError("invoice validation failed").
			WithHint("Customer id is required").
			Mark(ierr.ErrValidation)
	}
	if i.IssueDate.IsZero() {
		return ierr.NewError("invoice validation failed").
			WithHint("Issue date is required").
			Mark(ierr.ErrValidation)
	}
	if i.DueDate.IsZero() {
		return ierr.NewError("invoice validation failed").
			WithHint("Due date is required").
			Mark(ierr.ErrValidation)
	}
	if err := i.InvoiceStatus.Validate(); err != nil {
		return err
	}
	if i.Subtotal.IsNegative() {
		return ierr.NewError("invoice validation failed").
			WithHint("Subtotal must be non negative").
			Mark(ierr.ErrValidation)
	}
	if i.TaxAmount.IsNegative() || i.DiscountAmount.IsNegative() {
		return ierr.NewError("invoice validation failed").
			WithHint("Tax and discount amounts must be non negative").
			Mark(ierr.ErrValidation)
	}

	expected := Round2(i.Subtotal.Add(i.TaxAmount).Sub(i.DiscountAmount))
	if !i.Total.Equal(expected) {
		return ierr.NewError("invoice validation failed").
			WithHint("Total must equal subtotal + tax - discount").
			WithReportableDetails(map[string]any{
				"total":    i.Total,
				"expected": expected,
			}).
			Mark(ierr.ErrValidation)
	}

	for _, item := range i.LineItems {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// EffectiveStatus derives the read-time status: an unpaid, uncancelled
// invoice past its due date presents as overdue without being persisted
// as such.
func (i *Invoice) EffectiveStatus(now time.Time) types.InvoiceStatus {
	switch i.InvoiceStatus {
	case types.InvoiceStatusPaid, types.InvoiceStatusCancelled:
		return i.InvoiceStatus
	}
	if i.DueDate.Before(truncateToDay(now)) {
		return types.InvoiceStatusOverdue
	}
	return i.InvoiceStatus
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
