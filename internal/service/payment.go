package service

import (
	"context"
	"time"

	"github.com/netspire/billing/internal/api/dto"
	"github.com/netspire/billing/internal/domain/invoice"
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	paymentDomain "github.com/netspire/billing/internal/domain/payment"
)

type PaymentService interface {
	RecordPayment(ctx context.Context, req dto.CreatePaymentRequest) (*dto.PaymentResponse, error)
	GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error)
	DeletePayment(ctx context.Context, id string) error
	ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error)
	ReconcileInvoice(ctx context.Context, invoiceID string) (*dto.InvoiceResponse, error)
	GetBillingSummary(ctx context.Context) (*dto.BillingSummaryResponse, error)
}

// paymentService records payments and drives the invoice status state
// machine from the cumulative paid amount. Reconciliation is idempotent:
// it reads the current payment set and conditionally writes status, so a
// failed run can be retried without double-applying anything.
type paymentService struct {
	ServiceParams
}

func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{
		ServiceParams: params,
	}
}

func (s *paymentService) RecordPayment(ctx context.Context, req dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv.InvoiceStatus == types.InvoiceStatusCancelled {
		return nil, ierr.NewError("invoice is cancelled").
			WithHint("Payments cannot be recorded against a cancelled invoice").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"status":     inv.InvoiceStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	p := req.ToPayment(ctx)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.PaymentRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.Logger.Infow("recorded payment",
		"payment_id", p.ID,
		"invoice_id", p.InvoiceID,
		"amount", p.Amount,
	)

	// The payment row is committed; a reconciliation failure here leaves
	// the invoice status stale until the caller retries reconciliation.
	if _, err := s.ReconcileInvoice(ctx, p.InvoiceID); err != nil {
		return nil, ierr.WithError(err).
			WithHint("The payment was recorded but the invoice status was not updated, retry reconciliation").
			WithReportableDetails(map[string]any{
				"payment_id": p.ID,
				"invoice_id": p.InvoiceID,
				"step":       "reconcile",
			}).
			Mark(ierr.ErrPartialSuccess)
	}

	return &dto.PaymentResponse{Payment: p}, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.PaymentResponse{Payment: p}, nil
}

// DeletePayment removes a recorded payment and re-runs reconciliation so
// the invoice status reflects the remaining payment set.
func (s *paymentService) DeletePayment(ctx context.Context, id string) error {
	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.PaymentRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.Logger.Infow("deleted payment",
		"payment_id", p.ID,
		"invoice_id", p.InvoiceID,
		"amount", p.Amount,
	)

	if _, err := s.ReconcileInvoice(ctx, p.InvoiceID); err != nil {
		return ierr.WithError(err).
			WithHint("The payment was deleted but the invoice status was not updated, retry reconciliation").
			WithReportableDetails(map[string]any{
				"payment_id": p.ID,
				"invoice_id": p.InvoiceID,
				"step":       "reconcile",
			}).
			Mark(ierr.ErrPartialSuccess)
	}

	return nil
}

func (s *paymentService) ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.PaymentRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(payments, func(p *paymentDomain.Payment, _ int) *dto.PaymentResponse {
		return &dto.PaymentResponse{Payment: p}
	})

	response := types.NewListResponse(items, count, filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

// GetBillingSummary aggregates invoice and payment totals across the
// account. Cancelled invoices do not count toward the invoiced total.
func (s *paymentService) GetBillingSummary(ctx context.Context) (*dto.BillingSummaryResponse, error) {
	invoices, err := s.InvoiceRepo.List(ctx, types.NewNoLimitInvoiceFilter())
	if err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.List(ctx, types.NewNoLimitPaymentFilter())
	if err != nil {
		return nil, err
	}

	counts := make(map[types.InvoiceStatus]int)
	totalInvoiced := decimal.Zero
	for _, inv := range invoices {
		counts[inv.InvoiceStatus]++
		if inv.InvoiceStatus != types.InvoiceStatusCancelled {
			totalInvoiced = totalInvoiced.Add(inv.Total)
		}
	}

	totalCollected := decimal.Zero
	for _, p := range payments {
		totalCollected = totalCollected.Add(p.Amount)
	}

	totalInvoiced = invoice.Round2(totalInvoiced)
	totalCollected = invoice.Round2(totalCollected)

	return &dto.BillingSummaryResponse{
		InvoiceCounts:    counts,
		TotalInvoiced:    totalInvoiced,
		TotalCollected:   totalCollected,
		TotalOutstanding: invoice.Round2(totalInvoiced.Sub(totalCollected)),
	}, nil
}

// ReconcileInvoice recomputes the cumulative paid amount against the
// invoice total and transitions the invoice to paid when covered.
// Every recorded payment counts toward the total regardless of its own
// status.
func (s *paymentService) ReconcileInvoice(ctx context.Context, invoiceID string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	totalPaid := decimal.Zero
	for _, p := range payments {
		totalPaid = totalPaid.Add(p.Amount)
	}
	totalPaid = invoice.Round2(totalPaid)

	resp := dto.NewInvoiceResponse(inv)
	resp.AmountPaid = lo.ToPtr(totalPaid)
	resp.BalanceDue = lo.ToPtr(invoice.Round2(inv.Total.Sub(totalPaid)))

	if totalPaid.LessThan(inv.Total) {
		return resp, nil
	}
	if !inv.InvoiceStatus.CanTransitionTo(types.InvoiceStatusPaid) {
		// Already paid or cancelled; nothing to apply.
		return resp, nil
	}

	now := time.Now().UTC()
	inv.InvoiceStatus = types.InvoiceStatusPaid
	inv.PaidAt = &now
	inv.Version++
	inv.Touch(ctx)

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("invoice fully paid",
		"invoice_id", inv.ID,
		"total", inv.Total,
		"total_paid", totalPaid,
	)

	resp.EffectiveStatus = types.InvoiceStatusPaid
	return resp, nil
}
