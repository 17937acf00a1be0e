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
)

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	UpdateInvoice(ctx context.Context, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, id string) error
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	MarkInvoiceViewed(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	CancelInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
}

// invoiceService owns an invoice together with its line items as one
// logical unit. Item rows are written after the header row; a child write
// failure after the header committed surfaces as a dependency write error
// rather than being swallowed.
type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.CustomerRepo.Get(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	inv := req.ToInvoice(ctx)
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.InvoiceRepo.GetByInvoiceNumber(ctx, inv.InvoiceNumber); err == nil {
		return nil, ierr.NewError("invoice number already in use").
			WithHintf("Invoice number %s is already assigned", inv.InvoiceNumber).
			WithReportableDetails(map[string]any{
				"invoice_number": inv.InvoiceNumber,
				"invoice_id":     existing.ID,
			}).
			Mark(ierr.ErrAlreadyExists)
	} else if !ierr.IsNotFound(err) {
		return nil, err
	}

	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	// Header is committed; item failures from here on leave a partially
	// written invoice and must surface for repair.
	for _, item := range inv.LineItems {
		if err := s.LineItemRepo.CreateItem(ctx, item); err != nil {
			s.Logger.Errorw("line item write failed after invoice commit",
				"invoice_id", inv.ID,
				"line_item_id", item.ID,
				"error", err,
			)
			return nil, ierr.WithError(err).
				WithHint("The invoice was created but some line items failed to persist").
				WithReportableDetails(map[string]any{
					"invoice_id":   inv.ID,
					"line_item_id": item.ID,
					"step":         "create_line_item",
				}).
				Mark(ierr.ErrDependencyWrite)
		}
	}

	s.Logger.Infow("created invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"total", inv.Total,
	)

	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.LineItemRepo.ListByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.LineItems = items

	resp := dto.NewInvoiceResponse(inv)

	payments, err := s.PaymentRepo.ListByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	amountPaid := decimal.Zero
	for _, p := range payments {
		amountPaid = amountPaid.Add(p.Amount)
	}
	resp.AmountPaid = lo.ToPtr(amountPaid)
	resp.BalanceDue = lo.ToPtr(invoice.Round2(inv.Total.Sub(amountPaid)))

	return resp, nil
}

// UpdateInvoice re-validates the header and, when items are supplied,
// performs a replace-all of the line item set.
func (s *invoiceService) UpdateInvoice(ctx context.Context, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if inv.InvoiceStatus.IsTerminal() {
		return nil, ierr.NewError("invoice is cancelled").
			WithHint("Cancelled invoices cannot be modified").
			WithReportableDetails(map[string]any{"invoice_id": id}).
			Mark(ierr.ErrInvalidOperation)
	}

	existingItems, err := s.LineItemRepo.ListByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DueDate != nil {
		if req.DueDate.Before(inv.IssueDate) {
			return nil, ierr.NewError("invalid due date").
				WithHint("Due date must be on or after the issue date").
				Mark(ierr.ErrValidation)
		}
		inv.DueDate = *req.DueDate
	}
	if req.TaxAmount != nil {
		inv.TaxAmount = *req.TaxAmount
	}
	if req.DiscountAmount != nil {
		inv.DiscountAmount = *req.DiscountAmount
	}
	if req.Notes != nil {
		inv.Notes = *req.Notes
	}
	if req.Terms != nil {
		inv.Terms = *req.Terms
	}

	newItems := existingItems
	if req.LineItems != nil {
		newItems = make([]*invoice.LineItem, 0, len(req.LineItems))
		for _, item := range req.LineItems {
			newItems = append(newItems, item.ToLineItem(ctx, inv.ID))
		}
	}

	totals := invoice.Aggregate(newItems, inv.TaxAmount, inv.DiscountAmount)
	inv.Subtotal = totals.Subtotal
	inv.Total = totals.Total
	inv.LineItems = newItems

	if err := inv.Validate(); err != nil {
		return nil, err
	}

	inv.Version++
	inv.Touch(ctx)

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	if req.LineItems != nil {
		if err := s.replaceLineItems(ctx, inv.ID, existingItems, newItems); err != nil {
			return nil, err
		}
	}

	return dto.NewInvoiceResponse(inv), nil
}

// replaceLineItems deletes the previous item rows and writes the new set.
// The header is already committed when this runs, so any failure is a
// dependency write error the caller must surface.
func (s *invoiceService) replaceLineItems(ctx context.Context, invoiceID string, oldItems, newItems []*invoice.LineItem) error {
	for _, item := range oldItems {
		if err := s.LineItemRepo.DeleteItem(ctx, item.ID); err != nil {
			s.Logger.Errorw("line item delete failed during replace",
				"invoice_id", invoiceID,
				"line_item_id", item.ID,
				"error", err,
			)
			return ierr.WithError(err).
				WithHint("The invoice was updated but stale line items remain").
				WithReportableDetails(map[string]any{
					"invoice_id":   invoiceID,
					"line_item_id": item.ID,
					"step":         "delete_line_item",
				}).
				Mark(ierr.ErrDependencyWrite)
		}
	}

	for _, item := range newItems {
		if err := s.LineItemRepo.CreateItem(ctx, item); err != nil {
			s.Logger.Errorw("line item write failed during replace",
				"invoice_id", invoiceID,
				"line_item_id", item.ID,
				"error", err,
			)
			return ierr.WithError(err).
				WithHint("The invoice was updated but some line items failed to persist").
				WithReportableDetails(map[string]any{
					"invoice_id":   invoiceID,
					"line_item_id": item.ID,
					"step":         "create_line_item",
				}).
				Mark(ierr.ErrDependencyWrite)
		}
	}

	return nil
}

// DeleteInvoice removes the line items first, then the header. Deletion is
// rejected while payments reference the invoice.
func (s *invoiceService) DeleteInvoice(ctx context.Context, id string) error {
	if _, err := s.InvoiceRepo.Get(ctx, id); err != nil {
		return err
	}

	payments, err := s.PaymentRepo.ListByInvoice(ctx, id)
	if err != nil {
		return err
	}
	if len(payments) > 0 {
		return ierr.NewError("invoice has payments").
			WithHint("Invoices with recorded payments cannot be deleted").
			WithReportableDetails(map[string]any{
				"invoice_id":    id,
				"payment_count": len(payments),
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	items, err := s.LineItemRepo.ListByInvoice(ctx, id)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := s.LineItemRepo.DeleteItem(ctx, item.ID); err != nil {
			s.Logger.Errorw("line item delete failed during invoice delete",
				"invoice_id", id,
				"line_item_id", item.ID,
				"error", err,
			)
			return ierr.WithError(err).
				WithHint("Some line items could not be deleted, manual cleanup may be required").
				WithReportableDetails(map[string]any{
					"invoice_id":   id,
					"line_item_id": item.ID,
					"step":         "delete_line_item",
				}).
				Mark(ierr.ErrDependencyWrite)
		}
	}

	return s.InvoiceRepo.Delete(ctx, id)
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
		return dto.NewInvoiceResponse(inv)
	})

	response := types.NewListResponse(items, count, filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

// MarkInvoiceViewed records the external "customer viewed" signal
func (s *invoiceService) MarkInvoiceViewed(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !inv.InvoiceStatus.CanTransitionTo(types.InvoiceStatusViewed) {
		return nil, ierr.NewError("invalid status transition").
			WithHintf("Invoice in status %s cannot be marked viewed", inv.InvoiceStatus).
			WithReportableDetails(map[string]any{
				"invoice_id": id,
				"status":     inv.InvoiceStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	inv.InvoiceStatus = types.InvoiceStatusViewed
	inv.ViewedAt = &now
	inv.Version++
	inv.Touch(ctx)

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	return dto.NewInvoiceResponse(inv), nil
}

// CancelInvoice moves an invoice to its terminal state
func (s *invoiceService) CancelInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !inv.InvoiceStatus.CanTransitionTo(types.InvoiceStatusCancelled) {
		return nil, ierr.NewError("invalid status transition").
			WithHintf("Invoice in status %s cannot be cancelled", inv.InvoiceStatus).
			WithReportableDetails(map[string]any{
				"invoice_id": id,
				"status":     inv.InvoiceStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	inv.InvoiceStatus = types.InvoiceStatusCancelled
	inv.Version++
	inv.Touch(ctx)

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("cancelled invoice", "invoice_id", id)

	return dto.NewInvoiceResponse(inv), nil
}
