package service

import (
	"context"
	"fmt"
	"time"

	"github.com/netspire/billing/internal/api/dto"
	"github.com/netspire/billing/internal/domain/invoice"
	pdfDomain "github.com/netspire/billing/internal/domain/pdf"
	"github.com/netspire/billing/internal/email"
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/s3"
	"github.com/netspire/billing/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type DispatchService interface {
	SendInvoice(ctx context.Context, id string, req dto.SendInvoiceRequest) (*dto.SendInvoiceResponse, error)
}

// dispatchService runs the send-invoice workflow: resolve the recipient,
// optionally render and attach a PDF, deliver the email, then commit the
// status transition. Ordering matters: the email goes out before the
// status write, so a failed status write after a successful send surfaces
// as a partial success the caller can repair without resending mail.
type dispatchService struct {
	ServiceParams
}

func NewDispatchService(params ServiceParams) DispatchService {
	return &dispatchService{
		ServiceParams: params,
	}
}

func (s *dispatchService) SendInvoice(ctx context.Context, id string, req dto.SendInvoiceRequest) (*dto.SendInvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if inv.InvoiceStatus == types.InvoiceStatusCancelled || inv.InvoiceStatus == types.InvoiceStatusPaid {
		return nil, ierr.NewError("invoice cannot be sent").
			WithHintf("Invoice in status %s cannot be sent", inv.InvoiceStatus).
			WithReportableDetails(map[string]any{
				"invoice_id": id,
				"status":     inv.InvoiceStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	items, err := s.LineItemRepo.ListByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.LineItems = items

	cust, err := s.CustomerRepo.Get(ctx, inv.CustomerID)
	if err != nil {
		return nil, err
	}

	recipient := req.To
	if recipient == "" {
		recipient = cust.Email
	}
	if recipient == "" {
		return nil, ierr.NewError("no recipient address").
			WithHint("The customer has no email address and no override was provided").
			WithReportableDetails(map[string]any{
				"invoice_id":  id,
				"customer_id": cust.ID,
			}).
			Mark(ierr.ErrValidation)
	}

	msg := s.buildMessage(inv, cust.Name, recipient, req)

	// PDF rendering is best effort. A render or upload failure degrades
	// to an email without attachment and never blocks the dispatch.
	resp := &dto.SendInvoiceResponse{
		InvoiceID: inv.ID,
	}
	generatePDF := s.PDFGenerator != nil
	if req.GeneratePDF != nil {
		generatePDF = *req.GeneratePDF && s.PDFGenerator != nil
	}
	if generatePDF {
		pdfBytes, err := s.PDFGenerator.RenderInvoicePdf(ctx, s.buildPdfData(ctx, inv, cust.Name, cust.Email, cust.Phone, cust.BillingAddress))
		if err != nil {
			s.Logger.Warnw("invoice pdf rendering failed, sending without attachment",
				"invoice_id", inv.ID,
				"error", err,
			)
		} else {
			resp.PDFGenerated = true
			msg.Attachments = append(msg.Attachments, email.Attachment{
				Filename:    fmt.Sprintf("%s.pdf", inv.InvoiceNumber),
				Content:     pdfBytes,
				ContentType: "application/pdf",
			})

			if url := s.storePdf(ctx, inv.ID, pdfBytes); url != "" {
				inv.PDFURL = lo.ToPtr(url)
				resp.PDFURL = inv.PDFURL
			}
		}
	}

	sent, err := s.EmailTransport.Send(ctx, msg)
	if err != nil {
		// No state was mutated; the whole operation is safe to retry.
		return nil, ierr.WithError(err).
			WithHint("The invoice email could not be delivered").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"to":         recipient,
				"step":       "send_email",
			}).
			Mark(ierr.ErrDispatch)
	}
	resp.MessageID = sent.MessageID

	if inv.InvoiceStatus == types.InvoiceStatusDraft {
		now := time.Now().UTC()
		inv.InvoiceStatus = types.InvoiceStatusSent
		inv.SentAt = &now
	}
	inv.Version++
	inv.Touch(ctx)

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		s.Logger.Errorw("invoice status update failed after email send",
			"invoice_id", inv.ID,
			"message_id", sent.MessageID,
			"error", err,
		)
		return nil, ierr.WithError(err).
			WithHint("The email was sent but the invoice status was not updated, retry the status update only").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"message_id": sent.MessageID,
				"step":       "update_status",
			}).
			Mark(ierr.ErrPartialSuccess)
	}

	resp.InvoiceStatus = inv.InvoiceStatus

	s.Logger.Infow("sent invoice",
		"invoice_id", inv.ID,
		"to", recipient,
		"message_id", sent.MessageID,
		"pdf_generated", resp.PDFGenerated,
	)

	return resp, nil
}

func (s *dispatchService) buildMessage(inv *invoice.Invoice, customerName, recipient string, req dto.SendInvoiceRequest) *email.Message {
	companyName := s.Config.Company.Name

	subject := req.Subject
	if subject == "" {
		subject = fmt.Sprintf("Invoice %s from %s", inv.InvoiceNumber, companyName)
	}

	body := req.Message
	if body == "" {
		body = fmt.Sprintf(
			"Dear %s,\n\nPlease find attached invoice %s for %s, due on %s.\n\nThank you,\n%s",
			customerName,
			inv.InvoiceNumber,
			inv.Total.StringFixed(2),
			inv.DueDate.Format("January 2, 2006"),
			companyName,
		)
	}

	return &email.Message{
		From:    s.EmailTransport.FromAddress(),
		To:      recipient,
		Subject: subject,
		Text:    body,
		ReplyTo: s.EmailTransport.ReplyTo(),
	}
}

func (s *dispatchService) buildPdfData(ctx context.Context, inv *invoice.Invoice, custName, custEmail, custPhone, custBillingAddress string) *pdfDomain.InvoiceData {
	totalPaid := s.totalPaid(ctx, inv.ID)

	data := &pdfDomain.InvoiceData{
		ID:             inv.ID,
		InvoiceNumber:  inv.InvoiceNumber,
		InvoiceStatus:  inv.InvoiceStatus.String(),
		IssueDate:      pdfDomain.Date{Time: inv.IssueDate},
		DueDate:        pdfDomain.Date{Time: inv.DueDate},
		Subtotal:       inv.Subtotal.InexactFloat64(),
		TaxAmount:      inv.TaxAmount.InexactFloat64(),
		DiscountAmount: inv.DiscountAmount.InexactFloat64(),
		Total:          inv.Total.InexactFloat64(),
		AmountPaid:     totalPaid.InexactFloat64(),
		BalanceDue:     invoice.Round2(inv.Total.Sub(totalPaid)).InexactFloat64(),
		Notes:          inv.Notes,
		Terms:          inv.Terms,
		Company: &pdfDomain.CompanyInfo{
			Name:    s.Config.Company.Name,
			Address: s.Config.Company.Address,
			Phone:   s.Config.Company.Phone,
			Email:   s.Config.Company.Email,
		},
		BillTo: &pdfDomain.BillToInfo{
			Name:           custName,
			Email:          custEmail,
			Phone:          custPhone,
			BillingAddress: custBillingAddress,
		},
	}

	for _, item := range inv.LineItems {
		data.LineItems = append(data.LineItems, pdfDomain.LineItemData{
			Description: item.Description,
			Quantity:    item.Quantity.InexactFloat64(),
			Rate:        item.Rate.InexactFloat64(),
			Amount:      item.Amount.InexactFloat64(),
		})
	}

	return data
}

// totalPaid sums the invoice's recorded payments for the printed balance.
// A lookup failure degrades to a zero paid amount rather than blocking the
// render.
func (s *dispatchService) totalPaid(ctx context.Context, invoiceID string) decimal.Decimal {
	payments, err := s.PaymentRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		s.Logger.Warnw("payment lookup failed for pdf balance", "invoice_id", invoiceID, "error", err)
		return decimal.Zero
	}

	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return invoice.Round2(total)
}

// storePdf uploads the rendered PDF and returns a presigned link, or an
// empty string when storage is disabled or the upload fails.
func (s *dispatchService) storePdf(ctx context.Context, invoiceID string, pdfBytes []byte) string {
	if s.S3 == nil {
		return ""
	}

	doc := s3.NewPdfDocument(invoiceID, pdfBytes, s3.DocumentTypeInvoice)
	if err := s.S3.UploadDocument(ctx, doc); err != nil {
		s.Logger.Warnw("invoice pdf upload failed", "invoice_id", invoiceID, "error", err)
		return ""
	}

	url, err := s.S3.GetPresignedUrl(ctx, invoiceID, s3.DocumentTypeInvoice)
	if err != nil {
		s.Logger.Warnw("invoice pdf presign failed", "invoice_id", invoiceID, "error", err)
		return ""
	}

	return url
}
