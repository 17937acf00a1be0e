package service

import (
	"errors"
	"testing"
	"time"

	"github.com/netspire/billing/internal/api/dto"
	"github.com/netspire/billing/internal/domain/customer"
	"github.com/netspire/billing/internal/domain/invoice"
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/testutil"
	"github.com/netspire/billing/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type DispatchServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  DispatchService
	testData struct {
		customer *customer.Customer
		invoice  *invoice.Invoice
	}
}

func TestDispatchService(t *testing.T) {
	suite.Run(t, new(DispatchServiceSuite))
}

func (s *DispatchServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewDispatchService(s.serviceParams())
	s.setupTestData()
}

func (s *DispatchServiceSuite) serviceParams() ServiceParams {
	return ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		PDFGenerator:   s.GetPDFGenerator(),
		EmailTransport: s.GetEmailTransport(),
		CustomerRepo:   s.GetStores().CustomerRepo,
		ProductRepo:    s.GetStores().ProductRepo,
		InvoiceRepo:    s.GetStores().InvoiceRepo,
		LineItemRepo:   s.GetStores().LineItemRepo,
		PaymentRepo:    s.GetStores().PaymentRepo,
	}
}

func (s *DispatchServiceSuite) setupTestData() {
	s.testData.customer = &customer.Customer{
		ID:             "cust_test_dispatch",
		Name:           "Acme Corp",
		Email:          "accounts@acme.test",
		Phone:          "555-0199",
		BillingAddress: "42 Commerce Way",
		CustomerStatus: types.CustomerStatusActive,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().CustomerRepo.Create(s.GetContext(), s.testData.customer))

	now := s.GetNow()
	s.testData.invoice = &invoice.Invoice{
		ID:            "inv_test_dispatch",
		InvoiceNumber: "INV-2025-0200",
		CustomerID:    s.testData.customer.ID,
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, 30),
		InvoiceStatus: types.InvoiceStatusDraft,
		Subtotal:      decimal.RequireFromString("150.00"),
		Total:         decimal.RequireFromString("150.00"),
		Version:       1,
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), s.testData.invoice))

	item := &invoice.LineItem{
		ID:          "inv_item_test_dispatch",
		InvoiceID:   s.testData.invoice.ID,
		Description: "Monthly retainer",
		Quantity:    decimal.NewFromInt(1),
		Rate:        decimal.RequireFromString("150.00"),
		Amount:      decimal.RequireFromString("150.00"),
		BaseModel:   types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().LineItemRepo.CreateItem(s.GetContext(), item))
}

func (s *DispatchServiceSuite) getInvoice() *invoice.Invoice {
	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	return inv
}

func (s *DispatchServiceSuite) TestSendInvoiceFromDraft() {
	resp, err := s.service.SendInvoice(s.GetContext(), s.testData.invoice.ID, dto.SendInvoiceRequest{})
	s.NoError(err)
	s.NotEmpty(resp.MessageID)
	s.Equal(types.InvoiceStatusSent, resp.InvoiceStatus)
	s.True(resp.PDFGenerated)

	inv := s.getInvoice()
	s.Equal(types.InvoiceStatusSent, inv.InvoiceStatus)
	s.NotNil(inv.SentAt)
	s.Equal(2, inv.Version)

	sent := s.GetEmailTransport().Sent()
	s.Len(sent, 1)
	s.Equal(s.testData.customer.Email, sent[0].To)
	s.Equal("Invoice INV-2025-0200 from Netspire Test Co", sent[0].Subject)
	s.Contains(sent[0].Text, "Dear Acme Corp")
	s.Len(sent[0].Attachments, 1)
	s.Equal("INV-2025-0200.pdf", sent[0].Attachments[0].Filename)
	s.Equal("application/pdf", sent[0].Attachments[0].ContentType)
}

func (s *DispatchServiceSuite) TestSendInvoicePdfFailureStillSends() {
	s.GetPDFGenerator().Err = errors.New("typst binary not found")

	resp, err := s.service.SendInvoice(s.GetContext(), s.testData.invoice.ID, dto.SendInvoiceRequest{})
	s.NoError(err)
	s.False(resp.PDFGenerated)
	s.Equal(types.InvoiceStatusSent, resp.InvoiceStatus)

	sent := s.GetEmailTransport().Sent()
	s.Len(sent, 1)
	s.Empty(sent[0].Attachments)
}

func (s *DispatchServiceSuite) TestSendInvoiceTransportFailure() {
	s.GetEmailTransport().Err = errors.New("provider unavailable")

	_, err := s.service.SendInvoice(s.GetContext(), s.testData.invoice.ID, dto.SendInvoiceRequest{})
	s.Error(err)
	s.True(ierr.IsDispatch(err))

	// Nothing was committed; the invoice is still an unsent draft.
	inv := s.getInvoice()
	s.Equal(types.InvoiceStatusDraft, inv.InvoiceStatus)
	s.Nil(inv.SentAt)
	s.Equal(1, inv.Version)
}

func (s *DispatchServiceSuite) TestSendInvoiceStatusUpdateFailureIsPartial() {
	params := s.serviceParams()
	failing := testutil.NewFailingInvoiceStore(params.InvoiceRepo)
	failing.UpdateErr = ierr.NewError("store unavailable").Mark(ierr.ErrDatabase)
	params.InvoiceRepo = failing

	svc := NewDispatchService(params)
	_, err := svc.SendInvoice(s.GetContext(), s.testData.invoice.ID, dto.SendInvoiceRequest{})
	s.Error(err)
	s.True(ierr.IsPartialSuccess(err))

	// The email went out exactly once before the status write failed.
	s.Len(s.GetEmailTransport().Sent(), 1)
	s.Equal(types.InvoiceStatusDraft, s.getInvoice().InvoiceStatus)
}

func (s *DispatchServiceSuite) TestSendInvoiceRecipientOverride() {
	resp, err := s.service.SendInvoice(s.GetContext(), s.testData.invoice.ID, dto.SendInvoiceRequest{
		To:      "other@acme.test",
		Subject: "Your March invoice",
		Message: "See attached.",
	})
	s.NoError(err)
	s.NotEmpty(resp.MessageID)

	sent := s.GetEmailTransport().Sent()
	s.Len(sent, 1)
	s.Equal("other@acme.test", sent[0].To)
	s.Equal("Your March invoice", sent[0].Subject)
	s.Equal("See attached.", sent[0].Text)
}

func (s *DispatchServiceSuite) TestSendInvoiceNoRecipient() {
	noEmail := &customer.Customer{
		ID:             "cust_no_email",
		Name:           "Cash Only LLC",
		CustomerStatus: types.CustomerStatusActive,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().CustomerRepo.Create(s.GetContext(), noEmail))

	inv := s.getInvoice()
	inv.CustomerID = noEmail.ID
	inv.Version++
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), inv))

	_, err := s.service.SendInvoice(s.GetContext(), inv.ID, dto.SendInvoiceRequest{})
	s.Error(err)
	s.True(ierr.IsValidation(err))
	s.Empty(s.GetEmailTransport().Sent())
}

func (s *DispatchServiceSuite) TestSendInvoiceCancelledRejected() {
	inv := s.getInvoice()
	inv.InvoiceStatus = types.InvoiceStatusCancelled
	inv.Version++
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), inv))

	_, err := s.service.SendInvoice(s.GetContext(), inv.ID, dto.SendInvoiceRequest{})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
	s.Empty(s.GetEmailTransport().Sent())
}

func (s *DispatchServiceSuite) TestSendInvoicePaidRejected() {
	now := time.Now().UTC()
	inv := s.getInvoice()
	inv.InvoiceStatus = types.InvoiceStatusPaid
	inv.PaidAt = &now
	inv.Version++
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), inv))

	_, err := s.service.SendInvoice(s.GetContext(), inv.ID, dto.SendInvoiceRequest{})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *DispatchServiceSuite) TestResendKeepsSentStatus() {
	_, err := s.service.SendInvoice(s.GetContext(), s.testData.invoice.ID, dto.SendInvoiceRequest{})
	s.NoError(err)

	resp, err := s.service.SendInvoice(s.GetContext(), s.testData.invoice.ID, dto.SendInvoiceRequest{})
	s.NoError(err)
	s.Equal(types.InvoiceStatusSent, resp.InvoiceStatus)

	inv := s.getInvoice()
	s.Equal(types.InvoiceStatusSent, inv.InvoiceStatus)
	s.Equal(3, inv.Version)
	s.Len(s.GetEmailTransport().Sent(), 2)
}

func (s *DispatchServiceSuite) TestSendInvoiceGeneratePDFDisabled() {
	resp, err := s.service.SendInvoice(s.GetContext(), s.testData.invoice.ID, dto.SendInvoiceRequest{
		GeneratePDF: lo.ToPtr(false),
	})
	s.NoError(err)
	s.False(resp.PDFGenerated)
	s.Equal(0, s.GetPDFGenerator().Rendered)

	sent := s.GetEmailTransport().Sent()
	s.Len(sent, 1)
	s.Empty(sent[0].Attachments)
}

func (s *DispatchServiceSuite) TestSendInvoiceWithoutGenerator() {
	params := s.serviceParams()
	params.PDFGenerator = nil

	svc := NewDispatchService(params)
	resp, err := svc.SendInvoice(s.GetContext(), s.testData.invoice.ID, dto.SendInvoiceRequest{})
	s.NoError(err)
	s.False(resp.PDFGenerated)

	sent := s.GetEmailTransport().Sent()
	s.Len(sent, 1)
	s.Empty(sent[0].Attachments)
}

func (s *DispatchServiceSuite) TestSendInvoicePdfDataSnapshot() {
	_, err := s.service.SendInvoice(s.GetContext(), s.testData.invoice.ID, dto.SendInvoiceRequest{})
	s.NoError(err)

	data := s.GetPDFGenerator().LastData
	s.NotNil(data)
	s.Equal("INV-2025-0200", data.InvoiceNumber)
	s.Equal("Acme Corp", data.BillTo.Name)
	s.Equal("Netspire Test Co", data.Company.Name)
	s.Len(data.LineItems, 1)
	s.Equal("Monthly retainer", data.LineItems[0].Description)
	s.Equal(0.0, data.AmountPaid)
	s.Equal(150.0, data.BalanceDue)
}

func (s *DispatchServiceSuite) TestSendInvoicePdfBalanceReflectsPayments() {
	p := newTestPayment(s.GetContext(), s.testData.invoice.ID, "50.00")
	s.NoError(s.GetStores().PaymentRepo.Create(s.GetContext(), p))

	_, err := s.service.SendInvoice(s.GetContext(), s.testData.invoice.ID, dto.SendInvoiceRequest{})
	s.NoError(err)

	data := s.GetPDFGenerator().LastData
	s.NotNil(data)
	s.Equal(50.0, data.AmountPaid)
	s.Equal(100.0, data.BalanceDue)
}
