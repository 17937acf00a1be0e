package service

import (
	"testing"
	"time"

	"github.com/netspire/billing/internal/api/dto"
	"github.com/netspire/billing/internal/domain/customer"
	paymentDomain "github.com/netspire/billing/internal/domain/payment"
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/testutil"
	"github.com/netspire/billing/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  InvoiceService
	testData struct {
		customer *customer.Customer
	}
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewInvoiceService(s.serviceParams())
	s.setupTestData()
}

func (s *InvoiceServiceSuite) serviceParams() ServiceParams {
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

func (s *InvoiceServiceSuite) setupTestData() {
	s.testData.customer = &customer.Customer{
		ID:             "cust_test_invoice",
		Name:           "Acme Corp",
		Email:          "billing@acme.test",
		CustomerStatus: types.CustomerStatusActive,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().CustomerRepo.Create(s.GetContext(), s.testData.customer))
}

func (s *InvoiceServiceSuite) newCreateRequest() dto.CreateInvoiceRequest {
	now := s.GetNow()
	return dto.CreateInvoiceRequest{
		CustomerID:     s.testData.customer.ID,
		InvoiceNumber:  "INV-2025-0001",
		IssueDate:      now,
		DueDate:        now.AddDate(0, 0, 14),
		TaxAmount:      lo.ToPtr(decimal.RequireFromString("29.70")),
		DiscountAmount: lo.ToPtr(decimal.RequireFromString("5.94")),
		LineItems: []*dto.CreateInvoiceLineItemRequest{
			{
				Description: "Consulting services",
				Quantity:    decimal.NewFromInt(1),
				Rate:        decimal.RequireFromString("250.00"),
			},
			{
				Description: "Support hours",
				Quantity:    decimal.NewFromInt(2),
				Rate:        decimal.RequireFromString("23.50"),
			},
		},
	}
}

func (s *InvoiceServiceSuite) TestCreateInvoiceComputesTotals() {
	resp, err := s.service.CreateInvoice(s.GetContext(), s.newCreateRequest())
	s.NoError(err)
	s.NotNil(resp)

	s.Equal(types.InvoiceStatusDraft, resp.InvoiceStatus)
	s.Equal(1, resp.Version)
	s.True(resp.Subtotal.Equal(decimal.RequireFromString("297.00")), "subtotal = %s", resp.Subtotal)
	s.True(resp.Total.Equal(decimal.RequireFromString("320.76")), "total = %s", resp.Total)

	items, err := s.GetStores().LineItemRepo.ListByInvoice(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Len(items, 2)
	for _, item := range items {
		s.Equal(resp.ID, item.InvoiceID)
		s.True(item.Amount.Equal(item.Quantity.Mul(item.Rate).Round(2)))
	}
}

func (s *InvoiceServiceSuite) TestCreateInvoiceDuplicateNumber() {
	_, err := s.service.CreateInvoice(s.GetContext(), s.newCreateRequest())
	s.NoError(err)

	_, err = s.service.CreateInvoice(s.GetContext(), s.newCreateRequest())
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceGeneratesNumber() {
	req := s.newCreateRequest()
	req.InvoiceNumber = ""

	resp, err := s.service.CreateInvoice(s.GetContext(), req)
	s.NoError(err)
	s.NotEmpty(resp.InvoiceNumber)
	s.Contains(resp.InvoiceNumber, "INV-")
}

func (s *InvoiceServiceSuite) TestCreateInvoiceUnknownCustomer() {
	req := s.newCreateRequest()
	req.CustomerID = "cust_missing"

	_, err := s.service.CreateInvoice(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceDueBeforeIssueRejected() {
	req := s.newCreateRequest()
	req.DueDate = req.IssueDate.AddDate(0, 0, -1)

	_, err := s.service.CreateInvoice(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceWithoutLineItemsRejected() {
	req := s.newCreateRequest()
	req.LineItems = nil

	_, err := s.service.CreateInvoice(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceLineItemWriteFailure() {
	params := s.serviceParams()
	failing := testutil.NewFailingLineItemStore(params.LineItemRepo)
	failing.CreateErr = ierr.NewError("write throttled").Mark(ierr.ErrDatabase)
	params.LineItemRepo = failing

	svc := NewInvoiceService(params)
	_, err := svc.CreateInvoice(s.GetContext(), s.newCreateRequest())
	s.Error(err)
	s.True(ierr.IsDependencyWrite(err))

	// The header committed before the item write failed.
	existing, err := s.GetStores().InvoiceRepo.GetByInvoiceNumber(s.GetContext(), "INV-2025-0001")
	s.NoError(err)
	s.NotNil(existing)
}

func (s *InvoiceServiceSuite) TestGetInvoiceWithBalance() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.newCreateRequest())
	s.NoError(err)

	payment := s.newPayment(created.ID, "200.00")
	s.NoError(s.GetStores().PaymentRepo.Create(s.GetContext(), payment))

	resp, err := s.service.GetInvoice(s.GetContext(), created.ID)
	s.NoError(err)
	s.Len(resp.LineItems, 2)
	s.True(resp.AmountPaid.Equal(decimal.RequireFromString("200.00")))
	s.True(resp.BalanceDue.Equal(decimal.RequireFromString("120.76")))
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceReplacesLineItems() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.newCreateRequest())
	s.NoError(err)

	req := dto.UpdateInvoiceRequest{
		TaxAmount:      lo.ToPtr(decimal.Zero),
		DiscountAmount: lo.ToPtr(decimal.Zero),
		LineItems: []*dto.CreateInvoiceLineItemRequest{
			{
				Description: "Flat project fee",
				Quantity:    decimal.NewFromInt(1),
				Rate:        decimal.RequireFromString("500.00"),
			},
		},
	}

	resp, err := s.service.UpdateInvoice(s.GetContext(), created.ID, req)
	s.NoError(err)
	s.Equal(2, resp.Version)
	s.True(resp.Subtotal.Equal(decimal.RequireFromString("500.00")))
	s.True(resp.Total.Equal(decimal.RequireFromString("500.00")))

	items, err := s.GetStores().LineItemRepo.ListByInvoice(s.GetContext(), created.ID)
	s.NoError(err)
	s.Len(items, 1)
	s.Equal("Flat project fee", items[0].Description)
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceKeepsItemsWhenOmitted() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.newCreateRequest())
	s.NoError(err)

	resp, err := s.service.UpdateInvoice(s.GetContext(), created.ID, dto.UpdateInvoiceRequest{
		Notes: lo.ToPtr("net 30, please pay promptly"),
	})
	s.NoError(err)
	s.Equal("net 30, please pay promptly", resp.Notes)
	s.True(resp.Total.Equal(created.Total))

	items, err := s.GetStores().LineItemRepo.ListByInvoice(s.GetContext(), created.ID)
	s.NoError(err)
	s.Len(items, 2)
}

func (s *InvoiceServiceSuite) TestUpdateCancelledInvoiceRejected() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.newCreateRequest())
	s.NoError(err)

	_, err = s.service.CancelInvoice(s.GetContext(), created.ID)
	s.NoError(err)

	_, err = s.service.UpdateInvoice(s.GetContext(), created.ID, dto.UpdateInvoiceRequest{
		Notes: lo.ToPtr("too late"),
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceItemDeleteFailure() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.newCreateRequest())
	s.NoError(err)

	params := s.serviceParams()
	failing := testutil.NewFailingLineItemStore(params.LineItemRepo)
	failing.DeleteErr = ierr.NewError("delete throttled").Mark(ierr.ErrDatabase)
	params.LineItemRepo = failing

	svc := NewInvoiceService(params)
	_, err = svc.UpdateInvoice(s.GetContext(), created.ID, dto.UpdateInvoiceRequest{
		LineItems: []*dto.CreateInvoiceLineItemRequest{
			{
				Description: "Replacement item",
				Quantity:    decimal.NewFromInt(1),
				Rate:        decimal.RequireFromString("10.00"),
			},
		},
	})
	s.Error(err)
	s.True(ierr.IsDependencyWrite(err))
}

func (s *InvoiceServiceSuite) TestConcurrentUpdateVersionConflict() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.newCreateRequest())
	s.NoError(err)

	first, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), created.ID)
	s.NoError(err)
	second, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), created.ID)
	s.NoError(err)

	first.Notes = "first writer"
	first.Version++
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), first))

	second.Notes = "second writer"
	second.Version++
	err = s.GetStores().InvoiceRepo.Update(s.GetContext(), second)
	s.Error(err)
	s.True(ierr.IsVersionConflict(err))
}

func (s *InvoiceServiceSuite) TestDeleteInvoiceWithPaymentsRejected() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.newCreateRequest())
	s.NoError(err)

	s.NoError(s.GetStores().PaymentRepo.Create(s.GetContext(), s.newPayment(created.ID, "50.00")))

	err = s.service.DeleteInvoice(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestDeleteInvoiceRemovesLineItems() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.newCreateRequest())
	s.NoError(err)

	s.NoError(s.service.DeleteInvoice(s.GetContext(), created.ID))

	_, err = s.GetStores().InvoiceRepo.Get(s.GetContext(), created.ID)
	s.True(ierr.IsNotFound(err))

	items, err := s.GetStores().LineItemRepo.ListByInvoice(s.GetContext(), created.ID)
	s.NoError(err)
	s.Empty(items)
}

func (s *InvoiceServiceSuite) TestMarkInvoiceViewed() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.newCreateRequest())
	s.NoError(err)

	// Draft invoices cannot be marked viewed.
	_, err = s.service.MarkInvoiceViewed(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	s.transitionToSent(created.ID)

	resp, err := s.service.MarkInvoiceViewed(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusViewed, resp.InvoiceStatus)
	s.NotNil(resp.ViewedAt)
}

func (s *InvoiceServiceSuite) TestCancelInvoiceIsTerminal() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.newCreateRequest())
	s.NoError(err)

	resp, err := s.service.CancelInvoice(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusCancelled, resp.InvoiceStatus)

	_, err = s.service.CancelInvoice(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestListInvoicesByStatus() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.newCreateRequest())
	s.NoError(err)

	req := s.newCreateRequest()
	req.InvoiceNumber = "INV-2025-0002"
	cancelled, err := s.service.CreateInvoice(s.GetContext(), req)
	s.NoError(err)
	_, err = s.service.CancelInvoice(s.GetContext(), cancelled.ID)
	s.NoError(err)

	filter := &types.InvoiceFilter{
		QueryFilter:   types.NewDefaultQueryFilter(),
		InvoiceStatus: []types.InvoiceStatus{types.InvoiceStatusDraft},
	}
	resp, err := s.service.ListInvoices(s.GetContext(), filter)
	s.NoError(err)
	s.Equal(1, resp.Pagination.Total)
	s.Len(resp.Items, 1)
	s.Equal(created.ID, resp.Items[0].ID)
}

func (s *InvoiceServiceSuite) newPayment(invoiceID, amount string) *paymentDomain.Payment {
	return newTestPayment(s.GetContext(), invoiceID, amount)
}

func (s *InvoiceServiceSuite) transitionToSent(invoiceID string) {
	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), invoiceID)
	s.NoError(err)
	now := time.Now().UTC()
	inv.InvoiceStatus = types.InvoiceStatusSent
	inv.SentAt = &now
	inv.Version++
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), inv))
}
