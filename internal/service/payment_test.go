package service

import (
	"testing"
	"time"

	"github.com/netspire/billing/internal/api/dto"
	"github.com/netspire/billing/internal/domain/customer"
	"github.com/netspire/billing/internal/domain/invoice"
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/testutil"
	"github.com/netspire/billing/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  PaymentService
	testData struct {
		customer *customer.Customer
		invoice  *invoice.Invoice
	}
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPaymentService(s.serviceParams())
	s.setupTestData()
}

func (s *PaymentServiceSuite) serviceParams() ServiceParams {
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

func (s *PaymentServiceSuite) setupTestData() {
	s.testData.customer = &customer.Customer{
		ID:             "cust_test_payment",
		Name:           "Acme Corp",
		Email:          "billing@acme.test",
		CustomerStatus: types.CustomerStatusActive,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().CustomerRepo.Create(s.GetContext(), s.testData.customer))

	now := s.GetNow()
	s.testData.invoice = &invoice.Invoice{
		ID:             "inv_test_payment",
		InvoiceNumber:  "INV-2025-0100",
		CustomerID:     s.testData.customer.ID,
		IssueDate:      now,
		DueDate:        now.AddDate(0, 0, 14),
		InvoiceStatus:  types.InvoiceStatusSent,
		Subtotal:       decimal.RequireFromString("297.00"),
		TaxAmount:      decimal.RequireFromString("29.70"),
		DiscountAmount: decimal.RequireFromString("5.94"),
		Total:          decimal.RequireFromString("320.76"),
		Version:        1,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), s.testData.invoice))
}

func (s *PaymentServiceSuite) newRecordRequest(amount string) dto.CreatePaymentRequest {
	return dto.CreatePaymentRequest{
		InvoiceID:   s.testData.invoice.ID,
		Amount:      decimal.RequireFromString(amount),
		PaymentDate: time.Now().UTC(),
		Method:      types.PaymentMethodBankTransfer,
		Reference:   "wire-001",
	}
}

func (s *PaymentServiceSuite) getInvoice() *invoice.Invoice {
	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	return inv
}

func (s *PaymentServiceSuite) TestRecordFullPaymentMarksPaid() {
	resp, err := s.service.RecordPayment(s.GetContext(), s.newRecordRequest("320.76"))
	s.NoError(err)
	s.NotNil(resp)
	s.Equal(types.PaymentStatusCompleted, resp.PaymentStatus)

	inv := s.getInvoice()
	s.Equal(types.InvoiceStatusPaid, inv.InvoiceStatus)
	s.NotNil(inv.PaidAt)
	s.Equal(2, inv.Version)
}

func (s *PaymentServiceSuite) TestPartialPaymentsReconcile() {
	_, err := s.service.RecordPayment(s.GetContext(), s.newRecordRequest("200.00"))
	s.NoError(err)

	inv := s.getInvoice()
	s.Equal(types.InvoiceStatusSent, inv.InvoiceStatus)
	s.Nil(inv.PaidAt)

	_, err = s.service.RecordPayment(s.GetContext(), s.newRecordRequest("120.76"))
	s.NoError(err)

	inv = s.getInvoice()
	s.Equal(types.InvoiceStatusPaid, inv.InvoiceStatus)
	s.NotNil(inv.PaidAt)
}

func (s *PaymentServiceSuite) TestOverpaymentStillMarksPaid() {
	_, err := s.service.RecordPayment(s.GetContext(), s.newRecordRequest("400.00"))
	s.NoError(err)

	resp, err := s.service.ReconcileInvoice(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.True(resp.AmountPaid.Equal(decimal.RequireFromString("400.00")))
	s.True(resp.BalanceDue.Equal(decimal.RequireFromString("-79.24")))
	s.Equal(types.InvoiceStatusPaid, s.getInvoice().InvoiceStatus)
}

func (s *PaymentServiceSuite) TestReconcileIsIdempotent() {
	_, err := s.service.RecordPayment(s.GetContext(), s.newRecordRequest("320.76"))
	s.NoError(err)

	paid := s.getInvoice()
	s.Equal(2, paid.Version)

	resp, err := s.service.ReconcileInvoice(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, resp.EffectiveStatus)

	// No second status write happened.
	s.Equal(2, s.getInvoice().Version)
}

func (s *PaymentServiceSuite) TestReconcileBelowTotalLeavesStatus() {
	_, err := s.service.RecordPayment(s.GetContext(), s.newRecordRequest("100.00"))
	s.NoError(err)

	resp, err := s.service.ReconcileInvoice(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.True(resp.AmountPaid.Equal(decimal.RequireFromString("100.00")))
	s.True(resp.BalanceDue.Equal(decimal.RequireFromString("220.76")))
	s.Equal(types.InvoiceStatusSent, s.getInvoice().InvoiceStatus)
}

func (s *PaymentServiceSuite) TestRecordPaymentUnknownInvoice() {
	req := s.newRecordRequest("10.00")
	req.InvoiceID = "inv_missing"

	_, err := s.service.RecordPayment(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentServiceSuite) TestRecordPaymentNonPositiveAmount() {
	req := s.newRecordRequest("10.00")
	req.Amount = decimal.Zero

	_, err := s.service.RecordPayment(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PaymentServiceSuite) TestRecordPaymentCancelledInvoiceRejected() {
	inv := s.getInvoice()
	inv.InvoiceStatus = types.InvoiceStatusCancelled
	inv.Version++
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), inv))

	_, err := s.service.RecordPayment(s.GetContext(), s.newRecordRequest("100.00"))
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// Nothing was persisted.
	payments, listErr := s.GetStores().PaymentRepo.ListByInvoice(s.GetContext(), s.testData.invoice.ID)
	s.NoError(listErr)
	s.Len(payments, 0)
}

func (s *PaymentServiceSuite) TestDeletePaymentReconciles() {
	created, err := s.service.RecordPayment(s.GetContext(), s.newRecordRequest("200.00"))
	s.NoError(err)

	s.NoError(s.service.DeletePayment(s.GetContext(), created.ID))

	_, err = s.service.GetPayment(s.GetContext(), created.ID)
	s.True(ierr.IsNotFound(err))

	resp, err := s.service.ReconcileInvoice(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.True(resp.AmountPaid.Equal(decimal.Zero))
	s.True(resp.BalanceDue.Equal(decimal.RequireFromString("320.76")))
	s.Equal(types.InvoiceStatusSent, s.getInvoice().InvoiceStatus)
}

func (s *PaymentServiceSuite) TestDeletePaymentUnknown() {
	err := s.service.DeletePayment(s.GetContext(), "pay_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentServiceSuite) TestBillingSummary() {
	cancelled := &invoice.Invoice{
		ID:            "inv_test_cancelled",
		InvoiceNumber: "INV-2025-0101",
		CustomerID:    s.testData.customer.ID,
		IssueDate:     s.GetNow(),
		DueDate:       s.GetNow().AddDate(0, 0, 14),
		InvoiceStatus: types.InvoiceStatusCancelled,
		Total:         decimal.RequireFromString("50.00"),
		Version:       1,
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), cancelled))

	_, err := s.service.RecordPayment(s.GetContext(), s.newRecordRequest("200.00"))
	s.NoError(err)

	resp, err := s.service.GetBillingSummary(s.GetContext())
	s.NoError(err)
	s.Equal(1, resp.InvoiceCounts[types.InvoiceStatusSent])
	s.Equal(1, resp.InvoiceCounts[types.InvoiceStatusCancelled])
	s.True(resp.TotalInvoiced.Equal(decimal.RequireFromString("320.76")))
	s.True(resp.TotalCollected.Equal(decimal.RequireFromString("200.00")))
	s.True(resp.TotalOutstanding.Equal(decimal.RequireFromString("120.76")))
}

func (s *PaymentServiceSuite) TestRecordPaymentReconcileFailureIsPartial() {
	params := s.serviceParams()
	failing := testutil.NewFailingInvoiceStore(params.InvoiceRepo)
	failing.UpdateErr = ierr.NewError("store unavailable").Mark(ierr.ErrDatabase)
	params.InvoiceRepo = failing

	svc := NewPaymentService(params)
	_, err := svc.RecordPayment(s.GetContext(), s.newRecordRequest("320.76"))
	s.Error(err)
	s.True(ierr.IsPartialSuccess(err))

	// The payment row committed even though the status write failed.
	payments, listErr := s.GetStores().PaymentRepo.ListByInvoice(s.GetContext(), s.testData.invoice.ID)
	s.NoError(listErr)
	s.Len(payments, 1)
	s.Equal(types.InvoiceStatusSent, s.getInvoice().InvoiceStatus)
}

func (s *PaymentServiceSuite) TestListPaymentsByInvoice() {
	_, err := s.service.RecordPayment(s.GetContext(), s.newRecordRequest("100.00"))
	s.NoError(err)
	_, err = s.service.RecordPayment(s.GetContext(), s.newRecordRequest("50.00"))
	s.NoError(err)

	filter := &types.PaymentFilter{
		QueryFilter: types.NewDefaultQueryFilter(),
		InvoiceID:   s.testData.invoice.ID,
	}
	resp, err := s.service.ListPayments(s.GetContext(), filter)
	s.NoError(err)
	s.Equal(2, resp.Pagination.Total)
	s.Len(resp.Items, 2)
}

func (s *PaymentServiceSuite) TestGetPayment() {
	created, err := s.service.RecordPayment(s.GetContext(), s.newRecordRequest("100.00"))
	s.NoError(err)

	resp, err := s.service.GetPayment(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(created.ID, resp.ID)
	s.True(resp.Amount.Equal(decimal.RequireFromString("100.00")))
}
