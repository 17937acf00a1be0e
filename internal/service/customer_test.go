package service

import (
	"testing"

	"github.com/netspire/billing/internal/api/dto"
	"github.com/netspire/billing/internal/domain/invoice"
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/testutil"
	"github.com/netspire/billing/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CustomerServiceSuite struct {
	testutil.BaseServiceTestSuite
	service CustomerService
}

func TestCustomerService(t *testing.T) {
	suite.Run(t, new(CustomerServiceSuite))
}

func (s *CustomerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewCustomerService(ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		PDFGenerator:   s.GetPDFGenerator(),
		EmailTransport: s.GetEmailTransport(),
		CustomerRepo:   s.GetStores().CustomerRepo,
		ProductRepo:    s.GetStores().ProductRepo,
		InvoiceRepo:    s.GetStores().InvoiceRepo,
		LineItemRepo:   s.GetStores().LineItemRepo,
		PaymentRepo:    s.GetStores().PaymentRepo,
	})
}

func (s *CustomerServiceSuite) TestCreateCustomerDefaults() {
	resp, err := s.service.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:  "Acme Corp",
		Email: "billing@acme.test",
	})
	s.NoError(err)
	s.NotEmpty(resp.ID)
	s.Equal(types.CustomerStatusActive, resp.CustomerStatus)
	s.True(resp.CreditLimit.IsZero())
}

func (s *CustomerServiceSuite) TestCreateCustomerRequiresEmail() {
	_, err := s.service.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name: "No Email Inc",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *CustomerServiceSuite) TestUpdateCustomerMergesFields() {
	created, err := s.service.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:  "Acme Corp",
		Email: "billing@acme.test",
		Phone: "555-0100",
	})
	s.NoError(err)

	resp, err := s.service.UpdateCustomer(s.GetContext(), created.ID, dto.UpdateCustomerRequest{
		Email:          lo.ToPtr("accounts@acme.test"),
		CustomerStatus: lo.ToPtr(types.CustomerStatusSuspended),
	})
	s.NoError(err)
	s.Equal("accounts@acme.test", resp.Email)
	s.Equal("555-0100", resp.Phone)
	s.Equal(types.CustomerStatusSuspended, resp.CustomerStatus)
}

func (s *CustomerServiceSuite) TestDeleteCustomerWithInvoicesRejected() {
	created, err := s.service.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:  "Acme Corp",
		Email: "billing@acme.test",
	})
	s.NoError(err)

	now := s.GetNow()
	inv := &invoice.Invoice{
		ID:            "inv_blocks_delete",
		InvoiceNumber: "INV-2025-0300",
		CustomerID:    created.ID,
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, 14),
		InvoiceStatus: types.InvoiceStatusDraft,
		Subtotal:      decimal.RequireFromString("10.00"),
		Total:         decimal.RequireFromString("10.00"),
		Version:       1,
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), inv))

	err = s.service.DeleteCustomer(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// Still retrievable after the rejected delete.
	_, err = s.service.GetCustomer(s.GetContext(), created.ID)
	s.NoError(err)
}

func (s *CustomerServiceSuite) TestDeleteCustomerWithoutInvoices() {
	created, err := s.service.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:  "Acme Corp",
		Email: "billing@acme.test",
	})
	s.NoError(err)

	s.NoError(s.service.DeleteCustomer(s.GetContext(), created.ID))

	_, err = s.service.GetCustomer(s.GetContext(), created.ID)
	s.True(ierr.IsNotFound(err))
}

func (s *CustomerServiceSuite) TestListCustomersByEmail() {
	_, err := s.service.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:  "Acme Corp",
		Email: "billing@acme.test",
	})
	s.NoError(err)
	_, err = s.service.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:  "Globex",
		Email: "ap@globex.test",
	})
	s.NoError(err)

	resp, err := s.service.ListCustomers(s.GetContext(), &types.CustomerFilter{
		QueryFilter: types.NewDefaultQueryFilter(),
		Email:       "ap@globex.test",
	})
	s.NoError(err)
	s.Equal(1, resp.Pagination.Total)
	s.Equal("Globex", resp.Items[0].Name)
}
