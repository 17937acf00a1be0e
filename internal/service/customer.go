package service

import (
	"context"

	"github.com/netspire/billing/internal/api/dto"
	"github.com/netspire/billing/internal/domain/customer"
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/types"
	"github.com/samber/lo"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	GetCustomer(ctx context.Context, id string) (*dto.CustomerResponse, error)
	UpdateCustomer(ctx context.Context, id string, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error)
	DeleteCustomer(ctx context.Context, id string) error
	ListCustomers(ctx context.Context, filter *types.CustomerFilter) (*dto.ListCustomersResponse, error)
}

type customerService struct {
	ServiceParams
}

func NewCustomerService(params ServiceParams) CustomerService {
	return &customerService{
		ServiceParams: params,
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cust := req.ToCustomer(ctx)
	if err := cust.Validate(); err != nil {
		return nil, err
	}

	if err := s.CustomerRepo.Create(ctx, cust); err != nil {
		return nil, err
	}

	s.Logger.Infow("created customer", "customer_id", cust.ID, "email", cust.Email)

	return &dto.CustomerResponse{Customer: cust}, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	cust, err := s.CustomerRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.CustomerResponse{Customer: cust}, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id string, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cust, err := s.CustomerRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(cust)
	if err := cust.Validate(); err != nil {
		return nil, err
	}
	cust.Touch(ctx)

	if err := s.CustomerRepo.Update(ctx, cust); err != nil {
		return nil, err
	}

	return &dto.CustomerResponse{Customer: cust}, nil
}

// DeleteCustomer removes a customer unless invoices still reference it
func (s *customerService) DeleteCustomer(ctx context.Context, id string) error {
	if _, err := s.CustomerRepo.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.InvoiceRepo.Count(ctx, &types.InvoiceFilter{
		QueryFilter: types.NewNoLimitQueryFilter(),
		CustomerID:  id,
	})
	if err != nil {
		return err
	}
	if count > 0 {
		return ierr.NewError("customer has invoices").
			WithHint("Delete or reassign the customer's invoices first").
			WithReportableDetails(map[string]any{
				"customer_id":   id,
				"invoice_count": count,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	return s.CustomerRepo.Delete(ctx, id)
}

func (s *customerService) ListCustomers(ctx context.Context, filter *types.CustomerFilter) (*dto.ListCustomersResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	customers, err := s.CustomerRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.CustomerRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(customers, func(c *customer.Customer, _ int) *dto.CustomerResponse {
		return &dto.CustomerResponse{Customer: c}
	})

	response := types.NewListResponse(items, count, filter.GetLimit(), filter.GetOffset())
	return &response, nil
}
