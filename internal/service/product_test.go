package service

import (
	"testing"

	"github.com/netspire/billing/internal/api/dto"
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/testutil"
	"github.com/netspire/billing/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ProductServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ProductService
}

func TestProductService(t *testing.T) {
	suite.Run(t, new(ProductServiceSuite))
}

func (s *ProductServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewProductService(ServiceParams{
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

func (s *ProductServiceSuite) TestCreateProductDefaults() {
	resp, err := s.service.CreateProduct(s.GetContext(), dto.CreateProductRequest{
		Name:     "Consulting Hour",
		Price:    decimal.RequireFromString("150.00"),
		Category: types.ProductCategoryServices,
	})
	s.NoError(err)
	s.NotEmpty(resp.ID)
	s.True(resp.IsActive)
	s.True(resp.TaxRate.Equal(decimal.NewFromFloat(0.08)))
}

func (s *ProductServiceSuite) TestCreateProductInvalidCategory() {
	_, err := s.service.CreateProduct(s.GetContext(), dto.CreateProductRequest{
		Name:     "Mystery Item",
		Price:    decimal.RequireFromString("10.00"),
		Category: "mystery",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *ProductServiceSuite) TestUpdateProduct() {
	created, err := s.service.CreateProduct(s.GetContext(), dto.CreateProductRequest{
		Name:     "Consulting Hour",
		Price:    decimal.RequireFromString("150.00"),
		Category: types.ProductCategoryServices,
	})
	s.NoError(err)

	resp, err := s.service.UpdateProduct(s.GetContext(), created.ID, dto.UpdateProductRequest{
		Price:    lo.ToPtr(decimal.RequireFromString("175.00")),
		IsActive: lo.ToPtr(false),
	})
	s.NoError(err)
	s.True(resp.Price.Equal(decimal.RequireFromString("175.00")))
	s.False(resp.IsActive)
	s.Equal("Consulting Hour", resp.Name)
}

func (s *ProductServiceSuite) TestDeleteProduct() {
	created, err := s.service.CreateProduct(s.GetContext(), dto.CreateProductRequest{
		Name:     "Consulting Hour",
		Price:    decimal.RequireFromString("150.00"),
		Category: types.ProductCategoryServices,
	})
	s.NoError(err)

	s.NoError(s.service.DeleteProduct(s.GetContext(), created.ID))

	_, err = s.service.GetProduct(s.GetContext(), created.ID)
	s.True(ierr.IsNotFound(err))
}

func (s *ProductServiceSuite) TestListProductsByActive() {
	_, err := s.service.CreateProduct(s.GetContext(), dto.CreateProductRequest{
		Name:     "Active Item",
		Price:    decimal.RequireFromString("10.00"),
		Category: types.ProductCategoryProducts,
	})
	s.NoError(err)
	_, err = s.service.CreateProduct(s.GetContext(), dto.CreateProductRequest{
		Name:     "Retired Item",
		Price:    decimal.RequireFromString("20.00"),
		Category: types.ProductCategoryProducts,
		IsActive: lo.ToPtr(false),
	})
	s.NoError(err)

	resp, err := s.service.ListProducts(s.GetContext(), &types.ProductFilter{
		QueryFilter: types.NewDefaultQueryFilter(),
		IsActive:    lo.ToPtr(true),
	})
	s.NoError(err)
	s.Equal(1, resp.Pagination.Total)
	s.Equal("Active Item", resp.Items[0].Name)
}
