package testutil

import (
	"context"
	"time"

	"github.com/netspire/billing/internal/config"
	"github.com/netspire/billing/internal/domain/customer"
	"github.com/netspire/billing/internal/domain/invoice"
	"github.com/netspire/billing/internal/domain/payment"
	"github.com/netspire/billing/internal/domain/product"
	"github.com/netspire/billing/internal/logger"
	"github.com/netspire/billing/internal/types"
	"github.com/netspire/billing/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	CustomerRepo customer.Repository
	ProductRepo  product.Repository
	InvoiceRepo  invoice.Repository
	LineItemRepo invoice.LineItemRepository
	PaymentRepo  payment.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx            context.Context
	stores         Stores
	logger         *logger.Logger
	config         *config.Configuration
	now            time.Time
	pdfGenerator   *FakePDFGenerator
	emailTransport *InMemoryEmailTransport
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := &config.Configuration{
		Logging: config.LoggingConfig{
			Level: types.LogLevelInfo,
		},
		Company: config.CompanyConfig{
			Name:    "Netspire Test Co",
			Address: "1 Test Street",
			Phone:   "555-0100",
			Email:   "billing@test.example.com",
		},
	}
	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		CustomerRepo: NewInMemoryCustomerStore(),
		ProductRepo:  NewInMemoryProductStore(),
		InvoiceRepo:  NewInMemoryInvoiceStore(),
		LineItemRepo: NewInMemoryLineItemStore(),
		PaymentRepo:  NewInMemoryPaymentStore(),
	}
	s.pdfGenerator = NewFakePDFGenerator()
	s.emailTransport = NewInMemoryEmailTransport()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.CustomerRepo.(*InMemoryCustomerStore).Clear()
	s.stores.ProductRepo.(*InMemoryProductStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.LineItemRepo.(*InMemoryLineItemStore).Clear()
	s.stores.PaymentRepo.(*InMemoryPaymentStore).Clear()
	s.emailTransport.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetPDFGenerator returns the fake PDF generator
func (s *BaseServiceTestSuite) GetPDFGenerator() *FakePDFGenerator {
	return s.pdfGenerator
}

// GetEmailTransport returns the in-memory email transport
func (s *BaseServiceTestSuite) GetEmailTransport() *InMemoryEmailTransport {
	return s.emailTransport
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
