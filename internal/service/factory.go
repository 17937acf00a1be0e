package service

import (
	"github.com/netspire/billing/internal/config"
	"github.com/netspire/billing/internal/domain/customer"
	"github.com/netspire/billing/internal/domain/invoice"
	"github.com/netspire/billing/internal/domain/payment"
	"github.com/netspire/billing/internal/domain/product"
	"github.com/netspire/billing/internal/email"
	"github.com/netspire/billing/internal/logger"
	"github.com/netspire/billing/internal/pdf"
	"github.com/netspire/billing/internal/s3"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger         *logger.Logger
	Config         *config.Configuration
	PDFGenerator   pdf.Generator
	S3             s3.Service
	EmailTransport email.Transport

	// Repositories
	CustomerRepo customer.Repository
	ProductRepo  product.Repository
	InvoiceRepo  invoice.Repository
	LineItemRepo invoice.LineItemRepository
	PaymentRepo  payment.Repository
}

// NewServiceParams assembles the shared dependency set for all services
func NewServiceParams(
	logger *logger.Logger,
	cfg *config.Configuration,
	pdfGenerator pdf.Generator,
	s3Service s3.Service,
	emailTransport email.Transport,
	customerRepo customer.Repository,
	productRepo product.Repository,
	invoiceRepo invoice.Repository,
	lineItemRepo invoice.LineItemRepository,
	paymentRepo payment.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:         logger,
		Config:         cfg,
		PDFGenerator:   pdfGenerator,
		S3:             s3Service,
		EmailTransport: emailTransport,
		CustomerRepo:   customerRepo,
		ProductRepo:    productRepo,
		InvoiceRepo:    invoiceRepo,
		LineItemRepo:   lineItemRepo,
		PaymentRepo:    paymentRepo,
	}
}
