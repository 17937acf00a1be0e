package repository

import (
	"github.com/netspire/billing/internal/domain/customer"
	"github.com/netspire/billing/internal/domain/invoice"
	"github.com/netspire/billing/internal/domain/payment"
	"github.com/netspire/billing/internal/domain/product"
	"github.com/netspire/billing/internal/logger"
	dynamodbRepo "github.com/netspire/billing/internal/repository/dynamodb"
)

func NewCustomerRepository(client *dynamodbRepo.Client, logger *logger.Logger) customer.Repository {
	return dynamodbRepo.NewCustomerRepository(client, logger)
}

func NewProductRepository(client *dynamodbRepo.Client, logger *logger.Logger) product.Repository {
	return dynamodbRepo.NewProductRepository(client, logger)
}

func NewInvoiceRepository(client *dynamodbRepo.Client, logger *logger.Logger) invoice.Repository {
	return dynamodbRepo.NewInvoiceRepository(client, logger)
}

func NewLineItemRepository(client *dynamodbRepo.Client, logger *logger.Logger) invoice.LineItemRepository {
	return dynamodbRepo.NewLineItemRepository(client, logger)
}

func NewPaymentRepository(client *dynamodbRepo.Client, logger *logger.Logger) payment.Repository {
	return dynamodbRepo.NewPaymentRepository(client, logger)
}
