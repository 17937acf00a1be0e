package api

import (
	v1 "github.com/netspire/billing/internal/api/v1"
	"github.com/netspire/billing/internal/logger"
	"github.com/netspire/billing/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health   *v1.HealthHandler
	Customer *v1.CustomerHandler
	Product  *v1.ProductHandler
	Invoice  *v1.InvoiceHandler
	Payment  *v1.PaymentHandler
}

func NewRouter(handlers Handlers, logger *logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.CORSMiddleware,
		middleware.RequestIDMiddleware,
		middleware.IdentityMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	create := middleware.RequireCapability(middleware.CapabilityCreate)
	edit := middleware.RequireCapability(middleware.CapabilityEdit)
	del := middleware.RequireCapability(middleware.CapabilityDelete)
	reports := middleware.RequireCapability(middleware.CapabilityViewReports)

	customers := router.Group("/customers")
	{
		customers.POST("", create, handlers.Customer.CreateCustomer)
		customers.GET("", handlers.Customer.ListCustomers)
		customers.GET("/:id", handlers.Customer.GetCustomer)
		customers.PUT("/:id", edit, handlers.Customer.UpdateCustomer)
		customers.DELETE("/:id", del, handlers.Customer.DeleteCustomer)
	}

	products := router.Group("/products")
	{
		products.POST("", create, handlers.Product.CreateProduct)
		products.GET("", handlers.Product.ListProducts)
		products.GET("/:id", handlers.Product.GetProduct)
		products.PUT("/:id", edit, handlers.Product.UpdateProduct)
		products.DELETE("/:id", del, handlers.Product.DeleteProduct)
	}

	invoices := router.Group("/invoices")
	{
		invoices.POST("", create, handlers.Invoice.CreateInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.PUT("/:id", edit, handlers.Invoice.UpdateInvoice)
		invoices.DELETE("/:id", del, handlers.Invoice.DeleteInvoice)
		invoices.POST("/:id/send", edit, handlers.Invoice.SendInvoice)
		invoices.POST("/:id/viewed", handlers.Invoice.MarkInvoiceViewed)
		invoices.POST("/:id/cancel", edit, handlers.Invoice.CancelInvoice)
		invoices.POST("/:id/reconcile", edit, handlers.Payment.ReconcileInvoice)
	}

	payments := router.Group("/payments")
	{
		payments.POST("", create, handlers.Payment.RecordPayment)
		payments.GET("", handlers.Payment.ListPayments)
		payments.GET("/:id", handlers.Payment.GetPayment)
		payments.DELETE("/:id", del, handlers.Payment.DeletePayment)
	}

	router.GET("/reports/summary", reports, handlers.Payment.GetBillingSummary)
}
