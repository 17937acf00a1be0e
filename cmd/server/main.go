package main

import (
	"context"
	"time"

	"github.com/netspire/billing/internal/api"
	v1 "github.com/netspire/billing/internal/api/v1"
	"github.com/netspire/billing/internal/config"
	"github.com/netspire/billing/internal/email"
	"github.com/netspire/billing/internal/logger"
	"github.com/netspire/billing/internal/pdf"
	"github.com/netspire/billing/internal/repository"
	dynamodbRepo "github.com/netspire/billing/internal/repository/dynamodb"
	"github.com/netspire/billing/internal/s3"
	"github.com/netspire/billing/internal/service"
	"github.com/netspire/billing/internal/typst"
	"github.com/netspire/billing/internal/types"
	"github.com/netspire/billing/internal/validator"
	"go.uber.org/fx"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			validator.NewValidator,
			config.NewConfig,
			logger.NewLogger,

			// Data store
			dynamodbRepo.NewClient,

			// Document and email infrastructure
			typst.NewCompiler,
			pdf.NewGenerator,
			s3.NewService,
			email.NewTransport,

			// Repositories
			repository.NewCustomerRepository,
			repository.NewProductRepository,
			repository.NewInvoiceRepository,
			repository.NewLineItemRepository,
			repository.NewPaymentRepository,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewCustomerService,
			service.NewProductService,
			service.NewInvoiceService,
			service.NewPaymentService,
			service.NewDispatchService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	customerService service.CustomerService,
	productService service.ProductService,
	invoiceService service.InvoiceService,
	paymentService service.PaymentService,
	dispatchService service.DispatchService,
) api.Handlers {
	return api.Handlers{
		Health:   v1.NewHealthHandler(),
		Customer: v1.NewCustomerHandler(customerService, logger),
		Product:  v1.NewProductHandler(productService, logger),
		Invoice:  v1.NewInvoiceHandler(invoiceService, dispatchService, logger),
		Payment:  v1.NewPaymentHandler(paymentService, logger),
	}
}

func provideRouter(handlers api.Handlers, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, logger)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	case types.ModeAWSLambdaAPI:
		startAWSLambdaAPI(r)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}

func startAWSLambdaAPI(r *gin.Engine) {
	ginLambda := ginadapter.New(r)
	lambda.Start(ginLambda.ProxyWithContext)
}
