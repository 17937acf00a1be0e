package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/netspire/billing/internal/types"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	DynamoDB   DynamoDBConfig
	S3         S3Config
	Email      EmailConfig
	PDF        PDFConfig
	Company    CompanyConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

// DynamoDBConfig configures the managed data store adapters.
// TablePrefix is prepended to the per-entity table names, e.g.
// "netspire-prod-" -> "netspire-prod-invoices".
type DynamoDBConfig struct {
	Region      string
	Endpoint    string // optional, for dynamodb-local
	TablePrefix string
}

type S3Config struct {
	Enabled       bool
	Region        string
	InvoiceBucket string
	PresignExpiry int // minutes, 0 = default
}

// EmailConfig configures the Resend-backed transport
type EmailConfig struct {
	Enabled     bool
	APIKey      string
	FromAddress string
	ReplyTo     string
}

// PDFConfig configures the typst-based invoice renderer
type PDFConfig struct {
	Enabled     bool
	BinaryPath  string
	TemplateDir string
	FontDir     string
	OutputDir   string
}

// CompanyConfig is the identity stamped on invoice emails and PDFs
type CompanyConfig struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/netspire")

	v.SetEnvPrefix("NETSPIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", types.LogLevelInfo)
	v.SetDefault("dynamodb.tableprefix", "netspire-")
	v.SetDefault("pdf.binarypath", "typst")
	v.SetDefault("company.name", "Netspire")

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}

	if err := c.Deployment.Mode.Validate(); err != nil {
		return err
	}

	if c.Email.Enabled && c.Email.FromAddress == "" {
		return fmt.Errorf("email.fromaddress is required when email is enabled")
	}

	if c.S3.Enabled && c.S3.InvoiceBucket == "" {
		return fmt.Errorf("s3.invoicebucket is required when s3 is enabled")
	}

	return nil
}
