package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/netspire/billing/internal/config"
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/logger"
)

const maxRetries = 3

// Client wraps the DynamoDB SDK client with table naming and a retry
// policy for throttled requests.
type Client struct {
	db     *dynamodb.Client
	prefix string
	logger *logger.Logger
}

// NewClient creates a DynamoDB client from the configuration. An Endpoint
// override points the client at dynamodb-local.
func NewClient(cfg *config.Configuration, logger *logger.Logger) (*Client, error) {
	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
		awsConfig.WithRegion(cfg.DynamoDB.Region),
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load aws config").
			Mark(ierr.ErrSystem)
	}

	db := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDB.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDB.Endpoint)
		}
	})

	return &Client{
		db:     db,
		prefix: cfg.DynamoDB.TablePrefix,
		logger: logger,
	}, nil
}

// TableName returns the fully qualified table name for an entity
func (c *Client) TableName(entity string) string {
	return c.prefix + entity
}

// withRetry runs op under exponential backoff, retrying only errors the
// service reports as throttling or internal.
func (c *Client) withRetry(ctx context.Context, op func() error) error {
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(50*time.Millisecond),
			backoff.WithMaxInterval(time.Second),
		), maxRetries),
		ctx,
	)

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if isThrottled(err) {
			c.logger.Warnw("dynamodb request throttled, retrying", "error", err)
			return err
		}
		return backoff.Permanent(err)
	}, bo)
}

func isThrottled(err error) bool {
	var throughput *ddbtypes.ProvisionedThroughputExceededException
	var limit *ddbtypes.RequestLimitExceeded
	var internal *ddbtypes.InternalServerError
	return errors.As(err, &throughput) || errors.As(err, &limit) || errors.As(err, &internal)
}

func isConditionFailed(err error) bool {
	var ccf *ddbtypes.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// wrapStoreError classifies an SDK error that survived the retry policy
func wrapStoreError(err error, hint string) error {
	if isThrottled(err) {
		return ierr.WithError(err).
			WithHint("The data store is temporarily unavailable").
			Mark(ierr.ErrTransient)
	}
	return ierr.WithError(err).
		WithHint(hint).
		Mark(ierr.ErrDatabase)
}
