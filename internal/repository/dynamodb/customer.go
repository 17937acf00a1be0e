package dynamodb

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/netspire/billing/internal/domain/customer"
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/logger"
	"github.com/netspire/billing/internal/types"
	"github.com/samber/lo"
)

const customerTable = "customers"

type customerRepository struct {
	client *Client
	logger *logger.Logger
}

func NewCustomerRepository(client *Client, logger *logger.Logger) customer.Repository {
	return &customerRepository{
		client: client,
		logger: logger,
	}
}

func (r *customerRepository) Create(ctx context.Context, c *customer.Customer) error {
	r.logger.Debugw("creating customer", "customer_id", c.ID)

	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode customer").
			Mark(ierr.ErrDatabase)
	}

	err = r.client.withRetry(ctx, func() error {
		_, err := r.client.db.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(r.client.TableName(customerTable)),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(id)"),
		})
		return err
	})
	if err != nil {
		if isConditionFailed(err) {
			return ierr.WithError(err).
				WithHint("A customer with this id already exists").
				WithReportableDetails(map[string]any{"customer_id": c.ID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return wrapStoreError(err, "Failed to create customer")
	}

	return nil
}

func (r *customerRepository) Get(ctx context.Context, id string) (*customer.Customer, error) {
	var out *dynamodb.GetItemOutput
	err := r.client.withRetry(ctx, func() error {
		var err error
		out, err = r.client.db.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.client.TableName(customerTable)),
			Key: map[string]ddbtypes.AttributeValue{
				"id": &ddbtypes.AttributeValueMemberS{Value: id},
			},
		})
		return err
	})
	if err != nil {
		return nil, wrapStoreError(err, "Failed to get customer")
	}
	if out.Item == nil {
		return nil, ierr.NewError("customer not found").
			WithHintf("Customer with ID %s was not found", id).
			WithReportableDetails(map[string]any{"customer_id": id}).
			Mark(ierr.ErrNotFound)
	}

	var c customer.Customer
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to decode customer").
			Mark(ierr.ErrDatabase)
	}

	return &c, nil
}

func (r *customerRepository) Update(ctx context.Context, c *customer.Customer) error {
	r.logger.Debugw("updating customer", "customer_id", c.ID)

	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode customer").
			Mark(ierr.ErrDatabase)
	}

	err = r.client.withRetry(ctx, func() error {
		_, err := r.client.db.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(r.client.TableName(customerTable)),
			Item:                item,
			ConditionExpression: aws.String("attribute_exists(id)"),
		})
		return err
	})
	if err != nil {
		if isConditionFailed(err) {
			return ierr.NewError("customer not found").
				WithHintf("Customer with ID %s was not found", c.ID).
				WithReportableDetails(map[string]any{"customer_id": c.ID}).
				Mark(ierr.ErrNotFound)
		}
		return wrapStoreError(err, "Failed to update customer")
	}

	return nil
}

func (r *customerRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debugw("deleting customer", "customer_id", id)

	err := r.client.withRetry(ctx, func() error {
		_, err := r.client.db.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.client.TableName(customerTable)),
			Key: map[string]ddbtypes.AttributeValue{
				"id": &ddbtypes.AttributeValueMemberS{Value: id},
			},
			ConditionExpression: aws.String("attribute_exists(id)"),
		})
		return err
	})
	if err != nil {
		if isConditionFailed(err) {
			return ierr.NewError("customer not found").
				WithHintf("Customer with ID %s was not found", id).
				WithReportableDetails(map[string]any{"customer_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return wrapStoreError(err, "Failed to delete customer")
	}

	return nil
}

func (r *customerRepository) List(ctx context.Context, filter *types.CustomerFilter) ([]*customer.Customer, error) {
	customers, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}

	customers = lo.Filter(customers, func(c *customer.Customer, _ int) bool {
		return matchCustomer(c, filter)
	})

	sort.Slice(customers, func(i, j int) bool {
		return customers[i].CreatedAt.After(customers[j].CreatedAt)
	})

	return paginate(customers, filter), nil
}

func (r *customerRepository) Count(ctx context.Context, filter *types.CustomerFilter) (int, error) {
	customers, err := r.scan(ctx)
	if err != nil {
		return 0, err
	}

	return lo.CountBy(customers, func(c *customer.Customer) bool {
		return matchCustomer(c, filter)
	}), nil
}

func (r *customerRepository) scan(ctx context.Context) ([]*customer.Customer, error) {
	items, err := scanAll(ctx, r.client, customerTable)
	if err != nil {
		return nil, wrapStoreError(err, "Failed to list customers")
	}

	customers := make([]*customer.Customer, 0, len(items))
	for _, item := range items {
		var c customer.Customer
		if err := attributevalue.UnmarshalMap(item, &c); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to decode customer").
				Mark(ierr.ErrDatabase)
		}
		customers = append(customers, &c)
	}

	return customers, nil
}

func matchCustomer(c *customer.Customer, filter *types.CustomerFilter) bool {
	if filter == nil {
		return true
	}
	if len(filter.CustomerIDs) > 0 && !lo.Contains(filter.CustomerIDs, c.ID) {
		return false
	}
	if filter.CustomerStatus != nil && c.CustomerStatus != *filter.CustomerStatus {
		return false
	}
	if filter.Email != "" && c.Email != filter.Email {
		return false
	}
	return true
}
