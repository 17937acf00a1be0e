package dynamodb

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/netspire/billing/internal/domain/product"
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/logger"
	"github.com/netspire/billing/internal/types"
	"github.com/samber/lo"
)

const productTable = "products"

type productRepository struct {
	client *Client
	logger *logger.Logger
}

func NewProductRepository(client *Client, logger *logger.Logger) product.Repository {
	return &productRepository{
		client: client,
		logger: logger,
	}
}

func (r *productRepository) Create(ctx context.Context, p *product.Product) error {
	r.logger.Debugw("creating product", "product_id", p.ID)

	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode product").
			Mark(ierr.ErrDatabase)
	}

	err = r.client.withRetry(ctx, func() error {
		_, err := r.client.db.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(r.client.TableName(productTable)),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(id)"),
		})
		return err
	})
	if err != nil {
		if isConditionFailed(err) {
			return ierr.WithError(err).
				WithHint("A product with this id already exists").
				WithReportableDetails(map[string]any{"product_id": p.ID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return wrapStoreError(err, "Failed to create product")
	}

	return nil
}

func (r *productRepository) Get(ctx context.Context, id string) (*product.Product, error) {
	var out *dynamodb.GetItemOutput
	err := r.client.withRetry(ctx, func() error {
		var err error
		out, err = r.client.db.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.client.TableName(productTable)),
			Key: map[string]ddbtypes.AttributeValue{
				"id": &ddbtypes.AttributeValueMemberS{Value: id},
			},
		})
		return err
	})
	if err != nil {
		return nil, wrapStoreError(err, "Failed to get product")
	}
	if out.Item == nil {
		return nil, ierr.NewError("product not found").
			WithHintf("Product with ID %s was not found", id).
			WithReportableDetails(map[string]any{"product_id": id}).
			Mark(ierr.ErrNotFound)
	}

	var p product.Product
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to decode product").
			Mark(ierr.ErrDatabase)
	}

	return &p, nil
}

func (r *productRepository) Update(ctx context.Context, p *product.Product) error {
	r.logger.Debugw("updating product", "product_id", p.ID)

	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode product").
			Mark(ierr.ErrDatabase)
	}

	err = r.client.withRetry(ctx, func() error {
		_, err := r.client.db.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(r.client.TableName(productTable)),
			Item:                item,
			ConditionExpression: aws.String("attribute_exists(id)"),
		})
		return err
	})
	if err != nil {
		if isConditionFailed(err) {
			return ierr.NewError("product not found").
				WithHintf("Product with ID %s was not found", p.ID).
				WithReportableDetails(map[string]any{"product_id": p.ID}).
				Mark(ierr.ErrNotFound)
		}
		return wrapStoreError(err, "Failed to update product")
	}

	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debugw("deleting product", "product_id", id)

	err := r.client.withRetry(ctx, func() error {
		_, err := r.client.db.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.client.TableName(productTable)),
			Key: map[string]ddbtypes.AttributeValue{
				"id": &ddbtypes.AttributeValueMemberS{Value: id},
			},
			ConditionExpression: aws.String("attribute_exists(id)"),
		})
		return err
	})
	if err != nil {
		if isConditionFailed(err) {
			return ierr.NewError("product not found").
				WithHintf("Product with ID %s was not found", id).
				WithReportableDetails(map[string]any{"product_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return wrapStoreError(err, "Failed to delete product")
	}

	return nil
}

func (r *productRepository) List(ctx context.Context, filter *types.ProductFilter) ([]*product.Product, error) {
	products, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}

	products = lo.Filter(products, func(p *product.Product, _ int) bool {
		return matchProduct(p, filter)
	})

	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})

	return paginate(products, filter), nil
}

func (r *productRepository) Count(ctx context.Context, filter *types.ProductFilter) (int, error) {
	products, err := r.scan(ctx)
	if err != nil {
		return 0, err
	}

	return lo.CountBy(products, func(p *product.Product) bool {
		return matchProduct(p, filter)
	}), nil
}

func (r *productRepository) scan(ctx context.Context) ([]*product.Product, error) {
	items, err := scanAll(ctx, r.client, productTable)
	if err != nil {
		return nil, wrapStoreError(err, "Failed to list products")
	}

	products := make([]*product.Product, 0, len(items))
	for _, item := range items {
		var p product.Product
		if err := attributevalue.UnmarshalMap(item, &p); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to decode product").
				Mark(ierr.ErrDatabase)
		}
		products = append(products, &p)
	}

	return products, nil
}

func matchProduct(p *product.Product, filter *types.ProductFilter) bool {
	if filter == nil {
		return true
	}
	if len(filter.ProductIDs) > 0 && !lo.Contains(filter.ProductIDs, p.ID) {
		return false
	}
	if filter.Category != nil && p.Category != *filter.Category {
		return false
	}
	if filter.IsActive != nil && p.IsActive != *filter.IsActive {
		return false
	}
	return true
}
