package dynamodb

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/netspire/billing/internal/domain/invoice"
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/logger"
)

const lineItemTable = "invoice_items"

type lineItemRepository struct {
	client *Client
	logger *logger.Logger
}

func NewLineItemRepository(client *Client, logger *logger.Logger) invoice.LineItemRepository {
	return &lineItemRepository{
		client: client,
		logger: logger,
	}
}

func (r *lineItemRepository) CreateItem(ctx context.Context, item *invoice.LineItem) error {
	r.logger.Debugw("creating invoice line item", "line_item_id", item.ID, "invoice_id", item.InvoiceID)

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode invoice line item").
			Mark(ierr.ErrDatabase)
	}

	err = r.client.withRetry(ctx, func() error {
		_, err := r.client.db.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(r.client.TableName(lineItemTable)),
			Item:                av,
			ConditionExpression: aws.String("attribute_not_exists(id)"),
		})
		return err
	})
	if err != nil {
		if isConditionFailed(err) {
			return ierr.WithError(err).
				WithHint("A line item with this id already exists").
				WithReportableDetails(map[string]any{"line_item_id": item.ID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return wrapStoreError(err, "Failed to create invoice line item")
	}

	return nil
}

func (r *lineItemRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*invoice.LineItem, error) {
	items, err := scanAll(ctx, r.client, lineItemTable)
	if err != nil {
		return nil, wrapStoreError(err, "Failed to list invoice line items")
	}

	lineItems := make([]*invoice.LineItem, 0, len(items))
	for _, item := range items {
		var li invoice.LineItem
		if err := attributevalue.UnmarshalMap(item, &li); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to decode invoice line item").
				Mark(ierr.ErrDatabase)
		}
		if li.InvoiceID == invoiceID {
			lineItems = append(lineItems, &li)
		}
	}

	sort.Slice(lineItems, func(i, j int) bool {
		return lineItems[i].CreatedAt.Before(lineItems[j].CreatedAt)
	})

	return lineItems, nil
}

func (r *lineItemRepository) DeleteItem(ctx context.Context, id string) error {
	r.logger.Debugw("deleting invoice line item", "line_item_id", id)

	err := r.client.withRetry(ctx, func() error {
		_, err := r.client.db.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.client.TableName(lineItemTable)),
			Key: map[string]ddbtypes.AttributeValue{
				"id": &ddbtypes.AttributeValueMemberS{Value: id},
			},
		})
		return err
	})
	if err != nil {
		return wrapStoreError(err, "Failed to delete invoice line item")
	}

	return nil
}
