package dynamodb

import (
	"context"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/netspire/billing/internal/domain/invoice"
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/logger"
	"github.com/netspire/billing/internal/types"
	"github.com/samber/lo"
)

const invoiceTable = "invoices"

type invoiceRepository struct {
	client *Client
	logger *logger.Logger
}

func NewInvoiceRepository(client *Client, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{
		client: client,
		logger: logger,
	}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	r.logger.Debugw("creating invoice", "invoice_id", inv.ID, "invoice_number", inv.InvoiceNumber)

	item, err := attributevalue.MarshalMap(inv)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode invoice").
			Mark(ierr.ErrDatabase)
	}

	err = r.client.withRetry(ctx, func() error {
		_, err := r.client.db.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(r.client.TableName(invoiceTable)),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(id)"),
		})
		return err
	})
	if err != nil {
		if isConditionFailed(err) {
			return ierr.WithError(err).
				WithHint("An invoice with this id already exists").
				WithReportableDetails(map[string]any{"invoice_id": inv.ID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return wrapStoreError(err, "Failed to create invoice")
	}

	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	var out *dynamodb.GetItemOutput
	err := r.client.withRetry(ctx, func() error {
		var err error
		out, err = r.client.db.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.client.TableName(invoiceTable)),
			Key: map[string]ddbtypes.AttributeValue{
				"id": &ddbtypes.AttributeValueMemberS{Value: id},
			},
		})
		return err
	})
	if err != nil {
		return nil, wrapStoreError(err, "Failed to get invoice")
	}
	if out.Item == nil {
		return nil, ierr.NewError("invoice not found").
			WithHintf("Invoice with ID %s was not found", id).
			WithReportableDetails(map[string]any{"invoice_id": id}).
			Mark(ierr.ErrNotFound)
	}

	var inv invoice.Invoice
	if err := attributevalue.UnmarshalMap(out.Item, &inv); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to decode invoice").
			Mark(ierr.ErrDatabase)
	}

	return &inv, nil
}

// Update writes the invoice header guarded by its version. The caller
// increments Version before calling; the write succeeds only when the
// stored row still carries the previous version.
func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	r.logger.Debugw("updating invoice", "invoice_id", inv.ID, "version", inv.Version)

	item, err := attributevalue.MarshalMap(inv)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode invoice").
			Mark(ierr.ErrDatabase)
	}

	err = r.client.withRetry(ctx, func() error {
		_, err := r.client.db.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(r.client.TableName(invoiceTable)),
			Item:                item,
			ConditionExpression: aws.String("attribute_exists(id) AND version = :prev"),
			ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
				":prev": &ddbtypes.AttributeValueMemberN{Value: strconv.Itoa(inv.Version - 1)},
			},
		})
		return err
	})
	if err != nil {
		if isConditionFailed(err) {
			return ierr.WithError(err).
				WithHint("The invoice was modified concurrently, please retry").
				WithReportableDetails(map[string]any{
					"invoice_id": inv.ID,
					"version":    inv.Version,
				}).
				Mark(ierr.ErrVersionConflict)
		}
		return wrapStoreError(err, "Failed to update invoice")
	}

	return nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debugw("deleting invoice", "invoice_id", id)

	err := r.client.withRetry(ctx, func() error {
		_, err := r.client.db.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.client.TableName(invoiceTable)),
			Key: map[string]ddbtypes.AttributeValue{
				"id": &ddbtypes.AttributeValueMemberS{Value: id},
			},
			ConditionExpression: aws.String("attribute_exists(id)"),
		})
		return err
	})
	if err != nil {
		if isConditionFailed(err) {
			return ierr.NewError("invoice not found").
				WithHintf("Invoice with ID %s was not found", id).
				WithReportableDetails(map[string]any{"invoice_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return wrapStoreError(err, "Failed to delete invoice")
	}

	return nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	invoices, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}

	invoices = lo.Filter(invoices, func(inv *invoice.Invoice, _ int) bool {
		return matchInvoice(inv, filter)
	})

	sort.Slice(invoices, func(i, j int) bool {
		return invoices[i].CreatedAt.After(invoices[j].CreatedAt)
	})

	return paginate(invoices, filter), nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	invoices, err := r.scan(ctx)
	if err != nil {
		return 0, err
	}

	return lo.CountBy(invoices, func(inv *invoice.Invoice) bool {
		return matchInvoice(inv, filter)
	}), nil
}

func (r *invoiceRepository) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*invoice.Invoice, error) {
	invoices, err := r.List(ctx, &types.InvoiceFilter{
		QueryFilter:   types.NewNoLimitQueryFilter(),
		InvoiceNumber: invoiceNumber,
	})
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, ierr.NewError("invoice not found").
			WithHintf("Invoice with number %s was not found", invoiceNumber).
			WithReportableDetails(map[string]any{"invoice_number": invoiceNumber}).
			Mark(ierr.ErrNotFound)
	}

	return invoices[0], nil
}

func (r *invoiceRepository) scan(ctx context.Context) ([]*invoice.Invoice, error) {
	items, err := scanAll(ctx, r.client, invoiceTable)
	if err != nil {
		return nil, wrapStoreError(err, "Failed to list invoices")
	}

	invoices := make([]*invoice.Invoice, 0, len(items))
	for _, item := range items {
		var inv invoice.Invoice
		if err := attributevalue.UnmarshalMap(item, &inv); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to decode invoice").
				Mark(ierr.ErrDatabase)
		}
		invoices = append(invoices, &inv)
	}

	return invoices, nil
}

func matchInvoice(inv *invoice.Invoice, filter *types.InvoiceFilter) bool {
	if filter == nil {
		return true
	}
	if len(filter.InvoiceIDs) > 0 && !lo.Contains(filter.InvoiceIDs, inv.ID) {
		return false
	}
	if filter.CustomerID != "" && inv.CustomerID != filter.CustomerID {
		return false
	}
	if len(filter.InvoiceStatus) > 0 && !lo.Contains(filter.InvoiceStatus, inv.InvoiceStatus) {
		return false
	}
	if filter.InvoiceNumber != "" && inv.InvoiceNumber != filter.InvoiceNumber {
		return false
	}
	if filter.DueBefore != nil && !inv.DueDate.Before(*filter.DueBefore) {
		return false
	}
	return true
}
