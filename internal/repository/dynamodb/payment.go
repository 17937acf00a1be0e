package dynamodb

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/netspire/billing/internal/domain/payment"
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/logger"
	"github.com/netspire/billing/internal/types"
	"github.com/samber/lo"
)

const paymentTable = "payments"

type paymentRepository struct {
	client *Client
	logger *logger.Logger
}

func NewPaymentRepository(client *Client, logger *logger.Logger) payment.Repository {
	return &paymentRepository{
		client: client,
		logger: logger,
	}
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	r.logger.Debugw("creating payment", "payment_id", p.ID, "invoice_id", p.InvoiceID)

	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode payment").
			Mark(ierr.ErrDatabase)
	}

	err = r.client.withRetry(ctx, func() error {
		_, err := r.client.db.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(r.client.TableName(paymentTable)),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(id)"),
		})
		return err
	})
	if err != nil {
		if isConditionFailed(err) {
			return ierr.WithError(err).
				WithHint("A payment with this id already exists").
				WithReportableDetails(map[string]any{"payment_id": p.ID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return wrapStoreError(err, "Failed to create payment")
	}

	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	var out *dynamodb.GetItemOutput
	err := r.client.withRetry(ctx, func() error {
		var err error
		out, err = r.client.db.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.client.TableName(paymentTable)),
			Key: map[string]ddbtypes.AttributeValue{
				"id": &ddbtypes.AttributeValueMemberS{Value: id},
			},
		})
		return err
	})
	if err != nil {
		return nil, wrapStoreError(err, "Failed to get payment")
	}
	if out.Item == nil {
		return nil, ierr.NewError("payment not found").
			WithHintf("Payment with ID %s was not found", id).
			WithReportableDetails(map[string]any{"payment_id": id}).
			Mark(ierr.ErrNotFound)
	}

	var p payment.Payment
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to decode payment").
			Mark(ierr.ErrDatabase)
	}

	return &p, nil
}

func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	r.logger.Debugw("updating payment", "payment_id", p.ID)

	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode payment").
			Mark(ierr.ErrDatabase)
	}

	err = r.client.withRetry(ctx, func() error {
		_, err := r.client.db.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(r.client.TableName(paymentTable)),
			Item:                item,
			ConditionExpression: aws.String("attribute_exists(id)"),
		})
		return err
	})
	if err != nil {
		if isConditionFailed(err) {
			return ierr.NewError("payment not found").
				WithHintf("Payment with ID %s was not found", p.ID).
				WithReportableDetails(map[string]any{"payment_id": p.ID}).
				Mark(ierr.ErrNotFound)
		}
		return wrapStoreError(err, "Failed to update payment")
	}

	return nil
}

func (r *paymentRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debugw("deleting payment", "payment_id", id)

	err := r.client.withRetry(ctx, func() error {
		_, err := r.client.db.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.client.TableName(paymentTable)),
			Key: map[string]ddbtypes.AttributeValue{
				"id": &ddbtypes.AttributeValueMemberS{Value: id},
			},
			ConditionExpression: aws.String("attribute_exists(id)"),
		})
		return err
	})
	if err != nil {
		if isConditionFailed(err) {
			return ierr.NewError("payment not found").
				WithHintf("Payment with ID %s was not found", id).
				WithReportableDetails(map[string]any{"payment_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return wrapStoreError(err, "Failed to delete payment")
	}

	return nil
}

func (r *paymentRepository) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	payments, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}

	payments = lo.Filter(payments, func(p *payment.Payment, _ int) bool {
		return matchPayment(p, filter)
	})

	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})

	return paginate(payments, filter), nil
}

func (r *paymentRepository) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	payments, err := r.scan(ctx)
	if err != nil {
		return 0, err
	}

	return lo.CountBy(payments, func(p *payment.Payment) bool {
		return matchPayment(p, filter)
	}), nil
}

func (r *paymentRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*payment.Payment, error) {
	return r.List(ctx, &types.PaymentFilter{
		QueryFilter: types.NewNoLimitQueryFilter(),
		InvoiceID:   invoiceID,
	})
}

func (r *paymentRepository) scan(ctx context.Context) ([]*payment.Payment, error) {
	items, err := scanAll(ctx, r.client, paymentTable)
	if err != nil {
		return nil, wrapStoreError(err, "Failed to list payments")
	}

	payments := make([]*payment.Payment, 0, len(items))
	for _, item := range items {
		var p payment.Payment
		if err := attributevalue.UnmarshalMap(item, &p); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to decode payment").
				Mark(ierr.ErrDatabase)
		}
		payments = append(payments, &p)
	}

	return payments, nil
}

func matchPayment(p *payment.Payment, filter *types.PaymentFilter) bool {
	if filter == nil {
		return true
	}
	if len(filter.PaymentIDs) > 0 && !lo.Contains(filter.PaymentIDs, p.ID) {
		return false
	}
	if filter.InvoiceID != "" && p.InvoiceID != filter.InvoiceID {
		return false
	}
	if filter.PaymentStatus != nil && p.PaymentStatus != *filter.PaymentStatus {
		return false
	}
	if filter.Method != nil && p.Method != *filter.Method {
		return false
	}
	return true
}
