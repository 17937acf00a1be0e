package payment

import (
	"context"

	"github.com/netspire/billing/internal/types"
)

// Repository defines the interface for payment persistence operations
type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	Get(ctx context.Context, id string) (*Payment, error)
	Update(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter *types.PaymentFilter) ([]*Payment, error)
	Count(ctx context.Context, filter *types.PaymentFilter) (int, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]*Payment, error)
}
