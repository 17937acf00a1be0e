package invoice

import (
	"context"

	"github.com/netspire/billing/internal/types"
)

// Repository defines the interface for invoice header persistence.
// Line items are persisted through LineItemRepository; the service layer
// owns the ordering of the two.
type Repository interface {
	Create(ctx context.Context, invoice *Invoice) error
	Get(ctx context.Context, id string) (*Invoice, error)

	// Update persists the invoice header. Implementations compare the
	// stored Version against invoice.Version-1 and reject stale writes.
	Update(ctx context.Context, invoice *Invoice) error

	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)
	GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)
}

// LineItemRepository defines per-row persistence for invoice line items
type LineItemRepository interface {
	CreateItem(ctx context.Context, item *LineItem) error
	ListByInvoice(ctx context.Context, invoiceID string) ([]*LineItem, error)
	DeleteItem(ctx context.Context, id string) error
}
