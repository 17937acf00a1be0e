package service

import (
	"context"
	"time"

	paymentDomain "github.com/netspire/billing/internal/domain/payment"
	"github.com/netspire/billing/internal/types"
	"github.com/shopspring/decimal"
)

// newTestPayment builds a completed bank transfer payment row
func newTestPayment(ctx context.Context, invoiceID, amount string) *paymentDomain.Payment {
	return &paymentDomain.Payment{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		InvoiceID:     invoiceID,
		Amount:        decimal.RequireFromString(amount),
		PaymentDate:   time.Now().UTC(),
		Method:        types.PaymentMethodBankTransfer,
		PaymentStatus: types.PaymentStatusCompleted,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}
