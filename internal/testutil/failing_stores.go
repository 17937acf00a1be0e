package testutil

import (
	"context"

	"github.com/netspire/billing/internal/domain/invoice"
)

// FailingLineItemStore wraps a line item store and fails selected operations
// so dependent-write handling can be exercised.
type FailingLineItemStore struct {
	invoice.LineItemRepository

	CreateErr error
	DeleteErr error
}

func NewFailingLineItemStore(inner invoice.LineItemRepository) *FailingLineItemStore {
	return &FailingLineItemStore{LineItemRepository: inner}
}

func (s *FailingLineItemStore) CreateItem(ctx context.Context, item *invoice.LineItem) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	return s.LineItemRepository.CreateItem(ctx, item)
}

func (s *FailingLineItemStore) DeleteItem(ctx context.Context, id string) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	return s.LineItemRepository.DeleteItem(ctx, id)
}

// FailingInvoiceStore wraps an invoice store and fails updates on demand so
// post-send status commit failures can be exercised.
type FailingInvoiceStore struct {
	invoice.Repository

	UpdateErr error
}

func NewFailingInvoiceStore(inner invoice.Repository) *FailingInvoiceStore {
	return &FailingInvoiceStore{Repository: inner}
}

func (s *FailingInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	return s.Repository.Update(ctx, inv)
}
