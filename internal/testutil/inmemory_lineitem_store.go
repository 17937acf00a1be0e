package testutil

import (
	"context"
	"sort"

	"github.com/netspire/billing/internal/domain/invoice"
)

// InMemoryLineItemStore implements invoice.LineItemRepository
type InMemoryLineItemStore struct {
	*InMemoryStore[*invoice.LineItem]
}

// NewInMemoryLineItemStore creates a new in-memory line item store
func NewInMemoryLineItemStore() *InMemoryLineItemStore {
	return &InMemoryLineItemStore{
		InMemoryStore: NewInMemoryStore[*invoice.LineItem](),
	}
}

func copyLineItem(li *invoice.LineItem) *invoice.LineItem {
	if li == nil {
		return nil
	}
	clone := *li
	return &clone
}

func (s *InMemoryLineItemStore) CreateItem(ctx context.Context, item *invoice.LineItem) error {
	return s.InMemoryStore.Create(ctx, item.ID, copyLineItem(item))
}

func (s *InMemoryLineItemStore) ListByInvoice(ctx context.Context, invoiceID string) ([]*invoice.LineItem, error) {
	items, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, li *invoice.LineItem, _ interface{}) bool {
		return li.InvoiceID == invoiceID
	}, nil)
	if err != nil {
		return nil, err
	}

	result := make([]*invoice.LineItem, 0, len(items))
	for _, item := range items {
		result = append(result, copyLineItem(item))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func (s *InMemoryLineItemStore) DeleteItem(ctx context.Context, id string) error {
	return s.InMemoryStore.Delete(ctx, id)
}
