package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/netspire/billing/internal/types"
	"github.com/shopspring/decimal"
)

func mustParseDate(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date %s: %v", s, err)
	}
	return parsed
}

func TestRound2(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no rounding needed", "10.50", "10.5"},
		{"rounds half up", "2.345", "2.35"},
		{"rounds down below half", "2.344", "2.34"},
		{"negative rounds away from zero", "-2.345", "-2.35"},
		{"many decimal places", "0.999999", "1"},
		{"zero", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Round2(decimal.RequireFromString(tt.input))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"Round2(%s) = %s, want %s", tt.input, got, tt.expected)
		})
	}
}

func TestLineAmount(t *testing.T) {
	tests := []struct {
		name     string
		quantity string
		rate     string
		expected string
	}{
		{"whole quantities", "3", "35.50", "106.50"},
		{"fractional quantity", "2.5", "40", "100"},
		{"rounds the product", "1.333", "3", "4.00"},
		{"zero rate", "5", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineAmount(
				decimal.RequireFromString(tt.quantity),
				decimal.RequireFromString(tt.rate),
			)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"LineAmount(%s, %s) = %s, want %s", tt.quantity, tt.rate, got, tt.expected)
		})
	}
}

func TestAggregate(t *testing.T) {
	items := []*LineItem{
		{Quantity: decimal.NewFromInt(1), Rate: decimal.RequireFromString("250.00")},
		{Quantity: decimal.NewFromInt(2), Rate: decimal.RequireFromString("23.50")},
	}

	totals := Aggregate(items,
		decimal.RequireFromString("29.70"),
		decimal.RequireFromString("5.94"),
	)

	assert.True(t, totals.Subtotal.Equal(decimal.RequireFromString("297.00")), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.Total.Equal(decimal.RequireFromString("320.76")), "total = %s", totals.Total)
}

func TestAggregateOrderIndependent(t *testing.T) {
	a := &LineItem{Quantity: decimal.RequireFromString("1.5"), Rate: decimal.RequireFromString("33.33")}
	b := &LineItem{Quantity: decimal.NewFromInt(7), Rate: decimal.RequireFromString("12.01")}
	c := &LineItem{Quantity: decimal.RequireFromString("0.25"), Rate: decimal.RequireFromString("99.99")}

	tax := decimal.RequireFromString("10.00")
	discount := decimal.RequireFromString("2.50")

	forward := Aggregate([]*LineItem{a, b, c}, tax, discount)
	reversed := Aggregate([]*LineItem{c, b, a}, tax, discount)

	assert.True(t, forward.Subtotal.Equal(reversed.Subtotal))
	assert.True(t, forward.Total.Equal(reversed.Total))
}

func TestAggregateEmptyItems(t *testing.T) {
	totals := Aggregate(nil, decimal.Zero, decimal.Zero)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestInvoiceEffectiveStatus(t *testing.T) {
	now := mustParseDate(t, "2025-06-15")

	tests := []struct {
		name     string
		status   string
		dueDate  string
		expected string
	}{
		{"sent before due date", "sent", "2025-06-20", "sent"},
		{"sent on due date", "sent", "2025-06-15", "sent"},
		{"sent past due date", "sent", "2025-06-10", "overdue"},
		{"draft past due date", "draft", "2025-06-10", "overdue"},
		{"paid past due date stays paid", "paid", "2025-06-10", "paid"},
		{"cancelled past due date stays cancelled", "cancelled", "2025-06-10", "cancelled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &Invoice{
				InvoiceStatus: types.InvoiceStatus(tt.status),
				DueDate:       mustParseDate(t, tt.dueDate),
			}
			assert.Equal(t, tt.expected, inv.EffectiveStatus(now).String())
		})
	}
}
