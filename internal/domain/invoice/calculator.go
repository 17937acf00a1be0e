package invoice

import "github.com/shopspring/decimal"

// Pure money arithmetic for invoices. No I/O, no side effects; callers are
// responsible for rejecting quantity <= 0 and rate < 0 before computing.

// Round2 rounds a monetary amount to 2 decimal places (banker's rounding is
// deliberately not used; half-up matches what customers expect on paper).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineAmount computes the billed amount of one line: round2(quantity * rate)
func LineAmount(quantity, rate decimal.Decimal) decimal.Decimal {
	return Round2(quantity.Mul(rate))
}

// Totals is the aggregate of an invoice's line items
type Totals struct {
	Subtotal decimal.Decimal
	Total    decimal.Decimal
}

// Aggregate computes invoice totals from its line items plus flat tax and
// discount amounts. The sum is order-independent.
func Aggregate(items []*LineItem, taxAmount, discountAmount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(LineAmount(item.Quantity, item.Rate))
	}
	subtotal = Round2(subtotal)

	return Totals{
		Subtotal: subtotal,
		Total:    Round2(subtotal.Add(taxAmount).Sub(discountAmount)),
	}
}
