package bill

import "github.com/recordrx/radix/types"

// DefaultTaxRate is the GST percentage applied when a line item does not
// specify its own rate.
const DefaultTaxRate = 18.0

// Totals is the result of computing a bill's amounts from its line items.
type Totals struct {
	Items       []LineItem
	Subtotal    types.Money
	TaxAmount   types.Money
	TotalAmount types.Money
}

// Compute derives per-item and aggregate amounts from line items. It is a
// pure function: the input slice is not modified.
//
// For each item, amount = quantity * unitPrice and tax = amount * rate / 100,
// with the tax rounded to the nearest minor unit before summation so totals
// are deterministic across platforms. totalAmount = subtotal + tax; a new
// bill starts with balanceDue = totalAmount and paidAmount = 0.
func Compute(items []LineItem, currency string) Totals {
	out := Totals{
		Items:       make([]LineItem, len(items)),
		Subtotal:    types.Zero(currency),
		TaxAmount:   types.Zero(currency),
		TotalAmount: types.Zero(currency),
	}

	for i, item := range items {
		rate := DefaultTaxRate
		if item.TaxRate != nil {
			rate = *item.TaxRate
		}

		item.Amount = item.UnitPrice.Multiply(item.Quantity)
		item.TaxAmount = item.Amount.Percent(rate)

		out.Items[i] = item
		out.Subtotal = out.Subtotal.Add(item.Amount)
		out.TaxAmount = out.TaxAmount.Add(item.TaxAmount)
	}

	out.TotalAmount = out.Subtotal.Add(out.TaxAmount)
	return out
}

// ApplyTotals stamps computed totals onto a bill and initializes its
// payment-tracking fields.
func (b *Bill) ApplyTotals(t Totals) {
	b.Items = t.Items
	b.Subtotal = t.Subtotal
	b.TaxAmount = t.TaxAmount
	b.TotalAmount = t.TotalAmount
	b.PaidAmount = types.Zero(t.TotalAmount.Currency)
	b.BalanceDue = t.TotalAmount
	b.Status = StatusPending
}
