// Package render produces invoice documents from bills. Views are flat,
// deterministic snapshots so renderers never reach back into storage, and
// each renderer owns its output format (HTML for on-screen viewing, PDF
// for download).
package render

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/recordrx/radix/bill"
	"github.com/recordrx/radix/types"
)

// InvoiceView is the deterministic input for invoice rendering.
type InvoiceView struct {
	Company CompanyView
	Number  string // BILL20250001
	Invoice string // INV/2025/0001
	Status  string

	Customer CustomerView
	Items    []LineItemView

	Subtotal   types.Money
	TaxAmount  types.Money
	Discount   types.Money
	Total      types.Money
	Paid       types.Money
	BalanceDue types.Money

	IssueDate   time.Time
	DueDate     time.Time
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// CompanyView is the issuing company's letterhead.
type CompanyView struct {
	Name    string
	Tagline string
}

// CustomerView is the bill-to block.
type CustomerView struct {
	Name    string
	Address string
	Email   string
	Phone   string
	GSTIN   string
}

// LineItemView is one row of the items table.
type LineItemView struct {
	Description string
	Quantity    int64
	UnitPrice   types.Money
	TaxRate     float64
	Amount      types.Money // amount + tax, as printed
}

// Renderer writes an invoice document for one view.
type Renderer interface {
	Format() string
	Render(ctx context.Context, view InvoiceView, w io.Writer) error
}

// FromBill builds the render view for a bill. Contact fields come from the
// bill's issue-time snapshot, not from the live customer record.
func FromBill(b *bill.Bill, company CompanyView) InvoiceView {
	view := InvoiceView{
		Company: company,
		Number:  b.Number,
		Invoice: b.InvoiceNumber,
		Status:  string(b.Status),
		Customer: CustomerView{
			Name:    b.CustomerName,
			Address: b.CustomerAddress,
			Email:   b.CustomerEmail,
			Phone:   b.CustomerPhone,
			GSTIN:   b.CustomerGSTIN,
		},
		Subtotal:    b.Subtotal,
		TaxAmount:   b.TaxAmount,
		Discount:    b.Discount,
		Total:       b.TotalAmount,
		Paid:        b.PaidAmount,
		BalanceDue:  b.BalanceDue,
		IssueDate:   b.IssueDate,
		DueDate:     b.DueDate,
		PeriodStart: b.BillingPeriodStart,
		PeriodEnd:   b.BillingPeriodEnd,
	}

	view.Items = make([]LineItemView, len(b.Items))
	for i, item := range b.Items {
		rate := bill.DefaultTaxRate
		if item.TaxRate != nil {
			rate = *item.TaxRate
		}
		view.Items[i] = LineItemView{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     rate,
			Amount:      item.Amount.Add(item.TaxAmount),
		}
	}

	return view
}

// Filename returns the download filename for an invoice. Invoice numbers
// contain slashes (INV/2025/0001), which are not filename-safe.
func Filename(invoiceNumber, format string) string {
	return "Invoice-" + strings.ReplaceAll(invoiceNumber, "/", "-") + "." + format
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}
