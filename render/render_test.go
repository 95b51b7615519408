package render

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/recordrx/radix/bill"
	"github.com/recordrx/radix/id"
	"github.com/recordrx/radix/types"
)

func fixtureBill() *bill.Bill {
	b := &bill.Bill{
		Entity:             types.NewEntity(),
		ID:                 id.NewBillID(),
		Number:             "BILL20250007",
		InvoiceNumber:      "INV/2025/0007",
		CustomerID:         id.NewCustomerID(),
		CustomerNumber:     "CUST00003",
		CustomerName:       "Asha Traders",
		CustomerEmail:      "accounts@ashatraders.example",
		CustomerPhone:      "+91 98200 00000",
		CustomerAddress:    "14 MG Road, Pune, MH - 411001",
		CustomerGSTIN:      "27AAAAA0000A1Z5",
		BillingPeriodStart: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		BillingPeriodEnd:   time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC),
		IssueDate:          time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		DueDate:            time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
	}
	items := []bill.LineItem{
		{Description: "Premium subscription", Quantity: 1, UnitPrice: types.INR(100000)},
		{Description: "Onboarding support", Quantity: 2, UnitPrice: types.INR(25000), TaxRate: bill.Rate(0)},
	}
	b.ApplyTotals(bill.Compute(items, "inr"))
	return b
}

func TestFromBillSnapshotsContactAndAmounts(t *testing.T) {
	b := fixtureBill()
	view := FromBill(b, CompanyView{Name: "Radix", Tagline: "The Root of Reliability"})

	if view.Invoice != "INV/2025/0007" {
		t.Fatalf("Invoice = %q", view.Invoice)
	}
	if view.Customer.GSTIN != "27AAAAA0000A1Z5" {
		t.Fatalf("GSTIN = %q", view.Customer.GSTIN)
	}
	if len(view.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(view.Items))
	}
	// First item carries the default GST rate, second opted out.
	if view.Items[0].TaxRate != bill.DefaultTaxRate {
		t.Errorf("Items[0].TaxRate = %v, want %v", view.Items[0].TaxRate, bill.DefaultTaxRate)
	}
	if view.Items[1].TaxRate != 0 {
		t.Errorf("Items[1].TaxRate = %v, want 0", view.Items[1].TaxRate)
	}
	// Printed amount is amount + tax: 100000 * 1.18 = 118000.
	if !view.Items[0].Amount.Equal(types.INR(118000)) {
		t.Errorf("Items[0].Amount = %v", view.Items[0].Amount)
	}
	if !view.BalanceDue.Equal(b.TotalAmount) {
		t.Errorf("BalanceDue = %v, want %v", view.BalanceDue, b.TotalAmount)
	}
}

func TestHTMLRender(t *testing.T) {
	view := FromBill(fixtureBill(), CompanyView{Name: "Radix", Tagline: "The Root of Reliability"})

	var buf bytes.Buffer
	if err := NewHTML().Render(context.Background(), view, &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	doc := buf.String()
	for _, want := range []string{
		"INV/2025/0007",
		"BILL20250007",
		"Asha Traders",
		"GSTIN: 27AAAAA0000A1Z5",
		"Premium subscription",
		"18%",
		"Balance Due",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("html document missing %q", want)
		}
	}
}

func TestHTMLRenderEscapesInput(t *testing.T) {
	b := fixtureBill()
	b.CustomerName = `<img src=x onerror=alert(1)>`
	view := FromBill(b, CompanyView{Name: "Radix"})

	var buf bytes.Buffer
	if err := NewHTML().Render(context.Background(), view, &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(buf.String(), "<img src=x") {
		t.Fatal("customer name was not HTML-escaped")
	}
}

func TestPDFRender(t *testing.T) {
	view := FromBill(fixtureBill(), CompanyView{Name: "Radix", Tagline: "The Root of Reliability"})

	var buf bytes.Buffer
	if err := NewPDF().Render(context.Background(), view, &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatal("output is not a PDF document")
	}
}

func TestFilename(t *testing.T) {
	got := Filename("INV/2025/0007", "pdf")
	want := "Invoice-INV-2025-0007.pdf"
	if got != want {
		t.Fatalf("Filename() = %q, want %q", got, want)
	}
}

func TestFormatRate(t *testing.T) {
	if got := formatRate(18); got != "18%" {
		t.Errorf("formatRate(18) = %q", got)
	}
	if got := formatRate(12.5); got != "12.50%" {
		t.Errorf("formatRate(12.5) = %q", got)
	}
}
