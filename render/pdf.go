package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/recordrx/radix/types"
)

const (
	pdfLeft  = 50.0
	pdfRight = 545.0
	pdfLine  = 15.0
)

// PDFRenderer renders invoices as A4 PDF documents laid out like the
// printed invoices customers already have on file.
type PDFRenderer struct{}

// NewPDF builds the PDF invoice renderer.
func NewPDF() *PDFRenderer { return &PDFRenderer{} }

// Format reports "pdf".
func (r *PDFRenderer) Format() string { return "pdf" }

// Render writes the invoice document to w.
func (r *PDFRenderer) Render(_ context.Context, view InvoiceView, w io.Writer) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(true, 50)
	pdf.AddPage()

	text := func(x, y float64, style string, size float64, s string) {
		pdf.SetFont("Helvetica", style, size)
		pdf.Text(x, y, s)
	}
	rightText := func(y float64, style string, size float64, s string) {
		pdf.SetFont("Helvetica", style, size)
		pdf.Text(pdfRight-pdf.GetStringWidth(s), y, s)
	}
	rule := func(x1, y, x2 float64) {
		pdf.SetDrawColor(30, 41, 59)
		pdf.Line(x1, y, x2, y)
	}

	// Letterhead
	text(pdfLeft, 62, "B", 24, view.Company.Name)
	text(pdfLeft, 84, "", 10, view.Company.Tagline)
	rightText(62, "B", 20, "INVOICE")
	rightText(84, "", 10, "#"+view.Invoice)
	rule(pdfLeft, 100, pdfRight)

	// Bill-to block
	text(pdfLeft, 130, "B", 10, "Bill To:")
	text(pdfLeft, 145, "", 10, view.Customer.Name)
	text(pdfLeft, 160, "", 10, view.Customer.Address)
	text(pdfLeft, 185, "", 10, "Email: "+view.Customer.Email)
	text(pdfLeft, 200, "", 10, "Phone: "+view.Customer.Phone)
	if view.Customer.GSTIN != "" {
		text(pdfLeft, 215, "", 10, "GSTIN: "+view.Customer.GSTIN)
	}

	// Invoice details block
	text(350, 130, "B", 10, "Invoice Details:")
	text(350, 145, "", 10, "Bill No: "+view.Number)
	text(350, 160, "", 10, "Issue Date: "+formatDate(view.IssueDate))
	text(350, 175, "", 10, "Due Date: "+formatDate(view.DueDate))
	text(350, 190, "", 10, "Status: "+strings.ToUpper(view.Status))
	text(350, 205, "", 10, fmt.Sprintf("Period: %s - %s",
		formatDate(view.PeriodStart), formatDate(view.PeriodEnd)))

	// Items table
	tableTop := 250.0
	text(pdfLeft, tableTop, "B", 10, "Description")
	text(280, tableTop, "B", 10, "Qty")
	text(330, tableTop, "B", 10, "Unit Price")
	text(420, tableTop, "B", 10, "Tax")
	rightText(tableTop, "B", 10, "Amount")
	rule(pdfLeft, tableTop+8, pdfRight)

	y := tableTop + 25
	for _, item := range view.Items {
		text(pdfLeft, y, "", 10, truncate(item.Description, 45))
		text(280, y, "", 10, fmt.Sprintf("%d", item.Quantity))
		text(330, y, "", 10, pdfMoney(item.UnitPrice))
		text(420, y, "", 10, formatRate(item.TaxRate))
		rightText(y, "", 10, pdfMoney(item.Amount))
		y += 20
	}

	// Totals
	y += 10
	rule(350, y-12, pdfRight)
	text(350, y, "", 10, "Subtotal:")
	rightText(y, "", 10, pdfMoney(view.Subtotal))
	y += pdfLine
	text(350, y, "", 10, "Tax (GST):")
	rightText(y, "", 10, pdfMoney(view.TaxAmount))
	if view.Discount.IsPositive() {
		y += pdfLine
		text(350, y, "", 10, "Discount:")
		rightText(y, "", 10, "-"+pdfMoney(view.Discount))
	}
	y += pdfLine
	rule(350, y-8, pdfRight)
	y += 5
	text(350, y, "B", 11, "Total:")
	rightText(y, "B", 11, pdfMoney(view.Total))
	if view.Paid.IsPositive() {
		y += pdfLine + 2
		text(350, y, "", 10, "Paid:")
		rightText(y, "", 10, pdfMoney(view.Paid))
	}
	y += pdfLine + 2
	text(350, y, "B", 11, "Balance Due:")
	rightText(y, "B", 11, pdfMoney(view.BalanceDue))

	// Footer
	y += 50
	pdf.SetFont("Helvetica", "", 9)
	centerText(pdf, y, "Thank you for your business!")
	centerText(pdf, y+pdfLine, view.Company.Name+" - "+view.Company.Tagline)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render: pdf invoice %s: %w", view.Invoice, err)
	}
	return nil
}

func centerText(pdf *fpdf.Fpdf, y float64, s string) {
	width := pdf.GetStringWidth(s)
	pdf.Text(pdfLeft+(pdfRight-pdfLeft-width)/2, y, s)
}

// pdfMoney formats an amount with an ASCII currency marker. The core PDF
// fonts cannot encode the rupee sign.
func pdfMoney(m types.Money) string {
	switch strings.ToLower(m.Currency) {
	case "inr":
		return "Rs. " + m.FormatMajor()
	case "usd":
		return "$" + m.FormatMajor()
	default:
		return strings.ToUpper(m.Currency) + " " + m.FormatMajor()
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
