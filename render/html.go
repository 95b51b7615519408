package render

import (
	"context"
	"fmt"
	"html/template"
	"io"

	"github.com/recordrx/radix/types"
)

const invoiceHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Invoice {{.Invoice}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 32px;
      font-family: "Helvetica Neue", Arial, sans-serif;
      color: #111827;
      background: #ffffff;
    }
    .invoice { max-width: 820px; margin: 0 auto; }
    .header {
      display: flex;
      justify-content: space-between;
      align-items: flex-start;
      border-bottom: 2px solid #1e293b;
      padding-bottom: 16px;
      margin-bottom: 24px;
    }
    .meta { text-align: right; font-size: 14px; }
    .label {
      color: #6b7280;
      text-transform: uppercase;
      letter-spacing: 0.04em;
      font-size: 11px;
    }
    .section { margin-bottom: 24px; }
    .columns { display: flex; justify-content: space-between; }
    table { width: 100%; border-collapse: collapse; font-size: 14px; }
    th, td {
      padding: 10px;
      border-bottom: 1px solid #e5e7eb;
      text-align: left;
    }
    th {
      text-transform: uppercase;
      font-size: 11px;
      letter-spacing: 0.04em;
      color: #6b7280;
    }
    td.amount, th.amount { text-align: right; }
    .totals { margin-top: 12px; font-size: 14px; }
    .totals table { max-width: 320px; margin-left: auto; }
    .totals .grand { font-size: 16px; font-weight: bold; }
    .footer {
      border-top: 1px solid #e5e7eb;
      padding-top: 16px;
      font-size: 12px;
      color: #6b7280;
      text-align: center;
    }
  </style>
</head>
<body>
  <div class="invoice">
    <div class="header">
      <div>
        <div style="font-size: 24px; font-weight: bold;">{{.Company.Name}}</div>
        <div class="label">{{.Company.Tagline}}</div>
      </div>
      <div class="meta">
        <div class="label">Invoice</div>
        <div><strong>#{{.Invoice}}</strong></div>
        <div>Bill No: {{.Number}}</div>
        <div>Status: {{.Status}}</div>
      </div>
    </div>

    <div class="section columns">
      <div>
        <div class="label">Bill To</div>
        <div><strong>{{.Customer.Name}}</strong></div>
        <div>{{.Customer.Address}}</div>
        <div>Email: {{.Customer.Email}}</div>
        <div>Phone: {{.Customer.Phone}}</div>
        {{if .Customer.GSTIN}}<div>GSTIN: {{.Customer.GSTIN}}</div>{{end}}
      </div>
      <div class="meta">
        <div class="label">Invoice Details</div>
        <div>Issue Date: {{formatDate .IssueDate}}</div>
        <div>Due Date: {{formatDate .DueDate}}</div>
        <div>Period: {{formatDate .PeriodStart}} - {{formatDate .PeriodEnd}}</div>
      </div>
    </div>

    <div class="section">
      <table>
        <thead>
          <tr>
            <th>Description</th>
            <th>Qty</th>
            <th class="amount">Unit Price</th>
            <th class="amount">Tax</th>
            <th class="amount">Amount</th>
          </tr>
        </thead>
        <tbody>
          {{range .Items}}
          <tr>
            <td>{{.Description}}</td>
            <td>{{.Quantity}}</td>
            <td class="amount">{{formatMoney .UnitPrice}}</td>
            <td class="amount">{{formatRate .TaxRate}}</td>
            <td class="amount">{{formatMoney .Amount}}</td>
          </tr>
          {{end}}
        </tbody>
      </table>
      <div class="totals">
        <table>
          <tr><td>Subtotal</td><td class="amount">{{formatMoney .Subtotal}}</td></tr>
          <tr><td>Tax (GST)</td><td class="amount">{{formatMoney .TaxAmount}}</td></tr>
          {{if .Discount.IsPositive}}<tr><td>Discount</td><td class="amount">-{{formatMoney .Discount}}</td></tr>{{end}}
          <tr class="grand"><td>Total</td><td class="amount">{{formatMoney .Total}}</td></tr>
          {{if .Paid.IsPositive}}<tr><td>Paid</td><td class="amount">{{formatMoney .Paid}}</td></tr>{{end}}
          <tr class="grand"><td>Balance Due</td><td class="amount">{{formatMoney .BalanceDue}}</td></tr>
        </table>
      </div>
    </div>

    <div class="footer">
      <div>Thank you for your business!</div>
      <div>{{.Company.Name}} - {{.Company.Tagline}}</div>
    </div>
  </div>
</body>
</html>
`

// HTMLRenderer renders invoices as standalone HTML documents.
type HTMLRenderer struct {
	tpl *template.Template
}

// NewHTML builds the HTML invoice renderer.
func NewHTML() *HTMLRenderer {
	funcs := template.FuncMap{
		"formatMoney": htmlMoney,
		"formatDate":  formatDate,
		"formatRate":  formatRate,
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTMLTemplate)),
	}
}

// Format reports "html".
func (r *HTMLRenderer) Format() string { return "html" }

// Render writes the invoice document to w.
func (r *HTMLRenderer) Render(_ context.Context, view InvoiceView, w io.Writer) error {
	if view.Company.Name == "" {
		view.Company.Name = "Invoice"
	}
	if err := r.tpl.Execute(w, view); err != nil {
		return fmt.Errorf("render: html invoice %s: %w", view.Invoice, err)
	}
	return nil
}

func htmlMoney(m types.Money) string { return m.String() }

func formatRate(rate float64) string {
	if rate == float64(int64(rate)) {
		return fmt.Sprintf("%d%%", int64(rate))
	}
	return fmt.Sprintf("%.2f%%", rate)
}
