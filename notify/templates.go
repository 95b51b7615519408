package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// Email bodies follow the layout customers already receive: branded
// header, detail table, branded footer. Amounts are pre-formatted
// strings so the templates stay currency-agnostic.

type templateContext struct {
	Company string
	Tagline string
	Year    int
	Data    any
}

var emailTemplates = template.Must(template.New("emails").Parse(`
{{define "header"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #1e293b; padding: 20px; text-align: center;">
    <h1 style="color: #fff; margin: 0;">{{.Company}}</h1>
    <p style="color: #94a3b8; margin: 5px 0 0;">{{.Tagline}}</p>
  </div>
  <div style="padding: 30px; background: #f8fafc;">
{{end}}

{{define "footer"}}
  </div>
  <div style="background: #1e293b; padding: 15px; text-align: center;">
    <p style="color: #94a3b8; margin: 0; font-size: 12px;">&copy; {{.Year}} {{.Company}}. All rights reserved.</p>
  </div>
</div>
{{end}}

{{define "invoice"}}
{{template "header" .}}
    <h2 style="color: #1e293b;">Invoice {{.Data.InvoiceNumber}}</h2>
    <p>Dear {{.Data.CustomerName}},</p>
    <p>Please find your invoice details below:</p>
    <table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
      <tr style="background: #e2e8f0;">
        <td style="padding: 10px; border: 1px solid #cbd5e1;">Invoice Number</td>
        <td style="padding: 10px; border: 1px solid #cbd5e1;"><strong>{{.Data.InvoiceNumber}}</strong></td>
      </tr>
      <tr>
        <td style="padding: 10px; border: 1px solid #cbd5e1;">Billing Period</td>
        <td style="padding: 10px; border: 1px solid #cbd5e1;">{{.Data.BillingPeriod}}</td>
      </tr>
      <tr style="background: #e2e8f0;">
        <td style="padding: 10px; border: 1px solid #cbd5e1;">Amount Due</td>
        <td style="padding: 10px; border: 1px solid #cbd5e1;"><strong style="color: #059669;">&#8377;{{.Data.Amount}}</strong></td>
      </tr>
      <tr>
        <td style="padding: 10px; border: 1px solid #cbd5e1;">Due Date</td>
        <td style="padding: 10px; border: 1px solid #cbd5e1;">{{.Data.DueDate}}</td>
      </tr>
    </table>
    <p>Please make the payment before the due date to avoid any service interruption.</p>
    <p style="margin-top: 30px;">Thank you for your business!</p>
    <p>Best regards,<br>{{.Company}} Team</p>
{{template "footer" .}}
{{end}}

{{define "payment_confirmation"}}
{{template "header" .}}
    <h2 style="color: #1e293b; text-align: center;">Payment Received!</h2>
    <p>Dear {{.Data.CustomerName}},</p>
    <p>We have received your payment. Thank you!</p>
    <table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
      <tr style="background: #e2e8f0;">
        <td style="padding: 10px; border: 1px solid #cbd5e1;">Payment ID</td>
        <td style="padding: 10px; border: 1px solid #cbd5e1;"><strong>{{.Data.PaymentID}}</strong></td>
      </tr>
      <tr>
        <td style="padding: 10px; border: 1px solid #cbd5e1;">Invoice Number</td>
        <td style="padding: 10px; border: 1px solid #cbd5e1;">{{.Data.InvoiceNumber}}</td>
      </tr>
      <tr style="background: #e2e8f0;">
        <td style="padding: 10px; border: 1px solid #cbd5e1;">Amount Paid</td>
        <td style="padding: 10px; border: 1px solid #cbd5e1;"><strong style="color: #059669;">&#8377;{{.Data.Amount}}</strong></td>
      </tr>
      <tr>
        <td style="padding: 10px; border: 1px solid #cbd5e1;">Payment Date</td>
        <td style="padding: 10px; border: 1px solid #cbd5e1;">{{.Data.PaymentDate}}</td>
      </tr>
      <tr style="background: #e2e8f0;">
        <td style="padding: 10px; border: 1px solid #cbd5e1;">Payment Method</td>
        <td style="padding: 10px; border: 1px solid #cbd5e1;">{{.Data.PaymentMethod}}</td>
      </tr>
    </table>
    <p style="margin-top: 30px;">Thank you for your continued trust in us!</p>
    <p>Best regards,<br>{{.Company}} Team</p>
{{template "footer" .}}
{{end}}

{{define "payment_reminder"}}
{{template "header" .}}
    <h2 style="color: #dc2626;">Payment Reminder</h2>
    <p>Dear {{.Data.CustomerName}},</p>
    <p>This is a friendly reminder that your invoice is due soon.</p>
    <table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
      <tr style="background: #fef2f2;">
        <td style="padding: 10px; border: 1px solid #fecaca;">Invoice Number</td>
        <td style="padding: 10px; border: 1px solid #fecaca;"><strong>{{.Data.InvoiceNumber}}</strong></td>
      </tr>
      <tr>
        <td style="padding: 10px; border: 1px solid #fecaca;">Amount Due</td>
        <td style="padding: 10px; border: 1px solid #fecaca;"><strong style="color: #dc2626;">&#8377;{{.Data.Amount}}</strong></td>
      </tr>
      <tr style="background: #fef2f2;">
        <td style="padding: 10px; border: 1px solid #fecaca;">Due Date</td>
        <td style="padding: 10px; border: 1px solid #fecaca;"><strong>{{.Data.DueDate}}</strong></td>
      </tr>
    </table>
    <p>Please make the payment at your earliest convenience to avoid any service interruption.</p>
    <p style="margin-top: 30px;">If you have already made the payment, please ignore this reminder.</p>
    <p>Best regards,<br>{{.Company}} Team</p>
{{template "footer" .}}
{{end}}

{{define "renewal_reminder"}}
{{template "header" .}}
    <h2 style="color: #d97706; text-align: center;">Plan Renewal Reminder</h2>
    <p>Dear {{.Data.CustomerName}},</p>
    <p>Your <strong>{{.Data.PlanName}}</strong> plan is approaching its expiry date.</p>
    <table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
      <tr style="background: #fffbeb;">
        <td style="padding: 10px; border: 1px solid #fde68a;">Plan</td>
        <td style="padding: 10px; border: 1px solid #fde68a;"><strong>{{.Data.PlanName}}</strong></td>
      </tr>
      <tr>
        <td style="padding: 10px; border: 1px solid #fde68a;">Plan Type</td>
        <td style="padding: 10px; border: 1px solid #fde68a;">{{.Data.PlanType}}</td>
      </tr>
      <tr style="background: #fffbeb;">
        <td style="padding: 10px; border: 1px solid #fde68a;">Expiry Date</td>
        <td style="padding: 10px; border: 1px solid #fde68a;"><strong style="color: #d97706;">{{.Data.ExpiryDate}}</strong></td>
      </tr>
      <tr>
        <td style="padding: 10px; border: 1px solid #fde68a;">Days Remaining</td>
        <td style="padding: 10px; border: 1px solid #fde68a;"><strong style="color: #dc2626;">{{.Data.DaysRemaining}} days</strong></td>
      </tr>
      <tr style="background: #fffbeb;">
        <td style="padding: 10px; border: 1px solid #fde68a;">Renewal Amount</td>
        <td style="padding: 10px; border: 1px solid #fde68a;"><strong style="color: #059669;">&#8377;{{.Data.Amount}}</strong></td>
      </tr>
    </table>
    <p>Please renew your plan before the expiry date to avoid any service interruption.</p>
    <p>You can renew directly from your customer portal.</p>
    <p style="margin-top: 30px;">Thank you for your continued patronage!</p>
    <p>Best regards,<br>{{.Company}} Team</p>
{{template "footer" .}}
{{end}}

{{define "welcome"}}
{{template "header" .}}
    <h2 style="color: #1e293b;">Welcome Aboard!</h2>
    <p>Dear {{.Data.CustomerName}},</p>
    <p>Thank you for choosing {{.Company}}. We're excited to have you as a customer!</p>
    <div style="background: #e0f2fe; padding: 20px; border-radius: 8px; margin: 20px 0;">
      <h3 style="color: #0369a1; margin-top: 0;">Your Account Details</h3>
      <p style="margin: 5px 0;"><strong>Customer ID:</strong> {{.Data.CustomerID}}</p>
      <p style="margin: 5px 0;"><strong>Plan:</strong> {{.Data.PlanName}}</p>
      <p style="margin: 5px 0;"><strong>Monthly Amount:</strong> &#8377;{{.Data.PlanAmount}}</p>
    </div>
    <p>If you have any questions, feel free to reach out to our support team.</p>
    <p style="margin-top: 30px;">Welcome to the family!</p>
    <p>Best regards,<br>{{.Company}} Team</p>
{{template "footer" .}}
{{end}}

{{define "admin"}}
<div style="font-family: Arial, sans-serif; padding: 20px;">
  <h2>{{.Data.Subject}}</h2>
  <p>{{.Data.Message}}</p>
  <hr>
  <p style="color: #666; font-size: 12px;">This is an automated admin notification from {{.Company}}</p>
</div>
{{end}}
`))

// renderBody executes one of the named email templates against cfg branding.
func renderBody(cfg Config, name string, data any) (string, error) {
	var buf bytes.Buffer
	err := emailTemplates.ExecuteTemplate(&buf, name, templateContext{
		Company: cfg.CompanyName,
		Tagline: cfg.CompanyTagline,
		Year:    time.Now().Year(),
		Data:    data,
	})
	if err != nil {
		return "", fmt.Errorf("notify: render %s: %w", name, err)
	}
	return buf.String(), nil
}
