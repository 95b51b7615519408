// Package notify sends customer-facing billing emails: invoices, payment
// confirmations, payment and renewal reminders, and the new-customer
// welcome. The core engine talks to the Notifier interface only; the SMTP
// transport lives behind it.
package notify

import "context"

// Notifier delivers billing notifications. Implementations decide the
// transport; Mailer is the SMTP one. A nil-safe no-op is available via Nop.
type Notifier interface {
	SendInvoice(ctx context.Context, to string, data InvoiceData) error
	SendPaymentConfirmation(ctx context.Context, to string, data PaymentConfirmationData) error
	SendPaymentReminder(ctx context.Context, to string, data PaymentReminderData) error
	SendRenewalReminder(ctx context.Context, to string, data RenewalReminderData) error
	SendWelcome(ctx context.Context, to string, data WelcomeData) error
	NotifyAdmin(ctx context.Context, subject, message string) error
}

// InvoiceData carries the fields rendered into the invoice email.
type InvoiceData struct {
	CustomerName  string
	InvoiceNumber string
	BillingPeriod string
	Amount        string // formatted major units, e.g. "1,180.00"
	DueDate       string
}

// PaymentConfirmationData carries the fields for the payment receipt.
type PaymentConfirmationData struct {
	CustomerName  string
	PaymentID     string
	InvoiceNumber string
	Amount        string
	PaymentDate   string
	PaymentMethod string
}

// PaymentReminderData carries the fields for the pre-due-date reminder.
type PaymentReminderData struct {
	CustomerName  string
	InvoiceNumber string
	Amount        string
	DueDate       string
}

// RenewalReminderData carries the fields for the plan renewal reminder.
type RenewalReminderData struct {
	CustomerName  string
	PlanName      string
	PlanType      string // billing cycle, e.g. "monthly"
	ExpiryDate    string
	DaysRemaining int
	Amount        string
}

// WelcomeData carries the fields for the new-customer welcome email.
type WelcomeData struct {
	CustomerName string
	CustomerID   string // business number, e.g. CUST00001
	PlanName     string
	PlanAmount   string
}

// Config holds SMTP transport settings, sender branding, and the
// auto-send switches.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	// UseTLS forces implicit TLS on connect; otherwise STARTTLS is
	// attempted opportunistically.
	UseTLS bool

	FromName    string
	FromAddress string

	CompanyName    string
	CompanyTagline string

	AdminEmail string

	// Auto-send switches. A disabled switch makes the corresponding
	// Mailer method a silent no-op so callers never need to branch.
	SendInvoiceOnGeneration  bool
	SendPaymentConfirmation  bool
	SendReminderBeforeDue    bool
	ReminderDaysBeforeDue    int
	NotifyAdminOnPayment     bool
	NotifyAdminOnNewCustomer bool
}

// DefaultConfig returns a Config with the auto-send switches on and
// branding filled in. Transport fields must still be set by the caller.
func DefaultConfig() Config {
	return Config{
		Port:                     587,
		FromName:                 "Radix Billing",
		CompanyName:              "Radix",
		CompanyTagline:           "The Root of Reliability",
		SendInvoiceOnGeneration:  true,
		SendPaymentConfirmation:  true,
		SendReminderBeforeDue:    true,
		ReminderDaysBeforeDue:    3,
		NotifyAdminOnPayment:     true,
		NotifyAdminOnNewCustomer: true,
	}
}

// Nop is a Notifier that discards everything. Useful in tests and when
// email is not configured.
type Nop struct{}

func (Nop) SendInvoice(context.Context, string, InvoiceData) error { return nil }
func (Nop) SendPaymentConfirmation(context.Context, string, PaymentConfirmationData) error {
	return nil
}
func (Nop) SendPaymentReminder(context.Context, string, PaymentReminderData) error { return nil }
func (Nop) SendRenewalReminder(context.Context, string, RenewalReminderData) error { return nil }
func (Nop) SendWelcome(context.Context, string, WelcomeData) error                 { return nil }
func (Nop) NotifyAdmin(context.Context, string, string) error                      { return nil }
