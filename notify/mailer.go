package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"
)

// Mailer is the SMTP Notifier. Auto-send switches in the Config make
// individual sends silent no-ops when disabled, so callers fire events
// unconditionally and operators decide what actually goes out.
type Mailer struct {
	cfg    Config
	client *mail.Client
	logger *slog.Logger
}

// NewMailer builds an SMTP-backed Mailer from cfg.
func NewMailer(cfg Config, logger *slog.Logger) (*Mailer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}
	if cfg.UseTLS {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("notify: smtp client: %w", err)
	}

	return &Mailer{cfg: cfg, client: client, logger: logger}, nil
}

// Verify dials the SMTP server to confirm the configuration works.
func (m *Mailer) Verify(ctx context.Context) error {
	if err := m.client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("notify: smtp dial: %w", err)
	}
	return m.client.Close()
}

func (m *Mailer) send(ctx context.Context, to, subject, templateName string, data any) error {
	body, err := renderBody(m.cfg, templateName, data)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.FromAddress); err != nil {
		return fmt.Errorf("notify: from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("notify: to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Error("email send failed",
			"to", to,
			"template", templateName,
			"error", err,
		)
		return fmt.Errorf("notify: send %s: %w", templateName, err)
	}

	m.logger.Info("email sent", "to", to, "template", templateName)
	return nil
}

// SendInvoice emails the invoice summary. No-op when
// SendInvoiceOnGeneration is off.
func (m *Mailer) SendInvoice(ctx context.Context, to string, data InvoiceData) error {
	if !m.cfg.SendInvoiceOnGeneration {
		return nil
	}
	subject := fmt.Sprintf("Invoice %s from %s", data.InvoiceNumber, m.cfg.CompanyName)
	return m.send(ctx, to, subject, "invoice", data)
}

// SendPaymentConfirmation emails the payment receipt. No-op when
// SendPaymentConfirmation is off.
func (m *Mailer) SendPaymentConfirmation(ctx context.Context, to string, data PaymentConfirmationData) error {
	if !m.cfg.SendPaymentConfirmation {
		return nil
	}
	subject := fmt.Sprintf("Payment Received - %s", m.cfg.CompanyName)
	return m.send(ctx, to, subject, "payment_confirmation", data)
}

// SendPaymentReminder emails the pre-due-date reminder. No-op when
// SendReminderBeforeDue is off.
func (m *Mailer) SendPaymentReminder(ctx context.Context, to string, data PaymentReminderData) error {
	if !m.cfg.SendReminderBeforeDue {
		return nil
	}
	subject := fmt.Sprintf("Payment Reminder - Invoice %s", data.InvoiceNumber)
	return m.send(ctx, to, subject, "payment_reminder", data)
}

// SendRenewalReminder emails the plan renewal reminder.
func (m *Mailer) SendRenewalReminder(ctx context.Context, to string, data RenewalReminderData) error {
	subject := fmt.Sprintf("Plan Renewal Reminder - %s", m.cfg.CompanyName)
	return m.send(ctx, to, subject, "renewal_reminder", data)
}

// SendWelcome emails the new-customer welcome.
func (m *Mailer) SendWelcome(ctx context.Context, to string, data WelcomeData) error {
	subject := fmt.Sprintf("Welcome to %s!", m.cfg.CompanyName)
	return m.send(ctx, to, subject, "welcome", data)
}

// NotifyAdmin emails the operator address.
func (m *Mailer) NotifyAdmin(ctx context.Context, subject, message string) error {
	if m.cfg.AdminEmail == "" {
		return nil
	}
	data := struct {
		Subject string
		Message string
	}{Subject: subject, Message: message}
	return m.send(ctx, m.cfg.AdminEmail, "[Admin] "+subject, "admin", data)
}
