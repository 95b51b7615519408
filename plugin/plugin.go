// Package plugin provides an extensible plugin system for Radix.
// Plugins can hook into various lifecycle events to extend functionality.
package plugin

import (
	"context"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Customer lifecycle hooks
// ──────────────────────────────────────────────────

// OnCustomerCreated is called when a new customer is registered.
type OnCustomerCreated interface {
	Plugin
	OnCustomerCreated(ctx context.Context, customer interface{}) error
}

// OnCustomerUpdated is called when a customer record changes.
type OnCustomerUpdated interface {
	Plugin
	OnCustomerUpdated(ctx context.Context, oldCustomer, newCustomer interface{}) error
}

// ──────────────────────────────────────────────────
// Bill lifecycle hooks
// ──────────────────────────────────────────────────

// OnBillGenerated is called when a bill is generated.
type OnBillGenerated interface {
	Plugin
	OnBillGenerated(ctx context.Context, bill interface{}) error
}

// OnBillPaid is called when a bill reaches paid status.
type OnBillPaid interface {
	Plugin
	OnBillPaid(ctx context.Context, bill interface{}) error
}

// OnBillOverdue is called when a bill is flipped to overdue.
type OnBillOverdue interface {
	Plugin
	OnBillOverdue(ctx context.Context, bill interface{}) error
}

// ──────────────────────────────────────────────────
// Payment lifecycle hooks
// ──────────────────────────────────────────────────

// OnPaymentRecorded is called when a payment is recorded against a bill.
type OnPaymentRecorded interface {
	Plugin
	OnPaymentRecorded(ctx context.Context, payment interface{}) error
}

// OnPaymentReconciled is called when a payment's reconciliation state changes.
type OnPaymentReconciled interface {
	Plugin
	OnPaymentReconciled(ctx context.Context, payment interface{}, fromStatus, toStatus string) error
}

// ──────────────────────────────────────────────────
// Reminder hooks
// ──────────────────────────────────────────────────

// OnReminderSent is called after a renewal reminder is dispatched.
type OnReminderSent interface {
	Plugin
	OnReminderSent(ctx context.Context, customer interface{}, daysRemaining int) error
}

// ──────────────────────────────────────────────────
// Bookkeeping hooks
// ──────────────────────────────────────────────────

// OnLedgerOutOfSync is called when a customer balance write fails after the
// underlying record was persisted. Integrations can page an operator.
type OnLedgerOutOfSync interface {
	Plugin
	OnLedgerOutOfSync(ctx context.Context, customerID string, err error) error
}

// ──────────────────────────────────────────────────
// Document renderers
// ──────────────────────────────────────────────────

// InvoiceRenderer renders invoices for export.
type InvoiceRenderer interface {
	Plugin
	Format() string                                                    // "pdf", "html", etc.
	Render(ctx context.Context, bill interface{}, w interface{}) error // w is io.Writer
}
