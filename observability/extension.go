// Package observability provides a metrics plugin for Radix that records
// billing lifecycle event counts through a caller-supplied MetricFactory.
package observability

import (
	"context"

	"github.com/recordrx/radix/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin              = (*MetricsExtension)(nil)
	_ plugin.OnInit              = (*MetricsExtension)(nil)
	_ plugin.OnCustomerCreated   = (*MetricsExtension)(nil)
	_ plugin.OnCustomerUpdated   = (*MetricsExtension)(nil)
	_ plugin.OnBillGenerated     = (*MetricsExtension)(nil)
	_ plugin.OnBillPaid          = (*MetricsExtension)(nil)
	_ plugin.OnBillOverdue       = (*MetricsExtension)(nil)
	_ plugin.OnPaymentRecorded   = (*MetricsExtension)(nil)
	_ plugin.OnPaymentReconciled = (*MetricsExtension)(nil)
	_ plugin.OnReminderSent      = (*MetricsExtension)(nil)
	_ plugin.OnLedgerOutOfSync   = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide billing metrics.
// Register it as a Radix plugin to automatically track lifecycle counts.
type MetricsExtension struct {
	factory MetricFactory

	// Customer metrics
	CustomerCreated Counter
	CustomerUpdated Counter

	// Bill metrics
	BillGenerated Counter
	BillPaid      Counter
	BillOverdue   Counter

	// Payment metrics
	PaymentRecorded     Counter
	PaymentReconciled   Counter
	ReconciledMatched   Counter
	ReconciledUnmatched Counter
	ReconciledDisputed  Counter

	// Reminder metrics
	ReminderSent     Counter
	ReminderDaysLeft Histogram

	// Error metrics
	LedgerOutOfSync Counter
	PluginErrors    Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Customer metrics
		CustomerCreated: factory.Counter("radix.customer.created"),
		CustomerUpdated: factory.Counter("radix.customer.updated"),

		// Bill metrics
		BillGenerated: factory.Counter("radix.bill.generated"),
		BillPaid:      factory.Counter("radix.bill.paid"),
		BillOverdue:   factory.Counter("radix.bill.overdue"),

		// Payment metrics
		PaymentRecorded:     factory.Counter("radix.payment.recorded"),
		PaymentReconciled:   factory.Counter("radix.payment.reconciled"),
		ReconciledMatched:   factory.Counter("radix.payment.reconciled.matched"),
		ReconciledUnmatched: factory.Counter("radix.payment.reconciled.unmatched"),
		ReconciledDisputed:  factory.Counter("radix.payment.reconciled.disputed"),

		// Reminder metrics
		ReminderSent:     factory.Counter("radix.reminder.sent"),
		ReminderDaysLeft: factory.Histogram("radix.reminder.days_remaining"),

		// Error metrics
		LedgerOutOfSync: factory.Counter("radix.ledger.out_of_sync"),
		PluginErrors:    factory.Counter("radix.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Customer lifecycle hooks
// ──────────────────────────────────────────────────

// OnCustomerCreated implements plugin.OnCustomerCreated.
func (m *MetricsExtension) OnCustomerCreated(_ context.Context, _ interface{}) error {
	m.CustomerCreated.Inc()
	return nil
}

// OnCustomerUpdated implements plugin.OnCustomerUpdated.
func (m *MetricsExtension) OnCustomerUpdated(_ context.Context, _, _ interface{}) error {
	m.CustomerUpdated.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Bill lifecycle hooks
// ──────────────────────────────────────────────────

// OnBillGenerated implements plugin.OnBillGenerated.
func (m *MetricsExtension) OnBillGenerated(_ context.Context, _ interface{}) error {
	m.BillGenerated.Inc()
	return nil
}

// OnBillPaid implements plugin.OnBillPaid.
func (m *MetricsExtension) OnBillPaid(_ context.Context, _ interface{}) error {
	m.BillPaid.Inc()
	return nil
}

// OnBillOverdue implements plugin.OnBillOverdue.
func (m *MetricsExtension) OnBillOverdue(_ context.Context, _ interface{}) error {
	m.BillOverdue.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Payment lifecycle hooks
// ──────────────────────────────────────────────────

// OnPaymentRecorded implements plugin.OnPaymentRecorded.
func (m *MetricsExtension) OnPaymentRecorded(_ context.Context, _ interface{}) error {
	m.PaymentRecorded.Inc()
	return nil
}

// OnPaymentReconciled implements plugin.OnPaymentReconciled.
func (m *MetricsExtension) OnPaymentReconciled(_ context.Context, _ interface{}, _, toStatus string) error {
	m.PaymentReconciled.Inc()
	switch toStatus {
	case "matched", "resolved":
		m.ReconciledMatched.Inc()
	case "unmatched":
		m.ReconciledUnmatched.Inc()
	case "disputed":
		m.ReconciledDisputed.Inc()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Reminder hooks
// ──────────────────────────────────────────────────

// OnReminderSent implements plugin.OnReminderSent.
func (m *MetricsExtension) OnReminderSent(_ context.Context, _ interface{}, daysRemaining int) error {
	m.ReminderSent.Inc()
	m.ReminderDaysLeft.Observe(float64(daysRemaining))
	return nil
}

// ──────────────────────────────────────────────────
// Bookkeeping hooks
// ──────────────────────────────────────────────────

// OnLedgerOutOfSync implements plugin.OnLedgerOutOfSync.
func (m *MetricsExtension) OnLedgerOutOfSync(_ context.Context, _ string, _ error) error {
	m.LedgerOutOfSync.Inc()
	return nil
}
