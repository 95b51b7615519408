// Package audithook bridges Radix lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not depend on
// any particular audit store. Callers inject a RecorderFunc adapter that
// bridges to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/recordrx/radix/bill"
	"github.com/recordrx/radix/customer"
	"github.com/recordrx/radix/payment"
	"github.com/recordrx/radix/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin              = (*Extension)(nil)
	_ plugin.OnCustomerCreated   = (*Extension)(nil)
	_ plugin.OnCustomerUpdated   = (*Extension)(nil)
	_ plugin.OnBillGenerated     = (*Extension)(nil)
	_ plugin.OnBillPaid          = (*Extension)(nil)
	_ plugin.OnBillOverdue       = (*Extension)(nil)
	_ plugin.OnPaymentRecorded   = (*Extension)(nil)
	_ plugin.OnPaymentReconciled = (*Extension)(nil)
	_ plugin.OnReminderSent      = (*Extension)(nil)
	_ plugin.OnLedgerOutOfSync   = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Radix lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Customer lifecycle hooks
// ──────────────────────────────────────────────────

// OnCustomerCreated implements plugin.OnCustomerCreated.
func (e *Extension) OnCustomerCreated(ctx context.Context, c interface{}) error {
	cust, ok := c.(*customer.Customer)
	if !ok {
		return nil
	}
	return e.record(ctx, ActionCustomerCreated, SeverityInfo, OutcomeSuccess,
		ResourceCustomer, cust.Number, CategoryBilling, nil,
		"customer_id", cust.ID.String(),
		"name", cust.Name,
		"plan", string(cust.SubscriptionPlan),
	)
}

// OnCustomerUpdated implements plugin.OnCustomerUpdated.
func (e *Extension) OnCustomerUpdated(ctx context.Context, old, updated interface{}) error {
	cust, ok := updated.(*customer.Customer)
	if !ok {
		return nil
	}
	meta := []any{
		"customer_id", cust.ID.String(),
		"name", cust.Name,
	}
	if prev, ok := old.(*customer.Customer); ok && prev.Status != cust.Status {
		meta = append(meta, "status_from", string(prev.Status), "status_to", string(cust.Status))
	}
	return e.record(ctx, ActionCustomerUpdated, SeverityInfo, OutcomeSuccess,
		ResourceCustomer, cust.Number, CategoryBilling, nil, meta...)
}

// ──────────────────────────────────────────────────
// Bill lifecycle hooks
// ──────────────────────────────────────────────────

// OnBillGenerated implements plugin.OnBillGenerated.
func (e *Extension) OnBillGenerated(ctx context.Context, b interface{}) error {
	bb, ok := b.(*bill.Bill)
	if !ok {
		return nil
	}
	return e.record(ctx, ActionBillGenerated, SeverityInfo, OutcomeSuccess,
		ResourceBill, bb.Number, CategoryBilling, nil,
		"invoice_number", bb.InvoiceNumber,
		"customer_id", bb.CustomerID.String(),
		"total_amount", bb.TotalAmount.FormatMajor(),
	)
}

// OnBillPaid implements plugin.OnBillPaid.
func (e *Extension) OnBillPaid(ctx context.Context, b interface{}) error {
	bb, ok := b.(*bill.Bill)
	if !ok {
		return nil
	}
	return e.record(ctx, ActionBillPaid, SeverityInfo, OutcomeSuccess,
		ResourceBill, bb.Number, CategoryPayment, nil,
		"invoice_number", bb.InvoiceNumber,
		"customer_id", bb.CustomerID.String(),
	)
}

// OnBillOverdue implements plugin.OnBillOverdue.
func (e *Extension) OnBillOverdue(ctx context.Context, b interface{}) error {
	bb, ok := b.(*bill.Bill)
	if !ok {
		return nil
	}
	return e.record(ctx, ActionBillOverdue, SeverityWarning, OutcomePartial,
		ResourceBill, bb.Number, CategoryBilling, nil,
		"customer_id", bb.CustomerID.String(),
		"balance_due", bb.TotalAmount.Subtract(bb.PaidAmount).FormatMajor(),
	)
}

// ──────────────────────────────────────────────────
// Payment lifecycle hooks
// ──────────────────────────────────────────────────

// OnPaymentRecorded implements plugin.OnPaymentRecorded.
func (e *Extension) OnPaymentRecorded(ctx context.Context, p interface{}) error {
	pp, ok := p.(*payment.Payment)
	if !ok {
		return nil
	}
	return e.record(ctx, ActionPaymentRecorded, SeverityInfo, OutcomeSuccess,
		ResourcePayment, pp.Number, CategoryPayment, nil,
		"bill_number", pp.BillNumber,
		"customer_id", pp.CustomerID.String(),
		"amount", pp.Amount.FormatMajor(),
		"method", string(pp.Method),
	)
}

// OnPaymentReconciled implements plugin.OnPaymentReconciled.
func (e *Extension) OnPaymentReconciled(ctx context.Context, p interface{}, fromStatus, toStatus string) error {
	severity := SeverityInfo
	outcome := OutcomeSuccess
	if toStatus == "disputed" || toStatus == "unmatched" {
		severity = SeverityWarning
		outcome = OutcomePartial
	}

	resourceID := ""
	meta := []any{"status_from", fromStatus, "status_to", toStatus}
	if pp, ok := p.(*payment.Payment); ok {
		resourceID = pp.Number
		meta = append(meta, "bill_number", pp.BillNumber, "amount", pp.Amount.FormatMajor())
	}
	return e.record(ctx, ActionPaymentReconciled, severity, outcome,
		ResourcePayment, resourceID, CategoryReconciliation, nil, meta...)
}

// ──────────────────────────────────────────────────
// Reminder hooks
// ──────────────────────────────────────────────────

// OnReminderSent implements plugin.OnReminderSent.
func (e *Extension) OnReminderSent(ctx context.Context, c interface{}, daysRemaining int) error {
	resourceID := ""
	meta := []any{"days_remaining", daysRemaining}
	if cust, ok := c.(*customer.Customer); ok {
		resourceID = cust.Number
		meta = append(meta, "customer_id", cust.ID.String(), "plan_cycle", string(cust.BillingCycle))
	}
	return e.record(ctx, ActionReminderSent, SeverityInfo, OutcomeSuccess,
		ResourceReminder, resourceID, CategoryNotification, nil, meta...)
}

// ──────────────────────────────────────────────────
// Bookkeeping hooks
// ──────────────────────────────────────────────────

// OnLedgerOutOfSync implements plugin.OnLedgerOutOfSync.
func (e *Extension) OnLedgerOutOfSync(ctx context.Context, customerID string, cause error) error {
	return e.record(ctx, ActionLedgerOutOfSync, SeverityCritical, OutcomeFailure,
		ResourceLedger, customerID, CategoryBookkeeping, cause,
		"customer_id", customerID,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
