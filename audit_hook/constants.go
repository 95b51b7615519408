package audithook

// Action constants for audit events.
const (
	// Customer actions
	ActionCustomerCreated = "customer.created"
	ActionCustomerUpdated = "customer.updated"

	// Bill actions
	ActionBillGenerated = "bill.generated"
	ActionBillPaid      = "bill.paid"
	ActionBillOverdue   = "bill.overdue"

	// Payment actions
	ActionPaymentRecorded   = "payment.recorded"
	ActionPaymentReconciled = "payment.reconciled"

	// Reminder actions
	ActionReminderSent = "reminder.sent"

	// Ledger actions
	ActionLedgerOutOfSync = "ledger.out_of_sync"
)

// Resource constants for audit events.
const (
	ResourceCustomer = "customer"
	ResourceBill     = "bill"
	ResourcePayment  = "payment"
	ResourceLedger   = "ledger"
	ResourceReminder = "reminder"
)

// Category constants for audit events.
const (
	CategoryBilling        = "billing"
	CategoryPayment        = "payment"
	CategoryReconciliation = "reconciliation"
	CategoryNotification   = "notification"
	CategoryBookkeeping    = "bookkeeping"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
