package bill

import (
	"time"

	"github.com/recordrx/radix/id"
	"github.com/recordrx/radix/types"
)

// Status is the payment state of a bill.
type Status string

const (
	StatusPending Status = "pending"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// Bill is a generated invoice record for a billing period.
//
// A bill is immutable after creation except for PaidAmount, BalanceDue, and
// Status, which are mutated only by the ledger updater when payments are
// applied. Customer contact fields are snapshotted at issue time, not joined
// live.
type Bill struct {
	types.Entity
	ID            id.BillID `json:"id"`
	Number        string    `json:"bill_number"`    // BILL20250001
	InvoiceNumber string    `json:"invoice_number"` // INV/2025/0001

	CustomerID      id.CustomerID `json:"customer_id"`
	CustomerNumber  string        `json:"customer_number"`
	CustomerName    string        `json:"customer_name"`
	CustomerEmail   string        `json:"customer_email"`
	CustomerPhone   string        `json:"customer_phone"`
	CustomerAddress string        `json:"customer_address"`
	CustomerGSTIN   string        `json:"customer_gstin,omitempty"`

	Items       []LineItem  `json:"items"`
	Subtotal    types.Money `json:"subtotal"`
	TaxAmount   types.Money `json:"tax_amount"`
	Discount    types.Money `json:"discount"`
	TotalAmount types.Money `json:"total_amount"`
	PaidAmount  types.Money `json:"paid_amount"`
	BalanceDue  types.Money `json:"balance_due"`
	Status      Status      `json:"status"`

	BillingPeriodStart time.Time  `json:"billing_period_start"`
	BillingPeriodEnd   time.Time  `json:"billing_period_end"`
	IssueDate          time.Time  `json:"issue_date"`
	DueDate            time.Time  `json:"due_date"`
	PaidAt             *time.Time `json:"paid_at,omitempty"`

	Notes         string `json:"notes,omitempty"`
	AutoGenerated bool   `json:"auto_generated"`
}

// LineItem is one charge line on a bill.
type LineItem struct {
	Description string      `json:"description"`
	Quantity    int64       `json:"quantity"`
	UnitPrice   types.Money `json:"unit_price"`
	TaxRate     *float64    `json:"tax_rate,omitempty"` // percent; nil means the default rate
	Amount      types.Money `json:"amount"`
	TaxAmount   types.Money `json:"tax_amount"`
}
