package payment

import (
	"time"

	"github.com/recordrx/radix/id"
	"github.com/recordrx/radix/types"
)

// Status is the processing state of a payment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
	StatusCancelled Status = "cancelled"
)

// Method is how a payment was made.
type Method string

const (
	MethodCash         Method = "cash"
	MethodBankTransfer Method = "bank_transfer"
	MethodUPI          Method = "upi"
	MethodCreditCard   Method = "credit_card"
	MethodDebitCard    Method = "debit_card"
	MethodCheque       Method = "cheque"
	MethodOnline       Method = "online"
	MethodOther        Method = "other"
)

// Payment is a recorded receipt of funds against a bill.
//
// The reconciliation block mutates repeatedly until the payment reaches
// ReconResolved; everything else is written once at creation, except
// PaidAmount bookkeeping on the referenced bill, which the ledger updater
// owns.
type Payment struct {
	types.Entity
	ID     id.PaymentID `json:"id"`
	Number string       `json:"payment_id"` // PAY2508310001

	BillID       id.BillID     `json:"bill_id"`
	CustomerID   id.CustomerID `json:"customer_id"`
	BillNumber   string        `json:"bill_number"`
	CustomerName string        `json:"customer_name"`

	Amount      types.Money `json:"amount"`
	Method      Method      `json:"payment_method"`
	PaymentDate time.Time   `json:"payment_date"`

	TransactionID   string     `json:"transaction_id,omitempty"`
	ReferenceNumber string     `json:"reference_number,omitempty"`
	BankName        string     `json:"bank_name,omitempty"`
	ChequeNumber    string     `json:"cheque_number,omitempty"`
	ChequeDate      *time.Time `json:"cheque_date,omitempty"`

	Reconciliation Reconciliation `json:"reconciliation"`

	Status Status `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// Reconciliation tracks matching a payment against a bank statement line.
type Reconciliation struct {
	Status             ReconStatus `json:"status"`
	Date               *time.Time  `json:"date,omitempty"`
	By                 string      `json:"by,omitempty"`
	Notes              string      `json:"notes,omitempty"`
	BankStatementRef   string      `json:"bank_statement_ref,omitempty"`
	BankStatementDate  *time.Time  `json:"bank_statement_date,omitempty"`
	BankStatementAmount *types.Money `json:"bank_statement_amount,omitempty"`
	AmountDifference   types.Money `json:"amount_difference"`
}
