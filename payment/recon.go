package payment

import (
	"time"

	"github.com/recordrx/radix/types"
)

// ReconStatus is the reconciliation state of a payment.
type ReconStatus string

const (
	ReconPending   ReconStatus = "pending"
	ReconMatched   ReconStatus = "matched"
	ReconUnmatched ReconStatus = "unmatched"
	ReconDisputed  ReconStatus = "disputed"
	ReconResolved  ReconStatus = "resolved"
)

// NominalTransitions describes the expected reconciliation flow. It is
// informational only: operators correct mistakes by moving a payment to
// whatever state reflects reality, so any transition is accepted.
var NominalTransitions = map[ReconStatus][]ReconStatus{
	ReconPending:   {ReconMatched, ReconUnmatched},
	ReconMatched:   {ReconDisputed, ReconResolved},
	ReconUnmatched: {ReconMatched, ReconDisputed},
	ReconDisputed:  {ReconResolved, ReconMatched},
	ReconResolved:  {},
}

// ValidReconStatus reports whether s is one of the known states.
func ValidReconStatus(s ReconStatus) bool {
	switch s {
	case ReconPending, ReconMatched, ReconUnmatched, ReconDisputed, ReconResolved:
		return true
	}
	return false
}

// IsNominal reports whether moving from one state to another follows the
// expected flow. A false result is advisory, not an error.
func IsNominal(from, to ReconStatus) bool {
	for _, s := range NominalTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ReconUpdate carries the fields an operator supplies when changing a
// payment's reconciliation state.
type ReconUpdate struct {
	Status              ReconStatus
	By                  string
	Notes               string
	BankStatementRef    string
	BankStatementDate   *time.Time
	BankStatementAmount *types.Money
}

// Apply writes the update onto the payment's reconciliation block. When a
// bank statement amount is provided it recomputes AmountDifference as
// statement amount minus recorded amount, so a short-paid statement line
// yields a negative difference.
func (p *Payment) Apply(u ReconUpdate, now time.Time) {
	r := &p.Reconciliation
	r.Status = u.Status
	r.Date = &now
	if u.By != "" {
		r.By = u.By
	}
	if u.Notes != "" {
		r.Notes = u.Notes
	}
	if u.BankStatementRef != "" {
		r.BankStatementRef = u.BankStatementRef
	}
	if u.BankStatementDate != nil {
		r.BankStatementDate = u.BankStatementDate
	}
	if u.BankStatementAmount != nil {
		r.BankStatementAmount = u.BankStatementAmount
		r.AmountDifference = u.BankStatementAmount.Subtract(p.Amount)
	}
	p.Touch()
}
