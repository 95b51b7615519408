// Package ledger owns customer balance bookkeeping.
//
// All writes to a customer's OutstandingBalance, and to a bill's
// PaidAmount, BalanceDue and derived status, flow through the Updater.
// Nothing else in the engine touches those fields, so the invariants
// checked here are the only ones that need checking.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/recordrx/radix/bill"
	"github.com/recordrx/radix/customer"
	"github.com/recordrx/radix/payment"
	"github.com/recordrx/radix/types"
)

// ErrOutOfSync reports that a bill or payment was persisted but the
// follow-up customer balance write kept failing. The financial record is
// intact; the customer's cached balance is stale and needs operator
// attention or a rebuild from bills.
var ErrOutOfSync = errors.New("ledger: customer balance update failed after record was persisted")

const updateRetries = 3

// Updater applies bills and payments to the books.
type Updater struct {
	customers customer.Store
	bills     bill.Store
	logger    *slog.Logger
}

// New creates an Updater over the given stores.
func New(customers customer.Store, bills bill.Store, logger *slog.Logger) *Updater {
	if logger == nil {
		logger = slog.Default()
	}
	return &Updater{customers: customers, bills: bills, logger: logger}
}

// ApplyNewBill folds a freshly persisted bill into the customer's balance
// and advances the billing window. The bill must already be stored: if the
// customer write fails after retries the bill stands and ErrOutOfSync is
// returned.
func (u *Updater) ApplyNewBill(ctx context.Context, b *bill.Bill, now time.Time) error {
	var lastErr error
	for attempt := 1; attempt <= updateRetries; attempt++ {
		c, err := u.customers.Get(ctx, b.CustomerID)
		if err != nil {
			lastErr = err
			continue
		}

		c.OutstandingBalance = c.OutstandingBalance.Add(b.TotalAmount)
		issue := b.IssueDate
		c.LastBillDate = &issue
		next := nextBillDate(issue, c.BillingCycle)
		c.NextBillDate = &next
		c.Touch()

		if err := u.customers.Update(ctx, c); err != nil {
			lastErr = err
			u.logger.Warn("customer balance update failed, retrying",
				"customer_id", c.ID, "bill", b.Number, "attempt", attempt, "error", err)
			continue
		}
		return nil
	}
	u.logger.Error("customer balance out of sync after bill",
		"customer_id", b.CustomerID, "bill", b.Number, "error", lastErr)
	return fmt.Errorf("%w: bill %s: %v", ErrOutOfSync, b.Number, lastErr)
}

// ApplyPayment folds a freshly persisted payment into its bill and the
// customer's balance. The bill is updated first, the customer second; each
// side is retried independently. Overpayment is allowed and leaves the
// bill with a negative balance due.
func (u *Updater) ApplyPayment(ctx context.Context, p *payment.Payment, now time.Time) (*bill.Bill, error) {
	b, err := u.applyToBill(ctx, p, now)
	if err != nil {
		return nil, err
	}
	if err := u.applyToCustomer(ctx, p); err != nil {
		return b, err
	}
	return b, nil
}

func (u *Updater) applyToBill(ctx context.Context, p *payment.Payment, now time.Time) (*bill.Bill, error) {
	var lastErr error
	for attempt := 1; attempt <= updateRetries; attempt++ {
		b, err := u.bills.Get(ctx, p.BillID)
		if err != nil {
			lastErr = err
			continue
		}

		b.PaidAmount = b.PaidAmount.Add(p.Amount)
		b.BalanceDue = b.TotalAmount.Subtract(b.PaidAmount)
		b.Status = statusFor(b)
		if b.Status == bill.StatusPaid && b.PaidAt == nil {
			paid := now
			b.PaidAt = &paid
		}
		b.Touch()

		if err := CheckBill(b); err != nil {
			return nil, err
		}
		if err := u.bills.Update(ctx, b); err != nil {
			lastErr = err
			u.logger.Warn("bill payment rollup failed, retrying",
				"bill", b.Number, "payment", p.Number, "attempt", attempt, "error", err)
			continue
		}
		return b, nil
	}
	u.logger.Error("bill out of sync after payment",
		"bill_id", p.BillID, "payment", p.Number, "error", lastErr)
	return nil, fmt.Errorf("%w: payment %s: %v", ErrOutOfSync, p.Number, lastErr)
}

func (u *Updater) applyToCustomer(ctx context.Context, p *payment.Payment) error {
	var lastErr error
	for attempt := 1; attempt <= updateRetries; attempt++ {
		c, err := u.customers.Get(ctx, p.CustomerID)
		if err != nil {
			lastErr = err
			continue
		}

		c.OutstandingBalance = c.OutstandingBalance.Subtract(p.Amount)
		c.Touch()

		if err := u.customers.Update(ctx, c); err != nil {
			lastErr = err
			u.logger.Warn("customer balance update failed, retrying",
				"customer_id", c.ID, "payment", p.Number, "attempt", attempt, "error", err)
			continue
		}
		return nil
	}
	u.logger.Error("customer balance out of sync after payment",
		"customer_id", p.CustomerID, "payment", p.Number, "error", lastErr)
	return fmt.Errorf("%w: payment %s: %v", ErrOutOfSync, p.Number, lastErr)
}

// statusFor derives a bill's status from its amounts. Due dates are not
// consulted here; MarkOverdue handles aging separately.
func statusFor(b *bill.Bill) bill.Status {
	switch {
	case !b.BalanceDue.IsPositive():
		return bill.StatusPaid
	case b.PaidAmount.IsPositive():
		return bill.StatusPartial
	default:
		return bill.StatusPending
	}
}

// MarkOverdue flips unpaid bills past their due date to overdue. It
// returns the bills it changed.
func (u *Updater) MarkOverdue(ctx context.Context, now time.Time) ([]*bill.Bill, error) {
	open, err := u.bills.List(ctx, bill.ListOpts{Status: bill.StatusPending})
	if err != nil {
		return nil, err
	}
	partial, err := u.bills.List(ctx, bill.ListOpts{Status: bill.StatusPartial})
	if err != nil {
		return nil, err
	}

	var changed []*bill.Bill
	for _, b := range append(open, partial...) {
		if !now.After(b.DueDate) {
			continue
		}
		b.Status = bill.StatusOverdue
		b.Touch()
		if err := u.bills.Update(ctx, b); err != nil {
			return changed, err
		}
		changed = append(changed, b)
	}
	return changed, nil
}

// CheckBill verifies the arithmetic invariants of a bill's payment rollup.
func CheckBill(b *bill.Bill) error {
	if got := b.TotalAmount.Subtract(b.PaidAmount); !got.Equal(b.BalanceDue) {
		return invariant("bill", b.Number, "balance_due = total - paid",
			fmt.Sprintf("total %s - paid %s != balance %s", b.TotalAmount, b.PaidAmount, b.BalanceDue))
	}
	if b.PaidAmount.IsNegative() {
		return invariant("bill", b.Number, "paid_amount >= 0", b.PaidAmount.String())
	}
	return nil
}

// RebuildBalance recomputes a customer's outstanding balance from their
// bills and writes it back. It is the recovery path for ErrOutOfSync.
func (u *Updater) RebuildBalance(ctx context.Context, c *customer.Customer) (types.Money, error) {
	bills, err := u.bills.ListByCustomer(ctx, c.ID)
	if err != nil {
		return types.Money{}, err
	}
	total := types.Zero(currencyOf(c, bills))
	for _, b := range bills {
		total = total.Add(b.BalanceDue)
	}
	c.OutstandingBalance = total
	c.Touch()
	if err := u.customers.Update(ctx, c); err != nil {
		return types.Money{}, err
	}
	u.logger.Info("rebuilt customer balance", "customer_id", c.ID, "balance", total)
	return total, nil
}

func currencyOf(c *customer.Customer, bills []*bill.Bill) string {
	if len(bills) > 0 {
		return bills[0].TotalAmount.Currency
	}
	if c.SubscriptionAmount.Currency != "" {
		return c.SubscriptionAmount.Currency
	}
	return "inr"
}

func nextBillDate(issue time.Time, cycle customer.BillingCycle) time.Time {
	switch cycle {
	case customer.CycleYearly:
		return issue.AddDate(1, 0, 0)
	case customer.CycleQuarterly:
		return issue.AddDate(0, 3, 0)
	default:
		return issue.AddDate(0, 1, 0)
	}
}

// InvariantError reports a bookkeeping invariant that no longer holds for
// a stored record. It is surfaced, never auto-corrected: it indicates a
// deeper bug, not a recoverable condition.
type InvariantError struct {
	Entity    string // "bill", "customer", "payment"
	ID        string
	Invariant string
	Detail    string
}

func (e InvariantError) Error() string {
	return fmt.Sprintf("ledger: invariant %q violated on %s %s: %s", e.Invariant, e.Entity, e.ID, e.Detail)
}

func invariant(entity, id, rule, detail string) error {
	return InvariantError{Entity: entity, ID: id, Invariant: rule, Detail: detail}
}
