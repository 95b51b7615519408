package store

import (
	"context"
	"time"

	"github.com/recordrx/radix/bill"
	"github.com/recordrx/radix/customer"
	"github.com/recordrx/radix/id"
	"github.com/recordrx/radix/payment"
	"github.com/recordrx/radix/sequence"
	"github.com/recordrx/radix/types"
)

// Store is the unified storage interface for all Radix entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
type Store interface {
	// Customer methods
	CreateCustomer(ctx context.Context, c *customer.Customer) error
	GetCustomer(ctx context.Context, customerID id.CustomerID) (*customer.Customer, error)
	GetCustomerByNumber(ctx context.Context, number string) (*customer.Customer, error)
	ListCustomers(ctx context.Context, opts customer.ListOpts) ([]*customer.Customer, error)
	UpdateCustomer(ctx context.Context, c *customer.Customer) error
	CountCustomers(ctx context.Context) (int64, error)

	// Bill methods
	CreateBill(ctx context.Context, b *bill.Bill) error
	GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error)
	ListBills(ctx context.Context, opts bill.ListOpts) ([]*bill.Bill, error)
	UpdateBill(ctx context.Context, b *bill.Bill) error
	ListBillsByCustomer(ctx context.Context, customerID id.CustomerID) ([]*bill.Bill, error)

	// Payment methods
	CreatePayment(ctx context.Context, p *payment.Payment) error
	GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Payment, error)
	ListPayments(ctx context.Context, opts payment.ListOpts) ([]*payment.Payment, error)
	UpdatePayment(ctx context.Context, p *payment.Payment) error
	ListPaymentsByBill(ctx context.Context, billID id.BillID) ([]*payment.Payment, error)

	// Sequence methods. MaxIdentifier returns the highest stored business
	// number with the given prefix, or "" when none exists. Creates enforce
	// number uniqueness so concurrent allocators collide instead of
	// silently duplicating.
	MaxIdentifier(ctx context.Context, kind sequence.Kind, prefix string) (string, error)

	// Stats computes the dashboard rollup.
	Stats(ctx context.Context, now time.Time) (*Stats, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Stats is the dashboard rollup across all entities.
type Stats struct {
	TotalCustomers    int64       `json:"total_customers"`
	ActiveCustomers   int64       `json:"active_customers"`
	TotalBills        int64       `json:"total_bills"`
	PendingBills      int64       `json:"pending_bills"`
	OverdueBills      int64       `json:"overdue_bills"`
	PaidBills         int64       `json:"paid_bills"`
	TotalBilled       types.Money `json:"total_billed"`
	TotalCollected    types.Money `json:"total_collected"`
	TotalOutstanding  types.Money `json:"total_outstanding"`
	PaymentsThisMonth int64       `json:"payments_this_month"`
	UnreconciledCount int64       `json:"unreconciled_count"`
}

// Adapters narrow a unified Store to the per-entity interfaces the domain
// packages consume, so the ledger updater and friends never see more
// surface than they need.

type customerAdapter struct{ s Store }

func (a customerAdapter) Create(ctx context.Context, c *customer.Customer) error {
	return a.s.CreateCustomer(ctx, c)
}
func (a customerAdapter) Get(ctx context.Context, cid id.CustomerID) (*customer.Customer, error) {
	return a.s.GetCustomer(ctx, cid)
}
func (a customerAdapter) GetByNumber(ctx context.Context, number string) (*customer.Customer, error) {
	return a.s.GetCustomerByNumber(ctx, number)
}
func (a customerAdapter) List(ctx context.Context, opts customer.ListOpts) ([]*customer.Customer, error) {
	return a.s.ListCustomers(ctx, opts)
}
func (a customerAdapter) Update(ctx context.Context, c *customer.Customer) error {
	return a.s.UpdateCustomer(ctx, c)
}
func (a customerAdapter) Count(ctx context.Context) (int64, error) {
	return a.s.CountCustomers(ctx)
}

// Customers adapts s to customer.Store.
func Customers(s Store) customer.Store { return customerAdapter{s: s} }

type billAdapter struct{ s Store }

func (a billAdapter) Create(ctx context.Context, b *bill.Bill) error { return a.s.CreateBill(ctx, b) }
func (a billAdapter) Get(ctx context.Context, bid id.BillID) (*bill.Bill, error) {
	return a.s.GetBill(ctx, bid)
}
func (a billAdapter) List(ctx context.Context, opts bill.ListOpts) ([]*bill.Bill, error) {
	return a.s.ListBills(ctx, opts)
}
func (a billAdapter) Update(ctx context.Context, b *bill.Bill) error { return a.s.UpdateBill(ctx, b) }
func (a billAdapter) ListByCustomer(ctx context.Context, cid id.CustomerID) ([]*bill.Bill, error) {
	return a.s.ListBillsByCustomer(ctx, cid)
}

// Bills adapts s to bill.Store.
func Bills(s Store) bill.Store { return billAdapter{s: s} }

type paymentAdapter struct{ s Store }

func (a paymentAdapter) Create(ctx context.Context, p *payment.Payment) error {
	return a.s.CreatePayment(ctx, p)
}
func (a paymentAdapter) Get(ctx context.Context, pid id.PaymentID) (*payment.Payment, error) {
	return a.s.GetPayment(ctx, pid)
}
func (a paymentAdapter) List(ctx context.Context, opts payment.ListOpts) ([]*payment.Payment, error) {
	return a.s.ListPayments(ctx, opts)
}
func (a paymentAdapter) Update(ctx context.Context, p *payment.Payment) error {
	return a.s.UpdatePayment(ctx, p)
}
func (a paymentAdapter) ListByBill(ctx context.Context, bid id.BillID) ([]*payment.Payment, error) {
	return a.s.ListPaymentsByBill(ctx, bid)
}

// Payments adapts s to payment.Store.
func Payments(s Store) payment.Store { return paymentAdapter{s: s} }

type sequenceAdapter struct{ s Store }

func (a sequenceAdapter) MaxIdentifier(ctx context.Context, kind sequence.Kind, prefix string) (string, error) {
	return a.s.MaxIdentifier(ctx, kind, prefix)
}
func (a sequenceAdapter) CountCustomers(ctx context.Context) (int64, error) {
	return a.s.CountCustomers(ctx)
}

// Sequences adapts s to sequence.Source.
func Sequences(s Store) sequence.Source { return sequenceAdapter{s: s} }
