package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/recordrx/radix"
	"github.com/recordrx/radix/bill"
	"github.com/recordrx/radix/customer"
	"github.com/recordrx/radix/id"
	"github.com/recordrx/radix/payment"
	"github.com/recordrx/radix/sequence"
	"github.com/recordrx/radix/store"
	"github.com/recordrx/radix/types"
)

type Store struct {
	mu sync.RWMutex

	// Customer storage
	customers       map[string]*customer.Customer
	customerNumbers map[string]string // CUST00001 -> record id

	// Bill storage
	bills          map[string]*bill.Bill
	billNumbers    map[string]string // BILL20250001 -> record id
	invoiceNumbers map[string]string // INV/2025/0001 -> record id

	// Payment storage
	payments       map[string]*payment.Payment
	paymentNumbers map[string]string // PAY2508310001 -> record id
}

func New() *Store {
	return &Store{
		customers:       make(map[string]*customer.Customer),
		customerNumbers: make(map[string]string),
		bills:           make(map[string]*bill.Bill),
		billNumbers:     make(map[string]string),
		invoiceNumbers:  make(map[string]string),
		payments:        make(map[string]*payment.Payment),
		paymentNumbers:  make(map[string]string),
	}
}

var _ store.Store = (*Store)(nil)

// Customer Store implementation
func (s *Store) CreateCustomer(_ context.Context, c *customer.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.customers[c.ID.String()]; exists {
		return radix.ErrAlreadyExists
	}
	if _, exists := s.customerNumbers[c.Number]; exists {
		return radix.ErrAlreadyExists
	}
	s.customers[c.ID.String()] = c
	s.customerNumbers[c.Number] = c.ID.String()
	return nil
}

func (s *Store) GetCustomer(_ context.Context, customerID id.CustomerID) (*customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.customers[customerID.String()]; ok {
		return c, nil
	}
	return nil, radix.ErrCustomerNotFound
}

func (s *Store) GetCustomerByNumber(_ context.Context, number string) (*customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rid, ok := s.customerNumbers[number]; ok {
		return s.customers[rid], nil
	}
	return nil, radix.ErrCustomerNotFound
}

func (s *Store) ListCustomers(_ context.Context, opts customer.ListOpts) ([]*customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*customer.Customer, 0)
	for _, c := range s.customers {
		if opts.Status != "" && c.Status != opts.Status {
			continue
		}
		if opts.Search != "" && !matchesSearch(c, opts.Search) {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })

	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateCustomer(_ context.Context, c *customer.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.customers[c.ID.String()]; !exists {
		return radix.ErrCustomerNotFound
	}
	s.customers[c.ID.String()] = c
	return nil
}

func (s *Store) CountCustomers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.customers)), nil
}

// Bill Store implementation
func (s *Store) CreateBill(_ context.Context, b *bill.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bills[b.ID.String()]; exists {
		return radix.ErrAlreadyExists
	}
	if _, exists := s.billNumbers[b.Number]; exists {
		return radix.ErrAlreadyExists
	}
	if b.InvoiceNumber != "" {
		if _, exists := s.invoiceNumbers[b.InvoiceNumber]; exists {
			return radix.ErrAlreadyExists
		}
	}
	s.bills[b.ID.String()] = b
	s.billNumbers[b.Number] = b.ID.String()
	if b.InvoiceNumber != "" {
		s.invoiceNumbers[b.InvoiceNumber] = b.ID.String()
	}
	return nil
}

func (s *Store) GetBill(_ context.Context, billID id.BillID) (*bill.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if b, ok := s.bills[billID.String()]; ok {
		return b, nil
	}
	return nil, radix.ErrBillNotFound
}

func (s *Store) ListBills(_ context.Context, opts bill.ListOpts) ([]*bill.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*bill.Bill, 0)
	for _, b := range s.bills {
		if opts.Status != "" && b.Status != opts.Status {
			continue
		}
		if !opts.CustomerID.IsNil() && b.CustomerID.String() != opts.CustomerID.String() {
			continue
		}
		if opts.Start != nil && b.IssueDate.Before(*opts.Start) {
			continue
		}
		if opts.End != nil && b.IssueDate.After(*opts.End) {
			continue
		}
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })

	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateBill(_ context.Context, b *bill.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bills[b.ID.String()]; !exists {
		return radix.ErrBillNotFound
	}
	s.bills[b.ID.String()] = b
	return nil
}

func (s *Store) ListBillsByCustomer(_ context.Context, customerID id.CustomerID) ([]*bill.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*bill.Bill, 0)
	for _, b := range s.bills {
		if b.CustomerID.String() == customerID.String() {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })
	return result, nil
}

// Payment Store implementation
func (s *Store) CreatePayment(_ context.Context, p *payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.payments[p.ID.String()]; exists {
		return radix.ErrAlreadyExists
	}
	if _, exists := s.paymentNumbers[p.Number]; exists {
		return radix.ErrAlreadyExists
	}
	s.payments[p.ID.String()] = p
	s.paymentNumbers[p.Number] = p.ID.String()
	return nil
}

func (s *Store) GetPayment(_ context.Context, paymentID id.PaymentID) (*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.payments[paymentID.String()]; ok {
		return p, nil
	}
	return nil, radix.ErrPaymentNotFound
}

func (s *Store) ListPayments(_ context.Context, opts payment.ListOpts) ([]*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*payment.Payment, 0)
	for _, p := range s.payments {
		if opts.Status != "" && p.Status != opts.Status {
			continue
		}
		if opts.ReconStatus != "" && p.Reconciliation.Status != opts.ReconStatus {
			continue
		}
		if !opts.CustomerID.IsNil() && p.CustomerID.String() != opts.CustomerID.String() {
			continue
		}
		if opts.Start != nil && p.PaymentDate.Before(*opts.Start) {
			continue
		}
		if opts.End != nil && p.PaymentDate.After(*opts.End) {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })

	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdatePayment(_ context.Context, p *payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.payments[p.ID.String()]; !exists {
		return radix.ErrPaymentNotFound
	}
	s.payments[p.ID.String()] = p
	return nil
}

func (s *Store) ListPaymentsByBill(_ context.Context, billID id.BillID) ([]*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*payment.Payment, 0)
	for _, p := range s.payments {
		if p.BillID.String() == billID.String() {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })
	return result, nil
}

// Sequence source implementation
func (s *Store) MaxIdentifier(_ context.Context, kind sequence.Kind, prefix string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pool map[string]string
	switch kind {
	case sequence.KindCustomer:
		pool = s.customerNumbers
	case sequence.KindBill:
		pool = s.billNumbers
	case sequence.KindInvoice:
		pool = s.invoiceNumbers
	case sequence.KindPayment:
		pool = s.paymentNumbers
	default:
		return "", nil
	}

	// Numbers are fixed width and zero padded, so lexicographic max is
	// numeric max within a prefix.
	var highest string
	for number := range pool {
		if strings.HasPrefix(number, prefix) && number > highest {
			highest = number
		}
	}
	return highest, nil
}

// Stats computes the dashboard rollup.
func (s *Store) Stats(_ context.Context, now time.Time) (*store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &store.Stats{
		TotalBilled:      types.INR(0),
		TotalCollected:   types.INR(0),
		TotalOutstanding: types.INR(0),
	}

	for _, c := range s.customers {
		st.TotalCustomers++
		if c.Status == customer.StatusActive {
			st.ActiveCustomers++
		}
	}

	for _, b := range s.bills {
		st.TotalBills++
		switch b.Status {
		case bill.StatusPending, bill.StatusPartial:
			st.PendingBills++
		case bill.StatusOverdue:
			st.OverdueBills++
		case bill.StatusPaid:
			st.PaidBills++
		}
		st.TotalBilled = st.TotalBilled.Add(b.TotalAmount)
		st.TotalCollected = st.TotalCollected.Add(b.PaidAmount)
		st.TotalOutstanding = st.TotalOutstanding.Add(b.BalanceDue)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for _, p := range s.payments {
		if !p.PaymentDate.Before(monthStart) {
			st.PaymentsThisMonth++
		}
		switch p.Reconciliation.Status {
		case payment.ReconMatched, payment.ReconResolved:
		default:
			st.UnreconciledCount++
		}
	}

	return st, nil
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}

// Helper functions
func matchesSearch(c *customer.Customer, q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Email), q) ||
		strings.Contains(strings.ToLower(c.Number), q) ||
		strings.Contains(c.Phone, q)
}

func paginate[T any](items []T, offset, limit int) []T {
	start := offset
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if limit == 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
