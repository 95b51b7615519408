package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/recordrx/radix"
	"github.com/recordrx/radix/bill"
	"github.com/recordrx/radix/customer"
	"github.com/recordrx/radix/id"
	"github.com/recordrx/radix/payment"
	"github.com/recordrx/radix/sequence"
	"github.com/recordrx/radix/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testCustomer() *customer.Customer {
	c := &customer.Customer{
		ID:     id.NewCustomerID(),
		Number: "CUST00001",
		Name:   "Asha Traders",
		Email:  "asha@example.in",
		Phone:  "+91 98765 43210",
		Address: customer.Address{
			Street: "14 MG Road", City: "Pune", State: "Maharashtra", ZipCode: "411001", Country: "India",
		},
		GSTIN:              "27AAAAA0000A1Z5",
		SubscriptionPlan:   customer.PlanStandard,
		SubscriptionAmount: types.INR(49900),
		BillingCycle:       customer.CycleMonthly,
		Status:             customer.StatusActive,
		OutstandingBalance: types.INR(0),
	}
	c.Entity = types.NewEntity()
	return c
}

func testBill(c *customer.Customer, number, invoiceNumber string) *bill.Bill {
	b := &bill.Bill{
		ID:              id.NewBillID(),
		Number:          number,
		InvoiceNumber:   invoiceNumber,
		CustomerID:      c.ID,
		CustomerNumber:  c.Number,
		CustomerName:    c.Name,
		CustomerEmail:   c.Email,
		CustomerAddress: c.ContactLine(),
		Items: []bill.LineItem{{
			Description: "Standard plan",
			Quantity:    1,
			UnitPrice:   types.INR(49900),
			Amount:      types.INR(49900),
			TaxAmount:   types.INR(8982),
		}},
		Subtotal:           types.INR(49900),
		TaxAmount:          types.INR(8982),
		Discount:           types.INR(0),
		TotalAmount:        types.INR(58882),
		PaidAmount:         types.INR(0),
		BalanceDue:         types.INR(58882),
		Status:             bill.StatusPending,
		BillingPeriodStart: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		BillingPeriodEnd:   time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC),
		IssueDate:          time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		DueDate:            time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC),
	}
	b.Entity = types.NewEntity()
	return b
}

func TestCustomerRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := testCustomer()

	if err := s.CreateCustomer(ctx, c); err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	got, err := s.GetCustomer(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCustomer: %v", err)
	}
	if got.Number != "CUST00001" || got.Name != c.Name || got.GSTIN != c.GSTIN {
		t.Errorf("got %+v", got)
	}
	if !got.SubscriptionAmount.Equal(types.INR(49900)) {
		t.Errorf("amount = %v", got.SubscriptionAmount)
	}
	if got.Address.City != "Pune" {
		t.Errorf("city = %q", got.Address.City)
	}

	byNum, err := s.GetCustomerByNumber(ctx, "CUST00001")
	if err != nil {
		t.Fatalf("GetCustomerByNumber: %v", err)
	}
	if byNum.ID.String() != c.ID.String() {
		t.Error("lookup by number returned different record")
	}
}

func TestCustomerNumberUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateCustomer(ctx, testCustomer()); err != nil {
		t.Fatal(err)
	}
	dup := testCustomer() // fresh record id, same number
	err := s.CreateCustomer(ctx, dup)
	if !errors.Is(err, radix.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestCustomerListFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := testCustomer()
	if err := s.CreateCustomer(ctx, a); err != nil {
		t.Fatal(err)
	}
	b := testCustomer()
	b.ID = id.NewCustomerID()
	b.Number = "CUST00002"
	b.Name = "Bharat Supplies"
	b.Email = "accounts@bharat.in"
	b.Status = customer.StatusInactive
	if err := s.CreateCustomer(ctx, b); err != nil {
		t.Fatal(err)
	}

	active, err := s.ListCustomers(ctx, customer.ListOpts{Status: customer.StatusActive})
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].Number != "CUST00001" {
		t.Errorf("active = %v", active)
	}

	found, err := s.ListCustomers(ctx, customer.ListOpts{Search: "bharat"})
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].Name != "Bharat Supplies" {
		t.Errorf("search = %v", found)
	}
}

func TestBillRoundTripAndUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := testCustomer()
	if err := s.CreateCustomer(ctx, c); err != nil {
		t.Fatal(err)
	}
	b := testBill(c, "BILL20250001", "INV/2025/0001")
	if err := s.CreateBill(ctx, b); err != nil {
		t.Fatalf("CreateBill: %v", err)
	}

	got, err := s.GetBill(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBill: %v", err)
	}
	if got.InvoiceNumber != "INV/2025/0001" {
		t.Errorf("invoice number = %q", got.InvoiceNumber)
	}
	if len(got.Items) != 1 || got.Items[0].Description != "Standard plan" {
		t.Errorf("items = %v", got.Items)
	}
	if !got.TotalAmount.Equal(types.INR(58882)) {
		t.Errorf("total = %v", got.TotalAmount)
	}

	got.PaidAmount = types.INR(58882)
	got.BalanceDue = types.INR(0)
	got.Status = bill.StatusPaid
	now := time.Now().UTC()
	got.PaidAt = &now
	if err := s.UpdateBill(ctx, got); err != nil {
		t.Fatalf("UpdateBill: %v", err)
	}

	again, err := s.GetBill(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.Status != bill.StatusPaid || again.PaidAt == nil {
		t.Errorf("after update: %+v", again)
	}

	byCust, err := s.ListBillsByCustomer(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(byCust) != 1 {
		t.Errorf("bills by customer = %d, want 1", len(byCust))
	}
}

func TestBillAndPaymentDateFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := testCustomer()
	if err := s.CreateCustomer(ctx, c); err != nil {
		t.Fatal(err)
	}

	aug := testBill(c, "BILL20250001", "INV/2025/0001")
	if err := s.CreateBill(ctx, aug); err != nil {
		t.Fatal(err)
	}
	sep := testBill(c, "BILL20250002", "INV/2025/0002")
	sep.IssueDate = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	sep.DueDate = time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	if err := s.CreateBill(ctx, sep); err != nil {
		t.Fatal(err)
	}

	cutoff := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	later, err := s.ListBills(ctx, bill.ListOpts{Start: &cutoff})
	if err != nil {
		t.Fatalf("ListBills start: %v", err)
	}
	if len(later) != 1 || later[0].Number != "BILL20250002" {
		t.Errorf("bills from cutoff = %v", later)
	}
	earlier, err := s.ListBills(ctx, bill.ListOpts{End: &cutoff})
	if err != nil {
		t.Fatalf("ListBills end: %v", err)
	}
	if len(earlier) != 1 || earlier[0].Number != "BILL20250001" {
		t.Errorf("bills to cutoff = %v", earlier)
	}

	numbers := []string{"PAY2508100001", "PAY2509050001"}
	for i, when := range []time.Time{
		time.Date(2025, 8, 10, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 9, 5, 10, 0, 0, 0, time.UTC),
	} {
		p := &payment.Payment{
			ID:           id.NewPaymentID(),
			Number:       numbers[i],
			BillID:       aug.ID,
			CustomerID:   c.ID,
			BillNumber:   aug.Number,
			CustomerName: c.Name,
			Amount:       types.INR(10000),
			Method:       payment.MethodCash,
			PaymentDate:  when,
			Status:       payment.StatusCompleted,
		}
		p.Reconciliation.Status = payment.ReconPending
		p.Entity = types.NewEntity()
		if err := s.CreatePayment(ctx, p); err != nil {
			t.Fatalf("payment %d: %v", i, err)
		}
	}

	from := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 31, 23, 59, 59, 0, time.UTC)
	recent, err := s.ListPayments(ctx, payment.ListOpts{Start: &from})
	if err != nil {
		t.Fatalf("ListPayments start: %v", err)
	}
	if len(recent) != 1 || recent[0].PaymentDate.Month() != time.September {
		t.Errorf("payments from cutoff = %v", recent)
	}
	august, err := s.ListPayments(ctx, payment.ListOpts{End: &to})
	if err != nil {
		t.Fatalf("ListPayments end: %v", err)
	}
	if len(august) != 1 || august[0].PaymentDate.Month() != time.August {
		t.Errorf("payments to cutoff = %v", august)
	}
}

func TestBillNumberAndInvoiceUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := testCustomer()
	if err := s.CreateCustomer(ctx, c); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateBill(ctx, testBill(c, "BILL20250001", "INV/2025/0001")); err != nil {
		t.Fatal(err)
	}

	if err := s.CreateBill(ctx, testBill(c, "BILL20250001", "INV/2025/0002")); !errors.Is(err, radix.ErrAlreadyExists) {
		t.Errorf("duplicate bill number: err = %v, want ErrAlreadyExists", err)
	}
	if err := s.CreateBill(ctx, testBill(c, "BILL20250002", "INV/2025/0001")); !errors.Is(err, radix.ErrAlreadyExists) {
		t.Errorf("duplicate invoice number: err = %v, want ErrAlreadyExists", err)
	}
}

func TestPaymentRoundTripWithReconciliation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := testCustomer()
	if err := s.CreateCustomer(ctx, c); err != nil {
		t.Fatal(err)
	}
	b := testBill(c, "BILL20250001", "INV/2025/0001")
	if err := s.CreateBill(ctx, b); err != nil {
		t.Fatal(err)
	}

	p := &payment.Payment{
		ID:           id.NewPaymentID(),
		Number:       "PAY2508310001",
		BillID:       b.ID,
		CustomerID:   c.ID,
		BillNumber:   b.Number,
		CustomerName: c.Name,
		Amount:       types.INR(58882),
		Method:       payment.MethodUPI,
		PaymentDate:  time.Date(2025, 8, 31, 10, 0, 0, 0, time.UTC),
		Status:       payment.StatusCompleted,
	}
	p.Reconciliation.Status = payment.ReconPending
	p.Entity = types.NewEntity()
	if err := s.CreatePayment(ctx, p); err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}

	got, err := s.GetPayment(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPayment: %v", err)
	}
	if got.Reconciliation.Status != payment.ReconPending {
		t.Errorf("recon status = %q", got.Reconciliation.Status)
	}
	if got.Reconciliation.BankStatementAmount != nil {
		t.Error("bank statement amount should be nil before reconciliation")
	}

	stmt := types.INR(58000)
	got.Apply(payment.ReconUpdate{
		Status:              payment.ReconUnmatched,
		By:                  "ops@radix.in",
		BankStatementRef:    "STMT-114",
		BankStatementAmount: &stmt,
	}, time.Now().UTC())
	if err := s.UpdatePayment(ctx, got); err != nil {
		t.Fatalf("UpdatePayment: %v", err)
	}

	again, err := s.GetPayment(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.Reconciliation.Status != payment.ReconUnmatched {
		t.Errorf("recon status = %q", again.Reconciliation.Status)
	}
	if again.Reconciliation.BankStatementAmount == nil || !again.Reconciliation.BankStatementAmount.Equal(stmt) {
		t.Errorf("statement amount = %v", again.Reconciliation.BankStatementAmount)
	}
	if !again.Reconciliation.AmountDifference.Equal(types.INR(-882)) {
		t.Errorf("difference = %v", again.Reconciliation.AmountDifference)
	}

	unreconciled, err := s.ListPayments(ctx, payment.ListOpts{ReconStatus: payment.ReconUnmatched})
	if err != nil {
		t.Fatal(err)
	}
	if len(unreconciled) != 1 {
		t.Errorf("unmatched = %d, want 1", len(unreconciled))
	}
}

func TestMaxIdentifier(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := testCustomer()
	if err := s.CreateCustomer(ctx, c); err != nil {
		t.Fatal(err)
	}
	for i, nums := range [][2]string{
		{"BILL20250001", "INV/2025/0001"},
		{"BILL20250003", "INV/2025/0003"},
		{"BILL20250002", "INV/2025/0002"},
	} {
		if err := s.CreateBill(ctx, testBill(c, nums[0], nums[1])); err != nil {
			t.Fatalf("bill %d: %v", i, err)
		}
	}

	got, err := s.MaxIdentifier(ctx, sequence.KindBill, "BILL2025")
	if err != nil {
		t.Fatal(err)
	}
	if got != "BILL20250003" {
		t.Errorf("max bill = %q, want BILL20250003", got)
	}

	got, err = s.MaxIdentifier(ctx, sequence.KindInvoice, "INV/2025/")
	if err != nil {
		t.Fatal(err)
	}
	if got != "INV/2025/0003" {
		t.Errorf("max invoice = %q", got)
	}

	got, err = s.MaxIdentifier(ctx, sequence.KindBill, "BILL2026")
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("max for empty window = %q, want empty", got)
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := testCustomer()
	if err := s.CreateCustomer(ctx, c); err != nil {
		t.Fatal(err)
	}
	paid := testBill(c, "BILL20250001", "INV/2025/0001")
	paid.PaidAmount = paid.TotalAmount
	paid.BalanceDue = types.INR(0)
	paid.Status = bill.StatusPaid
	if err := s.CreateBill(ctx, paid); err != nil {
		t.Fatal(err)
	}
	open := testBill(c, "BILL20250002", "INV/2025/0002")
	if err := s.CreateBill(ctx, open); err != nil {
		t.Fatal(err)
	}

	st, err := s.Stats(ctx, time.Date(2025, 8, 31, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalCustomers != 1 || st.ActiveCustomers != 1 {
		t.Errorf("customers = %d/%d", st.TotalCustomers, st.ActiveCustomers)
	}
	if st.TotalBills != 2 || st.PaidBills != 1 || st.PendingBills != 1 {
		t.Errorf("bills = %d paid %d pending %d", st.TotalBills, st.PaidBills, st.PendingBills)
	}
	if !st.TotalOutstanding.Equal(types.INR(58882)) {
		t.Errorf("outstanding = %v", st.TotalOutstanding)
	}
	if !st.TotalCollected.Equal(types.INR(58882)) {
		t.Errorf("collected = %v", st.TotalCollected)
	}
}
