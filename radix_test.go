package radix_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/recordrx/radix"
	"github.com/recordrx/radix/bill"
	"github.com/recordrx/radix/customer"
	"github.com/recordrx/radix/notify"
	"github.com/recordrx/radix/payment"
	"github.com/recordrx/radix/store/memory"
	"github.com/recordrx/radix/types"
)

// fakeNotifier records every send instead of talking SMTP.
type fakeNotifier struct {
	mu       sync.Mutex
	invoices []notify.InvoiceData
	receipts []notify.PaymentConfirmationData
	renewals []notify.RenewalReminderData
	welcomes []notify.WelcomeData
	fail     bool
}

func (f *fakeNotifier) record(do func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp unavailable")
	}
	do()
	return nil
}

func (f *fakeNotifier) SendInvoice(_ context.Context, _ string, d notify.InvoiceData) error {
	return f.record(func() { f.invoices = append(f.invoices, d) })
}

func (f *fakeNotifier) SendPaymentConfirmation(_ context.Context, _ string, d notify.PaymentConfirmationData) error {
	return f.record(func() { f.receipts = append(f.receipts, d) })
}

func (f *fakeNotifier) SendPaymentReminder(_ context.Context, _ string, _ notify.PaymentReminderData) error {
	return f.record(func() {})
}

func (f *fakeNotifier) SendRenewalReminder(_ context.Context, _ string, d notify.RenewalReminderData) error {
	return f.record(func() { f.renewals = append(f.renewals, d) })
}

func (f *fakeNotifier) SendWelcome(_ context.Context, _ string, d notify.WelcomeData) error {
	return f.record(func() { f.welcomes = append(f.welcomes, d) })
}

func (f *fakeNotifier) NotifyAdmin(_ context.Context, _, _ string) error {
	return f.record(func() {})
}

func newTestEngine(t *testing.T, now time.Time, notifier notify.Notifier) *radix.Engine {
	t.Helper()

	opts := []radix.Option{
		radix.WithClock(func() time.Time { return now }),
	}
	if notifier != nil {
		opts = append(opts, radix.WithNotifier(notifier))
	}

	eng := radix.New(memory.New(), opts...)
	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = eng.Stop() })
	return eng
}

func newCustomer(t *testing.T, eng *radix.Engine, name, email string) *customer.Customer {
	t.Helper()

	c := &customer.Customer{
		Name:  name,
		Email: email,
		Phone: "+91 98200 00000",
		Address: customer.Address{
			Street: "14 MG Road", City: "Pune", State: "MH", ZipCode: "411001",
		},
		SubscriptionPlan:   customer.PlanPremium,
		SubscriptionAmount: radix.INR(100000),
		BillingCycle:       customer.CycleMonthly,
	}
	if err := eng.CreateCustomer(context.Background(), c); err != nil {
		t.Fatalf("CreateCustomer() error = %v", err)
	}
	return c
}

func TestBillingLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 8, 31, 10, 0, 0, 0, time.UTC)
	notifier := &fakeNotifier{}
	eng := newTestEngine(t, now, notifier)

	// Customer registration issues sequential CUST numbers.
	first := newCustomer(t, eng, "Asha Traders", "accounts@ashatraders.example")
	second := newCustomer(t, eng, "Borkar & Sons", "billing@borkar.example")

	if first.Number != "CUST00001" {
		t.Fatalf("first customer number = %q, want CUST00001", first.Number)
	}
	if second.Number != "CUST00002" {
		t.Fatalf("second customer number = %q, want CUST00002", second.Number)
	}
	if len(notifier.welcomes) != 2 {
		t.Fatalf("welcome emails = %d, want 2", len(notifier.welcomes))
	}

	// Bill generation: numbering, totals, contact snapshot, ledger.
	b, err := eng.GenerateBill(ctx, radix.BillRequest{
		CustomerID:  first.ID,
		PeriodStart: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC),
		Items: []bill.LineItem{
			{Description: "Premium subscription", Quantity: 1, UnitPrice: radix.INR(100000)},
		},
	})
	if err != nil {
		t.Fatalf("GenerateBill() error = %v", err)
	}

	if b.Number != "BILL20250001" {
		t.Errorf("bill number = %q, want BILL20250001", b.Number)
	}
	if b.InvoiceNumber != "INV/2025/0001" {
		t.Errorf("invoice number = %q, want INV/2025/0001", b.InvoiceNumber)
	}
	// 100000 + 18% GST.
	if !b.TotalAmount.Equal(radix.INR(118000)) {
		t.Errorf("total = %v, want 1180.00", b.TotalAmount)
	}
	if !b.BalanceDue.Equal(b.TotalAmount) {
		t.Errorf("balance due = %v, want total", b.BalanceDue)
	}
	if b.CustomerAddress != "14 MG Road, Pune, MH - 411001" {
		t.Errorf("snapshot address = %q", b.CustomerAddress)
	}
	if want := now.AddDate(0, 0, 15); !b.DueDate.Equal(want) {
		t.Errorf("due date = %v, want %v", b.DueDate, want)
	}

	// Ledger applied the bill to the customer.
	cust, err := eng.GetCustomer(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetCustomer() error = %v", err)
	}
	if !cust.OutstandingBalance.Equal(radix.INR(118000)) {
		t.Errorf("outstanding = %v, want 1180.00", cust.OutstandingBalance)
	}
	if cust.LastBillDate == nil || !cust.LastBillDate.Equal(b.IssueDate) {
		t.Errorf("last bill date = %v", cust.LastBillDate)
	}
	if len(notifier.invoices) != 1 || notifier.invoices[0].InvoiceNumber != "INV/2025/0001" {
		t.Errorf("invoice emails = %+v", notifier.invoices)
	}

	// Partial payment.
	p1, err := eng.RecordPayment(ctx, radix.PaymentRequest{
		BillID: b.ID,
		Amount: radix.INR(50000),
		Method: payment.MethodUPI,
	})
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}
	if p1.Number != "PAY2508310001" {
		t.Errorf("payment number = %q, want PAY2508310001", p1.Number)
	}
	if p1.Reconciliation.Status != payment.ReconPending {
		t.Errorf("recon status = %q, want pending", p1.Reconciliation.Status)
	}

	afterPartial, _ := eng.GetBill(ctx, b.ID)
	if afterPartial.Status != bill.StatusPartial {
		t.Errorf("bill status = %q, want partial", afterPartial.Status)
	}
	if !afterPartial.BalanceDue.Equal(radix.INR(68000)) {
		t.Errorf("balance due = %v, want 680.00", afterPartial.BalanceDue)
	}

	// Final payment settles the bill and the customer balance.
	p2, err := eng.RecordPayment(ctx, radix.PaymentRequest{
		BillID: b.ID,
		Amount: radix.INR(68000),
		Method: payment.MethodBankTransfer,
	})
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}
	if p2.Number != "PAY2508310002" {
		t.Errorf("second payment number = %q", p2.Number)
	}

	settled, _ := eng.GetBill(ctx, b.ID)
	if settled.Status != bill.StatusPaid {
		t.Errorf("bill status = %q, want paid", settled.Status)
	}
	if settled.PaidAt == nil {
		t.Error("PaidAt not set on paid bill")
	}

	cust, _ = eng.GetCustomer(ctx, first.ID)
	if !cust.OutstandingBalance.IsZero() {
		t.Errorf("outstanding after settlement = %v, want zero", cust.OutstandingBalance)
	}
	if len(notifier.receipts) != 2 {
		t.Errorf("payment confirmation emails = %d, want 2", len(notifier.receipts))
	}

	// Reconcile against the bank statement.
	stmt := radix.INR(49500)
	rec, err := eng.ReconcilePayment(ctx, p1.ID, payment.ReconUpdate{
		Status:              payment.ReconMatched,
		By:                  "ops@example.com",
		BankStatementRef:    "UTR123",
		BankStatementAmount: &stmt,
	})
	if err != nil {
		t.Fatalf("ReconcilePayment() error = %v", err)
	}
	if rec.Reconciliation.Status != payment.ReconMatched {
		t.Errorf("recon status = %q", rec.Reconciliation.Status)
	}
	if !rec.Reconciliation.AmountDifference.Equal(radix.INR(-500)) {
		t.Errorf("amount difference = %v, want -5.00", rec.Reconciliation.AmountDifference)
	}
}

func TestGenerateBillValidation(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 8, 31, 10, 0, 0, 0, time.UTC)
	eng := newTestEngine(t, now, nil)
	c := newCustomer(t, eng, "Asha Traders", "accounts@ashatraders.example")

	if _, err := eng.GenerateBill(ctx, radix.BillRequest{CustomerID: c.ID}); !errors.Is(err, radix.ErrNoLineItems) {
		t.Fatalf("empty items error = %v, want ErrNoLineItems", err)
	}

	c.Status = customer.StatusSuspended
	if err := eng.UpdateCustomer(ctx, c); err != nil {
		t.Fatalf("UpdateCustomer() error = %v", err)
	}
	_, err := eng.GenerateBill(ctx, radix.BillRequest{
		CustomerID: c.ID,
		Items:      []bill.LineItem{{Description: "x", Quantity: 1, UnitPrice: radix.INR(100)}},
	})
	if !errors.Is(err, radix.ErrCustomerSuspended) {
		t.Fatalf("suspended customer error = %v, want ErrCustomerSuspended", err)
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 8, 31, 10, 0, 0, 0, time.UTC)
	eng := newTestEngine(t, now, nil)

	if _, err := eng.RecordPayment(ctx, radix.PaymentRequest{Amount: radix.INR(0), Method: payment.MethodCash}); !errors.Is(err, radix.ErrZeroAmount) {
		t.Fatalf("zero amount error = %v, want ErrZeroAmount", err)
	}
	if _, err := eng.RecordPayment(ctx, radix.PaymentRequest{Amount: radix.INR(100)}); !errors.Is(err, radix.ErrNoPaymentMethod) {
		t.Fatalf("missing method error = %v, want ErrNoPaymentMethod", err)
	}
}

func TestReconcilePaymentRejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 8, 31, 10, 0, 0, 0, time.UTC)
	eng := newTestEngine(t, now, nil)
	c := newCustomer(t, eng, "Asha Traders", "accounts@ashatraders.example")

	b, err := eng.GenerateBill(ctx, radix.BillRequest{
		CustomerID: c.ID,
		Items:      []bill.LineItem{{Description: "x", Quantity: 1, UnitPrice: radix.INR(100)}},
	})
	if err != nil {
		t.Fatalf("GenerateBill() error = %v", err)
	}
	p, err := eng.RecordPayment(ctx, radix.PaymentRequest{
		BillID: b.ID, Amount: radix.INR(118), Method: payment.MethodCash,
	})
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}

	_, err = eng.ReconcilePayment(ctx, p.ID, payment.ReconUpdate{Status: "archived"})
	if !radix.IsValidation(err) {
		t.Fatalf("unknown status error = %v, want validation error", err)
	}
}

func TestMarkOverdueBills(t *testing.T) {
	ctx := context.Background()
	issue := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	st := memory.New()

	eng := radix.New(st, radix.WithClock(func() time.Time { return issue }))
	if err := eng.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	c := newCustomer(t, eng, "Asha Traders", "accounts@ashatraders.example")

	b, err := eng.GenerateBill(ctx, radix.BillRequest{
		CustomerID: c.ID,
		DueDate:    issue.AddDate(0, 0, 10),
		Items:      []bill.LineItem{{Description: "x", Quantity: 1, UnitPrice: radix.INR(100000)}},
	})
	if err != nil {
		t.Fatalf("GenerateBill() error = %v", err)
	}

	// Before the due date nothing flips.
	flipped, err := eng.MarkOverdueBills(ctx)
	if err != nil {
		t.Fatalf("MarkOverdueBills() error = %v", err)
	}
	if len(flipped) != 0 {
		t.Fatalf("flipped before due date = %d, want 0", len(flipped))
	}

	// An engine over the same store, pinned past the due date, flips it.
	later := radix.New(st, radix.WithClock(func() time.Time {
		return issue.AddDate(0, 1, 0)
	}))
	flipped, err = later.MarkOverdueBills(ctx)
	if err != nil {
		t.Fatalf("MarkOverdueBills() error = %v", err)
	}
	if len(flipped) != 1 {
		t.Fatalf("flipped past due date = %d, want 1", len(flipped))
	}

	got, _ := eng.GetBill(ctx, b.ID)
	if got.Status != bill.StatusOverdue {
		t.Fatalf("status = %q, want overdue", got.Status)
	}
}

func TestRunRenewalReminders(t *testing.T) {
	ctx := context.Background()
	// A Monday inside the monthly late window.
	now := time.Date(2025, 8, 25, 9, 0, 0, 0, time.UTC)
	notifier := &fakeNotifier{}
	eng := newTestEngine(t, now, notifier)

	due := newCustomer(t, eng, "Asha Traders", "accounts@ashatraders.example")

	// Mid-cycle monthly customer: not due.
	fresh := newCustomer(t, eng, "Borkar & Sons", "billing@borkar.example")

	// Put the due customer late in its term by billing it near term start.
	start := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	due.LastBillDate = &start
	if err := eng.UpdateCustomer(ctx, due); err != nil {
		t.Fatalf("UpdateCustomer() error = %v", err)
	}
	midStart := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	fresh.LastBillDate = &midStart
	if err := eng.UpdateCustomer(ctx, fresh); err != nil {
		t.Fatalf("UpdateCustomer() error = %v", err)
	}

	run, err := eng.RunRenewalReminders(ctx)
	if err != nil {
		t.Fatalf("RunRenewalReminders() error = %v", err)
	}

	if run.Processed != 2 {
		t.Errorf("processed = %d, want 2", run.Processed)
	}
	// Both are due: on the 25th the monthly window is open for every
	// active monthly customer still inside their term.
	if run.Sent != len(run.Results) {
		t.Errorf("sent = %d, results = %d", run.Sent, len(run.Results))
	}
	if run.Sent == 0 {
		t.Fatal("no reminders sent on the 25th")
	}
	if len(notifier.renewals) != run.Sent {
		t.Errorf("notifier recorded %d sends, run reports %d", len(notifier.renewals), run.Sent)
	}
	for _, d := range notifier.renewals {
		if d.PlanType != "monthly" {
			t.Errorf("plan type = %q, want monthly", d.PlanType)
		}
		if d.DaysRemaining <= 0 {
			t.Errorf("days remaining = %d, want positive", d.DaysRemaining)
		}
	}
}

func TestRunRenewalRemindersReportsFailures(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 8, 25, 9, 0, 0, 0, time.UTC)
	notifier := &fakeNotifier{fail: true}
	eng := newTestEngine(t, now, notifier)
	newCustomer(t, eng, "Asha Traders", "accounts@ashatraders.example")

	run, err := eng.RunRenewalReminders(ctx)
	if err != nil {
		t.Fatalf("RunRenewalReminders() error = %v", err)
	}
	if run.Sent != 0 {
		t.Errorf("sent = %d, want 0", run.Sent)
	}
	if len(run.Results) == 0 || run.Results[0].Error == "" {
		t.Errorf("results = %+v, want recorded error", run.Results)
	}
}

func TestRenderInvoice(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 8, 31, 10, 0, 0, 0, time.UTC)
	eng := newTestEngine(t, now, nil)
	c := newCustomer(t, eng, "Asha Traders", "accounts@ashatraders.example")

	b, err := eng.GenerateBill(ctx, radix.BillRequest{
		CustomerID: c.ID,
		Items:      []bill.LineItem{{Description: "Premium subscription", Quantity: 1, UnitPrice: radix.INR(100000)}},
	})
	if err != nil {
		t.Fatalf("GenerateBill() error = %v", err)
	}

	var html bytes.Buffer
	if err := eng.RenderInvoice(ctx, b.ID, "html", &html); err != nil {
		t.Fatalf("RenderInvoice(html) error = %v", err)
	}
	if !strings.Contains(html.String(), b.InvoiceNumber) {
		t.Error("html invoice missing invoice number")
	}

	var pdf bytes.Buffer
	if err := eng.RenderInvoice(ctx, b.ID, "pdf", &pdf); err != nil {
		t.Fatalf("RenderInvoice(pdf) error = %v", err)
	}
	if !bytes.HasPrefix(pdf.Bytes(), []byte("%PDF-")) {
		t.Error("pdf invoice is not a PDF document")
	}

	if err := eng.RenderInvoice(ctx, b.ID, "docx", &bytes.Buffer{}); !radix.IsValidation(err) {
		t.Errorf("unknown format error = %v, want validation error", err)
	}

	if got := eng.InvoiceFilename(b, "pdf"); got != "Invoice-INV-2025-0001.pdf" {
		t.Errorf("InvoiceFilename() = %q", got)
	}
}

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 8, 31, 10, 0, 0, 0, time.UTC)
	eng := newTestEngine(t, now, nil)
	c := newCustomer(t, eng, "Asha Traders", "accounts@ashatraders.example")

	b, err := eng.GenerateBill(ctx, radix.BillRequest{
		CustomerID: c.ID,
		Items:      []bill.LineItem{{Description: "x", Quantity: 1, UnitPrice: radix.INR(100000)}},
	})
	if err != nil {
		t.Fatalf("GenerateBill() error = %v", err)
	}
	if _, err := eng.RecordPayment(ctx, radix.PaymentRequest{
		BillID: b.ID, Amount: radix.INR(50000), Method: payment.MethodUPI,
	}); err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}

	stats, err := eng.DashboardStats(ctx)
	if err != nil {
		t.Fatalf("DashboardStats() error = %v", err)
	}
	if stats.TotalCustomers != 1 || stats.ActiveCustomers != 1 {
		t.Errorf("customers = %d/%d, want 1/1", stats.TotalCustomers, stats.ActiveCustomers)
	}
	if stats.TotalBills != 1 || stats.PendingBills != 1 {
		t.Errorf("bills = %d total, %d pending", stats.TotalBills, stats.PendingBills)
	}
	if !stats.TotalCollected.Equal(radix.INR(50000)) {
		t.Errorf("collected = %v, want 500.00", stats.TotalCollected)
	}
	if !stats.TotalOutstanding.Equal(radix.INR(68000)) {
		t.Errorf("outstanding = %v, want 680.00", stats.TotalOutstanding)
	}
	if stats.UnreconciledCount != 1 {
		t.Errorf("unreconciled = %d, want 1", stats.UnreconciledCount)
	}
	if stats.PaymentsThisMonth != 1 {
		t.Errorf("payments this month = %d, want 1", stats.PaymentsThisMonth)
	}
}

func TestCreateCustomerValidation(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 8, 31, 10, 0, 0, 0, time.UTC)
	eng := newTestEngine(t, now, nil)

	err := eng.CreateCustomer(ctx, &customer.Customer{Email: "a@b.c"})
	if !radix.IsValidation(err) {
		t.Fatalf("missing name error = %v, want validation error", err)
	}
	err = eng.CreateCustomer(ctx, &customer.Customer{Name: "Asha"})
	if !radix.IsValidation(err) {
		t.Fatalf("missing email error = %v, want validation error", err)
	}
}

func TestCreateCustomerDefaults(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 8, 31, 10, 0, 0, 0, time.UTC)
	eng := newTestEngine(t, now, nil)

	c := &customer.Customer{Name: "Asha Traders", Email: "a@b.c"}
	if err := eng.CreateCustomer(ctx, c); err != nil {
		t.Fatalf("CreateCustomer() error = %v", err)
	}

	if c.SubscriptionPlan != customer.PlanBasic {
		t.Errorf("plan = %q, want basic", c.SubscriptionPlan)
	}
	if c.BillingCycle != customer.CycleMonthly {
		t.Errorf("cycle = %q, want monthly", c.BillingCycle)
	}
	if c.Status != customer.StatusActive {
		t.Errorf("status = %q, want active", c.Status)
	}
	if !c.OutstandingBalance.Equal(types.Zero("inr")) {
		t.Errorf("opening balance = %v, want zero", c.OutstandingBalance)
	}
	if c.ID.String() == "" {
		t.Error("record identity not assigned")
	}
}
