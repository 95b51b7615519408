package radix

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/recordrx/radix/bill"
	"github.com/recordrx/radix/customer"
	"github.com/recordrx/radix/id"
	"github.com/recordrx/radix/ledger"
	"github.com/recordrx/radix/notify"
	"github.com/recordrx/radix/payment"
	"github.com/recordrx/radix/plugin"
	"github.com/recordrx/radix/render"
	"github.com/recordrx/radix/renewal"
	"github.com/recordrx/radix/sequence"
	"github.com/recordrx/radix/store"
	"github.com/recordrx/radix/types"
)

// createRetries bounds how often an operation re-allocates a business
// number after the store rejects a create for uniqueness. Conflicts only
// happen when allocators race across processes, so a fresh allocation
// almost always lands on the first retry.
const createRetries = 3

// defaultDueDays is the payment window stamped on a bill when the caller
// does not provide a due date.
const defaultDueDays = 15

const dateLayout = "02 Jan 2006"

// Engine is the main billing engine.
type Engine struct {
	store    store.Store
	plugins  *plugin.Registry
	updater  *ledger.Updater
	seq      *sequence.Allocator
	notifier notify.Notifier
	logger   *slog.Logger

	renderers map[string]render.Renderer
	clock     func() time.Time
	currency  string
	company   render.CompanyView
}

// New creates a new Engine instance.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:     s,
		plugins:   plugin.NewRegistry(),
		notifier:  notify.Nop{},
		logger:    slog.Default(),
		renderers: make(map[string]render.Renderer),
		clock:     time.Now,
		currency:  "inr",
		company:   render.CompanyView{Name: "Radix", Tagline: "The Root of Reliability"},
	}

	for _, opt := range opts {
		opt(e)
	}

	if _, ok := e.renderers["html"]; !ok {
		e.renderers["html"] = render.NewHTML()
	}
	if _, ok := e.renderers["pdf"]; !ok {
		e.renderers["pdf"] = render.NewPDF()
	}

	e.seq = sequence.New(store.Sequences(s))
	e.updater = ledger.New(store.Customers(s), store.Bills(s), e.logger)

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithNotifier sets the email notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithRenderer registers an invoice renderer, replacing the built-in one
// for the same format.
func WithRenderer(r render.Renderer) Option {
	return func(e *Engine) {
		e.renderers[r.Format()] = r
	}
}

// WithCurrency sets the single billing currency. Default is "inr".
func WithCurrency(currency string) Option {
	return func(e *Engine) {
		e.currency = currency
	}
}

// WithCompany sets the letterhead used on documents and emails.
func WithCompany(name, tagline string) Option {
	return func(e *Engine) {
		e.company = render.CompanyView{Name: name, Tagline: tagline}
	}
}

// WithClock overrides the engine's time source. Tests use this to pin
// cadence and due-date decisions.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// Start migrates the store and initializes plugins.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	e.plugins.EmitInit(ctx, e)

	e.logger.Info("radix started",
		"currency", e.currency,
		"plugins", e.plugins.Count(),
	)

	return nil
}

// Stop shuts down the Engine.
func (e *Engine) Stop() error {
	e.plugins.EmitShutdown(context.Background())
	return e.store.Close()
}

// Plugins exposes the plugin registry.
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// ──────────────────────────────────────────────────
// Customer Management
// ──────────────────────────────────────────────────

// CreateCustomer registers a customer and issues its CUST number. The
// caller provides contact and plan details; identity, numbering, and the
// opening balance are set here.
func (e *Engine) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	if c.Name == "" {
		return ValidationError{Field: "name", Message: "is required"}
	}
	if c.Email == "" {
		return ValidationError{Field: "email", Message: "is required"}
	}

	if c.SubscriptionPlan == "" {
		c.SubscriptionPlan = customer.PlanBasic
	}
	if c.BillingCycle == "" {
		c.BillingCycle = customer.CycleMonthly
	}
	if c.Status == "" {
		c.Status = customer.StatusActive
	}
	if c.SubscriptionAmount.Currency == "" {
		c.SubscriptionAmount.Currency = e.currency
	}

	if c.ID.String() == "" {
		c.ID = id.NewCustomerID()
	}
	c.Entity = types.NewEntity()
	c.OutstandingBalance = types.Zero(e.currency)

	now := e.clock()
	err := e.withNumberRetry(func() error {
		number, allocErr := e.seq.Allocate(ctx, sequence.KindCustomer, now)
		if allocErr != nil {
			return allocErr
		}
		c.Number = number
		return e.store.CreateCustomer(ctx, c)
	})
	if err != nil {
		return err
	}

	e.plugins.EmitCustomerCreated(ctx, c)

	if sendErr := e.notifier.SendWelcome(ctx, c.Email, notify.WelcomeData{
		CustomerName: c.Name,
		CustomerID:   c.Number,
		PlanName:     string(c.SubscriptionPlan),
		PlanAmount:   c.SubscriptionAmount.FormatMajor(),
	}); sendErr != nil {
		e.logger.Warn("welcome email failed", "customer", c.Number, "error", sendErr)
	}

	e.logger.Info("customer created", "customer", c.Number, "plan", c.SubscriptionPlan)
	return nil
}

// GetCustomer retrieves a customer by ID.
func (e *Engine) GetCustomer(ctx context.Context, customerID id.CustomerID) (*customer.Customer, error) {
	return e.store.GetCustomer(ctx, customerID)
}

// GetCustomerByNumber retrieves a customer by its CUST number.
func (e *Engine) GetCustomerByNumber(ctx context.Context, number string) (*customer.Customer, error) {
	return e.store.GetCustomerByNumber(ctx, number)
}

// ListCustomers lists customers with optional filters.
func (e *Engine) ListCustomers(ctx context.Context, opts customer.ListOpts) ([]*customer.Customer, error) {
	return e.store.ListCustomers(ctx, opts)
}

// UpdateCustomer persists edits to a customer's contact and plan fields.
// The customer number and balance fields are not editable here; the
// balance belongs to the ledger updater.
func (e *Engine) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	old, err := e.store.GetCustomer(ctx, c.ID)
	if err != nil {
		return err
	}

	c.Number = old.Number
	c.OutstandingBalance = old.OutstandingBalance
	c.Touch()

	if err := e.store.UpdateCustomer(ctx, c); err != nil {
		return err
	}

	e.plugins.EmitCustomerUpdated(ctx, old, c)
	return nil
}

// RebuildCustomerBalance recomputes a customer's outstanding balance from
// its bills. Recovery path for a persisted ledger out-of-sync failure.
func (e *Engine) RebuildCustomerBalance(ctx context.Context, customerID id.CustomerID) (types.Money, error) {
	c, err := e.store.GetCustomer(ctx, customerID)
	if err != nil {
		return types.Zero(e.currency), err
	}
	return e.updater.RebuildBalance(ctx, c)
}

// ──────────────────────────────────────────────────
// Bill Generation
// ──────────────────────────────────────────────────

// BillRequest is the input for generating a bill.
type BillRequest struct {
	CustomerID  id.CustomerID
	Items       []bill.LineItem
	PeriodStart time.Time
	PeriodEnd   time.Time
	// DueDate defaults to defaultDueDays after issue when zero.
	DueDate       time.Time
	Notes         string
	AutoGenerated bool
}

// GenerateBill computes, numbers, and persists a bill for a customer,
// then applies it to the customer's ledger. Contact fields are
// snapshotted onto the bill at issue time.
//
// A ledger out-of-sync failure returns the persisted bill together with
// ErrLedgerOutOfSync; the bill stands, the customer balance needs
// RebuildCustomerBalance.
func (e *Engine) GenerateBill(ctx context.Context, req BillRequest) (*bill.Bill, error) {
	if len(req.Items) == 0 {
		return nil, ErrNoLineItems
	}

	c, err := e.store.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	switch c.Status {
	case customer.StatusSuspended:
		return nil, ErrCustomerSuspended
	case customer.StatusInactive:
		return nil, ErrCustomerInactive
	}

	now := e.clock()
	dueDate := req.DueDate
	if dueDate.IsZero() {
		dueDate = now.AddDate(0, 0, defaultDueDays)
	}

	b := &bill.Bill{
		Entity:          types.NewEntity(),
		ID:              id.NewBillID(),
		CustomerID:      c.ID,
		CustomerNumber:  c.Number,
		CustomerName:    c.Name,
		CustomerEmail:   c.Email,
		CustomerPhone:   c.Phone,
		CustomerAddress: c.ContactLine(),
		CustomerGSTIN:   c.GSTIN,

		BillingPeriodStart: req.PeriodStart,
		BillingPeriodEnd:   req.PeriodEnd,
		IssueDate:          now,
		DueDate:            dueDate,

		Notes:         req.Notes,
		AutoGenerated: req.AutoGenerated,
		Discount:      types.Zero(e.currency),
	}
	b.ApplyTotals(bill.Compute(req.Items, e.currency))

	err = e.withNumberRetry(func() error {
		number, allocErr := e.seq.Allocate(ctx, sequence.KindBill, now)
		if allocErr != nil {
			return allocErr
		}
		invoice, allocErr := e.seq.Allocate(ctx, sequence.KindInvoice, now)
		if allocErr != nil {
			return allocErr
		}
		b.Number = number
		b.InvoiceNumber = invoice
		return e.store.CreateBill(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	if err := e.updater.ApplyNewBill(ctx, b, now); err != nil {
		if errors.Is(err, ErrLedgerOutOfSync) {
			e.plugins.EmitLedgerOutOfSync(ctx, c.ID.String(), err)
			return b, err
		}
		return b, err
	}

	e.plugins.EmitBillGenerated(ctx, b)

	if sendErr := e.notifier.SendInvoice(ctx, b.CustomerEmail, notify.InvoiceData{
		CustomerName:  b.CustomerName,
		InvoiceNumber: b.InvoiceNumber,
		BillingPeriod: formatPeriod(b.BillingPeriodStart, b.BillingPeriodEnd),
		Amount:        b.TotalAmount.FormatMajor(),
		DueDate:       b.DueDate.Format(dateLayout),
	}); sendErr != nil {
		e.logger.Warn("invoice email failed", "bill", b.Number, "error", sendErr)
	}

	e.logger.Info("bill generated",
		"bill", b.Number,
		"invoice", b.InvoiceNumber,
		"customer", b.CustomerNumber,
		"total", b.TotalAmount.String(),
	)
	return b, nil
}

// GetBill retrieves a bill by ID.
func (e *Engine) GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error) {
	return e.store.GetBill(ctx, billID)
}

// ListBills lists bills with optional filters.
func (e *Engine) ListBills(ctx context.Context, opts bill.ListOpts) ([]*bill.Bill, error) {
	return e.store.ListBills(ctx, opts)
}

// ListBillsByCustomer lists all bills for one customer.
func (e *Engine) ListBillsByCustomer(ctx context.Context, customerID id.CustomerID) ([]*bill.Bill, error) {
	return e.store.ListBillsByCustomer(ctx, customerID)
}

// MarkOverdueBills flips unpaid bills past their due date to overdue and
// returns them.
func (e *Engine) MarkOverdueBills(ctx context.Context) ([]*bill.Bill, error) {
	flipped, err := e.updater.MarkOverdue(ctx, e.clock())
	if err != nil {
		return nil, err
	}

	for _, b := range flipped {
		e.plugins.EmitBillOverdue(ctx, b)
	}
	return flipped, nil
}

// ──────────────────────────────────────────────────
// Payments
// ──────────────────────────────────────────────────

// PaymentRequest is the input for recording a payment against a bill.
type PaymentRequest struct {
	BillID id.BillID
	Amount types.Money
	Method payment.Method
	// PaymentDate defaults to now when zero.
	PaymentDate     time.Time
	TransactionID   string
	ReferenceNumber string
	BankName        string
	ChequeNumber    string
	ChequeDate      *time.Time
	Notes           string
}

// RecordPayment persists a payment and rolls it into the bill and
// customer ledger. Overpayment is accepted; the bill's balance goes
// negative and its status becomes paid.
func (e *Engine) RecordPayment(ctx context.Context, req PaymentRequest) (*payment.Payment, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrZeroAmount
	}
	if req.Method == "" {
		return nil, ErrNoPaymentMethod
	}

	b, err := e.store.GetBill(ctx, req.BillID)
	if err != nil {
		return nil, err
	}

	now := e.clock()
	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = now
	}

	p := &payment.Payment{
		Entity:       types.NewEntity(),
		ID:           id.NewPaymentID(),
		BillID:       b.ID,
		CustomerID:   b.CustomerID,
		BillNumber:   b.Number,
		CustomerName: b.CustomerName,

		Amount:          req.Amount,
		Method:          req.Method,
		PaymentDate:     paymentDate,
		TransactionID:   req.TransactionID,
		ReferenceNumber: req.ReferenceNumber,
		BankName:        req.BankName,
		ChequeNumber:    req.ChequeNumber,
		ChequeDate:      req.ChequeDate,
		Notes:           req.Notes,

		Status: payment.StatusCompleted,
		Reconciliation: payment.Reconciliation{
			Status:           payment.ReconPending,
			AmountDifference: types.Zero(req.Amount.Currency),
		},
	}

	err = e.withNumberRetry(func() error {
		number, allocErr := e.seq.Allocate(ctx, sequence.KindPayment, paymentDate)
		if allocErr != nil {
			return allocErr
		}
		p.Number = number
		return e.store.CreatePayment(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	updated, err := e.updater.ApplyPayment(ctx, p, now)
	if err != nil {
		if errors.Is(err, ErrLedgerOutOfSync) {
			e.plugins.EmitLedgerOutOfSync(ctx, b.CustomerID.String(), err)
			return p, err
		}
		return p, err
	}

	e.plugins.EmitPaymentRecorded(ctx, p)
	if updated.Status == bill.StatusPaid {
		e.plugins.EmitBillPaid(ctx, updated)
	}

	if sendErr := e.notifier.SendPaymentConfirmation(ctx, b.CustomerEmail, notify.PaymentConfirmationData{
		CustomerName:  p.CustomerName,
		PaymentID:     p.Number,
		InvoiceNumber: b.InvoiceNumber,
		Amount:        p.Amount.FormatMajor(),
		PaymentDate:   p.PaymentDate.Format(dateLayout),
		PaymentMethod: string(p.Method),
	}); sendErr != nil {
		e.logger.Warn("payment confirmation email failed", "payment", p.Number, "error", sendErr)
	}

	e.logger.Info("payment recorded",
		"payment", p.Number,
		"bill", p.BillNumber,
		"amount", p.Amount.String(),
		"bill_status", updated.Status,
	)
	return p, nil
}

// GetPayment retrieves a payment by ID.
func (e *Engine) GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Payment, error) {
	return e.store.GetPayment(ctx, paymentID)
}

// ListPayments lists payments with optional filters.
func (e *Engine) ListPayments(ctx context.Context, opts payment.ListOpts) ([]*payment.Payment, error) {
	return e.store.ListPayments(ctx, opts)
}

// ListPaymentsByBill lists all payments recorded against one bill.
func (e *Engine) ListPaymentsByBill(ctx context.Context, billID id.BillID) ([]*payment.Payment, error) {
	return e.store.ListPaymentsByBill(ctx, billID)
}

// ReconcilePayment moves a payment through the reconciliation state
// machine. Any transition between known states is accepted; off-nominal
// ones are logged for review, not rejected.
func (e *Engine) ReconcilePayment(ctx context.Context, paymentID id.PaymentID, update payment.ReconUpdate) (*payment.Payment, error) {
	if !payment.ValidReconStatus(update.Status) {
		return nil, ValidationError{Field: "reconciliation_status", Message: fmt.Sprintf("unknown status %q", update.Status)}
	}

	p, err := e.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	from := p.Reconciliation.Status
	if !payment.IsNominal(from, update.Status) {
		e.logger.Warn("off-nominal reconciliation transition",
			"payment", p.Number,
			"from", from,
			"to", update.Status,
		)
	}

	p.Apply(update, e.clock())

	if err := e.store.UpdatePayment(ctx, p); err != nil {
		return nil, err
	}

	e.plugins.EmitPaymentReconciled(ctx, p, string(from), string(p.Reconciliation.Status))
	return p, nil
}

// ──────────────────────────────────────────────────
// Renewal Reminders
// ──────────────────────────────────────────────────

// ReminderResult is the outcome for one customer due a reminder.
type ReminderResult struct {
	CustomerNumber string `json:"customer_id"`
	Email          string `json:"email"`
	DaysRemaining  int    `json:"days_remaining"`
	Sent           bool   `json:"sent"`
	Error          string `json:"error,omitempty"`
}

// ReminderRun summarizes one renewal reminder sweep.
type ReminderRun struct {
	Processed int              `json:"processed"`
	Sent      int              `json:"sent"`
	Results   []ReminderResult `json:"results"`
}

// RunRenewalReminders evaluates every customer against the renewal
// cadence and emails the ones due a reminder. Trigger-driven: call it
// from an external scheduler, daily. The cadence itself filters yearly
// plans down to Mondays.
func (e *Engine) RunRenewalReminders(ctx context.Context) (*ReminderRun, error) {
	customers, err := e.store.ListCustomers(ctx, customer.ListOpts{})
	if err != nil {
		return nil, err
	}

	now := e.clock()
	run := &ReminderRun{}

	for _, c := range customers {
		run.Processed++

		cand := renewal.FromCustomer(c, now)
		decision := renewal.Evaluate(cand, now)
		if !decision.Due {
			continue
		}

		result := ReminderResult{
			CustomerNumber: c.Number,
			Email:          c.Email,
			DaysRemaining:  decision.DaysRemaining,
		}

		sendErr := e.notifier.SendRenewalReminder(ctx, c.Email, notify.RenewalReminderData{
			CustomerName:  c.Name,
			PlanName:      string(c.SubscriptionPlan),
			PlanType:      string(c.BillingCycle),
			ExpiryDate:    decision.ExpiryDate.Format(dateLayout),
			DaysRemaining: decision.DaysRemaining,
			Amount:        c.SubscriptionAmount.FormatMajor(),
		})
		if sendErr != nil {
			result.Error = sendErr.Error()
			e.logger.Warn("renewal reminder failed", "customer", c.Number, "error", sendErr)
		} else {
			result.Sent = true
			run.Sent++
			e.plugins.EmitReminderSent(ctx, c, decision.DaysRemaining)
		}

		run.Results = append(run.Results, result)
	}

	e.logger.Info("renewal reminder run complete",
		"processed", run.Processed,
		"sent", run.Sent,
	)
	return run, nil
}

// ──────────────────────────────────────────────────
// Documents and Stats
// ──────────────────────────────────────────────────

// RenderInvoice writes the invoice document for a bill to w. Plugins may
// override a format's built-in renderer.
func (e *Engine) RenderInvoice(ctx context.Context, billID id.BillID, format string, w io.Writer) error {
	b, err := e.store.GetBill(ctx, billID)
	if err != nil {
		return err
	}

	if r := e.plugins.GetInvoiceRenderer(format); r != nil {
		return r.Render(ctx, b, w)
	}

	r, ok := e.renderers[format]
	if !ok {
		return ValidationError{Field: "format", Message: fmt.Sprintf("no renderer for %q", format)}
	}
	return r.Render(ctx, render.FromBill(b, e.company), w)
}

// InvoiceFilename returns the download filename for a bill's invoice.
func (e *Engine) InvoiceFilename(b *bill.Bill, format string) string {
	return render.Filename(b.InvoiceNumber, format)
}

// DashboardStats computes the dashboard rollup.
func (e *Engine) DashboardStats(ctx context.Context) (*store.Stats, error) {
	return e.store.Stats(ctx, e.clock())
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

// withNumberRetry runs create, re-running it with a fresh allocation when
// the store reports a uniqueness conflict. Allocated numbers are not
// reserved, so two processes can race to the same one; the loser
// re-allocates past it.
func (e *Engine) withNumberRetry(create func() error) error {
	var err error
	for attempt := 0; attempt < createRetries; attempt++ {
		err = create()
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrAlreadyExists) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrSequenceConflict, err)
}

func formatPeriod(start, end time.Time) string {
	return start.Format(dateLayout) + " - " + end.Format(dateLayout)
}
