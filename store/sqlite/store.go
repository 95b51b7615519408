// Package sqlite implements store.Store on SQLite via the pure-Go
// modernc.org/sqlite driver. Money is stored as integer minor units,
// times as RFC 3339 text, line items as a JSON column.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/recordrx/radix"
	"github.com/recordrx/radix/bill"
	"github.com/recordrx/radix/customer"
	"github.com/recordrx/radix/id"
	"github.com/recordrx/radix/payment"
	"github.com/recordrx/radix/sequence"
	"github.com/recordrx/radix/store"
	"github.com/recordrx/radix/types"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and returns a Store.
// Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("radix/sqlite: open %s: %w", path, err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY on concurrent writers.
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// New wraps an existing database handle.
func New(db *sql.DB) *Store { return &Store{db: db} }

// DB returns the underlying handle for direct access.
func (s *Store) DB() *sql.DB { return s.db }

// Migrate creates the required tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range Migrations() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: %v", radix.ErrMigrationFailed, err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

// isUniqueViolation detects a unique index conflict from the driver.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ──────────────────────────────────────────────────
// Customers
// ──────────────────────────────────────────────────

const customerCols = `id, number, name, email, phone, street, city, state, zip_code, country, gstin,
	plan, plan_amount, billing_cycle, status, outstanding_balance, currency,
	last_bill_date, next_bill_date, created_at, updated_at`

func (s *Store) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO radix_customers (`+customerCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.Number, c.Name, c.Email, c.Phone,
		c.Address.Street, c.Address.City, c.Address.State, c.Address.ZipCode, c.Address.Country, c.GSTIN,
		string(c.SubscriptionPlan), c.SubscriptionAmount.Amount, string(c.BillingCycle), string(c.Status),
		c.OutstandingBalance.Amount, c.SubscriptionAmount.Currency,
		fmtTimePtr(c.LastBillDate), fmtTimePtr(c.NextBillDate), fmtTime(c.CreatedAt), fmtTime(c.UpdatedAt))
	if isUniqueViolation(err) {
		return radix.ErrAlreadyExists
	}
	return err
}

func (s *Store) GetCustomer(ctx context.Context, customerID id.CustomerID) (*customer.Customer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+customerCols+` FROM radix_customers WHERE id = ?`, customerID.String())
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, radix.ErrCustomerNotFound
	}
	return c, err
}

func (s *Store) GetCustomerByNumber(ctx context.Context, number string) (*customer.Customer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+customerCols+` FROM radix_customers WHERE number = ?`, number)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, radix.ErrCustomerNotFound
	}
	return c, err
}

func (s *Store) ListCustomers(ctx context.Context, opts customer.ListOpts) ([]*customer.Customer, error) {
	q := `SELECT ` + customerCols + ` FROM radix_customers WHERE 1=1`
	args := []any{}
	if opts.Status != "" {
		q += ` AND status = ?`
		args = append(args, string(opts.Status))
	}
	if opts.Search != "" {
		q += ` AND (name LIKE ? OR email LIKE ? OR number LIKE ? OR phone LIKE ?)`
		like := "%" + opts.Search + "%"
		args = append(args, like, like, like, like)
	}
	q += ` ORDER BY number`
	q, args = withPaging(q, args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*customer.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *Store) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	res, err := s.db.ExecContext(ctx, `UPDATE radix_customers SET
		number = ?, name = ?, email = ?, phone = ?,
		street = ?, city = ?, state = ?, zip_code = ?, country = ?, gstin = ?,
		plan = ?, plan_amount = ?, billing_cycle = ?, status = ?,
		outstanding_balance = ?, currency = ?, last_bill_date = ?, next_bill_date = ?, updated_at = ?
		WHERE id = ?`,
		c.Number, c.Name, c.Email, c.Phone,
		c.Address.Street, c.Address.City, c.Address.State, c.Address.ZipCode, c.Address.Country, c.GSTIN,
		string(c.SubscriptionPlan), c.SubscriptionAmount.Amount, string(c.BillingCycle), string(c.Status),
		c.OutstandingBalance.Amount, c.SubscriptionAmount.Currency,
		fmtTimePtr(c.LastBillDate), fmtTimePtr(c.NextBillDate), fmtTime(c.UpdatedAt),
		c.ID.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return radix.ErrCustomerNotFound
	}
	return nil
}

func (s *Store) CountCustomers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM radix_customers`).Scan(&n)
	return n, err
}

func scanCustomer(row interface{ Scan(...any) error }) (*customer.Customer, error) {
	var (
		c                       customer.Customer
		rid                     string
		plan, cycle, status     string
		planAmt, balance        int64
		currency                string
		lastBill, nextBill      sql.NullString
		createdAt, updatedAt    string
	)
	err := row.Scan(&rid, &c.Number, &c.Name, &c.Email, &c.Phone,
		&c.Address.Street, &c.Address.City, &c.Address.State, &c.Address.ZipCode, &c.Address.Country, &c.GSTIN,
		&plan, &planAmt, &cycle, &status, &balance, &currency,
		&lastBill, &nextBill, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if c.ID, err = id.ParseCustomerID(rid); err != nil {
		return nil, err
	}
	c.SubscriptionPlan = customer.Plan(plan)
	c.BillingCycle = customer.BillingCycle(cycle)
	c.Status = customer.Status(status)
	c.SubscriptionAmount = types.Money{Amount: planAmt, Currency: currency}
	c.OutstandingBalance = types.Money{Amount: balance, Currency: currency}
	if c.LastBillDate, err = parseTimePtr(lastBill); err != nil {
		return nil, err
	}
	if c.NextBillDate, err = parseTimePtr(nextBill); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// ──────────────────────────────────────────────────
// Bills
// ──────────────────────────────────────────────────

const billCols = `id, number, invoice_number, customer_id, customer_number, customer_name,
	customer_email, customer_phone, customer_address, customer_gstin, items,
	subtotal, tax_amount, discount, total_amount, paid_amount, balance_due, currency, status,
	period_start, period_end, issue_date, due_date, paid_at, notes, auto_generated,
	created_at, updated_at`

func (s *Store) CreateBill(ctx context.Context, b *bill.Bill) error {
	items, err := json.Marshal(b.Items)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO radix_bills (`+billCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID.String(), b.Number, b.InvoiceNumber, b.CustomerID.String(), b.CustomerNumber, b.CustomerName,
		b.CustomerEmail, b.CustomerPhone, b.CustomerAddress, b.CustomerGSTIN, string(items),
		b.Subtotal.Amount, b.TaxAmount.Amount, b.Discount.Amount, b.TotalAmount.Amount,
		b.PaidAmount.Amount, b.BalanceDue.Amount, b.TotalAmount.Currency, string(b.Status),
		fmtTime(b.BillingPeriodStart), fmtTime(b.BillingPeriodEnd), fmtTime(b.IssueDate), fmtTime(b.DueDate),
		fmtTimePtr(b.PaidAt), b.Notes, boolInt(b.AutoGenerated), fmtTime(b.CreatedAt), fmtTime(b.UpdatedAt))
	if isUniqueViolation(err) {
		return radix.ErrAlreadyExists
	}
	return err
}

func (s *Store) GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+billCols+` FROM radix_bills WHERE id = ?`, billID.String())
	b, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, radix.ErrBillNotFound
	}
	return b, err
}

func (s *Store) ListBills(ctx context.Context, opts bill.ListOpts) ([]*bill.Bill, error) {
	q := `SELECT ` + billCols + ` FROM radix_bills WHERE 1=1`
	args := []any{}
	if opts.Status != "" {
		q += ` AND status = ?`
		args = append(args, string(opts.Status))
	}
	if !opts.CustomerID.IsNil() {
		q += ` AND customer_id = ?`
		args = append(args, opts.CustomerID.String())
	}
	if opts.Start != nil {
		q += ` AND issue_date >= ?`
		args = append(args, fmtTime(*opts.Start))
	}
	if opts.End != nil {
		q += ` AND issue_date <= ?`
		args = append(args, fmtTime(*opts.End))
	}
	q += ` ORDER BY number`
	q, args = withPaging(q, args, opts.Limit, opts.Offset)
	return s.queryBills(ctx, q, args...)
}

func (s *Store) UpdateBill(ctx context.Context, b *bill.Bill) error {
	items, err := json.Marshal(b.Items)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE radix_bills SET
		items = ?, subtotal = ?, tax_amount = ?, discount = ?, total_amount = ?,
		paid_amount = ?, balance_due = ?, status = ?, paid_at = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		string(items), b.Subtotal.Amount, b.TaxAmount.Amount, b.Discount.Amount, b.TotalAmount.Amount,
		b.PaidAmount.Amount, b.BalanceDue.Amount, string(b.Status), fmtTimePtr(b.PaidAt), b.Notes,
		fmtTime(b.UpdatedAt), b.ID.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return radix.ErrBillNotFound
	}
	return nil
}

func (s *Store) ListBillsByCustomer(ctx context.Context, customerID id.CustomerID) ([]*bill.Bill, error) {
	return s.queryBills(ctx, `SELECT `+billCols+` FROM radix_bills WHERE customer_id = ? ORDER BY number`,
		customerID.String())
}

func (s *Store) queryBills(ctx context.Context, q string, args ...any) ([]*bill.Bill, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*bill.Bill, 0)
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func scanBill(row interface{ Scan(...any) error }) (*bill.Bill, error) {
	var (
		b                                  bill.Bill
		rid, cid, items, currency, status  string
		subtotal, tax, discount            int64
		total, paid, balance               int64
		periodStart, periodEnd             string
		issueDate, dueDate                 string
		paidAt                             sql.NullString
		autoGen                            int64
		createdAt, updatedAt               string
	)
	err := row.Scan(&rid, &b.Number, &b.InvoiceNumber, &cid, &b.CustomerNumber, &b.CustomerName,
		&b.CustomerEmail, &b.CustomerPhone, &b.CustomerAddress, &b.CustomerGSTIN, &items,
		&subtotal, &tax, &discount, &total, &paid, &balance, &currency, &status,
		&periodStart, &periodEnd, &issueDate, &dueDate, &paidAt, &b.Notes, &autoGen,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if b.ID, err = id.ParseBillID(rid); err != nil {
		return nil, err
	}
	if b.CustomerID, err = id.ParseCustomerID(cid); err != nil {
		return nil, err
	}
	if err = json.Unmarshal([]byte(items), &b.Items); err != nil {
		return nil, err
	}
	b.Subtotal = types.Money{Amount: subtotal, Currency: currency}
	b.TaxAmount = types.Money{Amount: tax, Currency: currency}
	b.Discount = types.Money{Amount: discount, Currency: currency}
	b.TotalAmount = types.Money{Amount: total, Currency: currency}
	b.PaidAmount = types.Money{Amount: paid, Currency: currency}
	b.BalanceDue = types.Money{Amount: balance, Currency: currency}
	b.Status = bill.Status(status)
	b.AutoGenerated = autoGen != 0
	if b.BillingPeriodStart, err = parseTime(periodStart); err != nil {
		return nil, err
	}
	if b.BillingPeriodEnd, err = parseTime(periodEnd); err != nil {
		return nil, err
	}
	if b.IssueDate, err = parseTime(issueDate); err != nil {
		return nil, err
	}
	if b.DueDate, err = parseTime(dueDate); err != nil {
		return nil, err
	}
	if b.PaidAt, err = parseTimePtr(paidAt); err != nil {
		return nil, err
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// ──────────────────────────────────────────────────
// Payments
// ──────────────────────────────────────────────────

const paymentCols = `id, number, bill_id, customer_id, bill_number, customer_name,
	amount, currency, method, payment_date, transaction_id, reference_number,
	bank_name, cheque_number, cheque_date,
	recon_status, recon_date, recon_by, recon_notes,
	bank_statement_ref, bank_statement_date, bank_statement_amount, amount_difference,
	status, notes, created_at, updated_at`

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	var stmtAmount any
	if p.Reconciliation.BankStatementAmount != nil {
		stmtAmount = p.Reconciliation.BankStatementAmount.Amount
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO radix_payments (`+paymentCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID.String(), p.Number, p.BillID.String(), p.CustomerID.String(), p.BillNumber, p.CustomerName,
		p.Amount.Amount, p.Amount.Currency, string(p.Method), fmtTime(p.PaymentDate),
		p.TransactionID, p.ReferenceNumber, p.BankName, p.ChequeNumber, fmtTimePtr(p.ChequeDate),
		string(p.Reconciliation.Status), fmtTimePtr(p.Reconciliation.Date), p.Reconciliation.By, p.Reconciliation.Notes,
		p.Reconciliation.BankStatementRef, fmtTimePtr(p.Reconciliation.BankStatementDate), stmtAmount,
		p.Reconciliation.AmountDifference.Amount,
		string(p.Status), p.Notes, fmtTime(p.CreatedAt), fmtTime(p.UpdatedAt))
	if isUniqueViolation(err) {
		return radix.ErrAlreadyExists
	}
	return err
}

func (s *Store) GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Payment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+paymentCols+` FROM radix_payments WHERE id = ?`, paymentID.String())
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, radix.ErrPaymentNotFound
	}
	return p, err
}

func (s *Store) ListPayments(ctx context.Context, opts payment.ListOpts) ([]*payment.Payment, error) {
	q := `SELECT ` + paymentCols + ` FROM radix_payments WHERE 1=1`
	args := []any{}
	if opts.Status != "" {
		q += ` AND status = ?`
		args = append(args, string(opts.Status))
	}
	if opts.ReconStatus != "" {
		q += ` AND recon_status = ?`
		args = append(args, string(opts.ReconStatus))
	}
	if !opts.CustomerID.IsNil() {
		q += ` AND customer_id = ?`
		args = append(args, opts.CustomerID.String())
	}
	if opts.Start != nil {
		q += ` AND payment_date >= ?`
		args = append(args, fmtTime(*opts.Start))
	}
	if opts.End != nil {
		q += ` AND payment_date <= ?`
		args = append(args, fmtTime(*opts.End))
	}
	q += ` ORDER BY number`
	q, args = withPaging(q, args, opts.Limit, opts.Offset)
	return s.queryPayments(ctx, q, args...)
}

func (s *Store) UpdatePayment(ctx context.Context, p *payment.Payment) error {
	var stmtAmount any
	if p.Reconciliation.BankStatementAmount != nil {
		stmtAmount = p.Reconciliation.BankStatementAmount.Amount
	}
	res, err := s.db.ExecContext(ctx, `UPDATE radix_payments SET
		recon_status = ?, recon_date = ?, recon_by = ?, recon_notes = ?,
		bank_statement_ref = ?, bank_statement_date = ?, bank_statement_amount = ?, amount_difference = ?,
		status = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		string(p.Reconciliation.Status), fmtTimePtr(p.Reconciliation.Date), p.Reconciliation.By, p.Reconciliation.Notes,
		p.Reconciliation.BankStatementRef, fmtTimePtr(p.Reconciliation.BankStatementDate), stmtAmount,
		p.Reconciliation.AmountDifference.Amount,
		string(p.Status), p.Notes, fmtTime(p.UpdatedAt), p.ID.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return radix.ErrPaymentNotFound
	}
	return nil
}

func (s *Store) ListPaymentsByBill(ctx context.Context, billID id.BillID) ([]*payment.Payment, error) {
	return s.queryPayments(ctx, `SELECT `+paymentCols+` FROM radix_payments WHERE bill_id = ? ORDER BY number`,
		billID.String())
}

func (s *Store) queryPayments(ctx context.Context, q string, args ...any) ([]*payment.Payment, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*payment.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func scanPayment(row interface{ Scan(...any) error }) (*payment.Payment, error) {
	var (
		p                          payment.Payment
		rid, bid, cid              string
		amount, amountDiff         int64
		currency, method, status   string
		paymentDate                string
		chequeDate                 sql.NullString
		reconStatus                string
		reconDate, stmtDate        sql.NullString
		stmtAmount                 sql.NullInt64
		createdAt, updatedAt       string
	)
	err := row.Scan(&rid, &p.Number, &bid, &cid, &p.BillNumber, &p.CustomerName,
		&amount, &currency, &method, &paymentDate, &p.TransactionID, &p.ReferenceNumber,
		&p.BankName, &p.ChequeNumber, &chequeDate,
		&reconStatus, &reconDate, &p.Reconciliation.By, &p.Reconciliation.Notes,
		&p.Reconciliation.BankStatementRef, &stmtDate, &stmtAmount, &amountDiff,
		&status, &p.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if p.ID, err = id.ParsePaymentID(rid); err != nil {
		return nil, err
	}
	if p.BillID, err = id.ParseBillID(bid); err != nil {
		return nil, err
	}
	if p.CustomerID, err = id.ParseCustomerID(cid); err != nil {
		return nil, err
	}
	p.Amount = types.Money{Amount: amount, Currency: currency}
	p.Method = payment.Method(method)
	p.Status = payment.Status(status)
	p.Reconciliation.Status = payment.ReconStatus(reconStatus)
	p.Reconciliation.AmountDifference = types.Money{Amount: amountDiff, Currency: currency}
	if stmtAmount.Valid {
		m := types.Money{Amount: stmtAmount.Int64, Currency: currency}
		p.Reconciliation.BankStatementAmount = &m
	}
	if p.PaymentDate, err = parseTime(paymentDate); err != nil {
		return nil, err
	}
	if p.ChequeDate, err = parseTimePtr(chequeDate); err != nil {
		return nil, err
	}
	if p.Reconciliation.Date, err = parseTimePtr(reconDate); err != nil {
		return nil, err
	}
	if p.Reconciliation.BankStatementDate, err = parseTimePtr(stmtDate); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// ──────────────────────────────────────────────────
// Sequences and stats
// ──────────────────────────────────────────────────

func (s *Store) MaxIdentifier(ctx context.Context, kind sequence.Kind, prefix string) (string, error) {
	var table, col string
	switch kind {
	case sequence.KindCustomer:
		table, col = "radix_customers", "number"
	case sequence.KindBill:
		table, col = "radix_bills", "number"
	case sequence.KindInvoice:
		table, col = "radix_bills", "invoice_number"
	case sequence.KindPayment:
		table, col = "radix_payments", "number"
	default:
		return "", nil
	}

	var highest sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(`+col+`) FROM `+table+` WHERE `+col+` LIKE ? || '%'`, prefix).Scan(&highest)
	if err != nil {
		return "", err
	}
	return highest.String, nil
}

func (s *Store) Stats(ctx context.Context, now time.Time) (*store.Stats, error) {
	st := &store.Stats{
		TotalBilled:      types.INR(0),
		TotalCollected:   types.INR(0),
		TotalOutstanding: types.INR(0),
	}

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0)
		FROM radix_customers`).Scan(&st.TotalCustomers, &st.ActiveCustomers)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN status IN ('pending','partial') THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'overdue' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'paid' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(total_amount), 0), COALESCE(SUM(paid_amount), 0), COALESCE(SUM(balance_due), 0)
		FROM radix_bills`).Scan(&st.TotalBills, &st.PendingBills, &st.OverdueBills, &st.PaidBills,
		&st.TotalBilled.Amount, &st.TotalCollected.Amount, &st.TotalOutstanding.Amount)
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	err = s.db.QueryRowContext(ctx, `SELECT
		COALESCE(SUM(CASE WHEN payment_date >= ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN recon_status NOT IN ('matched','resolved') THEN 1 ELSE 0 END), 0)
		FROM radix_payments`, fmtTime(monthStart)).Scan(&st.PaymentsThisMonth, &st.UnreconciledCount)
	if err != nil {
		return nil, err
	}

	return st, nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func withPaging(q string, args []any, limit, offset int) (string, []any) {
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
		if offset > 0 {
			q += ` OFFSET ?`
			args = append(args, offset)
		}
	}
	return q, args
}

func fmtTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func parseTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
