// Package postgres implements store.Store on PostgreSQL via lib/pq.
// Money is stored as BIGINT minor units, line items as a JSONB column.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

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

// Store implements store.Store using PostgreSQL.
type Store struct {
	db *sql.DB
}

// Open connects to the database at the given URL.
func Open(url string) (*Store, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("radix/postgres: open: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetConnMaxIdleTime(5 * time.Minute)
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

// isUniqueViolation detects a unique index conflict (class 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// ──────────────────────────────────────────────────
// Customers
// ──────────────────────────────────────────────────

const customerCols = `id, number, name, email, phone, street, city, state, zip_code, country, gstin,
	plan, plan_amount, billing_cycle, status, outstanding_balance, currency,
	last_bill_date, next_bill_date, created_at, updated_at`

func (s *Store) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO radix_customers (`+customerCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		c.ID.String(), c.Number, c.Name, c.Email, c.Phone,
		c.Address.Street, c.Address.City, c.Address.State, c.Address.ZipCode, c.Address.Country, c.GSTIN,
		string(c.SubscriptionPlan), c.SubscriptionAmount.Amount, string(c.BillingCycle), string(c.Status),
		c.OutstandingBalance.Amount, c.SubscriptionAmount.Currency,
		c.LastBillDate, c.NextBillDate, c.CreatedAt, c.UpdatedAt)
	if isUniqueViolation(err) {
		return radix.ErrAlreadyExists
	}
	return err
}

func (s *Store) GetCustomer(ctx context.Context, customerID id.CustomerID) (*customer.Customer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+customerCols+` FROM radix_customers WHERE id = $1`, customerID.String())
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, radix.ErrCustomerNotFound
	}
	return c, err
}

func (s *Store) GetCustomerByNumber(ctx context.Context, number string) (*customer.Customer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+customerCols+` FROM radix_customers WHERE number = $1`, number)
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
		args = append(args, string(opts.Status))
		q += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if opts.Search != "" {
		args = append(args, "%"+opts.Search+"%")
		n := len(args)
		q += fmt.Sprintf(` AND (name ILIKE $%d OR email ILIKE $%d OR number ILIKE $%d OR phone ILIKE $%d)`, n, n, n, n)
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
		number = $1, name = $2, email = $3, phone = $4,
		street = $5, city = $6, state = $7, zip_code = $8, country = $9, gstin = $10,
		plan = $11, plan_amount = $12, billing_cycle = $13, status = $14,
		outstanding_balance = $15, currency = $16, last_bill_date = $17, next_bill_date = $18, updated_at = $19
		WHERE id = $20`,
		c.Number, c.Name, c.Email, c.Phone,
		c.Address.Street, c.Address.City, c.Address.State, c.Address.ZipCode, c.Address.Country, c.GSTIN,
		string(c.SubscriptionPlan), c.SubscriptionAmount.Amount, string(c.BillingCycle), string(c.Status),
		c.OutstandingBalance.Amount, c.SubscriptionAmount.Currency, c.LastBillDate, c.NextBillDate, c.UpdatedAt,
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
		c                   customer.Customer
		rid                 string
		plan, cycle, status string
		planAmt, balance    int64
		currency            string
		lastBill, nextBill  sql.NullTime
	)
	err := row.Scan(&rid, &c.Number, &c.Name, &c.Email, &c.Phone,
		&c.Address.Street, &c.Address.City, &c.Address.State, &c.Address.ZipCode, &c.Address.Country, &c.GSTIN,
		&plan, &planAmt, &cycle, &status, &balance, &currency,
		&lastBill, &nextBill, &c.CreatedAt, &c.UpdatedAt)
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
	c.LastBillDate = timePtr(lastBill)
	c.NextBillDate = timePtr(nextBill)
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24, $25, $26, $27, $28)`,
		b.ID.String(), b.Number, b.InvoiceNumber, b.CustomerID.String(), b.CustomerNumber, b.CustomerName,
		b.CustomerEmail, b.CustomerPhone, b.CustomerAddress, b.CustomerGSTIN, items,
		b.Subtotal.Amount, b.TaxAmount.Amount, b.Discount.Amount, b.TotalAmount.Amount,
		b.PaidAmount.Amount, b.BalanceDue.Amount, b.TotalAmount.Currency, string(b.Status),
		b.BillingPeriodStart, b.BillingPeriodEnd, b.IssueDate, b.DueDate,
		b.PaidAt, b.Notes, b.AutoGenerated, b.CreatedAt, b.UpdatedAt)
	if isUniqueViolation(err) {
		return radix.ErrAlreadyExists
	}
	return err
}

func (s *Store) GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+billCols+` FROM radix_bills WHERE id = $1`, billID.String())
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
		args = append(args, string(opts.Status))
		q += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if !opts.CustomerID.IsNil() {
		args = append(args, opts.CustomerID.String())
		q += fmt.Sprintf(` AND customer_id = $%d`, len(args))
	}
	if opts.Start != nil {
		args = append(args, *opts.Start)
		q += fmt.Sprintf(` AND issue_date >= $%d`, len(args))
	}
	if opts.End != nil {
		args = append(args, *opts.End)
		q += fmt.Sprintf(` AND issue_date <= $%d`, len(args))
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
		items = $1, subtotal = $2, tax_amount = $3, discount = $4, total_amount = $5,
		paid_amount = $6, balance_due = $7, status = $8, paid_at = $9, notes = $10, updated_at = $11
		WHERE id = $12`,
		items, b.Subtotal.Amount, b.TaxAmount.Amount, b.Discount.Amount, b.TotalAmount.Amount,
		b.PaidAmount.Amount, b.BalanceDue.Amount, string(b.Status), b.PaidAt, b.Notes,
		b.UpdatedAt, b.ID.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return radix.ErrBillNotFound
	}
	return nil
}

func (s *Store) ListBillsByCustomer(ctx context.Context, customerID id.CustomerID) ([]*bill.Bill, error) {
	return s.queryBills(ctx, `SELECT `+billCols+` FROM radix_bills WHERE customer_id = $1 ORDER BY number`,
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
		b                       bill.Bill
		rid, cid                string
		items                   []byte
		currency, status        string
		subtotal, tax, discount int64
		total, paid, balance    int64
		paidAt                  sql.NullTime
	)
	err := row.Scan(&rid, &b.Number, &b.InvoiceNumber, &cid, &b.CustomerNumber, &b.CustomerName,
		&b.CustomerEmail, &b.CustomerPhone, &b.CustomerAddress, &b.CustomerGSTIN, &items,
		&subtotal, &tax, &discount, &total, &paid, &balance, &currency, &status,
		&b.BillingPeriodStart, &b.BillingPeriodEnd, &b.IssueDate, &b.DueDate, &paidAt, &b.Notes, &b.AutoGenerated,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if b.ID, err = id.ParseBillID(rid); err != nil {
		return nil, err
	}
	if b.CustomerID, err = id.ParseCustomerID(cid); err != nil {
		return nil, err
	}
	if err = json.Unmarshal(items, &b.Items); err != nil {
		return nil, err
	}
	b.Subtotal = types.Money{Amount: subtotal, Currency: currency}
	b.TaxAmount = types.Money{Amount: tax, Currency: currency}
	b.Discount = types.Money{Amount: discount, Currency: currency}
	b.TotalAmount = types.Money{Amount: total, Currency: currency}
	b.PaidAmount = types.Money{Amount: paid, Currency: currency}
	b.BalanceDue = types.Money{Amount: balance, Currency: currency}
	b.Status = bill.Status(status)
	b.PaidAt = timePtr(paidAt)
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24, $25, $26, $27)`,
		p.ID.String(), p.Number, p.BillID.String(), p.CustomerID.String(), p.BillNumber, p.CustomerName,
		p.Amount.Amount, p.Amount.Currency, string(p.Method), p.PaymentDate,
		p.TransactionID, p.ReferenceNumber, p.BankName, p.ChequeNumber, p.ChequeDate,
		string(p.Reconciliation.Status), p.Reconciliation.Date, p.Reconciliation.By, p.Reconciliation.Notes,
		p.Reconciliation.BankStatementRef, p.Reconciliation.BankStatementDate, stmtAmount,
		p.Reconciliation.AmountDifference.Amount,
		string(p.Status), p.Notes, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return radix.ErrAlreadyExists
	}
	return err
}

func (s *Store) GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Payment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+paymentCols+` FROM radix_payments WHERE id = $1`, paymentID.String())
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
		args = append(args, string(opts.Status))
		q += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if opts.ReconStatus != "" {
		args = append(args, string(opts.ReconStatus))
		q += fmt.Sprintf(` AND recon_status = $%d`, len(args))
	}
	if !opts.CustomerID.IsNil() {
		args = append(args, opts.CustomerID.String())
		q += fmt.Sprintf(` AND customer_id = $%d`, len(args))
	}
	if opts.Start != nil {
		args = append(args, *opts.Start)
		q += fmt.Sprintf(` AND payment_date >= $%d`, len(args))
	}
	if opts.End != nil {
		args = append(args, *opts.End)
		q += fmt.Sprintf(` AND payment_date <= $%d`, len(args))
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
		recon_status = $1, recon_date = $2, recon_by = $3, recon_notes = $4,
		bank_statement_ref = $5, bank_statement_date = $6, bank_statement_amount = $7, amount_difference = $8,
		status = $9, notes = $10, updated_at = $11
		WHERE id = $12`,
		string(p.Reconciliation.Status), p.Reconciliation.Date, p.Reconciliation.By, p.Reconciliation.Notes,
		p.Reconciliation.BankStatementRef, p.Reconciliation.BankStatementDate, stmtAmount,
		p.Reconciliation.AmountDifference.Amount,
		string(p.Status), p.Notes, p.UpdatedAt, p.ID.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return radix.ErrPaymentNotFound
	}
	return nil
}

func (s *Store) ListPaymentsByBill(ctx context.Context, billID id.BillID) ([]*payment.Payment, error) {
	return s.queryPayments(ctx, `SELECT `+paymentCols+` FROM radix_payments WHERE bill_id = $1 ORDER BY number`,
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
		p                        payment.Payment
		rid, bid, cid            string
		amount, amountDiff       int64
		currency, method, status string
		chequeDate               sql.NullTime
		reconStatus              string
		reconDate, stmtDate      sql.NullTime
		stmtAmount               sql.NullInt64
	)
	err := row.Scan(&rid, &p.Number, &bid, &cid, &p.BillNumber, &p.CustomerName,
		&amount, &currency, &method, &p.PaymentDate, &p.TransactionID, &p.ReferenceNumber,
		&p.BankName, &p.ChequeNumber, &chequeDate,
		&reconStatus, &reconDate, &p.Reconciliation.By, &p.Reconciliation.Notes,
		&p.Reconciliation.BankStatementRef, &stmtDate, &stmtAmount, &amountDiff,
		&status, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
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
	p.ChequeDate = timePtr(chequeDate)
	p.Reconciliation.Date = timePtr(reconDate)
	p.Reconciliation.BankStatementDate = timePtr(stmtDate)
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
		`SELECT MAX(`+col+`) FROM `+table+` WHERE `+col+` LIKE $1 || '%'`, prefix).Scan(&highest)
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
		COALESCE(SUM(CASE WHEN payment_date >= $1 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN recon_status NOT IN ('matched','resolved') THEN 1 ELSE 0 END), 0)
		FROM radix_payments`, monthStart).Scan(&st.PaymentsThisMonth, &st.UnreconciledCount)
	if err != nil {
		return nil, err
	}

	return st, nil
}

func withPaging(q string, args []any, limit, offset int) (string, []any) {
	if limit > 0 {
		args = append(args, limit)
		q += fmt.Sprintf(` LIMIT $%d`, len(args))
		if offset > 0 {
			args = append(args, offset)
			q += fmt.Sprintf(` OFFSET $%d`, len(args))
		}
	}
	return q, args
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
