package sqlite

// Migrations returns the schema statements in order. Each string is a
// single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS radix_customers (
			id                  TEXT PRIMARY KEY,
			number              TEXT NOT NULL,
			name                TEXT NOT NULL DEFAULT '',
			email               TEXT NOT NULL DEFAULT '',
			phone               TEXT NOT NULL DEFAULT '',
			street              TEXT NOT NULL DEFAULT '',
			city                TEXT NOT NULL DEFAULT '',
			state               TEXT NOT NULL DEFAULT '',
			zip_code            TEXT NOT NULL DEFAULT '',
			country             TEXT NOT NULL DEFAULT '',
			gstin               TEXT NOT NULL DEFAULT '',
			plan                TEXT NOT NULL DEFAULT 'basic',
			plan_amount         INTEGER NOT NULL DEFAULT 0,
			billing_cycle       TEXT NOT NULL DEFAULT 'monthly',
			status              TEXT NOT NULL DEFAULT 'active',
			outstanding_balance INTEGER NOT NULL DEFAULT 0,
			currency            TEXT NOT NULL DEFAULT 'inr',
			last_bill_date      TEXT,
			next_bill_date      TEXT,
			created_at          TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at          TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_radix_customers_number ON radix_customers (number)`,
		`CREATE INDEX IF NOT EXISTS idx_radix_customers_status ON radix_customers (status)`,

		`CREATE TABLE IF NOT EXISTS radix_bills (
			id               TEXT PRIMARY KEY,
			number           TEXT NOT NULL,
			invoice_number   TEXT NOT NULL,
			customer_id      TEXT NOT NULL,
			customer_number  TEXT NOT NULL DEFAULT '',
			customer_name    TEXT NOT NULL DEFAULT '',
			customer_email   TEXT NOT NULL DEFAULT '',
			customer_phone   TEXT NOT NULL DEFAULT '',
			customer_address TEXT NOT NULL DEFAULT '',
			customer_gstin   TEXT NOT NULL DEFAULT '',
			items            TEXT NOT NULL DEFAULT '[]',
			subtotal         INTEGER NOT NULL DEFAULT 0,
			tax_amount       INTEGER NOT NULL DEFAULT 0,
			discount         INTEGER NOT NULL DEFAULT 0,
			total_amount     INTEGER NOT NULL DEFAULT 0,
			paid_amount      INTEGER NOT NULL DEFAULT 0,
			balance_due      INTEGER NOT NULL DEFAULT 0,
			currency         TEXT NOT NULL DEFAULT 'inr',
			status           TEXT NOT NULL DEFAULT 'pending',
			period_start     TEXT NOT NULL,
			period_end       TEXT NOT NULL,
			issue_date       TEXT NOT NULL,
			due_date         TEXT NOT NULL,
			paid_at          TEXT,
			notes            TEXT NOT NULL DEFAULT '',
			auto_generated   INTEGER NOT NULL DEFAULT 0,
			created_at       TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at       TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_radix_bills_number ON radix_bills (number)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_radix_bills_invoice ON radix_bills (invoice_number)`,
		`CREATE INDEX IF NOT EXISTS idx_radix_bills_customer ON radix_bills (customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_radix_bills_status ON radix_bills (status)`,

		`CREATE TABLE IF NOT EXISTS radix_payments (
			id                    TEXT PRIMARY KEY,
			number                TEXT NOT NULL,
			bill_id               TEXT NOT NULL,
			customer_id           TEXT NOT NULL,
			bill_number           TEXT NOT NULL DEFAULT '',
			customer_name         TEXT NOT NULL DEFAULT '',
			amount                INTEGER NOT NULL DEFAULT 0,
			currency              TEXT NOT NULL DEFAULT 'inr',
			method                TEXT NOT NULL DEFAULT 'cash',
			payment_date          TEXT NOT NULL,
			transaction_id        TEXT NOT NULL DEFAULT '',
			reference_number      TEXT NOT NULL DEFAULT '',
			bank_name             TEXT NOT NULL DEFAULT '',
			cheque_number         TEXT NOT NULL DEFAULT '',
			cheque_date           TEXT,
			recon_status          TEXT NOT NULL DEFAULT 'pending',
			recon_date            TEXT,
			recon_by              TEXT NOT NULL DEFAULT '',
			recon_notes           TEXT NOT NULL DEFAULT '',
			bank_statement_ref    TEXT NOT NULL DEFAULT '',
			bank_statement_date   TEXT,
			bank_statement_amount INTEGER,
			amount_difference     INTEGER NOT NULL DEFAULT 0,
			status                TEXT NOT NULL DEFAULT 'completed',
			notes                 TEXT NOT NULL DEFAULT '',
			created_at            TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at            TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_radix_payments_number ON radix_payments (number)`,
		`CREATE INDEX IF NOT EXISTS idx_radix_payments_bill ON radix_payments (bill_id)`,
		`CREATE INDEX IF NOT EXISTS idx_radix_payments_customer ON radix_payments (customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_radix_payments_recon ON radix_payments (recon_status)`,
	}
}
