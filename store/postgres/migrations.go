package postgres

// Migrations returns the schema statements in order.
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
			plan_amount         BIGINT NOT NULL DEFAULT 0,
			billing_cycle       TEXT NOT NULL DEFAULT 'monthly',
			status              TEXT NOT NULL DEFAULT 'active',
			outstanding_balance BIGINT NOT NULL DEFAULT 0,
			currency            TEXT NOT NULL DEFAULT 'inr',
			last_bill_date      TIMESTAMPTZ,
			next_bill_date      TIMESTAMPTZ,
			created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
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
			items            JSONB NOT NULL DEFAULT '[]',
			subtotal         BIGINT NOT NULL DEFAULT 0,
			tax_amount       BIGINT NOT NULL DEFAULT 0,
			discount         BIGINT NOT NULL DEFAULT 0,
			total_amount     BIGINT NOT NULL DEFAULT 0,
			paid_amount      BIGINT NOT NULL DEFAULT 0,
			balance_due      BIGINT NOT NULL DEFAULT 0,
			currency         TEXT NOT NULL DEFAULT 'inr',
			status           TEXT NOT NULL DEFAULT 'pending',
			period_start     TIMESTAMPTZ NOT NULL,
			period_end       TIMESTAMPTZ NOT NULL,
			issue_date       TIMESTAMPTZ NOT NULL,
			due_date         TIMESTAMPTZ NOT NULL,
			paid_at          TIMESTAMPTZ,
			notes            TEXT NOT NULL DEFAULT '',
			auto_generated   BOOLEAN NOT NULL DEFAULT false,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
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
			amount                BIGINT NOT NULL DEFAULT 0,
			currency              TEXT NOT NULL DEFAULT 'inr',
			method                TEXT NOT NULL DEFAULT 'cash',
			payment_date          TIMESTAMPTZ NOT NULL,
			transaction_id        TEXT NOT NULL DEFAULT '',
			reference_number      TEXT NOT NULL DEFAULT '',
			bank_name             TEXT NOT NULL DEFAULT '',
			cheque_number         TEXT NOT NULL DEFAULT '',
			cheque_date           TIMESTAMPTZ,
			recon_status          TEXT NOT NULL DEFAULT 'pending',
			recon_date            TIMESTAMPTZ,
			recon_by              TEXT NOT NULL DEFAULT '',
			recon_notes           TEXT NOT NULL DEFAULT '',
			bank_statement_ref    TEXT NOT NULL DEFAULT '',
			bank_statement_date   TIMESTAMPTZ,
			bank_statement_amount BIGINT,
			amount_difference     BIGINT NOT NULL DEFAULT 0,
			status                TEXT NOT NULL DEFAULT 'completed',
			notes                 TEXT NOT NULL DEFAULT '',
			created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_radix_payments_number ON radix_payments (number)`,
		`CREATE INDEX IF NOT EXISTS idx_radix_payments_bill ON radix_payments (bill_id)`,
		`CREATE INDEX IF NOT EXISTS idx_radix_payments_customer ON radix_payments (customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_radix_payments_recon ON radix_payments (recon_status)`,
	}
}
