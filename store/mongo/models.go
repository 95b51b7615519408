package mongo

import (
	"time"

	"github.com/recordrx/radix/bill"
	"github.com/recordrx/radix/customer"
	"github.com/recordrx/radix/id"
	"github.com/recordrx/radix/payment"
	"github.com/recordrx/radix/types"
)

// ==================== Customer models ====================

type customerModel struct {
	ID                 string     `bson:"_id"`
	Number             string     `bson:"number"`
	Name               string     `bson:"name"`
	Email              string     `bson:"email"`
	Phone              string     `bson:"phone"`
	Address            addressDoc `bson:"address"`
	GSTIN              string     `bson:"gstin,omitempty"`
	Plan               string     `bson:"plan"`
	PlanAmount         int64      `bson:"plan_amount"`
	BillingCycle       string     `bson:"billing_cycle"`
	Status             string     `bson:"status"`
	OutstandingBalance int64      `bson:"outstanding_balance"`
	Currency           string     `bson:"currency"`
	LastBillDate       *time.Time `bson:"last_bill_date,omitempty"`
	NextBillDate       *time.Time `bson:"next_bill_date,omitempty"`
	CreatedAt          time.Time  `bson:"created_at"`
	UpdatedAt          time.Time  `bson:"updated_at"`
}

type addressDoc struct {
	Street  string `bson:"street,omitempty"`
	City    string `bson:"city,omitempty"`
	State   string `bson:"state,omitempty"`
	ZipCode string `bson:"zip_code,omitempty"`
	Country string `bson:"country,omitempty"`
}

func toCustomerModel(c *customer.Customer) *customerModel {
	return &customerModel{
		ID:     c.ID.String(),
		Number: c.Number,
		Name:   c.Name,
		Email:  c.Email,
		Phone:  c.Phone,
		Address: addressDoc{
			Street: c.Address.Street, City: c.Address.City, State: c.Address.State,
			ZipCode: c.Address.ZipCode, Country: c.Address.Country,
		},
		GSTIN:              c.GSTIN,
		Plan:               string(c.SubscriptionPlan),
		PlanAmount:         c.SubscriptionAmount.Amount,
		BillingCycle:       string(c.BillingCycle),
		Status:             string(c.Status),
		OutstandingBalance: c.OutstandingBalance.Amount,
		Currency:           c.SubscriptionAmount.Currency,
		LastBillDate:       c.LastBillDate,
		NextBillDate:       c.NextBillDate,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func fromCustomerModel(m *customerModel) (*customer.Customer, error) {
	cid, err := id.ParseCustomerID(m.ID)
	if err != nil {
		return nil, err
	}
	c := &customer.Customer{
		ID:     cid,
		Number: m.Number,
		Name:   m.Name,
		Email:  m.Email,
		Phone:  m.Phone,
		Address: customer.Address{
			Street: m.Address.Street, City: m.Address.City, State: m.Address.State,
			ZipCode: m.Address.ZipCode, Country: m.Address.Country,
		},
		GSTIN:              m.GSTIN,
		SubscriptionPlan:   customer.Plan(m.Plan),
		SubscriptionAmount: types.Money{Amount: m.PlanAmount, Currency: m.Currency},
		BillingCycle:       customer.BillingCycle(m.BillingCycle),
		Status:             customer.Status(m.Status),
		OutstandingBalance: types.Money{Amount: m.OutstandingBalance, Currency: m.Currency},
		LastBillDate:       m.LastBillDate,
		NextBillDate:       m.NextBillDate,
	}
	c.CreatedAt = m.CreatedAt
	c.UpdatedAt = m.UpdatedAt
	return c, nil
}

// ==================== Bill models ====================

type billModel struct {
	ID              string         `bson:"_id"`
	Number          string         `bson:"number"`
	InvoiceNumber   string         `bson:"invoice_number"`
	CustomerID      string         `bson:"customer_id"`
	CustomerNumber  string         `bson:"customer_number"`
	CustomerName    string         `bson:"customer_name"`
	CustomerEmail   string         `bson:"customer_email"`
	CustomerPhone   string         `bson:"customer_phone"`
	CustomerAddress string         `bson:"customer_address"`
	CustomerGSTIN   string         `bson:"customer_gstin,omitempty"`
	Items           []lineItemDoc  `bson:"items"`
	Subtotal        int64          `bson:"subtotal"`
	TaxAmount       int64          `bson:"tax_amount"`
	Discount        int64          `bson:"discount"`
	TotalAmount     int64          `bson:"total_amount"`
	PaidAmount      int64          `bson:"paid_amount"`
	BalanceDue      int64          `bson:"balance_due"`
	Currency        string         `bson:"currency"`
	Status          string         `bson:"status"`
	PeriodStart     time.Time      `bson:"period_start"`
	PeriodEnd       time.Time      `bson:"period_end"`
	IssueDate       time.Time      `bson:"issue_date"`
	DueDate         time.Time      `bson:"due_date"`
	PaidAt          *time.Time     `bson:"paid_at,omitempty"`
	Notes           string         `bson:"notes,omitempty"`
	AutoGenerated   bool           `bson:"auto_generated"`
	CreatedAt       time.Time      `bson:"created_at"`
	UpdatedAt       time.Time      `bson:"updated_at"`
}

type lineItemDoc struct {
	Description string   `bson:"description"`
	Quantity    int64    `bson:"quantity"`
	UnitPrice   int64    `bson:"unit_price"`
	TaxRate     *float64 `bson:"tax_rate,omitempty"`
	Amount      int64    `bson:"amount"`
	TaxAmount   int64    `bson:"tax_amount"`
}

func toBillModel(b *bill.Bill) *billModel {
	items := make([]lineItemDoc, len(b.Items))
	for i, it := range b.Items {
		items[i] = lineItemDoc{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice.Amount,
			TaxRate:     it.TaxRate,
			Amount:      it.Amount.Amount,
			TaxAmount:   it.TaxAmount.Amount,
		}
	}
	return &billModel{
		ID:              b.ID.String(),
		Number:          b.Number,
		InvoiceNumber:   b.InvoiceNumber,
		CustomerID:      b.CustomerID.String(),
		CustomerNumber:  b.CustomerNumber,
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		CustomerPhone:   b.CustomerPhone,
		CustomerAddress: b.CustomerAddress,
		CustomerGSTIN:   b.CustomerGSTIN,
		Items:           items,
		Subtotal:        b.Subtotal.Amount,
		TaxAmount:       b.TaxAmount.Amount,
		Discount:        b.Discount.Amount,
		TotalAmount:     b.TotalAmount.Amount,
		PaidAmount:      b.PaidAmount.Amount,
		BalanceDue:      b.BalanceDue.Amount,
		Currency:        b.TotalAmount.Currency,
		Status:          string(b.Status),
		PeriodStart:     b.BillingPeriodStart,
		PeriodEnd:       b.BillingPeriodEnd,
		IssueDate:       b.IssueDate,
		DueDate:         b.DueDate,
		PaidAt:          b.PaidAt,
		Notes:           b.Notes,
		AutoGenerated:   b.AutoGenerated,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func fromBillModel(m *billModel) (*bill.Bill, error) {
	bid, err := id.ParseBillID(m.ID)
	if err != nil {
		return nil, err
	}
	cid, err := id.ParseCustomerID(m.CustomerID)
	if err != nil {
		return nil, err
	}
	money := func(amount int64) types.Money {
		return types.Money{Amount: amount, Currency: m.Currency}
	}
	items := make([]bill.LineItem, len(m.Items))
	for i, it := range m.Items {
		items[i] = bill.LineItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   money(it.UnitPrice),
			TaxRate:     it.TaxRate,
			Amount:      money(it.Amount),
			TaxAmount:   money(it.TaxAmount),
		}
	}
	b := &bill.Bill{
		ID:                 bid,
		Number:             m.Number,
		InvoiceNumber:      m.InvoiceNumber,
		CustomerID:         cid,
		CustomerNumber:     m.CustomerNumber,
		CustomerName:       m.CustomerName,
		CustomerEmail:      m.CustomerEmail,
		CustomerPhone:      m.CustomerPhone,
		CustomerAddress:    m.CustomerAddress,
		CustomerGSTIN:      m.CustomerGSTIN,
		Items:              items,
		Subtotal:           money(m.Subtotal),
		TaxAmount:          money(m.TaxAmount),
		Discount:           money(m.Discount),
		TotalAmount:        money(m.TotalAmount),
		PaidAmount:         money(m.PaidAmount),
		BalanceDue:         money(m.BalanceDue),
		Status:             bill.Status(m.Status),
		BillingPeriodStart: m.PeriodStart,
		BillingPeriodEnd:   m.PeriodEnd,
		IssueDate:          m.IssueDate,
		DueDate:            m.DueDate,
		PaidAt:             m.PaidAt,
		Notes:              m.Notes,
		AutoGenerated:      m.AutoGenerated,
	}
	b.CreatedAt = m.CreatedAt
	b.UpdatedAt = m.UpdatedAt
	return b, nil
}

// ==================== Payment models ====================

type paymentModel struct {
	ID              string     `bson:"_id"`
	Number          string     `bson:"number"`
	BillID          string     `bson:"bill_id"`
	CustomerID      string     `bson:"customer_id"`
	BillNumber      string     `bson:"bill_number"`
	CustomerName    string     `bson:"customer_name"`
	Amount          int64      `bson:"amount"`
	Currency        string     `bson:"currency"`
	Method          string     `bson:"method"`
	PaymentDate     time.Time  `bson:"payment_date"`
	TransactionID   string     `bson:"transaction_id,omitempty"`
	ReferenceNumber string     `bson:"reference_number,omitempty"`
	BankName        string     `bson:"bank_name,omitempty"`
	ChequeNumber    string     `bson:"cheque_number,omitempty"`
	ChequeDate      *time.Time `bson:"cheque_date,omitempty"`
	Reconciliation  reconDoc   `bson:"reconciliation"`
	Status          string     `bson:"status"`
	Notes           string     `bson:"notes,omitempty"`
	CreatedAt       time.Time  `bson:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at"`
}

type reconDoc struct {
	Status              string     `bson:"status"`
	Date                *time.Time `bson:"date,omitempty"`
	By                  string     `bson:"by,omitempty"`
	Notes               string     `bson:"notes,omitempty"`
	BankStatementRef    string     `bson:"bank_statement_ref,omitempty"`
	BankStatementDate   *time.Time `bson:"bank_statement_date,omitempty"`
	BankStatementAmount *int64     `bson:"bank_statement_amount,omitempty"`
	AmountDifference    int64      `bson:"amount_difference"`
}

func toPaymentModel(p *payment.Payment) *paymentModel {
	var stmtAmount *int64
	if p.Reconciliation.BankStatementAmount != nil {
		v := p.Reconciliation.BankStatementAmount.Amount
		stmtAmount = &v
	}
	return &paymentModel{
		ID:              p.ID.String(),
		Number:          p.Number,
		BillID:          p.BillID.String(),
		CustomerID:      p.CustomerID.String(),
		BillNumber:      p.BillNumber,
		CustomerName:    p.CustomerName,
		Amount:          p.Amount.Amount,
		Currency:        p.Amount.Currency,
		Method:          string(p.Method),
		PaymentDate:     p.PaymentDate,
		TransactionID:   p.TransactionID,
		ReferenceNumber: p.ReferenceNumber,
		BankName:        p.BankName,
		ChequeNumber:    p.ChequeNumber,
		ChequeDate:      p.ChequeDate,
		Reconciliation: reconDoc{
			Status:              string(p.Reconciliation.Status),
			Date:                p.Reconciliation.Date,
			By:                  p.Reconciliation.By,
			Notes:               p.Reconciliation.Notes,
			BankStatementRef:    p.Reconciliation.BankStatementRef,
			BankStatementDate:   p.Reconciliation.BankStatementDate,
			BankStatementAmount: stmtAmount,
			AmountDifference:    p.Reconciliation.AmountDifference.Amount,
		},
		Status:    string(p.Status),
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func fromPaymentModel(m *paymentModel) (*payment.Payment, error) {
	pid, err := id.ParsePaymentID(m.ID)
	if err != nil {
		return nil, err
	}
	bid, err := id.ParseBillID(m.BillID)
	if err != nil {
		return nil, err
	}
	cid, err := id.ParseCustomerID(m.CustomerID)
	if err != nil {
		return nil, err
	}
	p := &payment.Payment{
		ID:              pid,
		Number:          m.Number,
		BillID:          bid,
		CustomerID:      cid,
		BillNumber:      m.BillNumber,
		CustomerName:    m.CustomerName,
		Amount:          types.Money{Amount: m.Amount, Currency: m.Currency},
		Method:          payment.Method(m.Method),
		PaymentDate:     m.PaymentDate,
		TransactionID:   m.TransactionID,
		ReferenceNumber: m.ReferenceNumber,
		BankName:        m.BankName,
		ChequeNumber:    m.ChequeNumber,
		ChequeDate:      m.ChequeDate,
		Reconciliation: payment.Reconciliation{
			Status:            payment.ReconStatus(m.Reconciliation.Status),
			Date:              m.Reconciliation.Date,
			By:                m.Reconciliation.By,
			Notes:             m.Reconciliation.Notes,
			BankStatementRef:  m.Reconciliation.BankStatementRef,
			BankStatementDate: m.Reconciliation.BankStatementDate,
			AmountDifference:  types.Money{Amount: m.Reconciliation.AmountDifference, Currency: m.Currency},
		},
		Status: payment.Status(m.Status),
		Notes:  m.Notes,
	}
	if m.Reconciliation.BankStatementAmount != nil {
		v := types.Money{Amount: *m.Reconciliation.BankStatementAmount, Currency: m.Currency}
		p.Reconciliation.BankStatementAmount = &v
	}
	p.CreatedAt = m.CreatedAt
	p.UpdatedAt = m.UpdatedAt
	return p, nil
}
