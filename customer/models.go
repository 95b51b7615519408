package customer

import (
	"time"

	"github.com/recordrx/radix/id"
	"github.com/recordrx/radix/types"
)

// Status is the lifecycle state of a customer account.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// BillingCycle is how often a customer is billed.
type BillingCycle string

const (
	CycleMonthly   BillingCycle = "monthly"
	CycleQuarterly BillingCycle = "quarterly"
	CycleYearly    BillingCycle = "yearly"
)

// Plan is the subscription tier a customer is on.
type Plan string

const (
	PlanBasic      Plan = "basic"
	PlanStandard   Plan = "standard"
	PlanPremium    Plan = "premium"
	PlanEnterprise Plan = "enterprise"
)

// Address is a customer's postal address.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
	Country string `json:"country,omitempty"`
}

// Customer is a subscription customer.
//
// OutstandingBalance is mutated only by the ledger updater; at any quiescent
// point it equals the sum of BalanceDue across the customer's bills.
type Customer struct {
	types.Entity
	ID                 id.CustomerID `json:"id"`
	Number             string        `json:"customer_id"` // CUST00001
	Name               string        `json:"name"`
	Email              string        `json:"email"`
	Phone              string        `json:"phone"`
	Address            Address       `json:"address"`
	GSTIN              string        `json:"gstin,omitempty"`
	SubscriptionPlan   Plan          `json:"subscription_plan"`
	SubscriptionAmount types.Money   `json:"subscription_amount"`
	BillingCycle       BillingCycle  `json:"billing_cycle"`
	Status             Status        `json:"status"`
	OutstandingBalance types.Money   `json:"outstanding_balance"`
	LastBillDate       *time.Time    `json:"last_bill_date,omitempty"`
	NextBillDate       *time.Time    `json:"next_bill_date,omitempty"`
}

// ContactLine returns the single-line postal address used on documents.
func (c *Customer) ContactLine() string {
	a := c.Address
	return a.Street + ", " + a.City + ", " + a.State + " - " + a.ZipCode
}
