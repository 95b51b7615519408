// Package renewal decides when a customer should receive a plan renewal
// reminder.
//
// The cadence is cycle dependent. Monthly plans remind daily from the 25th
// of the month, or whenever five or fewer days remain. Yearly plans remind
// weekly, on Mondays only, once sixty or fewer days remain. Expired plans
// never remind; lapsed customers are a dunning concern, not a renewal one.
package renewal

import (
	"time"

	"github.com/recordrx/radix/customer"
	"github.com/recordrx/radix/types"
)

const (
	monthlyWindowDay  = 25
	monthlyFinalDays  = 5
	yearlyWindowDays  = 60
	yearlyReminderDay = time.Monday
)

// Candidate is the slice of a customer the cadence needs.
type Candidate struct {
	Name          string
	Email         string
	Plan          customer.Plan
	Cycle         customer.BillingCycle
	Amount        types.Money
	PlanStartDate time.Time
	Status        customer.Status
}

// Decision is the cadence verdict for one candidate.
type Decision struct {
	Due           bool
	ExpiryDate    time.Time
	DaysRemaining int
	Reason        string
}

// FromCustomer builds a Candidate. The plan start date falls back to now
// when the customer has never been billed.
func FromCustomer(c *customer.Customer, now time.Time) Candidate {
	start := now
	if c.LastBillDate != nil {
		start = *c.LastBillDate
	}
	return Candidate{
		Name:          c.Name,
		Email:         c.Email,
		Plan:          c.SubscriptionPlan,
		Cycle:         c.BillingCycle,
		Amount:        c.SubscriptionAmount,
		PlanStartDate: start,
		Status:        c.Status,
	}
}

// Expiry returns when the candidate's current term ends. Yearly terms run
// one calendar year from the plan start, everything else one calendar month,
// so a term starting January 31 ends on the calendar-normalized March 3
// (or March 2 in leap years), matching time.Time.AddDate semantics.
func (c Candidate) Expiry() time.Time {
	if c.Cycle == customer.CycleYearly {
		return c.PlanStartDate.AddDate(1, 0, 0)
	}
	return c.PlanStartDate.AddDate(0, 1, 0)
}

// Evaluate runs the cadence for a candidate at the given instant.
func Evaluate(c Candidate, now time.Time) Decision {
	if c.Status != customer.StatusActive {
		return Decision{Reason: "customer not active"}
	}
	if c.Email == "" {
		return Decision{Reason: "no email on file"}
	}

	expiry := c.Expiry()
	remaining := daysRemaining(expiry, now)
	d := Decision{ExpiryDate: expiry, DaysRemaining: remaining}

	if remaining <= 0 {
		d.Reason = "plan already expired"
		return d
	}

	switch c.Cycle {
	case customer.CycleMonthly:
		if now.Day() >= monthlyWindowDay || remaining <= monthlyFinalDays {
			d.Due = true
			d.Reason = "monthly window"
		} else {
			d.Reason = "outside monthly window"
		}
	case customer.CycleYearly:
		if remaining <= yearlyWindowDays && now.Weekday() == yearlyReminderDay {
			d.Due = true
			d.Reason = "yearly window"
		} else {
			d.Reason = "outside yearly window"
		}
	default:
		d.Reason = "cycle has no reminder cadence"
	}
	return d
}

// IsReminderDue is a convenience wrapper over Evaluate.
func IsReminderDue(c Candidate, now time.Time) bool {
	return Evaluate(c, now).Due
}

// daysRemaining counts whole days until expiry, rounding partial days up.
// An expiry 36 hours out reads as 2 days.
func daysRemaining(expiry, now time.Time) int {
	diff := expiry.Sub(now)
	days := diff / (24 * time.Hour)
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return int(days)
}
