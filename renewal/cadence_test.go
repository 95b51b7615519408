package renewal

import (
	"testing"
	"time"

	"github.com/recordrx/radix/customer"
	"github.com/recordrx/radix/types"
)

func activeCandidate(cycle customer.BillingCycle, start time.Time) Candidate {
	return Candidate{
		Name:          "Asha Traders",
		Email:         "asha@example.in",
		Plan:          customer.PlanStandard,
		Cycle:         cycle,
		Amount:        types.INR(49900),
		PlanStartDate: start,
		Status:        customer.StatusActive,
	}
}

func TestExpiryCalendarMath(t *testing.T) {
	jan31 := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	c := activeCandidate(customer.CycleMonthly, jan31)
	// AddDate normalizes Feb 31 to March 2 in a leap year.
	if want := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC); !c.Expiry().Equal(want) {
		t.Errorf("monthly expiry = %v, want %v", c.Expiry(), want)
	}

	y := activeCandidate(customer.CycleYearly, jan31)
	if want := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC); !y.Expiry().Equal(want) {
		t.Errorf("yearly expiry = %v, want %v", y.Expiry(), want)
	}
}

func TestEvaluateMonthly(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		now   time.Time
		due   bool
	}{
		{
			name:  "late month window",
			start: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			now:   time.Date(2024, 2, 26, 9, 0, 0, 0, time.UTC),
			due:   true,
		},
		{
			name:  "few days remaining before the 25th",
			start: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
			now:   time.Date(2024, 4, 16, 9, 0, 0, 0, time.UTC),
			due:   true,
		},
		{
			name:  "mid cycle quiet period",
			start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			now:   time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
			due:   false,
		},
		{
			name:  "already expired",
			start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			now:   time.Date(2024, 3, 26, 9, 0, 0, 0, time.UTC),
			due:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(activeCandidate(customer.CycleMonthly, tt.start), tt.now)
			if d.Due != tt.due {
				t.Errorf("due = %v, want %v (reason %q, remaining %d)", d.Due, tt.due, d.Reason, d.DaysRemaining)
			}
		})
	}
}

func TestEvaluateYearlyMondayOnly(t *testing.T) {
	start := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC) // expires 2024-10-01
	c := activeCandidate(customer.CycleYearly, start)

	tuesday := time.Date(2024, 8, 20, 9, 0, 0, 0, time.UTC) // 42 days out
	if d := Evaluate(c, tuesday); d.Due {
		t.Errorf("Tuesday inside window: due = true, want false (reason %q)", d.Reason)
	}

	monday := time.Date(2024, 8, 19, 9, 0, 0, 0, time.UTC) // 43 days out
	if d := Evaluate(c, monday); !d.Due {
		t.Errorf("Monday inside window: due = false (reason %q)", d.Reason)
	}

	earlyMonday := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC) // 120 days out
	if d := Evaluate(c, earlyMonday); d.Due {
		t.Errorf("Monday outside window: due = true, want false")
	}
}

func TestEvaluateGates(t *testing.T) {
	now := time.Date(2024, 2, 26, 9, 0, 0, 0, time.UTC)
	start := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	inactive := activeCandidate(customer.CycleMonthly, start)
	inactive.Status = customer.StatusSuspended
	if Evaluate(inactive, now).Due {
		t.Error("suspended customer marked due")
	}

	noEmail := activeCandidate(customer.CycleMonthly, start)
	noEmail.Email = ""
	if Evaluate(noEmail, now).Due {
		t.Error("customer without email marked due")
	}

	quarterly := activeCandidate(customer.CycleQuarterly, start)
	if d := Evaluate(quarterly, now); d.Due {
		t.Errorf("quarterly cycle marked due (reason %q)", d.Reason)
	}
}

func TestDaysRemainingRoundsUp(t *testing.T) {
	expiry := time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	if got := daysRemaining(expiry, now); got != 2 {
		t.Errorf("daysRemaining = %d, want 2", got)
	}
	if got := daysRemaining(expiry, expiry); got != 0 {
		t.Errorf("daysRemaining at expiry = %d, want 0", got)
	}
}

func TestFromCustomerFallsBackToNow(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	c := &customer.Customer{
		Name:   "Asha Traders",
		Email:  "asha@example.in",
		Status: customer.StatusActive,
	}
	if got := FromCustomer(c, now); !got.PlanStartDate.Equal(now) {
		t.Errorf("plan start = %v, want %v", got.PlanStartDate, now)
	}

	last := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	c.LastBillDate = &last
	if got := FromCustomer(c, now); !got.PlanStartDate.Equal(last) {
		t.Errorf("plan start = %v, want %v", got.PlanStartDate, last)
	}
}
