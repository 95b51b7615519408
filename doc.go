// Package radix provides a composable billing lifecycle engine for Go applications.
//
// Radix is designed as a library, not a service. Import it directly into your Go
// application and wire its operations to whatever transport you run. It provides:
//
//   - Sequential business numbering (CUST00001, BILL20250001, INV/2025/0001, PAY2508310001)
//   - Deterministic bill computation in integer minor units with per-line GST
//   - A single-writer ledger keeping customer balances consistent with bills
//   - Payment recording with a bank reconciliation state machine
//   - Cycle-aware renewal reminder cadence (monthly daily window, yearly Mondays)
//   - Invoice rendering to HTML and PDF, and transactional email notifications
//
// # Quick Start
//
// Create an engine with your preferred store:
//
//	import (
//	    "github.com/recordrx/radix"
//	    "github.com/recordrx/radix/store/sqlite"
//	)
//
//	// Initialize store
//	st, err := sqlite.Open("radix.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create engine
//	eng := radix.New(st)
//
//	// Start the engine (runs migrations, initializes plugins)
//	if err := eng.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Stop()
//
// # Core Concepts
//
// Customers subscribe to a plan on a billing cycle:
//
//	c := &customer.Customer{
//	    Name:               "Asha Traders",
//	    Email:              "accounts@ashatraders.example",
//	    SubscriptionPlan:   customer.PlanPremium,
//	    SubscriptionAmount: radix.INR(100000),
//	    BillingCycle:       customer.CycleMonthly,
//	}
//	err := eng.CreateCustomer(ctx, c)
//
// Bills are generated from line items; totals, numbering, and the customer
// ledger update happen inside the engine:
//
//	b, err := eng.GenerateBill(ctx, radix.BillRequest{
//	    CustomerID: c.ID,
//	    Items: []bill.LineItem{
//	        {Description: "Premium subscription", Quantity: 1, UnitPrice: radix.INR(100000)},
//	    },
//	})
//
// Payments roll up onto the bill and the customer balance, then move
// through reconciliation against bank statements:
//
//	p, err := eng.RecordPayment(ctx, radix.PaymentRequest{
//	    BillID: b.ID,
//	    Amount: radix.INR(118000),
//	    Method: payment.MethodUPI,
//	})
//	p, err = eng.ReconcilePayment(ctx, p.ID, payment.ReconUpdate{
//	    Status: payment.ReconMatched,
//	    By:     "ops@example.com",
//	})
//
// # Money
//
// All monetary calculations use integer arithmetic to avoid floating-point
// precision issues. The Money type represents amounts in the smallest currency
// unit (paise for INR, cents for USD).
//
// # TypeID
//
// Every record carries two identifiers: a TypeID record identity used as the
// storage key, and a human-readable business number that appears on documents:
//
//	cust_01h2xcejqtf2nbrexx3vqjhp41  // record identity
//	CUST00001                        // business number
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package radix
