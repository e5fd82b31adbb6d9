// Package paylater provides a deferred-payment credit engine for Go
// applications.
//
// PayLater is designed as a library, not a service. Import it directly into
// your Go application and wire it to a store backend. It provides:
//
//   - Per-phone revolving credit accounts with a strict limit partition
//   - Short-tenor financing (1-4 weeks) with flat tenor fees
//   - Daily late penalties with a hard cap, recomputed idempotently
//   - Overdue escalation: freeze, limit reduction, lock, default
//   - Profit-share credit limit growth from finalized storefront orders
//   - An append-only journal from which balances are reconstructable
//   - Idempotent mutations keyed by caller-supplied reference ids
//
// # Quick Start
//
// Create an engine with your preferred store:
//
//	import (
//	    "github.com/xraph/paylater"
//	    "github.com/xraph/paylater/store/postgres"
//	)
//
//	// db is the application's *grove.DB
//	store := postgres.New(db)
//
//	// Create engine
//	pl := paylater.New(store)
//
//	// Start (migrates the store, begins the job runner)
//	if err := pl.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer pl.Stop()
//
// # Core Concepts
//
// Accounts are keyed by normalized phone number and hold the credit limit
// partition (available + used == credit):
//
//	acct, err := pl.UpsertAccount(ctx, "0812-3456-789", "user_42", 500_000)
//
// Checkout asks for eligibility, then opens an invoice with the caller's
// idempotency key:
//
//	res, err := pl.CheckEligibility(ctx, phone, orderTotal)
//	if res.Eligible {
//	    inv, err := pl.OpenInvoice(ctx, paylater.OpenInvoiceRequest{
//	        Phone:      phone,
//	        Principal:  orderTotal,
//	        TenorWeeks: 2,
//	        InvoiceID:  orderInvoiceID,
//	    })
//	    _ = inv
//	}
//
// Payments accumulate until the invoice settles:
//
//	pay, err := pl.PayInvoice(ctx, paylater.PayRequest{
//	    InvoiceID:    orderInvoiceID,
//	    Amount:       amount,
//	    PaymentRefID: webhookRef,
//	})
//
// Replaying any mutation with the same reference id returns the original
// result flagged Dedup rather than mutating twice, so webhook retries and
// lock-timeout retries are always safe.
//
// # Concurrency
//
// Every mutation serializes on a per-account lock with a bounded wait and
// fails fast with ErrLockTimeout under contention. Stores additionally
// guard account rows with an optimistic version column. Sweeps release and
// reacquire the lock between records.
//
// All monetary values are integers in the currency's minor unit; percent
// math uses basis points with round-half-up, never floating point on the
// money path.
//
// # TypeID
//
// Internal entities use TypeID for globally unique, type-safe identifiers:
//
//	acct_01h2xcejqtf2nbrexx3vqjhp41  // Account ID
//	led_01h455vb4pex5vsknk084sn02q   // Ledger entry ID
//
// Caller-supplied keys (invoice ids, payment refs, order ids) stay opaque
// strings.
package paylater
