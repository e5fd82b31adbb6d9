// Package plugin provides an extensible plugin system for the PayLater
// engine. Plugins can hook into lifecycle events to extend functionality:
// notifications, auditing, metrics, risk feeds.
package plugin

import (
	"context"
	"time"

	"github.com/xraph/paylater/account"
	"github.com/xraph/paylater/invoice"
	"github.com/xraph/paylater/journal"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the engine starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the engine is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceOpened is called when a financing is opened.
type OnInvoiceOpened interface {
	Plugin
	OnInvoiceOpened(ctx context.Context, inv *invoice.Invoice) error
}

// OnInvoicePaid is called when a payment is recorded. For partial payments
// the invoice reflects the accumulated paid amount; settled reports whether
// this payment closed the invoice.
type OnInvoicePaid interface {
	Plugin
	OnInvoicePaid(ctx context.Context, inv *invoice.Invoice, amount int64, settled bool) error
}

// OnInvoiceOverdue is called the first time a sweep finds an invoice past
// its due date.
type OnInvoiceOverdue interface {
	Plugin
	OnInvoiceOverdue(ctx context.Context, inv *invoice.Invoice, daysLate int) error
}

// OnInvoiceDefaulted is called when an invoice is written off.
type OnInvoiceDefaulted interface {
	Plugin
	OnInvoiceDefaulted(ctx context.Context, inv *invoice.Invoice) error
}

// OnInvoiceDueSoon is called by the due-notice runner for invoices
// approaching their due date. Delivery is best-effort, at least once.
type OnInvoiceDueSoon interface {
	Plugin
	OnInvoiceDueSoon(ctx context.Context, inv *invoice.Invoice, due time.Time) error
}

// OnPenaltyApplied is called when a sweep accrues a penalty delta.
type OnPenaltyApplied interface {
	Plugin
	OnPenaltyApplied(ctx context.Context, inv *invoice.Invoice, delta int64) error
}

// ──────────────────────────────────────────────────
// Account lifecycle hooks
// ──────────────────────────────────────────────────

// OnAccountFrozen is called when an overdue escalation freezes an account.
type OnAccountFrozen interface {
	Plugin
	OnAccountFrozen(ctx context.Context, acct *account.Account, daysLate int) error
}

// OnAccountLocked is called when an overdue escalation locks an account.
type OnAccountLocked interface {
	Plugin
	OnAccountLocked(ctx context.Context, acct *account.Account, daysLate int) error
}

// OnAccountStatusChanged is called on any status transition, including
// administrative reactivation.
type OnAccountStatusChanged interface {
	Plugin
	OnAccountStatusChanged(ctx context.Context, acct *account.Account, from, to account.Status) error
}

// ──────────────────────────────────────────────────
// Limit lifecycle hooks
// ──────────────────────────────────────────────────

// OnLimitGranted is called when order profit funds a limit increase.
type OnLimitGranted interface {
	Plugin
	OnLimitGranted(ctx context.Context, acct *account.Account, entry *journal.Entry) error
}

// OnLimitReversed is called when a prior grant is rolled back.
type OnLimitReversed interface {
	Plugin
	OnLimitReversed(ctx context.Context, acct *account.Account, entry *journal.Entry) error
}

// OnLimitReduced is called when an overdue escalation cuts the limit.
type OnLimitReduced interface {
	Plugin
	OnLimitReduced(ctx context.Context, acct *account.Account, entry *journal.Entry) error
}

// ──────────────────────────────────────────────────
// Sweep hooks
// ──────────────────────────────────────────────────

// SweepResult summarizes one penalty sweep run.
type SweepResult struct {
	Scanned   int
	Penalized int
	Frozen    int
	Locked    int
	Reduced   int
	Defaulted int
	Errors    int
	Elapsed   time.Duration
}

// OnSweepCompleted is called after each penalty sweep.
type OnSweepCompleted interface {
	Plugin
	OnSweepCompleted(ctx context.Context, result SweepResult) error
}
