// Package audithook bridges PayLater lifecycle events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/paylater/account"
	"github.com/xraph/paylater/invoice"
	"github.com/xraph/paylater/journal"
	"github.com/xraph/paylater/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                 = (*Hook)(nil)
	_ plugin.OnInvoiceOpened        = (*Hook)(nil)
	_ plugin.OnInvoicePaid          = (*Hook)(nil)
	_ plugin.OnInvoiceOverdue       = (*Hook)(nil)
	_ plugin.OnInvoiceDefaulted     = (*Hook)(nil)
	_ plugin.OnPenaltyApplied       = (*Hook)(nil)
	_ plugin.OnAccountFrozen        = (*Hook)(nil)
	_ plugin.OnAccountLocked        = (*Hook)(nil)
	_ plugin.OnAccountStatusChanged = (*Hook)(nil)
	_ plugin.OnLimitGranted         = (*Hook)(nil)
	_ plugin.OnLimitReversed        = (*Hook)(nil)
	_ plugin.OnLimitReduced         = (*Hook)(nil)
	_ plugin.OnSweepCompleted       = (*Hook)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audithook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Hook bridges PayLater lifecycle events to an audit trail backend.
type Hook struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates a Hook that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Hook {
	h := &Hook{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Name implements plugin.Plugin.
func (h *Hook) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceOpened implements plugin.OnInvoiceOpened.
func (h *Hook) OnInvoiceOpened(ctx context.Context, inv *invoice.Invoice) error {
	return h.record(ctx, ActionInvoiceOpened, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, inv.ID, CategoryCredit, nil,
		"phone", inv.Phone,
		"principal", inv.Principal,
		"tenor_weeks", inv.TenorWeeks,
		"total_due", inv.TotalDue,
	)
}

// OnInvoicePaid implements plugin.OnInvoicePaid.
func (h *Hook) OnInvoicePaid(ctx context.Context, inv *invoice.Invoice, amount int64, settled bool) error {
	return h.record(ctx, ActionInvoicePaid, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, inv.ID, CategoryPayment, nil,
		"phone", inv.Phone,
		"amount", amount,
		"settled", settled,
		"paid_amount", inv.PaidAmount,
	)
}

// OnInvoiceOverdue implements plugin.OnInvoiceOverdue.
func (h *Hook) OnInvoiceOverdue(ctx context.Context, inv *invoice.Invoice, daysLate int) error {
	return h.record(ctx, ActionInvoiceOverdue, SeverityWarning, OutcomeSuccess,
		ResourceInvoice, inv.ID, CategoryCollection, nil,
		"phone", inv.Phone,
		"days_late", daysLate,
		"total_due", inv.TotalDue,
	)
}

// OnInvoiceDefaulted implements plugin.OnInvoiceDefaulted.
func (h *Hook) OnInvoiceDefaulted(ctx context.Context, inv *invoice.Invoice) error {
	return h.record(ctx, ActionInvoiceDefaulted, SeverityCritical, OutcomeSuccess,
		ResourceInvoice, inv.ID, CategoryCollection, nil,
		"phone", inv.Phone,
		"total_due", inv.TotalDue,
		"paid_amount", inv.PaidAmount,
	)
}

// OnPenaltyApplied implements plugin.OnPenaltyApplied.
func (h *Hook) OnPenaltyApplied(ctx context.Context, inv *invoice.Invoice, delta int64) error {
	return h.record(ctx, ActionPenaltyApplied, SeverityWarning, OutcomeSuccess,
		ResourceInvoice, inv.ID, CategoryCollection, nil,
		"phone", inv.Phone,
		"delta", delta,
		"penalty_amount", inv.PenaltyAmount,
	)
}

// ──────────────────────────────────────────────────
// Account lifecycle hooks
// ──────────────────────────────────────────────────

// OnAccountFrozen implements plugin.OnAccountFrozen.
func (h *Hook) OnAccountFrozen(ctx context.Context, acct *account.Account, daysLate int) error {
	return h.record(ctx, ActionAccountFrozen, SeverityWarning, OutcomeSuccess,
		ResourceAccount, acct.Phone, CategoryCollection, nil,
		"days_late", daysLate,
	)
}

// OnAccountLocked implements plugin.OnAccountLocked.
func (h *Hook) OnAccountLocked(ctx context.Context, acct *account.Account, daysLate int) error {
	return h.record(ctx, ActionAccountLocked, SeverityCritical, OutcomeSuccess,
		ResourceAccount, acct.Phone, CategoryCollection, nil,
		"days_late", daysLate,
	)
}

// OnAccountStatusChanged implements plugin.OnAccountStatusChanged.
func (h *Hook) OnAccountStatusChanged(ctx context.Context, acct *account.Account, from, to account.Status) error {
	return h.record(ctx, ActionAccountStatusChanged, SeverityInfo, OutcomeSuccess,
		ResourceAccount, acct.Phone, CategoryCredit, nil,
		"from", string(from),
		"to", string(to),
	)
}

// ──────────────────────────────────────────────────
// Limit lifecycle hooks
// ──────────────────────────────────────────────────

// OnLimitGranted implements plugin.OnLimitGranted.
func (h *Hook) OnLimitGranted(ctx context.Context, acct *account.Account, entry *journal.Entry) error {
	return h.record(ctx, ActionLimitGranted, SeverityInfo, OutcomeSuccess,
		ResourceLimit, acct.Phone, CategoryCredit, nil,
		"order_id", entry.RefID,
		"amount", entry.Amount,
		"credit_limit", acct.CreditLimit,
	)
}

// OnLimitReversed implements plugin.OnLimitReversed.
func (h *Hook) OnLimitReversed(ctx context.Context, acct *account.Account, entry *journal.Entry) error {
	return h.record(ctx, ActionLimitReversed, SeverityWarning, OutcomeSuccess,
		ResourceLimit, acct.Phone, CategoryCredit, nil,
		"order_id", entry.RefID,
		"amount", entry.Amount,
		"credit_limit", acct.CreditLimit,
	)
}

// OnLimitReduced implements plugin.OnLimitReduced.
func (h *Hook) OnLimitReduced(ctx context.Context, acct *account.Account, entry *journal.Entry) error {
	return h.record(ctx, ActionLimitReduced, SeverityWarning, OutcomeSuccess,
		ResourceLimit, acct.Phone, CategoryCollection, nil,
		"invoice_id", entry.RefID,
		"amount", entry.Amount,
		"credit_limit", acct.CreditLimit,
	)
}

// ──────────────────────────────────────────────────
// Sweep hooks
// ──────────────────────────────────────────────────

// OnSweepCompleted implements plugin.OnSweepCompleted.
func (h *Hook) OnSweepCompleted(ctx context.Context, result plugin.SweepResult) error {
	outcome := OutcomeSuccess
	if result.Errors > 0 {
		outcome = OutcomePartial
	}
	return h.record(ctx, ActionSweepCompleted, SeverityInfo, outcome,
		ResourceSweep, "", CategoryCollection, nil,
		"scanned", result.Scanned,
		"penalized", result.Penalized,
		"frozen", result.Frozen,
		"locked", result.Locked,
		"reduced", result.Reduced,
		"defaulted", result.Defaulted,
		"errors", result.Errors,
		"elapsed_ms", result.Elapsed.Milliseconds(),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (h *Hook) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if h.enabled != nil && !h.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := h.recorder.Record(ctx, evt); recErr != nil {
		h.logger.Warn("audithook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
