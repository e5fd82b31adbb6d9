// Package observability provides a metrics plugin for PayLater that records
// lifecycle event counts via a MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/xraph/paylater/account"
	"github.com/xraph/paylater/invoice"
	"github.com/xraph/paylater/journal"
	"github.com/xraph/paylater/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                 = (*MetricsExtension)(nil)
	_ plugin.OnInit                 = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceOpened        = (*MetricsExtension)(nil)
	_ plugin.OnInvoicePaid          = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceOverdue       = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceDefaulted     = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceDueSoon       = (*MetricsExtension)(nil)
	_ plugin.OnPenaltyApplied       = (*MetricsExtension)(nil)
	_ plugin.OnAccountFrozen        = (*MetricsExtension)(nil)
	_ plugin.OnAccountLocked        = (*MetricsExtension)(nil)
	_ plugin.OnAccountStatusChanged = (*MetricsExtension)(nil)
	_ plugin.OnLimitGranted         = (*MetricsExtension)(nil)
	_ plugin.OnLimitReversed        = (*MetricsExtension)(nil)
	_ plugin.OnLimitReduced         = (*MetricsExtension)(nil)
	_ plugin.OnSweepCompleted       = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a PayLater plugin to automatically track credit metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Invoice metrics
	InvoiceOpened    Counter
	InvoicePaid      Counter
	InvoiceSettled   Counter
	InvoiceOverdue   Counter
	InvoiceDefaulted Counter
	InvoiceDueSoon   Counter
	InvoicePrincipal Histogram
	PaymentAmount    Histogram

	// Penalty metrics
	PenaltyApplied Counter
	PenaltyAmount  Histogram

	// Account metrics
	AccountFrozen        Counter
	AccountLocked        Counter
	AccountStatusChanges Counter

	// Limit metrics
	LimitGranted  Counter
	LimitReversed Counter
	LimitReduced  Counter
	GrantAmount   Histogram

	// Sweep metrics
	SweepRuns      Counter
	SweepErrors    Counter
	SweepScanned   Histogram
	SweepLatency   Histogram
	SweepDefaulted Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions, or prom.NewFactory for a
// standalone Prometheus registry.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Invoice metrics
		InvoiceOpened:    factory.Counter("paylater.invoice.opened"),
		InvoicePaid:      factory.Counter("paylater.invoice.paid"),
		InvoiceSettled:   factory.Counter("paylater.invoice.settled"),
		InvoiceOverdue:   factory.Counter("paylater.invoice.overdue"),
		InvoiceDefaulted: factory.Counter("paylater.invoice.defaulted"),
		InvoiceDueSoon:   factory.Counter("paylater.invoice.due_soon"),
		InvoicePrincipal: factory.Histogram("paylater.invoice.principal"),
		PaymentAmount:    factory.Histogram("paylater.payment.amount"),

		// Penalty metrics
		PenaltyApplied: factory.Counter("paylater.penalty.applied"),
		PenaltyAmount:  factory.Histogram("paylater.penalty.amount"),

		// Account metrics
		AccountFrozen:        factory.Counter("paylater.account.frozen"),
		AccountLocked:        factory.Counter("paylater.account.locked"),
		AccountStatusChanges: factory.Counter("paylater.account.status_changes"),

		// Limit metrics
		LimitGranted:  factory.Counter("paylater.limit.granted"),
		LimitReversed: factory.Counter("paylater.limit.reversed"),
		LimitReduced:  factory.Counter("paylater.limit.reduced"),
		GrantAmount:   factory.Histogram("paylater.limit.grant_amount"),

		// Sweep metrics
		SweepRuns:      factory.Counter("paylater.sweep.runs"),
		SweepErrors:    factory.Counter("paylater.sweep.errors"),
		SweepScanned:   factory.Histogram("paylater.sweep.scanned"),
		SweepLatency:   factory.Histogram("paylater.sweep.latency_ms"),
		SweepDefaulted: factory.Counter("paylater.sweep.defaulted"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceOpened implements plugin.OnInvoiceOpened.
func (m *MetricsExtension) OnInvoiceOpened(_ context.Context, inv *invoice.Invoice) error {
	m.InvoiceOpened.Inc()
	m.InvoicePrincipal.Observe(float64(inv.Principal))
	return nil
}

// OnInvoicePaid implements plugin.OnInvoicePaid.
func (m *MetricsExtension) OnInvoicePaid(_ context.Context, _ *invoice.Invoice, amount int64, settled bool) error {
	m.InvoicePaid.Inc()
	m.PaymentAmount.Observe(float64(amount))
	if settled {
		m.InvoiceSettled.Inc()
	}
	return nil
}

// OnInvoiceOverdue implements plugin.OnInvoiceOverdue.
func (m *MetricsExtension) OnInvoiceOverdue(_ context.Context, _ *invoice.Invoice, _ int) error {
	m.InvoiceOverdue.Inc()
	return nil
}

// OnInvoiceDefaulted implements plugin.OnInvoiceDefaulted.
func (m *MetricsExtension) OnInvoiceDefaulted(_ context.Context, _ *invoice.Invoice) error {
	m.InvoiceDefaulted.Inc()
	return nil
}

// OnInvoiceDueSoon implements plugin.OnInvoiceDueSoon.
func (m *MetricsExtension) OnInvoiceDueSoon(_ context.Context, _ *invoice.Invoice, _ time.Time) error {
	m.InvoiceDueSoon.Inc()
	return nil
}

// OnPenaltyApplied implements plugin.OnPenaltyApplied.
func (m *MetricsExtension) OnPenaltyApplied(_ context.Context, _ *invoice.Invoice, delta int64) error {
	m.PenaltyApplied.Inc()
	m.PenaltyAmount.Observe(float64(delta))
	return nil
}

// ──────────────────────────────────────────────────
// Account lifecycle hooks
// ──────────────────────────────────────────────────

// OnAccountFrozen implements plugin.OnAccountFrozen.
func (m *MetricsExtension) OnAccountFrozen(_ context.Context, _ *account.Account, _ int) error {
	m.AccountFrozen.Inc()
	return nil
}

// OnAccountLocked implements plugin.OnAccountLocked.
func (m *MetricsExtension) OnAccountLocked(_ context.Context, _ *account.Account, _ int) error {
	m.AccountLocked.Inc()
	return nil
}

// OnAccountStatusChanged implements plugin.OnAccountStatusChanged.
func (m *MetricsExtension) OnAccountStatusChanged(_ context.Context, _ *account.Account, _, _ account.Status) error {
	m.AccountStatusChanges.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Limit lifecycle hooks
// ──────────────────────────────────────────────────

// OnLimitGranted implements plugin.OnLimitGranted.
func (m *MetricsExtension) OnLimitGranted(_ context.Context, _ *account.Account, entry *journal.Entry) error {
	m.LimitGranted.Inc()
	m.GrantAmount.Observe(float64(entry.Amount))
	return nil
}

// OnLimitReversed implements plugin.OnLimitReversed.
func (m *MetricsExtension) OnLimitReversed(_ context.Context, _ *account.Account, _ *journal.Entry) error {
	m.LimitReversed.Inc()
	return nil
}

// OnLimitReduced implements plugin.OnLimitReduced.
func (m *MetricsExtension) OnLimitReduced(_ context.Context, _ *account.Account, _ *journal.Entry) error {
	m.LimitReduced.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Sweep hooks
// ──────────────────────────────────────────────────

// OnSweepCompleted implements plugin.OnSweepCompleted.
func (m *MetricsExtension) OnSweepCompleted(_ context.Context, result plugin.SweepResult) error {
	m.SweepRuns.Inc()
	m.SweepScanned.Observe(float64(result.Scanned))
	m.SweepLatency.Observe(float64(result.Elapsed.Milliseconds()))
	if result.Errors > 0 {
		m.SweepErrors.Add(float64(result.Errors))
	}
	if result.Defaulted > 0 {
		m.SweepDefaulted.Add(float64(result.Defaulted))
	}
	return nil
}
