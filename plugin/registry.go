package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/paylater/account"
	"github.com/xraph/paylater/invoice"
	"github.com/xraph/paylater/journal"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit                 []OnInit
	onShutdown             []OnShutdown
	onInvoiceOpened        []OnInvoiceOpened
	onInvoicePaid          []OnInvoicePaid
	onInvoiceOverdue       []OnInvoiceOverdue
	onInvoiceDefaulted     []OnInvoiceDefaulted
	onInvoiceDueSoon       []OnInvoiceDueSoon
	onPenaltyApplied       []OnPenaltyApplied
	onAccountFrozen        []OnAccountFrozen
	onAccountLocked        []OnAccountLocked
	onAccountStatusChanged []OnAccountStatusChanged
	onLimitGranted         []OnLimitGranted
	onLimitReversed        []OnLimitReversed
	onLimitReduced         []OnLimitReduced
	onSweepCompleted       []OnSweepCompleted
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{logger: slog.Default()}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnInvoiceOpened); ok {
		r.onInvoiceOpened = append(r.onInvoiceOpened, v)
	}
	if v, ok := p.(OnInvoicePaid); ok {
		r.onInvoicePaid = append(r.onInvoicePaid, v)
	}
	if v, ok := p.(OnInvoiceOverdue); ok {
		r.onInvoiceOverdue = append(r.onInvoiceOverdue, v)
	}
	if v, ok := p.(OnInvoiceDefaulted); ok {
		r.onInvoiceDefaulted = append(r.onInvoiceDefaulted, v)
	}
	if v, ok := p.(OnInvoiceDueSoon); ok {
		r.onInvoiceDueSoon = append(r.onInvoiceDueSoon, v)
	}
	if v, ok := p.(OnPenaltyApplied); ok {
		r.onPenaltyApplied = append(r.onPenaltyApplied, v)
	}
	if v, ok := p.(OnAccountFrozen); ok {
		r.onAccountFrozen = append(r.onAccountFrozen, v)
	}
	if v, ok := p.(OnAccountLocked); ok {
		r.onAccountLocked = append(r.onAccountLocked, v)
	}
	if v, ok := p.(OnAccountStatusChanged); ok {
		r.onAccountStatusChanged = append(r.onAccountStatusChanged, v)
	}
	if v, ok := p.(OnLimitGranted); ok {
		r.onLimitGranted = append(r.onLimitGranted, v)
	}
	if v, ok := p.(OnLimitReversed); ok {
		r.onLimitReversed = append(r.onLimitReversed, v)
	}
	if v, ok := p.(OnLimitReduced); ok {
		r.onLimitReduced = append(r.onLimitReduced, v)
	}
	if v, ok := p.(OnSweepCompleted); ok {
		r.onSweepCompleted = append(r.onSweepCompleted, v)
	}

	r.logger.Info("plugin registered", "name", p.Name())

	return nil
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitInvoiceOpened emits an invoice opened event.
func (r *Registry) EmitInvoiceOpened(ctx context.Context, inv *invoice.Invoice) {
	r.mu.RLock()
	plugins := r.onInvoiceOpened
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInvoiceOpened(ctx, inv)
		}); err != nil {
			r.logger.Warn("plugin OnInvoiceOpened failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitInvoicePaid emits a payment recorded event.
func (r *Registry) EmitInvoicePaid(ctx context.Context, inv *invoice.Invoice, amount int64, settled bool) {
	r.mu.RLock()
	plugins := r.onInvoicePaid
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInvoicePaid(ctx, inv, amount, settled)
		}); err != nil {
			r.logger.Warn("plugin OnInvoicePaid failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitInvoiceOverdue emits an invoice overdue event.
func (r *Registry) EmitInvoiceOverdue(ctx context.Context, inv *invoice.Invoice, daysLate int) {
	r.mu.RLock()
	plugins := r.onInvoiceOverdue
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInvoiceOverdue(ctx, inv, daysLate)
		}); err != nil {
			r.logger.Warn("plugin OnInvoiceOverdue failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitInvoiceDefaulted emits an invoice defaulted event.
func (r *Registry) EmitInvoiceDefaulted(ctx context.Context, inv *invoice.Invoice) {
	r.mu.RLock()
	plugins := r.onInvoiceDefaulted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInvoiceDefaulted(ctx, inv)
		}); err != nil {
			r.logger.Warn("plugin OnInvoiceDefaulted failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitInvoiceDueSoon emits a due-soon notification event.
func (r *Registry) EmitInvoiceDueSoon(ctx context.Context, inv *invoice.Invoice, due time.Time) {
	r.mu.RLock()
	plugins := r.onInvoiceDueSoon
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInvoiceDueSoon(ctx, inv, due)
		}); err != nil {
			r.logger.Warn("plugin OnInvoiceDueSoon failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitPenaltyApplied emits a penalty accrual event.
func (r *Registry) EmitPenaltyApplied(ctx context.Context, inv *invoice.Invoice, delta int64) {
	r.mu.RLock()
	plugins := r.onPenaltyApplied
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPenaltyApplied(ctx, inv, delta)
		}); err != nil {
			r.logger.Warn("plugin OnPenaltyApplied failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitAccountFrozen emits an account frozen event.
func (r *Registry) EmitAccountFrozen(ctx context.Context, acct *account.Account, daysLate int) {
	r.mu.RLock()
	plugins := r.onAccountFrozen
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnAccountFrozen(ctx, acct, daysLate)
		}); err != nil {
			r.logger.Warn("plugin OnAccountFrozen failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitAccountLocked emits an account locked event.
func (r *Registry) EmitAccountLocked(ctx context.Context, acct *account.Account, daysLate int) {
	r.mu.RLock()
	plugins := r.onAccountLocked
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnAccountLocked(ctx, acct, daysLate)
		}); err != nil {
			r.logger.Warn("plugin OnAccountLocked failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitAccountStatusChanged emits a status transition event.
func (r *Registry) EmitAccountStatusChanged(ctx context.Context, acct *account.Account, from, to account.Status) {
	r.mu.RLock()
	plugins := r.onAccountStatusChanged
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnAccountStatusChanged(ctx, acct, from, to)
		}); err != nil {
			r.logger.Warn("plugin OnAccountStatusChanged failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitLimitGranted emits a limit grant event.
func (r *Registry) EmitLimitGranted(ctx context.Context, acct *account.Account, entry *journal.Entry) {
	r.mu.RLock()
	plugins := r.onLimitGranted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnLimitGranted(ctx, acct, entry)
		}); err != nil {
			r.logger.Warn("plugin OnLimitGranted failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitLimitReversed emits a grant reversal event.
func (r *Registry) EmitLimitReversed(ctx context.Context, acct *account.Account, entry *journal.Entry) {
	r.mu.RLock()
	plugins := r.onLimitReversed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnLimitReversed(ctx, acct, entry)
		}); err != nil {
			r.logger.Warn("plugin OnLimitReversed failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitLimitReduced emits a punitive limit reduction event.
func (r *Registry) EmitLimitReduced(ctx context.Context, acct *account.Account, entry *journal.Entry) {
	r.mu.RLock()
	plugins := r.onLimitReduced
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnLimitReduced(ctx, acct, entry)
		}); err != nil {
			r.logger.Warn("plugin OnLimitReduced failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitSweepCompleted emits a sweep summary event.
func (r *Registry) EmitSweepCompleted(ctx context.Context, result SweepResult) {
	r.mu.RLock()
	plugins := r.onSweepCompleted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSweepCompleted(ctx, result)
		}); err != nil {
			r.logger.Warn("plugin OnSweepCompleted failed", "plugin", p.Name(), "error", err)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the credit pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
