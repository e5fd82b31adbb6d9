package paylater

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/paylater/account"
	"github.com/xraph/paylater/id"
	"github.com/xraph/paylater/invoice"
	"github.com/xraph/paylater/journal"
	"github.com/xraph/paylater/plugin"
	"github.com/xraph/paylater/scheduler"
	"github.com/xraph/paylater/types"
)

// PenaltyResult is the outcome of a single-invoice penalty application.
type PenaltyResult struct {
	Invoice  *invoice.Invoice `json:"invoice"`
	DaysLate int              `json:"days_late"`
	Delta    int64            `json:"delta"`
}

// ApplyPenalty recomputes the late penalty for one invoice and runs the
// overdue escalations for its account. Safe to call repeatedly: the
// penalty depends only on the current days late and each escalation
// appends at most once per invoice.
func (e *Engine) ApplyPenalty(ctx context.Context, invoiceID, actor string) (*PenaltyResult, error) {
	if invoiceID == "" {
		return nil, ValidationError{Field: "invoice_id", Message: "must not be empty"}
	}

	probe, err := e.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	unlock, err := e.acquire(ctx, probe.Phone)
	if err != nil {
		return nil, err
	}
	defer unlock()

	res, _, err := e.penalizeLocked(ctx, invoiceID, actor)
	return res, err
}

// SweepPenalties applies penalties and escalations to every overdue open
// invoice. The account lock is released between invoices so a long sweep
// cannot starve interactive requests.
func (e *Engine) SweepPenalties(ctx context.Context) (plugin.SweepResult, error) {
	start := e.now()
	var result plugin.SweepResult

	overdue, err := e.store.InvoicesDueBetween(ctx, time.Time{}, start)
	if err != nil {
		return result, err
	}
	result.Scanned = len(overdue)

	for _, inv := range overdue {
		unlock, err := e.acquire(ctx, inv.Phone)
		if err != nil {
			result.Errors++
			e.logger.Warn("penalty sweep: lock failed", "phone", inv.Phone, "error", err)
			continue
		}

		res, esc, err := e.penalizeLocked(ctx, inv.ID, "system")
		unlock()

		if err != nil {
			result.Errors++
			e.logger.Warn("penalty sweep: invoice failed", "invoice_id", inv.ID, "error", err)
			continue
		}
		if res != nil && res.Delta > 0 {
			result.Penalized++
		}
		result.Frozen += esc.frozen
		result.Locked += esc.locked
		result.Reduced += esc.reduced
		result.Defaulted += esc.defaulted
	}

	result.Elapsed = e.now().Sub(start)
	e.plugins.EmitSweepCompleted(ctx, result)
	e.logger.Info("penalty sweep completed",
		"scanned", result.Scanned,
		"penalized", result.Penalized,
		"frozen", result.Frozen,
		"locked", result.Locked,
		"reduced", result.Reduced,
		"defaulted", result.Defaulted,
		"errors", result.Errors,
		"elapsed_ms", result.Elapsed.Milliseconds(),
	)

	return result, nil
}

// escalations counts the account-level transitions applied for one invoice.
type escalations struct {
	frozen    int
	locked    int
	reduced   int
	defaulted int
}

// penalizeLocked does the per-invoice work. Caller holds the account lock.
func (e *Engine) penalizeLocked(ctx context.Context, invoiceID, actor string) (*PenaltyResult, escalations, error) {
	var esc escalations

	inv, err := e.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, esc, err
	}
	if !inv.Status.Open() {
		return &PenaltyResult{Invoice: inv}, esc, nil
	}

	now := e.now()
	daysLate := inv.DaysLate(now)
	if daysLate <= 0 {
		return &PenaltyResult{Invoice: inv}, esc, nil
	}

	cfg := e.Config(ctx)
	a, err := e.store.GetAccount(ctx, inv.Phone)
	if err != nil {
		return nil, esc, err
	}

	pen := invoice.AccruePenalty(inv.TotalBeforePenalty, daysLate, cfg)
	delta := pen.PenaltyAmount - inv.PenaltyAmount

	firstOverdue := inv.Status == invoice.StatusActive
	if firstOverdue {
		inv.Status = invoice.StatusOverdue
	}

	if delta > 0 || firstOverdue {
		inv.PenaltyAmount = pen.PenaltyAmount
		inv.TotalDue = pen.TotalDue
		inv.Touch()
		if err := e.store.UpdateInvoice(ctx, inv); err != nil {
			return nil, esc, err
		}
	}

	if delta > 0 {
		// The penalty joins the reserved amount so used_limit keeps
		// tracking the outstanding total_due.
		a.UsedLimit += delta
		a.AvailableLimit -= delta
		a.Touch()
		if err := e.store.UpdateAccount(ctx, a); err != nil {
			return nil, esc, err
		}

		// One penalty entry per invoice per day late.
		ref := fmt.Sprintf("%s:day%d", inv.ID, daysLate)
		if err := e.append(ctx, a, journal.TypePenalty, delta, ref, actor, "late penalty"); err != nil {
			return nil, esc, err
		}
		e.plugins.EmitPenaltyApplied(ctx, inv, delta)
	}

	if firstOverdue {
		e.plugins.EmitInvoiceOverdue(ctx, inv, daysLate)
	}

	// Account-level escalations, ascending by threshold. Each applies at
	// most once per invoice, guarded by the journal entry it appends.
	if daysLate >= cfg.FreezeOverdueDays {
		applied, err := e.store.EntryExists(ctx, a.Phone, journal.TypeFrozen, inv.ID)
		if err != nil {
			return nil, esc, err
		}
		if !applied {
			if a.Status == account.StatusActive {
				a.Status = account.StatusFrozen
				a.Touch()
				if err := e.store.UpdateAccount(ctx, a); err != nil {
					return nil, esc, err
				}
				esc.frozen++
				e.plugins.EmitAccountFrozen(ctx, a, daysLate)
				e.plugins.EmitAccountStatusChanged(ctx, a, account.StatusActive, account.StatusFrozen)
			}
			if err := e.append(ctx, a, journal.TypeFrozen, 0, inv.ID, actor, "overdue freeze"); err != nil {
				return nil, esc, err
			}
		}
	}

	if daysLate >= cfg.ReduceLimitOverdueDays {
		applied, err := e.store.EntryExists(ctx, a.Phone, journal.TypeLimitReduce, inv.ID)
		if err != nil {
			return nil, esc, err
		}
		if !applied {
			cut := types.ApplyBasisPoints(a.CreditLimit, types.BasisPoints(cfg.ReduceLimitPercent))
			if headroom := a.CreditLimit - a.UsedLimit; cut > headroom {
				cut = headroom
			}
			if cut < 0 {
				cut = 0
			}
			a.CreditLimit -= cut
			a.AvailableLimit -= cut
			a.Touch()
			if err := e.store.UpdateAccount(ctx, a); err != nil {
				return nil, esc, err
			}
			entry, err := e.appendEntry(ctx, a, journal.TypeLimitReduce, cut, inv.ID, actor, "overdue limit reduction")
			if err != nil {
				return nil, esc, err
			}
			esc.reduced++
			e.plugins.EmitLimitReduced(ctx, a, entry)
		}
	}

	if daysLate >= cfg.LockOverdueDays {
		applied, err := e.store.EntryExists(ctx, a.Phone, journal.TypeLocked, inv.ID)
		if err != nil {
			return nil, esc, err
		}
		if !applied {
			if a.Status != account.StatusLocked {
				from := a.Status
				a.Status = account.StatusLocked
				a.Touch()
				if err := e.store.UpdateAccount(ctx, a); err != nil {
					return nil, esc, err
				}
				esc.locked++
				e.plugins.EmitAccountLocked(ctx, a, daysLate)
				e.plugins.EmitAccountStatusChanged(ctx, a, from, account.StatusLocked)
			}
			if err := e.append(ctx, a, journal.TypeLocked, 0, inv.ID, actor, "overdue lock"); err != nil {
				return nil, esc, err
			}
		}
	}

	if daysLate >= cfg.DefaultOverdueDays {
		applied, err := e.store.EntryExists(ctx, a.Phone, journal.TypeDefaulted, inv.ID)
		if err != nil {
			return nil, esc, err
		}
		if !applied {
			// Terminal write-off. The reserved amount stays on used_limit:
			// the debt is still owed and the account remains locked.
			inv.Status = invoice.StatusDefaulted
			inv.Touch()
			if err := e.store.UpdateInvoice(ctx, inv); err != nil {
				return nil, esc, err
			}
			if err := e.append(ctx, a, journal.TypeDefaulted, 0, inv.ID, actor, "defaulted after prolonged delinquency"); err != nil {
				return nil, esc, err
			}
			esc.defaulted++
			e.plugins.EmitInvoiceDefaulted(ctx, inv)
		}
	}

	return &PenaltyResult{Invoice: inv, DaysLate: daysLate, Delta: delta}, esc, nil
}

// ──────────────────────────────────────────────────
// Due notifications
// ──────────────────────────────────────────────────

// NotifyDueSoon emits a due-soon hook for every open invoice whose due date
// falls within the configured window. Delivery is at-least-once; the
// notification layer behind the hook owns its own dedup.
func (e *Engine) NotifyDueSoon(ctx context.Context) (int, error) {
	now := e.now()
	upcoming, err := e.store.InvoicesDueBetween(ctx, now, now.Add(e.dueSoonWindow))
	if err != nil {
		return 0, err
	}

	for _, inv := range upcoming {
		e.plugins.EmitInvoiceDueSoon(ctx, inv, inv.DueDate)
	}

	if len(upcoming) > 0 {
		e.logger.Info("due-soon notifications emitted", "count", len(upcoming))
	}
	return len(upcoming), nil
}

// ──────────────────────────────────────────────────
// Profit-to-limit processor
// ──────────────────────────────────────────────────

// cursor key for the finalized-order feed, stored alongside user settings.
const settingOrderCursor = "paylater_limit_order_cursor"

// ProcessLimitFromOrders drains the finalized-order feed and grants a
// profit-share limit increase for each order. Replays are harmless:
// GrantLimitFromProfit is idempotent per order id, and the cursor only
// narrows the scan.
func (e *Engine) ProcessLimitFromOrders(ctx context.Context) (int, error) {
	if e.orders == nil {
		return 0, nil
	}

	since := time.Time{}
	if settings, err := e.store.GetSettings(ctx); err == nil {
		if raw := settings[settingOrderCursor]; raw != "" {
			if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
				since = t
			}
		}
	}

	granted := 0
	for {
		batch, err := e.orders.FinalizedSince(ctx, since, e.orderBatch)
		if err != nil {
			return granted, err
		}
		if len(batch) == 0 {
			return granted, nil
		}

		prev := since
		for _, o := range batch {
			res, err := e.GrantLimitFromProfit(ctx, o.Phone, o.ID, o.ProfitNet, "system")
			if err != nil {
				// Orders for phones without an account are skipped, not
				// retried forever.
				if IsNotFound(err) {
					e.logger.Warn("limit grant skipped: no account", "order_id", o.ID, "phone", o.Phone)
				} else {
					return granted, err
				}
			} else if !res.Dedup {
				granted++
			}
			if o.FinalizedAt.After(since) {
				since = o.FinalizedAt
			}
		}

		if err := e.store.PutSetting(ctx, settingOrderCursor, since.Format(time.RFC3339Nano)); err != nil {
			return granted, err
		}
		// The feed is inclusive of the cursor, so a full batch sharing a
		// single timestamp cannot advance it; stop rather than refetch.
		if len(batch) < e.orderBatch || !since.After(prev) {
			return granted, nil
		}
	}
}

// ──────────────────────────────────────────────────
// Schedules
// ──────────────────────────────────────────────────

// InstallSchedule registers a recurring job. Reinstalling an existing name
// replaces its interval rather than duplicating the trigger.
func (e *Engine) InstallSchedule(ctx context.Context, name string, every time.Duration) (*scheduler.Schedule, error) {
	if !scheduler.KnownJob(name) {
		return nil, ErrUnknownJob
	}
	if every <= 0 {
		return nil, ValidationError{Field: "every", Message: "must be positive"}
	}

	s := &scheduler.Schedule{
		Entity:  types.NewEntity(),
		ID:      id.NewJobID(),
		Name:    name,
		Every:   every,
		Enabled: true,
	}
	if err := e.store.InstallSchedule(ctx, s); err != nil {
		return nil, err
	}

	e.logger.Info("schedule installed", "name", name, "every", every)
	return s, nil
}

// RemoveSchedule deletes a schedule. Removing an absent schedule is a no-op.
func (e *Engine) RemoveSchedule(ctx context.Context, name string) error {
	if !scheduler.KnownJob(name) {
		return ErrUnknownJob
	}
	if err := e.store.RemoveSchedule(ctx, name); err != nil && !IsNotFound(err) {
		return err
	}
	e.logger.Info("schedule removed", "name", name)
	return nil
}

// GetSchedule retrieves a schedule by job name.
func (e *Engine) GetSchedule(ctx context.Context, name string) (*scheduler.Schedule, error) {
	if !scheduler.KnownJob(name) {
		return nil, ErrUnknownJob
	}
	return e.store.GetSchedule(ctx, name)
}

// ListSchedules lists installed schedules.
func (e *Engine) ListSchedules(ctx context.Context) ([]*scheduler.Schedule, error) {
	return e.store.ListSchedules(ctx)
}

// jobRunner polls installed schedules and fires the ones that are due.
func (e *Engine) jobRunner(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.jobTick)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.runDueJobs(ctx)
		}
	}
}

func (e *Engine) runDueJobs(ctx context.Context) {
	schedules, err := e.store.ListSchedules(ctx)
	if err != nil {
		e.logger.Warn("schedule poll failed", "error", err)
		return
	}

	now := e.now()
	for _, s := range schedules {
		if !s.Due(now) {
			continue
		}

		err := e.runJob(ctx, s.Name)

		ran := e.now()
		s.LastRun = &ran
		s.RunCount++
		s.LastErr = ""
		if err != nil {
			s.LastErr = err.Error()
			e.logger.Warn("scheduled job failed", "name", s.Name, "error", err)
		}
		s.Touch()
		if uerr := e.store.UpdateSchedule(ctx, s); uerr != nil {
			e.logger.Warn("schedule update failed", "name", s.Name, "error", uerr)
		}
	}
}

func (e *Engine) runJob(ctx context.Context, name string) error {
	switch name {
	case scheduler.JobPenaltySweep:
		_, err := e.SweepPenalties(ctx)
		return err
	case scheduler.JobLimitGrant:
		_, err := e.ProcessLimitFromOrders(ctx)
		return err
	case scheduler.JobDueNotice:
		_, err := e.NotifyDueSoon(ctx)
		return err
	}
	return ErrUnknownJob
}
