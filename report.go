package paylater

import (
	"context"
	"time"

	"github.com/xraph/paylater/id"
	"github.com/xraph/paylater/invoice"
	"github.com/xraph/paylater/journal"
	"github.com/xraph/paylater/report"
	"github.com/xraph/paylater/types"
)

// GeneratePostmortem aggregates portfolio figures for [periodStart,
// periodEnd) into a stored report. Period figures come from the journal
// and invoice timestamps; overdue and outstanding figures are a snapshot
// at generation time.
func (e *Engine) GeneratePostmortem(ctx context.Context, periodStart, periodEnd time.Time) (*report.Report, error) {
	if !periodEnd.After(periodStart) {
		return nil, ValidationError{Field: "period_end", Message: "must be after period_start"}
	}

	stats := report.NewStats()

	entries, err := e.store.ListEntries(ctx, journal.ListOpts{})
	if err != nil {
		return nil, err
	}
	for _, en := range entries {
		if en.CreatedAt.Before(periodStart) || !en.CreatedAt.Before(periodEnd) {
			continue
		}
		switch en.Type {
		case journal.TypePayment:
			stats.PaymentsReceived = stats.PaymentsReceived.Add(types.IDR(en.Amount))
		case journal.TypePenalty:
			stats.PenaltiesAccrued = stats.PenaltiesAccrued.Add(types.IDR(en.Amount))
		case journal.TypeLimitIncrease:
			stats.LimitGranted = stats.LimitGranted.Add(types.IDR(en.Amount))
		case journal.TypeLimitReversal:
			stats.LimitReversed = stats.LimitReversed.Add(types.IDR(en.Amount))
		case journal.TypeFrozen:
			stats.AccountsFrozen++
		case journal.TypeLocked:
			stats.AccountsLocked++
		case journal.TypeDefaulted:
			stats.InvoicesDefaulted++
		}
	}

	invoices, err := e.store.ListInvoices(ctx, invoice.ListOpts{})
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		if !inv.CreatedAt.Before(periodStart) && inv.CreatedAt.Before(periodEnd) {
			stats.InvoicesOpened++
			stats.PrincipalIssued = stats.PrincipalIssued.Add(types.IDR(inv.Principal))
			stats.FeesCharged = stats.FeesCharged.Add(types.IDR(inv.FeeAmount))
		}
		if inv.PaidAt != nil && !inv.PaidAt.Before(periodStart) && inv.PaidAt.Before(periodEnd) {
			stats.InvoicesPaid++
		}
		if inv.Status == invoice.StatusOverdue {
			stats.InvoicesOverdue++
		}
		if inv.Status.Open() {
			stats.OutstandingDue = stats.OutstandingDue.Add(types.IDR(inv.TotalDue - inv.PaidAmount))
		}
	}

	r := &report.Report{
		Entity:      types.NewEntity(),
		ID:          id.NewReportID(),
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Stats:       stats,
	}
	if err := e.store.CreateReport(ctx, r); err != nil {
		return nil, err
	}

	e.logger.Info("postmortem generated",
		"report_id", r.ID,
		"period_start", periodStart,
		"period_end", periodEnd,
		"invoices_opened", stats.InvoicesOpened,
		"outstanding_due", stats.OutstandingDue,
	)

	return r, nil
}

// GeneratePostmortemTwoWeeks generates the standard two-week-lookback
// postmortem ending now.
func (e *Engine) GeneratePostmortemTwoWeeks(ctx context.Context) (*report.Report, error) {
	end := e.now()
	return e.GeneratePostmortem(ctx, end.AddDate(0, 0, -14), end)
}

// GetReport retrieves a stored report.
func (e *Engine) GetReport(ctx context.Context, reportID id.ReportID) (*report.Report, error) {
	return e.store.GetReport(ctx, reportID)
}

// ListReports lists stored reports, newest first.
func (e *Engine) ListReports(ctx context.Context, limit, offset int) ([]*report.Report, error) {
	return e.store.ListReports(ctx, limit, offset)
}
