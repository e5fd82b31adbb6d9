package paylater_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/xraph/paylater"
	"github.com/xraph/paylater/account"
	"github.com/xraph/paylater/invoice"
	"github.com/xraph/paylater/journal"
	"github.com/xraph/paylater/order"
	"github.com/xraph/paylater/scheduler"
)

// openTenorOne opens a 1-week invoice for 100_000: 5% fee, 105_000 total,
// 525 penalty per day late, capped at 15_750.
func openTenorOne(t *testing.T, e *paylater.Engine, invoiceID string) *invoice.Invoice {
	t.Helper()
	res, err := e.OpenInvoice(context.Background(), paylater.OpenInvoiceRequest{
		Phone:      "0811",
		Principal:  100_000,
		TenorWeeks: 1,
		InvoiceID:  invoiceID,
	})
	if err != nil {
		t.Fatalf("OpenInvoice: %v", err)
	}
	return res.Invoice
}

// advanceToDaysLate moves the clock to just past the given days-late mark.
func advanceToDaysLate(clk *clock, due time.Time, days int) {
	target := due.Add(time.Duration(days)*24*time.Hour + time.Hour)
	clk.Advance(target.Sub(clk.Now()))
}

func TestApplyPenalty(t *testing.T) {
	e, clk := newEngine(t)
	ctx := context.Background()
	mustAccount(t, e, "0811", 1_000_000)
	inv := openTenorOne(t, e, "inv-1")

	t.Run("NotYetDue", func(t *testing.T) {
		res, err := e.ApplyPenalty(ctx, "inv-1", "admin")
		if err != nil {
			t.Fatal(err)
		}
		if res.DaysLate != 0 || res.Delta != 0 {
			t.Errorf("res = %+v", res)
		}
	})

	advanceToDaysLate(clk, inv.DueDate, 1)

	t.Run("FirstDayLate", func(t *testing.T) {
		res, err := e.ApplyPenalty(ctx, "inv-1", "admin")
		if err != nil {
			t.Fatal(err)
		}
		if res.DaysLate != 1 || res.Delta != 525 {
			t.Errorf("daysLate=%d delta=%d", res.DaysLate, res.Delta)
		}
		if res.Invoice.Status != invoice.StatusOverdue {
			t.Errorf("status = %q", res.Invoice.Status)
		}
		if res.Invoice.TotalDue != 105_525 {
			t.Errorf("total_due = %d", res.Invoice.TotalDue)
		}
		if !res.Invoice.Consistent() {
			t.Error("invoice invariants broken")
		}

		// The penalty joins the reserve.
		a, _ := e.GetAccount(ctx, "0811")
		if a.UsedLimit != 105_525 {
			t.Errorf("used = %d", a.UsedLimit)
		}
		checkBalanced(t, a)
	})

	t.Run("SameDayReplayIsNoop", func(t *testing.T) {
		res, err := e.ApplyPenalty(ctx, "inv-1", "admin")
		if err != nil {
			t.Fatal(err)
		}
		if res.Delta != 0 {
			t.Errorf("replay delta = %d", res.Delta)
		}
		a, _ := e.GetAccount(ctx, "0811")
		if a.UsedLimit != 105_525 {
			t.Errorf("replay mutated: used = %d", a.UsedLimit)
		}
	})

	t.Run("SecondDayAccrues", func(t *testing.T) {
		advanceToDaysLate(clk, inv.DueDate, 2)
		res, err := e.ApplyPenalty(ctx, "inv-1", "admin")
		if err != nil {
			t.Fatal(err)
		}
		if res.DaysLate != 2 || res.Delta != 525 {
			t.Errorf("daysLate=%d delta=%d", res.DaysLate, res.Delta)
		}
		if res.Invoice.PenaltyAmount != 1_050 {
			t.Errorf("penalty = %d", res.Invoice.PenaltyAmount)
		}

		a, _ := e.GetAccount(ctx, "0811")
		penalties, _ := e.ListEntries(ctx, journal.ListOpts{Phone: a.Phone, Type: journal.TypePenalty})
		if len(penalties) != 2 {
			t.Errorf("penalty entries = %d, want 2", len(penalties))
		}
	})

	t.Run("CapStopsAccrual", func(t *testing.T) {
		advanceToDaysLate(clk, inv.DueDate, 31)
		res, err := e.ApplyPenalty(ctx, "inv-1", "admin")
		if err != nil {
			t.Fatal(err)
		}
		// 31 uncapped days would be 16_275; the 15% cap holds it at 15_750.
		if res.Invoice.PenaltyAmount != 15_750 {
			t.Errorf("penalty = %d, want 15750", res.Invoice.PenaltyAmount)
		}
	})
}

func TestSweepEscalations(t *testing.T) {
	e, clk := newEngine(t)
	ctx := context.Background()
	mustAccount(t, e, "0811", 1_000_000)
	inv := openTenorOne(t, e, "inv-1")

	t.Run("FreezeAtThreeDays", func(t *testing.T) {
		advanceToDaysLate(clk, inv.DueDate, 3)
		res, err := e.SweepPenalties(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if res.Scanned != 1 || res.Penalized != 1 || res.Frozen != 1 {
			t.Errorf("result = %+v", res)
		}
		acc, _ := e.GetAccount(ctx, "0811")
		if acc.Status != account.StatusFrozen {
			t.Errorf("status = %q", acc.Status)
		}
	})

	t.Run("RepeatSweepDoesNotReapply", func(t *testing.T) {
		res, err := e.SweepPenalties(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if res.Penalized != 0 || res.Frozen != 0 {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("ReduceAtSevenDays", func(t *testing.T) {
		advanceToDaysLate(clk, inv.DueDate, 7)
		res, err := e.SweepPenalties(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if res.Reduced != 1 || res.Frozen != 0 {
			t.Errorf("result = %+v", res)
		}
		// 10% haircut on the 1_000_000 limit.
		acc, _ := e.GetAccount(ctx, "0811")
		if acc.CreditLimit != 900_000 {
			t.Errorf("credit = %d", acc.CreditLimit)
		}
		checkBalanced(t, acc)
	})

	t.Run("LockAtFourteenDays", func(t *testing.T) {
		advanceToDaysLate(clk, inv.DueDate, 14)
		res, err := e.SweepPenalties(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if res.Locked != 1 {
			t.Errorf("result = %+v", res)
		}
		acc, _ := e.GetAccount(ctx, "0811")
		if acc.Status != account.StatusLocked {
			t.Errorf("status = %q", acc.Status)
		}
	})

	t.Run("DefaultAtThirtyDays", func(t *testing.T) {
		advanceToDaysLate(clk, inv.DueDate, 30)
		res, err := e.SweepPenalties(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if res.Defaulted != 1 {
			t.Errorf("result = %+v", res)
		}

		got, _ := e.GetInvoice(ctx, "inv-1")
		if got.Status != invoice.StatusDefaulted {
			t.Errorf("status = %q", got.Status)
		}
		// Penalty capped at 15% of 105_000.
		if got.PenaltyAmount != 15_750 {
			t.Errorf("penalty = %d", got.PenaltyAmount)
		}

		// The written-off debt stays reserved.
		acc, _ := e.GetAccount(ctx, "0811")
		if acc.UsedLimit != 120_750 {
			t.Errorf("used = %d, want 120750", acc.UsedLimit)
		}
		checkBalanced(t, acc)
	})

	t.Run("DefaultedInvoiceLeavesSweep", func(t *testing.T) {
		res, err := e.SweepPenalties(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if res.Scanned != 0 || res.Defaulted != 0 {
			t.Errorf("result = %+v", res)
		}
	})
}

// dueSoonCapture records due-soon hook deliveries.
type dueSoonCapture struct {
	ids []string
}

func (c *dueSoonCapture) Name() string { return "due-soon-capture" }

func (c *dueSoonCapture) OnInvoiceDueSoon(_ context.Context, inv *invoice.Invoice, _ time.Time) error {
	c.ids = append(c.ids, inv.ID)
	return nil
}

func TestNotifyDueSoon(t *testing.T) {
	capture := &dueSoonCapture{}
	e, clk := newEngine(t, paylater.WithPlugin(capture), paylater.WithDueSoonWindow(24*time.Hour))
	ctx := context.Background()
	mustAccount(t, e, "0811", 1_000_000)
	inv := openTenorOne(t, e, "inv-1")

	n, err := e.NotifyDueSoon(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("notified %d a week early", n)
	}

	// Move inside the 24h window before the due date.
	clk.Advance(inv.DueDate.Sub(clk.Now()) - 2*time.Hour)

	n, err = e.NotifyDueSoon(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || len(capture.ids) != 1 || capture.ids[0] != "inv-1" {
		t.Errorf("n=%d captured=%v", n, capture.ids)
	}
}

func TestProcessLimitFromOrders(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	feed := []order.Order{
		{ID: "order-1", Phone: "0811", ProfitNet: 100_000, FinalizedAt: base},
		{ID: "order-2", Phone: "0811", ProfitNet: 50_000, FinalizedAt: base.Add(time.Hour)},
		{ID: "order-3", Phone: "0899", ProfitNet: 70_000, FinalizedAt: base.Add(2 * time.Hour)},
	}
	src := order.SourceFunc(func(_ context.Context, since time.Time, _ int) ([]order.Order, error) {
		var out []order.Order
		for _, o := range feed {
			if !o.FinalizedAt.Before(since) {
				out = append(out, o)
			}
		}
		return out, nil
	})

	e, _ := newEngine(t, paylater.WithOrderSource(src))
	ctx := context.Background()
	mustAccount(t, e, "0811", 500_000)
	// 0899 has no account; its order is skipped.

	granted, err := e.ProcessLimitFromOrders(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if granted != 2 {
		t.Errorf("granted = %d, want 2", granted)
	}

	a, _ := e.GetAccount(ctx, "0811")
	if a.LimitGrowthTotal != 15_000 {
		t.Errorf("growth = %d, want 15000", a.LimitGrowthTotal)
	}

	t.Run("ReplayGrantsNothing", func(t *testing.T) {
		granted, err := e.ProcessLimitFromOrders(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if granted != 0 {
			t.Errorf("replay granted = %d", granted)
		}
	})
}

func TestProcessLimitFromOrdersCursorStall(t *testing.T) {
	// A full batch whose orders all share one FinalizedAt cannot advance
	// the cursor; the drain must still terminate.
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var feed []order.Order
	for i := 0; i < 100; i++ {
		feed = append(feed, order.Order{
			ID:          fmt.Sprintf("order-%03d", i),
			Phone:       "0811",
			ProfitNet:   10_000,
			FinalizedAt: base,
		})
	}
	src := order.SourceFunc(func(_ context.Context, since time.Time, limit int) ([]order.Order, error) {
		var out []order.Order
		for _, o := range feed {
			if !o.FinalizedAt.Before(since) && len(out) < limit {
				out = append(out, o)
			}
		}
		return out, nil
	})

	e, _ := newEngine(t, paylater.WithOrderSource(src))
	ctx := context.Background()
	mustAccount(t, e, "0811", 500_000)

	done := make(chan struct{})
	var granted int
	var drainErr error
	go func() {
		granted, drainErr = e.ProcessLimitFromOrders(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("drain did not terminate")
	}
	if drainErr != nil {
		t.Fatal(drainErr)
	}
	if granted != 100 {
		t.Errorf("granted = %d, want 100", granted)
	}
}

func TestSchedules(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	t.Run("UnknownJob", func(t *testing.T) {
		if _, err := e.InstallSchedule(ctx, "mystery", time.Hour); !errors.Is(err, paylater.ErrUnknownJob) {
			t.Errorf("err = %v, want ErrUnknownJob", err)
		}
	})

	t.Run("InstallAndGet", func(t *testing.T) {
		s, err := e.InstallSchedule(ctx, scheduler.JobPenaltySweep, 6*time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		if !s.Enabled || s.Every != 6*time.Hour {
			t.Errorf("schedule = %+v", s)
		}

		got, err := e.GetSchedule(ctx, scheduler.JobPenaltySweep)
		if err != nil {
			t.Fatal(err)
		}
		if got.Every != 6*time.Hour {
			t.Errorf("every = %v", got.Every)
		}
	})

	t.Run("ReinstallReplacesInterval", func(t *testing.T) {
		if _, err := e.InstallSchedule(ctx, scheduler.JobPenaltySweep, 12*time.Hour); err != nil {
			t.Fatal(err)
		}
		all, err := e.ListSchedules(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != 1 || all[0].Every != 12*time.Hour {
			t.Errorf("schedules = %+v", all)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		if err := e.RemoveSchedule(ctx, scheduler.JobPenaltySweep); err != nil {
			t.Fatal(err)
		}
		if _, err := e.GetSchedule(ctx, scheduler.JobPenaltySweep); !paylater.IsNotFound(err) {
			t.Errorf("err = %v, want not found", err)
		}
		// Idempotent.
		if err := e.RemoveSchedule(ctx, scheduler.JobPenaltySweep); err != nil {
			t.Errorf("second remove: %v", err)
		}
	})
}
