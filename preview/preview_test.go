package preview_test

import (
	"testing"

	"github.com/xraph/paylater/account"
	"github.com/xraph/paylater/config"
	"github.com/xraph/paylater/eligibility"
	"github.com/xraph/paylater/invoice"
	"github.com/xraph/paylater/preview"
)

func termsFrom(cfg config.Config) preview.Terms {
	return preview.Terms{
		TenorFees:           cfg.TenorFees,
		DailyPenaltyPercent: cfg.DailyPenaltyPercent,
		PenaltyCapPercent:   cfg.PenaltyCapPercent,
	}
}

// The preview math must match the server calculator exactly; a drift of one
// rupiah between the quote and the invoice is a support ticket.
func TestQuoteMatchesServerCalculator(t *testing.T) {
	cfg := config.Default()
	terms := termsFrom(cfg)

	principals := []int64{1, 999, 10_000, 33_333, 100_000, 2_499_999, 10_000_000}
	for _, principal := range principals {
		for tenor := 1; tenor <= 4; tenor++ {
			q := preview.QuoteFor(principal, tenor, terms)
			want := invoice.Build(principal, tenor, cfg)

			if q.FeeAmount != want.FeeAmount {
				t.Errorf("QuoteFor(%d, %d).FeeAmount = %d, server %d",
					principal, tenor, q.FeeAmount, want.FeeAmount)
			}
			if q.TotalBeforePenalty != want.TotalBeforePenalty {
				t.Errorf("QuoteFor(%d, %d).TotalBeforePenalty = %d, server %d",
					principal, tenor, q.TotalBeforePenalty, want.TotalBeforePenalty)
			}
		}
	}
}

func TestLatePenaltyMatchesServerCalculator(t *testing.T) {
	cfg := config.Default()
	terms := termsFrom(cfg)

	totals := []int64{110_000, 35_000, 2_750_000}
	for _, total := range totals {
		for _, days := range []int{0, 1, 5, 29, 30, 31, 90} {
			got := preview.LatePenalty(total, days, terms)
			want := invoice.AccruePenalty(total, days, cfg).PenaltyAmount
			if got != want {
				t.Errorf("LatePenalty(%d, %d) = %d, server %d", total, days, got, want)
			}
		}
	}
}

func TestWeeklyInstallmentCoversTotal(t *testing.T) {
	terms := termsFrom(config.Default())

	q := preview.QuoteFor(100_000, 3, terms)
	if q.WeeklyInstallment*int64(q.TenorWeeks) < q.TotalBeforePenalty {
		t.Errorf("installments %d x %d do not cover total %d",
			q.WeeklyInstallment, q.TenorWeeks, q.TotalBeforePenalty)
	}
}

func TestQuoteClampsTenor(t *testing.T) {
	terms := termsFrom(config.Default())

	if got := preview.QuoteFor(100_000, 0, terms).TenorWeeks; got != 1 {
		t.Errorf("TenorWeeks = %d, want 1", got)
	}
	if got := preview.QuoteFor(100_000, 12, terms).TenorWeeks; got != 4 {
		t.Errorf("TenorWeeks = %d, want 4", got)
	}
}

// The precheck must agree with the server evaluator on every reason.
func TestPrecheckMatchesServerEvaluator(t *testing.T) {
	cfg := config.Default()
	cfg.MinOrderAmount = 10_000
	rules := preview.Rules{
		Enabled:           cfg.Enabled,
		MaxActiveInvoices: cfg.MaxActiveInvoices,
		MinOrderAmount:    cfg.MinOrderAmount,
	}

	acct := func(status account.Status, available int64) *account.Account {
		return &account.Account{Status: status, AvailableLimit: available}
	}

	cases := []struct {
		name    string
		account *account.Account
		active  int
		amount  int64
	}{
		{"eligible", acct(account.StatusActive, 500_000), 0, 100_000},
		{"no account", nil, 0, 100_000},
		{"frozen", acct(account.StatusFrozen, 500_000), 0, 100_000},
		{"locked", acct(account.StatusLocked, 500_000), 0, 100_000},
		{"unknown status", acct(account.Status("closed"), 500_000), 0, 100_000},
		{"active invoice", acct(account.StatusActive, 500_000), 1, 100_000},
		{"below min order", acct(account.StatusActive, 500_000), 0, 5_000},
		{"insufficient limit", acct(account.StatusActive, 50_000), 0, 100_000},
		{"pure probe", acct(account.StatusActive, 50_000), 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := eligibility.Evaluate(cfg, eligibility.Request{
				Account:        tc.account,
				ActiveInvoices: tc.active,
				OrderAmount:    tc.amount,
			})

			view := preview.AccountView{Found: tc.account != nil, ActiveInvoices: tc.active}
			if tc.account != nil {
				view.Status = string(tc.account.Status)
				view.AvailableLimit = tc.account.AvailableLimit
			}

			if got := preview.Precheck(view, tc.amount, rules); got != string(server.Reason) {
				t.Errorf("Precheck = %q, server %q", got, server.Reason)
			}
		})
	}
}
