package eligibility

import (
	"testing"

	"github.com/xraph/paylater/account"
	"github.com/xraph/paylater/config"
)

func activeAccount(available int64) *account.Account {
	return &account.Account{
		Phone:          "6281234567890",
		CreditLimit:    available,
		AvailableLimit: available,
		Status:         account.StatusActive,
	}
}

func TestEvaluate(t *testing.T) {
	cfg := config.Default()
	cfg.MinOrderAmount = 10_000

	frozen := activeAccount(150_000)
	frozen.Status = account.StatusFrozen
	locked := activeAccount(150_000)
	locked.Status = account.StatusLocked
	unknown := activeAccount(150_000)
	unknown.Status = account.Status("suspended")

	disabled := cfg
	disabled.Enabled = false

	tests := []struct {
		name string
		cfg  config.Config
		req  Request
		want Reason
	}{
		{"eligible", cfg, Request{Account: activeAccount(150_000), OrderAmount: 100_000}, ReasonOK},
		{"probe without order", cfg, Request{Account: activeAccount(150_000)}, ReasonOK},
		{"feature disabled", disabled, Request{Account: activeAccount(150_000), OrderAmount: 100_000}, ReasonDisabled},
		{"no account", cfg, Request{OrderAmount: 100_000}, ReasonAccountNotFound},
		{"frozen", cfg, Request{Account: frozen, OrderAmount: 100_000}, ReasonAccountFrozen},
		{"locked", cfg, Request{Account: locked, OrderAmount: 100_000}, ReasonAccountLocked},
		{"unknown status", cfg, Request{Account: unknown, OrderAmount: 100_000}, ReasonAccountInactive},
		{"active invoice exists", cfg, Request{Account: activeAccount(150_000), ActiveInvoices: 1, OrderAmount: 100_000}, ReasonActiveInvoiceExists},
		{"below min order", cfg, Request{Account: activeAccount(150_000), OrderAmount: 5_000}, ReasonBelowMinOrder},
		{"insufficient limit", cfg, Request{Account: activeAccount(50_000), OrderAmount: 100_000}, ReasonInsufficientLimit},
		{"exactly at limit", cfg, Request{Account: activeAccount(100_000), OrderAmount: 100_000}, ReasonOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.cfg, tt.req)
			if got.Reason != tt.want {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.want)
			}
			if got.Eligible != (tt.want == ReasonOK) {
				t.Errorf("Eligible = %v for reason %q", got.Eligible, got.Reason)
			}
		})
	}
}

func TestEvaluateOrderOfChecks(t *testing.T) {
	// A frozen account with no limit must report frozen, not the limit.
	cfg := config.Default()
	acct := activeAccount(0)
	acct.Status = account.StatusFrozen

	got := Evaluate(cfg, Request{Account: acct, OrderAmount: 100_000})
	if got.Reason != ReasonAccountFrozen {
		t.Errorf("Reason = %q, want %q", got.Reason, ReasonAccountFrozen)
	}
}

func TestEvaluateMultipleInvoicesAllowed(t *testing.T) {
	cfg := config.Default()
	cfg.MaxActiveInvoices = 3

	got := Evaluate(cfg, Request{Account: activeAccount(500_000), ActiveInvoices: 2, OrderAmount: 100_000})
	if !got.Eligible {
		t.Errorf("Eligible = false with 2 of 3 invoices used, reason %q", got.Reason)
	}
}

func TestEvaluateEchoesAvailableLimit(t *testing.T) {
	got := Evaluate(config.Default(), Request{Account: activeAccount(275_000)})
	if got.AvailableLimit != 275_000 {
		t.Errorf("AvailableLimit = %d, want 275000", got.AvailableLimit)
	}
}
