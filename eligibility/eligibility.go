// Package eligibility decides whether an account may open a new financing.
//
// The evaluator is pure: callers load the account and its open invoices,
// and Evaluate runs the checks in a fixed order, returning the first
// failure reason. This keeps the decision testable and lets the preview
// path and the commit path share one rulebook.
package eligibility

import (
	"github.com/xraph/paylater/account"
	"github.com/xraph/paylater/config"
)

// Reason explains an eligibility decision. ReasonOK means eligible; every
// other value is the first failed check.
type Reason string

const (
	ReasonOK                  Reason = "ok"
	ReasonDisabled            Reason = "paylater_disabled"
	ReasonAccountNotFound     Reason = "account_not_found"
	ReasonAccountFrozen       Reason = "account_frozen"
	ReasonAccountLocked       Reason = "account_locked"
	ReasonAccountInactive     Reason = "account_inactive"
	ReasonActiveInvoiceExists Reason = "active_invoice_exists"
	ReasonBelowMinOrder       Reason = "below_min_order"
	ReasonInsufficientLimit   Reason = "insufficient_limit"
)

// Request carries everything Evaluate needs to decide.
type Request struct {
	// Account is nil when no account exists for the phone.
	Account *account.Account

	// ActiveInvoices is the number of open (active or overdue) invoices
	// the account currently holds.
	ActiveInvoices int

	// OrderAmount is the principal of the proposed financing. Zero means
	// a pure eligibility probe with no specific order, which skips the
	// min-order and limit checks.
	OrderAmount int64
}

// Result is an eligibility decision.
type Result struct {
	Eligible bool   `json:"eligible"`
	Reason   Reason `json:"reason"`

	// AvailableLimit is echoed for eligible accounts so callers can show
	// headroom without a second lookup.
	AvailableLimit int64 `json:"available_limit"`
}

func deny(reason Reason) Result {
	return Result{Eligible: false, Reason: reason}
}

// Evaluate runs the eligibility checks in order and returns the first
// failure, or an eligible result carrying the available limit.
func Evaluate(cfg config.Config, req Request) Result {
	if !cfg.Enabled {
		return deny(ReasonDisabled)
	}

	acct := req.Account
	if acct == nil {
		return deny(ReasonAccountNotFound)
	}

	switch acct.Status {
	case account.StatusFrozen:
		return deny(ReasonAccountFrozen)
	case account.StatusLocked:
		return deny(ReasonAccountLocked)
	case account.StatusActive:
	default:
		return deny(ReasonAccountInactive)
	}

	if cfg.MaxActiveInvoices > 0 && req.ActiveInvoices >= cfg.MaxActiveInvoices {
		return deny(ReasonActiveInvoiceExists)
	}

	if req.OrderAmount > 0 {
		if cfg.MinOrderAmount > 0 && req.OrderAmount < cfg.MinOrderAmount {
			return deny(ReasonBelowMinOrder)
		}
		if req.OrderAmount > acct.AvailableLimit {
			return deny(ReasonInsufficientLimit)
		}
	}

	return Result{Eligible: true, Reason: ReasonOK, AvailableLimit: acct.AvailableLimit}
}
