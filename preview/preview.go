// Package preview mirrors the fee and penalty math for client-side display.
//
// It deliberately imports nothing from the rest of the module: a storefront
// frontend (or its code generator) can lift this file wholesale to render
// quotes while typing, and the server recomputes everything authoritatively
// at commit time. Keep the arithmetic here in lockstep with the invoice
// calculator; the equivalence tests in preview_test.go guard the two paths.
package preview

// Quote is a client-facing financing quote.
type Quote struct {
	Principal          int64   `json:"principal"`
	TenorWeeks         int     `json:"tenor_weeks"`
	FeePercent         float64 `json:"fee_percent"`
	FeeAmount          int64   `json:"fee_amount"`
	TotalBeforePenalty int64   `json:"total_before_penalty"`
	WeeklyInstallment  int64   `json:"weekly_installment"`
}

// Terms carries the handful of settings the client needs. Populate it from
// the server's resolved config; the zero value quotes zero fees.
type Terms struct {
	TenorFees           map[int]float64
	DailyPenaltyPercent float64
	PenaltyCapPercent   float64
}

func applyPercent(amount int64, percent float64) int64 {
	if amount <= 0 || percent <= 0 {
		return 0
	}
	// Integer round-half-up in basis points, same as the server.
	bps := int64(percent*100 + 0.5)
	return (amount*bps + 5000) / 10000
}

// QuoteFor computes the displayed quote for a principal and tenor.
func QuoteFor(principal int64, tenorWeeks int, terms Terms) Quote {
	if tenorWeeks < 1 {
		tenorWeeks = 1
	}
	if tenorWeeks > 4 {
		tenorWeeks = 4
	}

	feePercent := terms.TenorFees[tenorWeeks]
	feeAmount := applyPercent(principal, feePercent)
	total := principal + feeAmount

	weekly := total / int64(tenorWeeks)
	if total%int64(tenorWeeks) != 0 {
		weekly++
	}

	return Quote{
		Principal:          principal,
		TenorWeeks:         tenorWeeks,
		FeePercent:         feePercent,
		FeeAmount:          feeAmount,
		TotalBeforePenalty: total,
		WeeklyInstallment:  weekly,
	}
}

// LatePenalty computes the displayed penalty for an overdue total.
func LatePenalty(totalBeforePenalty int64, daysLate int, terms Terms) int64 {
	if daysLate <= 0 {
		return 0
	}
	bps := int64(terms.DailyPenaltyPercent*100+0.5) * int64(daysLate)
	penalty := (totalBeforePenalty*bps + 5000) / 10000
	if totalBeforePenalty <= 0 {
		return 0
	}
	maxPenalty := applyPercent(totalBeforePenalty, terms.PenaltyCapPercent)
	if penalty > maxPenalty {
		return maxPenalty
	}
	return penalty
}

// AccountView is the subset of account state the client needs for the
// eligibility precheck. Status uses the server's wire values: "active",
// "frozen", "locked".
type AccountView struct {
	Found          bool
	Status         string
	AvailableLimit int64
	ActiveInvoices int
}

// Rules carries the handful of eligibility settings the client needs.
type Rules struct {
	Enabled           bool
	MaxActiveInvoices int
	MinOrderAmount    int64
}

// Precheck mirrors the server's ordered eligibility checks and returns the
// first failing reason using the server's wire values, or "ok". Advisory
// only: the server re-evaluates inside the locked mutation and its answer
// wins.
func Precheck(acct AccountView, orderAmount int64, rules Rules) string {
	if !rules.Enabled {
		return "paylater_disabled"
	}
	if !acct.Found {
		return "account_not_found"
	}

	switch acct.Status {
	case "frozen":
		return "account_frozen"
	case "locked":
		return "account_locked"
	case "active":
	default:
		return "account_inactive"
	}

	if rules.MaxActiveInvoices > 0 && acct.ActiveInvoices >= rules.MaxActiveInvoices {
		return "active_invoice_exists"
	}

	if orderAmount > 0 {
		if rules.MinOrderAmount > 0 && orderAmount < rules.MinOrderAmount {
			return "below_min_order"
		}
		if orderAmount > acct.AvailableLimit {
			return "insufficient_limit"
		}
	}

	return "ok"
}
