// Package report holds the postmortem report model: a periodic snapshot of
// portfolio health kept for operators, generated by the engine.
package report

import (
	"time"

	"github.com/xraph/paylater/id"
	"github.com/xraph/paylater/types"
)

// Report is one generated postmortem covering [PeriodStart, PeriodEnd).
type Report struct {
	types.Entity

	ID          id.ReportID `json:"id"`
	PeriodStart time.Time   `json:"period_start"`
	PeriodEnd   time.Time   `json:"period_end"`
	Stats       Stats       `json:"stats"`
}

// Stats aggregates portfolio figures for a report period. Money fields
// carry the ledger currency so reports render with display values.
type Stats struct {
	InvoicesOpened    int         `json:"invoices_opened"`
	InvoicesPaid      int         `json:"invoices_paid"`
	InvoicesOverdue   int         `json:"invoices_overdue"`
	InvoicesDefaulted int         `json:"invoices_defaulted"`
	PrincipalIssued   types.Money `json:"principal_issued"`
	FeesCharged       types.Money `json:"fees_charged"`
	PenaltiesAccrued  types.Money `json:"penalties_accrued"`
	PaymentsReceived  types.Money `json:"payments_received"`
	LimitGranted      types.Money `json:"limit_granted"`
	LimitReversed     types.Money `json:"limit_reversed"`
	AccountsFrozen    int         `json:"accounts_frozen"`
	AccountsLocked    int         `json:"accounts_locked"`
	OutstandingDue    types.Money `json:"outstanding_due"`
}

// NewStats returns a Stats with every money field zeroed in the ledger
// currency, so accumulation never mixes currencies with the zero value.
func NewStats() Stats {
	zero := types.IDR(0)
	return Stats{
		PrincipalIssued:  zero,
		FeesCharged:      zero,
		PenaltiesAccrued: zero,
		PaymentsReceived: zero,
		LimitGranted:     zero,
		LimitReversed:    zero,
		OutstandingDue:   zero,
	}
}
