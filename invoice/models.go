// Package invoice defines the credit invoice model and the pure fee and
// penalty calculator.
package invoice

import (
	"time"

	"github.com/xraph/paylater/types"
)

// Status is the lifecycle state of a credit invoice.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusDefaulted Status = "defaulted"
)

// Terminal reports whether the status admits no further state transitions.
// Overdue invoices still accrue penalties; paid and defaulted are final.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusDefaulted
}

// Open reports whether the invoice still reserves credit limit.
func (s Status) Open() bool {
	return s == StatusActive || s == StatusOverdue
}

// Invoice is one financed order on a credit account.
//
// Invariants: TotalBeforePenalty == Principal + FeeAmount,
// TotalDue == TotalBeforePenalty + PenaltyAmount, PaidAmount <= TotalDue.
type Invoice struct {
	types.Entity
	// ID is the caller-supplied invoice id, used as the idempotency key for
	// the opening mutation.
	ID            string `json:"id"`
	Phone         string `json:"phone"`
	SourceOrderID string `json:"source_order_id"`

	Principal          int64   `json:"principal"`
	TenorWeeks         int     `json:"tenor_weeks"` // 1..4
	FeePercent         float64 `json:"fee_percent"`
	FeeAmount          int64   `json:"fee_amount"`
	TotalBeforePenalty int64   `json:"total_before_penalty"`
	PenaltyAmount      int64   `json:"penalty_amount"`
	TotalDue           int64   `json:"total_due"`
	PaidAmount         int64   `json:"paid_amount"`

	DueDate time.Time  `json:"due_date"`
	PaidAt  *time.Time `json:"paid_at,omitempty"`

	Status Status `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// Consistent reports whether the invoice amount invariants hold.
func (i *Invoice) Consistent() bool {
	return i.TotalBeforePenalty == i.Principal+i.FeeAmount &&
		i.TotalDue == i.TotalBeforePenalty+i.PenaltyAmount &&
		i.PaidAmount <= i.TotalDue
}

// DaysLate returns the number of whole days the invoice is past due at the
// given instant, or 0 when not yet due.
func (i *Invoice) DaysLate(now time.Time) int {
	if !now.After(i.DueDate) {
		return 0
	}
	return int(now.Sub(i.DueDate) / (24 * time.Hour))
}
