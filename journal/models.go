package journal

import (
	"github.com/xraph/paylater/id"
	"github.com/xraph/paylater/types"
)

// Type classifies a journal entry.
type Type string

const (
	// TypeOpen records an invoice opening; amount is the principal held
	// against the limit.
	TypeOpen Type = "open"

	// TypePayment records money received against an invoice.
	TypePayment Type = "payment"

	// TypePenalty records a late-penalty accrual delta.
	TypePenalty Type = "penalty"

	// TypeFrozen and TypeLocked record overdue escalations. Zero amount.
	TypeFrozen Type = "frozen"
	TypeLocked Type = "locked"

	// TypeLimitIncrease records a profit-funded credit limit grant.
	TypeLimitIncrease Type = "limit_increase"

	// TypeLimitReversal records the rollback of a prior grant.
	TypeLimitReversal Type = "limit_reversal"

	// TypeLimitRelease records principal returned to the available limit
	// when an invoice is settled.
	TypeLimitRelease Type = "limit_release"

	// TypeLimitReduce records a punitive limit reduction on a late account.
	TypeLimitReduce Type = "limit_reduce"

	// TypeDefaulted records an invoice written off after prolonged
	// delinquency. Zero amount.
	TypeDefaulted Type = "defaulted"
)

// Valid reports whether t is a known entry type.
func (t Type) Valid() bool {
	switch t {
	case TypeOpen, TypePayment, TypePenalty, TypeFrozen, TypeLocked,
		TypeLimitIncrease, TypeLimitReversal, TypeLimitRelease,
		TypeLimitReduce, TypeDefaulted:
		return true
	}
	return false
}

// Entry is one immutable row in an account's credit journal. Entries are
// append-only; corrections are new entries, never edits.
//
// (Type, RefID) is unique per account and carries idempotency: replaying an
// operation with the same reference is detected here, not by the caller.
type Entry struct {
	types.Entity

	ID      id.EntryID `json:"id"`
	Phone   string     `json:"phone"`
	Type    Type       `json:"type"`
	Amount  int64      `json:"amount"`
	Balance Balance    `json:"balance"`

	// RefID ties the entry to its cause: an invoice ID for open/payment/
	// penalty entries, an order ID for limit grants.
	RefID string `json:"ref_id,omitempty"`

	// Actor identifies who triggered the entry: a user phone, "admin",
	// or "system" for scheduled jobs.
	Actor string `json:"actor,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// Balance snapshots the available limit around an entry, so the journal can
// be audited without replaying it.
type Balance struct {
	Before int64 `json:"before"`
	After  int64 `json:"after"`
}
