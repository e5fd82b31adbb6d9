// Package account defines the credit account domain model.
//
// An account is identified by its normalized phone number. The three limit
// fields form a strict partition: AvailableLimit + UsedLimit == CreditLimit
// at all times. Only the engine mutates accounts, always under the account
// lock, and every balance-affecting change lands in the ledger.
package account

import (
	"strings"

	"github.com/xraph/paylater/id"
	"github.com/xraph/paylater/types"
)

// Status is the lifecycle state of a credit account.
type Status string

const (
	StatusActive Status = "active"
	StatusFrozen Status = "frozen" // checkout blocked, payments still accepted
	StatusLocked Status = "locked" // all credit activity blocked
)

// Valid reports whether s is a known account status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusFrozen, StatusLocked:
		return true
	}
	return false
}

// Account is a per-customer revolving credit line.
type Account struct {
	types.Entity
	ID     id.AccountID `json:"id"`
	Phone  string       `json:"phone"` // normalized, unique
	UserID string       `json:"user_id,omitempty"`

	CreditLimit    int64 `json:"credit_limit"`
	AvailableLimit int64 `json:"available_limit"`
	UsedLimit      int64 `json:"used_limit"`

	Status Status `json:"status"`

	// AdminInitialLimit is the limit granted by the admin at creation; it is
	// never changed by automatic grants or reductions.
	AdminInitialLimit int64 `json:"admin_initial_limit"`

	// LimitGrowthTotal is the cumulative sum of profit-share grants. It
	// bounds refund reversals so a reversal can never take back more than
	// was automatically granted.
	LimitGrowthTotal int64 `json:"limit_growth_total"`

	// Version is the optimistic concurrency column. Store updates must
	// compare-and-swap on it.
	Version int64 `json:"version"`
}

// Balanced reports whether the limit partition invariant holds.
func (a *Account) Balanced() bool {
	return a.AvailableLimit+a.UsedLimit == a.CreditLimit
}

// NormalizePhone canonicalizes an Indonesian phone number for use as the
// account key: digits only, leading "0" or "+62"/"62" collapsed to "62".
// Returns an empty string when no digits remain.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(digits, "62"):
		return digits
	case strings.HasPrefix(digits, "0"):
		return "62" + digits[1:]
	default:
		return "62" + digits
	}
}
