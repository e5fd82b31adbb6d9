// Package order defines the collaborator interface for finalized storefront
// orders. The engine only reads orders to fund limit grants; the catalog and
// checkout live elsewhere.
package order

import (
	"context"
	"time"
)

// Order is a finalized, fully paid storefront order eligible to fund a
// credit limit grant. ProfitNet is the realized margin in minor units.
type Order struct {
	ID          string    `json:"id"`
	Phone       string    `json:"phone"`
	ProfitNet   int64     `json:"profit_net"`
	FinalizedAt time.Time `json:"finalized_at"`
}

// Source lists finalized orders for the profit-to-limit sweep. The engine
// dedupes grants through the ledger, so a Source may return the same order
// on consecutive sweeps without harm.
type Source interface {
	// FinalizedSince returns orders finalized at or after the given time,
	// oldest first, at most limit (0 means implementation default).
	FinalizedSince(ctx context.Context, since time.Time, limit int) ([]Order, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, since time.Time, limit int) ([]Order, error)

func (f SourceFunc) FinalizedSince(ctx context.Context, since time.Time, limit int) ([]Order, error) {
	return f(ctx, since, limit)
}
