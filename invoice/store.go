package invoice

import (
	"context"
	"time"
)

// ListOpts filters invoice listings.
type ListOpts struct {
	Phone  string
	Status Status
	Limit  int
	Offset int
}

// Store persists invoices. The invoice ID is a caller-supplied idempotency
// key, so Create must fail on duplicate IDs rather than overwrite.
type Store interface {
	Create(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, id string) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	List(ctx context.Context, opts ListOpts) ([]*Invoice, error)

	// ActiveByPhone returns the open (active or overdue) invoices for an
	// account, oldest first.
	ActiveByPhone(ctx context.Context, phone string) ([]*Invoice, error)

	// DueBetween returns open invoices whose due date falls in [from, to),
	// for due-soon notification sweeps.
	DueBetween(ctx context.Context, from, to time.Time) ([]*Invoice, error)
}
