package journal

import "context"

// ListOpts filters journal listings. Zero values mean "no filter".
type ListOpts struct {
	Phone  string
	Type   Type
	RefID  string
	Limit  int
	Offset int
}

// Store persists journal entries. Entries are append-only: there is no
// update or delete.
type Store interface {
	Append(ctx context.Context, e *Entry) error
	Get(ctx context.Context, entryID string) (*Entry, error)
	List(ctx context.Context, opts ListOpts) ([]*Entry, error)

	// Exists reports whether an entry of the given type already references
	// refID for the account. This is the idempotency probe for replayed
	// operations and escalation sweeps.
	Exists(ctx context.Context, phone string, t Type, refID string) (bool, error)
}
