package account

import "context"

// Store is the narrow persistence interface for credit accounts.
type Store interface {
	Create(ctx context.Context, a *Account) error
	Get(ctx context.Context, phone string) (*Account, error)
	// Update persists a mutated account. Implementations must
	// compare-and-swap on Account.Version and return a conflict error when
	// the stored version differs.
	Update(ctx context.Context, a *Account) error
	List(ctx context.Context, opts ListOpts) ([]*Account, error)
}

// ListOpts filters account listings.
type ListOpts struct {
	Status Status
	Limit  int
	Offset int
}
