package registry

import "context"

// Store persists registry entries. Implementations keep exactly one entry
// per (wallet, blog) pair and index it from both sides. An entry with no
// roles is never stored.
type Store interface {
	// Put inserts or overwrites the entry for (e.Wallet, e.BlogID).
	Put(ctx context.Context, e *Entry) error

	// Delete removes the entry for the pair. Absent pairs are not an error.
	Delete(ctx context.Context, wallet, blogID string) error

	// Lookup returns the entry for the pair or ErrEntryNotFound.
	Lookup(ctx context.Context, wallet, blogID string) (*Entry, error)

	// WalletBlogs returns every entry for wallet ordered by blog ID.
	WalletBlogs(ctx context.Context, wallet string) ([]*Entry, error)

	// BlogWallets returns every entry for blogID ordered by wallet.
	BlogWallets(ctx context.Context, blogID string) ([]*Entry, error)

	// Scan counts distinct wallets, distinct blogs and pairs. Version is
	// left empty.
	Scan(ctx context.Context) (Stats, error)

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
