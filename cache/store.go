// Package cache provides a read-through cache in front of a registry store.
// Index reads are cached per wallet and per blog; writes through the cache
// invalidate both keys they touch.
package cache

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/xraph/quill/registry"
)

// Compile-time interface check.
var _ registry.Store = (*Store)(nil)

// Store wraps a registry.Store with an expiring LRU over WalletBlogs and
// BlogWallets.
type Store struct {
	inner registry.Store
	lru   *lru.LRU[string, []*registry.Entry]

	hits, misses atomic.Uint64
}

type options struct {
	ttl     time.Duration
	maxSize int
}

// Option configures the cache.
type Option func(*options)

// WithTTL sets the cache entry time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithMaxSize sets the maximum number of cached keys.
func WithMaxSize(n int) Option {
	return func(o *options) { o.maxSize = n }
}

// Wrap returns a caching store in front of inner.
func Wrap(inner registry.Store, opts ...Option) *Store {
	o := options{ttl: 30 * time.Second, maxSize: 10000}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{
		inner: inner,
		lru:   lru.NewLRU[string, []*registry.Entry](o.maxSize, nil, o.ttl),
	}
}

// Stats returns the hit and miss counters.
func (s *Store) Stats() (hits, misses uint64) {
	return s.hits.Load(), s.misses.Load()
}

// Len returns the number of cached keys.
func (s *Store) Len() int { return s.lru.Len() }

// ──────────────────────────────────────────────────
// registry.Store
// ──────────────────────────────────────────────────

func (s *Store) Migrate(ctx context.Context) error { return s.inner.Migrate(ctx) }

func (s *Store) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

func (s *Store) Close() error {
	s.lru.Purge()
	return s.inner.Close()
}

func (s *Store) Put(ctx context.Context, e *registry.Entry) error {
	err := s.inner.Put(ctx, e)
	s.invalidate(e.Wallet, e.BlogID)
	return err
}

func (s *Store) Delete(ctx context.Context, wallet, blogID string) error {
	err := s.inner.Delete(ctx, wallet, blogID)
	s.invalidate(wallet, blogID)
	return err
}

func (s *Store) Lookup(ctx context.Context, wallet, blogID string) (*registry.Entry, error) {
	return s.inner.Lookup(ctx, wallet, blogID)
}

func (s *Store) WalletBlogs(ctx context.Context, wallet string) ([]*registry.Entry, error) {
	return s.read(walletKey(wallet), func() ([]*registry.Entry, error) {
		return s.inner.WalletBlogs(ctx, wallet)
	})
}

func (s *Store) BlogWallets(ctx context.Context, blogID string) ([]*registry.Entry, error) {
	return s.read(blogKey(blogID), func() ([]*registry.Entry, error) {
		return s.inner.BlogWallets(ctx, blogID)
	})
}

func (s *Store) Scan(ctx context.Context) (registry.Stats, error) { return s.inner.Scan(ctx) }

// ──────────────────────────────────────────────────
// Internals
// ──────────────────────────────────────────────────

func (s *Store) read(key string, load func() ([]*registry.Entry, error)) ([]*registry.Entry, error) {
	if rows, ok := s.lru.Get(key); ok {
		s.hits.Add(1)
		return clone(rows), nil
	}
	s.misses.Add(1)

	rows, err := load()
	if err != nil {
		return nil, err
	}
	s.lru.Add(key, clone(rows))
	return rows, nil
}

func (s *Store) invalidate(wallet, blogID string) {
	s.lru.Remove(walletKey(wallet))
	s.lru.Remove(blogKey(blogID))
}

func walletKey(wallet string) string { return "w:" + wallet }

func blogKey(blogID string) string { return "b:" + blogID }

func clone(rows []*registry.Entry) []*registry.Entry {
	out := make([]*registry.Entry, len(rows))
	for i, r := range rows {
		c := *r
		c.Roles = slices.Clone(r.Roles)
		out[i] = &c
	}
	return out
}
