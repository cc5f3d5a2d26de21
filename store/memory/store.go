// Package memory provides an in-memory implementation of the registry
// store. It is intended for testing, development and single-node demos.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/xraph/quill/registry"
)

// Compile-time interface check.
var _ registry.Store = (*Store)(nil)

// Store is a thread-safe dual-indexed in-memory registry store. Both
// indices share the same entries and are only changed through put and
// remove.
type Store struct {
	mu sync.RWMutex

	byWallet map[string]map[string]*registry.Entry // wallet -> blog -> entry
	byBlog   map[string]map[string]*registry.Entry // blog -> wallet -> entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		byWallet: make(map[string]map[string]*registry.Entry),
		byBlog:   make(map[string]map[string]*registry.Entry),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Registry Store
// ──────────────────────────────────────────────────

func (s *Store) Put(_ context.Context, e *registry.Entry) error {
	if len(e.Roles) == 0 {
		return registry.ErrEmptyRoles
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(copyEntry(e))
	return nil
}

func (s *Store) Delete(_ context.Context, wallet, blogID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(wallet, blogID)
	return nil
}

func (s *Store) Lookup(_ context.Context, wallet, blogID string) (*registry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byWallet[wallet][blogID]
	if !ok {
		return nil, registry.ErrEntryNotFound
	}
	return copyEntry(e), nil
}

func (s *Store) WalletBlogs(_ context.Context, wallet string) ([]*registry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := collect(s.byWallet[wallet])
	slices.SortFunc(out, func(a, b *registry.Entry) int { return strings.Compare(a.BlogID, b.BlogID) })
	return out, nil
}

func (s *Store) BlogWallets(_ context.Context, blogID string) ([]*registry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := collect(s.byBlog[blogID])
	slices.SortFunc(out, func(a, b *registry.Entry) int { return strings.Compare(a.Wallet, b.Wallet) })
	return out, nil
}

func (s *Store) Scan(_ context.Context) (registry.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pairs int
	for _, blogs := range s.byWallet {
		pairs += len(blogs)
	}
	return registry.Stats{
		Wallets: len(s.byWallet),
		Blogs:   len(s.byBlog),
		Pairs:   pairs,
	}, nil
}

// ──────────────────────────────────────────────────
// Index mutation (callers hold s.mu)
// ──────────────────────────────────────────────────

func (s *Store) put(e *registry.Entry) {
	if s.byWallet[e.Wallet] == nil {
		s.byWallet[e.Wallet] = make(map[string]*registry.Entry)
	}
	if s.byBlog[e.BlogID] == nil {
		s.byBlog[e.BlogID] = make(map[string]*registry.Entry)
	}
	s.byWallet[e.Wallet][e.BlogID] = e
	s.byBlog[e.BlogID][e.Wallet] = e
}

func (s *Store) remove(wallet, blogID string) {
	if blogs, ok := s.byWallet[wallet]; ok {
		delete(blogs, blogID)
		if len(blogs) == 0 {
			delete(s.byWallet, wallet)
		}
	}
	if wallets, ok := s.byBlog[blogID]; ok {
		delete(wallets, wallet)
		if len(wallets) == 0 {
			delete(s.byBlog, blogID)
		}
	}
}

func collect(m map[string]*registry.Entry) []*registry.Entry {
	out := make([]*registry.Entry, 0, len(m))
	for _, e := range m {
		out = append(out, copyEntry(e))
	}
	return out
}

func copyEntry(e *registry.Entry) *registry.Entry {
	c := *e
	c.Roles = slices.Clone(e.Roles)
	return &c
}
