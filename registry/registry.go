// Package registry is the central, advisory index of which wallets hold
// which roles on which blogs. It is an eventually-consistent read replica of
// the blog processes' role stores and never makes authorization decisions.
package registry

import (
	"fmt"
	"time"

	"github.com/xraph/quill"
	"github.com/xraph/quill/id"
)

const (
	// Name identifies the registry process in Info replies.
	Name = "quill-permission-registry"

	// Author is reported in Info replies.
	Author = "xraph"

	// Version is the registry protocol version reported in Stats.
	Version = "1.0.0"
)

// ErrEntryNotFound is returned by Store.Lookup when a (wallet, blog) pair
// is absent.
var ErrEntryNotFound = fmt.Errorf("%w: registry entry", quill.ErrNotFound)

// ErrEmptyRoles is returned by Store.Put for an entry without roles.
var ErrEmptyRoles = fmt.Errorf("%w: registry entry has no roles", quill.ErrValidation)

// TrackedRoles is the allow-list of roles the registry indexes.
var TrackedRoles = []string{quill.RootRole, quill.EditorRole}

// IsTracked reports whether r is in TrackedRoles.
func IsTracked(r string) bool {
	for _, t := range TrackedRoles {
		if t == r {
			return true
		}
	}
	return false
}

// Entry is a single (wallet, blog) row as held by a Store. Both indices are
// projections of the same set of entries.
type Entry struct {
	ID          id.EntryID `json:"id"`
	Wallet      string     `json:"wallet"`
	BlogID      string     `json:"blog_id"`
	Roles       []string   `json:"roles"`
	LastUpdated time.Time  `json:"last_updated"`
}

// BlogPermissionEntry is one blog as seen from a wallet.
type BlogPermissionEntry struct {
	BlogID      string    `json:"blog_id"`
	Roles       []string  `json:"roles"`
	LastUpdated time.Time `json:"last_updated"`
}

// WalletPermissionEntry is one wallet as seen from a blog.
type WalletPermissionEntry struct {
	Wallet      string    `json:"wallet"`
	Roles       []string  `json:"roles"`
	LastUpdated time.Time `json:"last_updated"`
}

// Stats summarizes the registry contents.
type Stats struct {
	Version string `json:"version"`
	Wallets int    `json:"wallets"`
	Blogs   int    `json:"blogs"`
	Pairs   int    `json:"pairs"`
}

// Info describes the registry process.
type Info struct {
	Name   string `json:"name"`
	Author string `json:"author"`
	Stats  Stats  `json:"stats"`
}

// HasRole reports whether the entry carries r.
func (e *Entry) HasRole(r string) bool {
	for _, x := range e.Roles {
		if x == r {
			return true
		}
	}
	return false
}
