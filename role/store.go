package role

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Store is the in-memory role relation of one blog process. It is owned by
// that process and is not safe for concurrent use.
type Store struct {
	defs    map[string]*Definition
	members map[string]map[string]struct{} // role -> set of accounts
}

// NewStore creates an empty role store.
func NewStore() *Store {
	return &Store{
		defs:    make(map[string]*Definition),
		members: make(map[string]map[string]struct{}),
	}
}

// Declare registers a role administered by admin with empty membership.
// A role may name itself as admin.
func (s *Store) Declare(name, admin string, at time.Time) error {
	if _, ok := s.defs[name]; ok {
		return fmt.Errorf("%q: %w", name, ErrRoleExists)
	}
	if admin != name {
		if _, ok := s.defs[admin]; !ok {
			return fmt.Errorf("admin role %q: %w", admin, ErrRoleNotFound)
		}
	}
	s.defs[name] = &Definition{Name: name, AdminRole: admin, CreatedAt: at}
	s.members[name] = make(map[string]struct{})
	return nil
}

// Exists reports whether name has been declared.
func (s *Store) Exists(name string) bool {
	_, ok := s.defs[name]
	return ok
}

// Get returns a copy of the role definition.
func (s *Store) Get(name string) (*Definition, error) {
	d, ok := s.defs[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrRoleNotFound)
	}
	c := *d
	return &c, nil
}

// AdminOf returns the admin role bound to name.
func (s *Store) AdminOf(name string) (string, error) {
	d, ok := s.defs[name]
	if !ok {
		return "", fmt.Errorf("%q: %w", name, ErrRoleNotFound)
	}
	return d.AdminRole, nil
}

// SetAdmin rebinds the admin role of name and returns the previous one.
func (s *Store) SetAdmin(name, admin string) (string, error) {
	d, ok := s.defs[name]
	if !ok {
		return "", fmt.Errorf("%q: %w", name, ErrRoleNotFound)
	}
	if _, ok := s.defs[admin]; !ok {
		return "", fmt.Errorf("admin role %q: %w", admin, ErrRoleNotFound)
	}
	prev := d.AdminRole
	d.AdminRole = admin
	return prev, nil
}

// Grant adds account to the members of name.
func (s *Store) Grant(name, account string) error {
	set, ok := s.members[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrRoleNotFound)
	}
	if _, held := set[account]; held {
		return fmt.Errorf("%s on %q: %w", account, name, ErrAlreadyMember)
	}
	set[account] = struct{}{}
	return nil
}

// Revoke removes account from the members of name. The last holder of the
// root role can never be removed.
func (s *Store) Revoke(name, account string) error {
	set, ok := s.members[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrRoleNotFound)
	}
	if _, held := set[account]; !held {
		return fmt.Errorf("%s on %q: %w", account, name, ErrNotMember)
	}
	if name == RootRole && len(set) == 1 {
		return ErrLastRootHolder
	}
	delete(set, account)
	return nil
}

// HasRole reports whether account holds name. Undeclared roles report false.
func (s *Store) HasRole(name, account string) bool {
	_, ok := s.members[name][account]
	return ok
}

// Members returns the sorted holders of name.
func (s *Store) Members(name string) ([]string, error) {
	set, ok := s.members[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrRoleNotFound)
	}
	out := make([]string, 0, len(set))
	for account := range set {
		out = append(out, account)
	}
	slices.Sort(out)
	return out, nil
}

// RolesOf returns the sorted roles held by account.
func (s *Store) RolesOf(account string) []string {
	out := make([]string, 0)
	for name, set := range s.members {
		if _, ok := set[account]; ok {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// All returns every declared role ordered by name.
func (s *Store) All() []*Definition {
	out := make([]*Definition, 0, len(s.defs))
	for _, d := range s.defs {
		c := *d
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *Definition) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Accounts returns every account holding at least one role, sorted.
func (s *Store) Accounts() []string {
	seen := make(map[string]struct{})
	for _, set := range s.members {
		for account := range set {
			seen[account] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for account := range seen {
		out = append(out, account)
	}
	slices.Sort(out)
	return out
}
