// Package role holds the role relation of a single blog process: which
// admin-role administers each declared role and which accounts hold it.
package role

import (
	"errors"
	"time"
)

const (
	// RootRole is the bootstrap role. It administers itself and every
	// other role.
	RootRole = "DEFAULT_ADMIN_ROLE"

	// EditorRole is the role granted to content editors.
	EditorRole = "EDITOR_ROLE"
)

var (
	// ErrRoleExists is returned when declaring a role that already exists.
	ErrRoleExists = errors.New("role: role already exists")

	// ErrRoleNotFound is returned when a role has not been declared.
	ErrRoleNotFound = errors.New("role: role not declared")

	// ErrAlreadyMember is returned when granting a role the account holds.
	ErrAlreadyMember = errors.New("role: account already has role")

	// ErrNotMember is returned when revoking a role the account does not hold.
	ErrNotMember = errors.New("role: account does not have role")

	// ErrLastRootHolder is returned when a revoke would leave the root role
	// without any holder.
	ErrLastRootHolder = errors.New("role: cannot remove the last holder of the root role")
)

// Definition is a declared role and the role that administers it.
type Definition struct {
	Name      string    `json:"role"`
	AdminRole string    `json:"admin_role"`
	CreatedAt time.Time `json:"created_at"`
}
