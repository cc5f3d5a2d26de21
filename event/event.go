// Package event defines the append-only audit log of role mutations made
// inside a blog process. The log is never consulted for authorization.
package event

import (
	"time"

	"github.com/xraph/quill/id"
)

// Type names the mutation an event records.
type Type string

const (
	// TypeRoleCreated records a role declaration.
	TypeRoleCreated Type = "role_created"

	// TypeRoleGranted records a membership grant.
	TypeRoleGranted Type = "role_granted"

	// TypeRoleRevoked records a membership revoked by an administrator.
	TypeRoleRevoked Type = "role_revoked"

	// TypeRoleRenounced records an account dropping its own membership.
	TypeRoleRenounced Type = "role_renounced"

	// TypeRoleAdminChanged records an admin-role rebinding.
	TypeRoleAdminChanged Type = "role_admin_changed"
)

// Event is a single audit record.
type Event struct {
	ID        id.EventID `json:"id"`
	Type      Type       `json:"type"`
	Role      string     `json:"role"`
	Account   string     `json:"account,omitempty"`
	AdminRole string     `json:"admin_role,omitempty"`
	// PreviousAdminRole is only set on TypeRoleAdminChanged.
	PreviousAdminRole string    `json:"previous_admin_role,omitempty"`
	Caller            string    `json:"caller"`
	Timestamp         time.Time `json:"timestamp"`
}

// QueryFilter contains filters for querying the log.
type QueryFilter struct {
	Type    Type       `json:"type,omitempty"`
	Role    string     `json:"role,omitempty"`
	Account string     `json:"account,omitempty"`
	Caller  string     `json:"caller,omitempty"`
	After   *time.Time `json:"after,omitempty"`
	Before  *time.Time `json:"before,omitempty"`
	Limit   int        `json:"limit,omitempty"`
	Offset  int        `json:"offset,omitempty"`
}
