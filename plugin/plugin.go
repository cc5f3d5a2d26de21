// Package plugin defines the lifecycle hook system of a blog process.
// Plugins are notified after role mutations succeed and can react (sync
// to the registry, metrics, logging) without being able to fail the
// mutation that triggered them.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"

	"github.com/xraph/quill/event"
	"github.com/xraph/quill/role"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// Initialized is called after the engine is initialized and the root role
// has been granted to its owner.
type Initialized interface {
	OnInitialized(ctx context.Context, owner string) error
}

// ──────────────────────────────────────────────────
// Role lifecycle hooks
// ──────────────────────────────────────────────────

// RoleCreated is called after a role is declared.
type RoleCreated interface {
	OnRoleCreated(ctx context.Context, def *role.Definition) error
}

// RoleAdminChanged is called after a role's admin role is rebound.
type RoleAdminChanged interface {
	OnRoleAdminChanged(ctx context.Context, e *event.Event) error
}

// ──────────────────────────────────────────────────
// Membership lifecycle hooks
// ──────────────────────────────────────────────────

// RoleGranted is called after a role is granted to an account.
type RoleGranted interface {
	OnRoleGranted(ctx context.Context, e *event.Event) error
}

// RoleRevoked is called after an administrator revokes a role.
type RoleRevoked interface {
	OnRoleRevoked(ctx context.Context, e *event.Event) error
}

// RoleRenounced is called after an account renounces one of its roles.
type RoleRenounced interface {
	OnRoleRenounced(ctx context.Context, e *event.Event) error
}

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
