package plugin

import (
	"context"
	"log/slog"

	"github.com/xraph/quill/event"
	"github.com/xraph/quill/role"
)

// Named entry types pair a hook with the plugin name for logging.

type initializedEntry struct {
	name string
	hook Initialized
}
type roleCreatedEntry struct {
	name string
	hook RoleCreated
}
type roleAdminChangedEntry struct {
	name string
	hook RoleAdminChanged
}
type roleGrantedEntry struct {
	name string
	hook RoleGranted
}
type roleRevokedEntry struct {
	name string
	hook RoleRevoked
}
type roleRenouncedEntry struct {
	name string
	hook RoleRenounced
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	initialized      []initializedEntry
	roleCreated      []roleCreatedEntry
	roleAdminChanged []roleAdminChangedEntry
	roleGranted      []roleGrantedEntry
	roleRevoked      []roleRevokedEntry
	roleRenounced    []roleRenouncedEntry
	shutdown         []shutdownEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(Initialized); ok {
		r.initialized = append(r.initialized, initializedEntry{name, h})
	}
	if h, ok := p.(RoleCreated); ok {
		r.roleCreated = append(r.roleCreated, roleCreatedEntry{name, h})
	}
	if h, ok := p.(RoleAdminChanged); ok {
		r.roleAdminChanged = append(r.roleAdminChanged, roleAdminChangedEntry{name, h})
	}
	if h, ok := p.(RoleGranted); ok {
		r.roleGranted = append(r.roleGranted, roleGrantedEntry{name, h})
	}
	if h, ok := p.(RoleRevoked); ok {
		r.roleRevoked = append(r.roleRevoked, roleRevokedEntry{name, h})
	}
	if h, ok := p.(RoleRenounced); ok {
		r.roleRenounced = append(r.roleRenounced, roleRenouncedEntry{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// EmitInitialized notifies all plugins that implement Initialized.
func (r *Registry) EmitInitialized(ctx context.Context, owner string) {
	for _, e := range r.initialized {
		if err := e.hook.OnInitialized(ctx, owner); err != nil {
			r.logHookError("OnInitialized", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Role event emitters
// ──────────────────────────────────────────────────

// EmitRoleCreated notifies all plugins that implement RoleCreated.
func (r *Registry) EmitRoleCreated(ctx context.Context, def *role.Definition) {
	for _, e := range r.roleCreated {
		if err := e.hook.OnRoleCreated(ctx, def); err != nil {
			r.logHookError("OnRoleCreated", e.name, err)
		}
	}
}

// EmitRoleAdminChanged notifies all plugins that implement RoleAdminChanged.
func (r *Registry) EmitRoleAdminChanged(ctx context.Context, ev *event.Event) {
	for _, e := range r.roleAdminChanged {
		if err := e.hook.OnRoleAdminChanged(ctx, ev); err != nil {
			r.logHookError("OnRoleAdminChanged", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Membership event emitters
// ──────────────────────────────────────────────────

// EmitRoleGranted notifies all plugins that implement RoleGranted.
func (r *Registry) EmitRoleGranted(ctx context.Context, ev *event.Event) {
	for _, e := range r.roleGranted {
		if err := e.hook.OnRoleGranted(ctx, ev); err != nil {
			r.logHookError("OnRoleGranted", e.name, err)
		}
	}
}

// EmitRoleRevoked notifies all plugins that implement RoleRevoked.
func (r *Registry) EmitRoleRevoked(ctx context.Context, ev *event.Event) {
	for _, e := range r.roleRevoked {
		if err := e.hook.OnRoleRevoked(ctx, ev); err != nil {
			r.logHookError("OnRoleRevoked", e.name, err)
		}
	}
}

// EmitRoleRenounced notifies all plugins that implement RoleRenounced.
func (r *Registry) EmitRoleRenounced(ctx context.Context, ev *event.Event) {
	for _, e := range r.roleRenounced {
		if err := e.hook.OnRoleRenounced(ctx, ev); err != nil {
			r.logHookError("OnRoleRenounced", e.name, err)
		}
	}
}

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated; they must not undo a mutation
// that has already been applied.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
