package quill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/quill/event"
	"github.com/xraph/quill/plugin"
	"github.com/xraph/quill/role"
)

// Engine is the access control engine of a single blog process. It owns the
// role relation, records audit events, and fires plugin hooks after every
// successful mutation.
type Engine struct {
	mu          sync.RWMutex
	roles       *role.Store
	events      *event.Log
	plugins     *plugin.Registry
	extensions  []plugin.Plugin
	logger      *slog.Logger
	config      Config
	now         func() time.Time
	initialized bool
}

// NewEngine creates an uninitialized engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		roles:  role.NewStore(),
		logger: slog.Default(),
		config: DefaultConfig(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.config.MaxBulkSize < 0 {
		return nil, errors.New("quill: max bulk size must not be negative")
	}
	if e.events == nil {
		e.events = event.NewLog()
	}
	if len(e.extensions) > 0 {
		e.plugins = plugin.NewRegistry(e.logger)
		for _, x := range e.extensions {
			e.plugins.Register(x)
		}
		e.extensions = nil
	}
	return e, nil
}

// Plugins returns the plugin registry (may be nil).
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Stop fires the shutdown hook.
func (e *Engine) Stop(ctx context.Context) error {
	if e.plugins != nil {
		e.plugins.EmitShutdown(ctx)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Initialize declares the root role and grants it to owner. It succeeds at
// most once per engine.
func (e *Engine) Initialize(ctx context.Context, caller, owner string) error {
	e.mu.Lock()
	if e.initialized {
		e.mu.Unlock()
		return ErrAlreadyInitialized
	}
	if caller == "" || owner == "" {
		e.mu.Unlock()
		return ErrEmptyAccount
	}
	now := e.now()
	if err := e.roles.Declare(RootRole, RootRole, now); err != nil {
		e.mu.Unlock()
		return translateRoleErr(err)
	}
	if err := e.roles.Grant(RootRole, owner); err != nil {
		e.mu.Unlock()
		return translateRoleErr(err)
	}
	e.initialized = true
	def, _ := e.roles.Get(RootRole)
	e.record(&event.Event{Type: event.TypeRoleCreated, Role: RootRole, AdminRole: RootRole, Caller: caller, Timestamp: now})
	granted := e.record(&event.Event{Type: event.TypeRoleGranted, Role: RootRole, Account: owner, Caller: caller, Timestamp: now})
	e.mu.Unlock()

	e.logger.Info("access control initialized", "owner", owner)
	if e.plugins != nil {
		e.plugins.EmitRoleCreated(ctx, def)
		e.plugins.EmitRoleGranted(ctx, granted)
		e.plugins.EmitInitialized(ctx, owner)
	}
	return nil
}

// IsInitialized reports whether Initialize has succeeded.
func (e *Engine) IsInitialized() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.initialized
}

// ──────────────────────────────────────────────────
// Mutations
// ──────────────────────────────────────────────────

// CreateRole declares name administered by adminRole. An empty adminRole
// means the root role. The caller must hold the admin role of adminRole, or
// root; holding adminRole itself does not suffice.
func (e *Engine) CreateRole(ctx context.Context, caller, name, adminRole string) error {
	if adminRole == "" {
		adminRole = RootRole
	}

	e.mu.Lock()
	if err := e.checkReady(caller); err != nil {
		e.mu.Unlock()
		return err
	}
	if name == "" {
		e.mu.Unlock()
		return ErrEmptyRole
	}
	if e.roles.Exists(name) {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRoleExists, name)
	}
	if !e.roles.Exists(adminRole) {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRoleNotFound, adminRole)
	}
	if !e.holdsAdminOf(caller, adminRole) {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s cannot administer %s", ErrNotAdmin, caller, adminRole)
	}
	now := e.now()
	if err := e.roles.Declare(name, adminRole, now); err != nil {
		e.mu.Unlock()
		return translateRoleErr(err)
	}
	def, _ := e.roles.Get(name)
	e.record(&event.Event{Type: event.TypeRoleCreated, Role: name, AdminRole: adminRole, Caller: caller, Timestamp: now})
	e.mu.Unlock()

	e.logger.Debug("role created", "role", name, "admin_role", adminRole, "caller", caller)
	if e.plugins != nil {
		e.plugins.EmitRoleCreated(ctx, def)
	}
	return nil
}

// GrantRole adds account to the holders of name.
func (e *Engine) GrantRole(ctx context.Context, caller, name, account string) error {
	e.mu.Lock()
	if err := e.checkAdmin(caller, name); err != nil {
		e.mu.Unlock()
		return err
	}
	if account == "" {
		e.mu.Unlock()
		return ErrEmptyAccount
	}
	if err := e.roles.Grant(name, account); err != nil {
		e.mu.Unlock()
		return translateRoleErr(err)
	}
	ev := e.record(&event.Event{Type: event.TypeRoleGranted, Role: name, Account: account, Caller: caller, Timestamp: e.now()})
	e.mu.Unlock()

	e.logger.Debug("role granted", "role", name, "account", account, "caller", caller)
	if e.plugins != nil {
		e.plugins.EmitRoleGranted(ctx, ev)
	}
	return nil
}

// RevokeRole removes account from the holders of name. The last holder of
// the root role cannot be revoked.
func (e *Engine) RevokeRole(ctx context.Context, caller, name, account string) error {
	e.mu.Lock()
	if err := e.checkAdmin(caller, name); err != nil {
		e.mu.Unlock()
		return err
	}
	if account == "" {
		e.mu.Unlock()
		return ErrEmptyAccount
	}
	if err := e.roles.Revoke(name, account); err != nil {
		e.mu.Unlock()
		return translateRoleErr(err)
	}
	ev := e.record(&event.Event{Type: event.TypeRoleRevoked, Role: name, Account: account, Caller: caller, Timestamp: e.now()})
	e.mu.Unlock()

	e.logger.Debug("role revoked", "role", name, "account", account, "caller", caller)
	if e.plugins != nil {
		e.plugins.EmitRoleRevoked(ctx, ev)
	}
	return nil
}

// RenounceRole drops the caller's own membership of name. No admin check
// applies, but the last root holder still cannot renounce.
func (e *Engine) RenounceRole(ctx context.Context, caller, name string) error {
	e.mu.Lock()
	if err := e.checkReady(caller); err != nil {
		e.mu.Unlock()
		return err
	}
	if err := e.checkRole(name); err != nil {
		e.mu.Unlock()
		return err
	}
	if err := e.roles.Revoke(name, caller); err != nil {
		e.mu.Unlock()
		return translateRoleErr(err)
	}
	ev := e.record(&event.Event{Type: event.TypeRoleRenounced, Role: name, Account: caller, Caller: caller, Timestamp: e.now()})
	e.mu.Unlock()

	e.logger.Debug("role renounced", "role", name, "account", caller)
	if e.plugins != nil {
		e.plugins.EmitRoleRenounced(ctx, ev)
	}
	return nil
}

// SetRoleAdmin rebinds the admin role of name. The caller must be able to
// administer name under its current binding.
func (e *Engine) SetRoleAdmin(ctx context.Context, caller, name, adminRole string) error {
	e.mu.Lock()
	if err := e.checkAdmin(caller, name); err != nil {
		e.mu.Unlock()
		return err
	}
	if err := e.checkRole(adminRole); err != nil {
		e.mu.Unlock()
		return err
	}
	prev, err := e.roles.SetAdmin(name, adminRole)
	if err != nil {
		e.mu.Unlock()
		return translateRoleErr(err)
	}
	ev := e.record(&event.Event{
		Type:              event.TypeRoleAdminChanged,
		Role:              name,
		AdminRole:         adminRole,
		PreviousAdminRole: prev,
		Caller:            caller,
		Timestamp:         e.now(),
	})
	e.mu.Unlock()

	e.logger.Debug("role admin changed", "role", name, "admin_role", adminRole, "previous", prev)
	if e.plugins != nil {
		e.plugins.EmitRoleAdminChanged(ctx, ev)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Bulk
// ──────────────────────────────────────────────────

// BulkGrantRole grants name to each account independently. A failing account
// never aborts the batch; the returned error is only set when the request as
// a whole is rejected.
func (e *Engine) BulkGrantRole(ctx context.Context, caller, name string, accounts []string) ([]BulkOutcome, error) {
	return e.bulk(accounts, func(account string) error {
		return e.GrantRole(ctx, caller, name, account)
	})
}

// BulkRevokeRole revokes name from each account independently.
func (e *Engine) BulkRevokeRole(ctx context.Context, caller, name string, accounts []string) ([]BulkOutcome, error) {
	return e.bulk(accounts, func(account string) error {
		return e.RevokeRole(ctx, caller, name, account)
	})
}

func (e *Engine) bulk(accounts []string, fn func(string) error) ([]BulkOutcome, error) {
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: no accounts given", ErrValidation)
	}
	if limit := e.config.MaxBulkSize; limit > 0 && len(accounts) > limit {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(accounts), limit)
	}
	out := make([]BulkOutcome, 0, len(accounts))
	for _, account := range accounts {
		o := BulkOutcome{Account: account, Success: true}
		if err := fn(account); err != nil {
			o.Success = false
			o.Error = err.Error()
			o.Kind = KindOf(err)
		}
		out = append(out, o)
	}
	return out, nil
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// HasRole reports whether account holds name.
func (e *Engine) HasRole(account, name string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.checkReady(account); err != nil {
		return false, err
	}
	if err := e.checkRole(name); err != nil {
		return false, err
	}
	return e.roles.HasRole(name, account), nil
}

// GetRoleAdmin returns the admin role of name.
func (e *Engine) GetRoleAdmin(name string) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.initialized {
		return "", ErrNotInitialized
	}
	if err := e.checkRole(name); err != nil {
		return "", err
	}
	admin, err := e.roles.AdminOf(name)
	return admin, translateRoleErr(err)
}

// GetRoleMembers returns the sorted holders of name.
func (e *Engine) GetRoleMembers(name string) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.initialized {
		return nil, ErrNotInitialized
	}
	if err := e.checkRole(name); err != nil {
		return nil, err
	}
	members, err := e.roles.Members(name)
	return members, translateRoleErr(err)
}

// GetUserRoles returns the sorted roles held by account.
func (e *Engine) GetUserRoles(account string) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.checkReady(account); err != nil {
		return nil, err
	}
	return e.roles.RolesOf(account), nil
}

// GetAllRoles returns every declared role ordered by name.
func (e *Engine) GetAllRoles() ([]*role.Definition, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.initialized {
		return nil, ErrNotInitialized
	}
	return e.roles.All(), nil
}

// RoleExists reports whether name has been declared.
func (e *Engine) RoleExists(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.roles.Exists(name)
}

// CanAdminister reports whether caller holds the admin role of name, or the
// root role.
func (e *Engine) CanAdminister(caller, name string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.checkReady(caller); err != nil {
		return false, err
	}
	if err := e.checkRole(name); err != nil {
		return false, err
	}
	return e.holdsAdminOf(caller, name), nil
}

// OnlyRole reports whether caller holds name. It never mutates state; a
// false result carries ErrLacksRole.
func (e *Engine) OnlyRole(caller, name string) (bool, error) {
	ok, err := e.HasRole(caller, name)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("%w: %s lacks %s", ErrLacksRole, caller, name)
	}
	return true, nil
}

// OnlyRoleAdmin reports whether caller can administer name. A false result
// carries ErrNotAdmin.
func (e *Engine) OnlyRoleAdmin(caller, name string) (bool, error) {
	ok, err := e.CanAdminister(caller, name)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("%w: %s cannot administer %s", ErrNotAdmin, caller, name)
	}
	return true, nil
}

// Snapshot returns the full sorted role set of account. Unknown accounts
// yield an empty, non-nil slice.
func (e *Engine) Snapshot(account string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.roles.RolesOf(account)
}

// Accounts returns every account holding at least one role.
func (e *Engine) Accounts() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.roles.Accounts()
}

// ──────────────────────────────────────────────────
// Events
// ──────────────────────────────────────────────────

// Events returns audit events matching filter, oldest first.
func (e *Engine) Events(filter *event.QueryFilter) []*event.Event {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.events.List(filter)
}

// CountEvents returns the number of events matching filter.
func (e *Engine) CountEvents(filter *event.QueryFilter) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.events.Count(filter)
}

// ClearEvents empties the audit log. Only root holders may clear it.
func (e *Engine) ClearEvents(_ context.Context, caller string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkReady(caller); err != nil {
		return 0, err
	}
	if !e.roles.HasRole(RootRole, caller) {
		return 0, fmt.Errorf("%w: %s lacks %s", ErrLacksRole, caller, RootRole)
	}
	n := e.events.Clear()
	e.logger.Info("audit log cleared", "caller", caller, "events", n)
	return n, nil
}

// ──────────────────────────────────────────────────
// Internal helpers (callers hold e.mu)
// ──────────────────────────────────────────────────

func (e *Engine) checkReady(caller string) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	if caller == "" {
		return ErrEmptyAccount
	}
	return nil
}

func (e *Engine) checkRole(name string) error {
	if name == "" {
		return ErrEmptyRole
	}
	if !e.roles.Exists(name) {
		return fmt.Errorf("%w: %s", ErrRoleNotFound, name)
	}
	return nil
}

// checkAdmin validates the caller, the role and the caller's authority over
// it, in that order.
func (e *Engine) checkAdmin(caller, name string) error {
	if err := e.checkReady(caller); err != nil {
		return err
	}
	if err := e.checkRole(name); err != nil {
		return err
	}
	if !e.holdsAdminOf(caller, name) {
		return fmt.Errorf("%w: %s cannot administer %s", ErrNotAdmin, caller, name)
	}
	return nil
}

// holdsAdminOf is the two-level admin check: the caller holds the role's
// admin role, or holds root.
func (e *Engine) holdsAdminOf(caller, name string) bool {
	admin, err := e.roles.AdminOf(name)
	if err != nil {
		return false
	}
	return e.roles.HasRole(admin, caller) || e.roles.HasRole(RootRole, caller)
}

func (e *Engine) record(ev *event.Event) *event.Event {
	if !e.config.DisableEvents {
		e.events.Append(ev)
	}
	return ev
}
