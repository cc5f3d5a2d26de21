package process

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/quill"
	"github.com/xraph/quill/bus"
	"github.com/xraph/quill/event"
	"github.com/xraph/quill/regsync"
)

// BlogHandler serves a blog process. The caller of every operation is
// env.From.
type BlogHandler struct {
	*table
	engine *quill.Engine
	syncer *regsync.Syncer
}

// NewBlogHandler creates the handler for one blog process. syncer may be
// nil, in which case Resync-All fails.
func NewBlogHandler(blogID string, engine *quill.Engine, syncer *regsync.Syncer, logger *slog.Logger) *BlogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &BlogHandler{engine: engine, syncer: syncer}
	h.table = &table{
		name:   blogID,
		logger: logger,
		actions: map[string]actionFunc{
			ActionInitialize:     h.initialize,
			ActionCreateRole:     h.createRole,
			ActionGrantRole:      h.grantRole,
			ActionRevokeRole:     h.revokeRole,
			ActionRenounceRole:   h.renounceRole,
			ActionSetRoleAdmin:   h.setRoleAdmin,
			ActionHasRole:        h.hasRole,
			ActionGetRoleAdmin:   h.getRoleAdmin,
			ActionGetRoleMembers: h.getRoleMembers,
			ActionGetUserRoles:   h.getUserRoles,
			ActionGetAllRoles:    h.getAllRoles,
			ActionBulkGrantRole:  h.bulkGrantRole,
			ActionBulkRevokeRole: h.bulkRevokeRole,
			ActionAddEditors:     h.addEditors,
			ActionRemoveEditors:  h.removeEditors,
			ActionGetEvents:      h.getEvents,
			ActionClearEvents:    h.clearEvents,
			ActionResyncAll:      h.resyncAll,
		},
	}
	return h
}

// Engine returns the blog's access control engine.
func (h *BlogHandler) Engine() *quill.Engine { return h.engine }

// ──────────────────────────────────────────────────
// Mutations
// ──────────────────────────────────────────────────

func (h *BlogHandler) initialize(ctx context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[InitializeRequest](env)
	if err != nil {
		return nil, err
	}
	owner := req.Owner
	if owner == "" {
		owner = env.From
	}
	return nil, h.engine.Initialize(ctx, env.From, owner)
}

func (h *BlogHandler) createRole(ctx context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[RoleRequest](env)
	if err != nil {
		return nil, err
	}
	return nil, h.engine.CreateRole(ctx, env.From, req.Role, req.AdminRole)
}

func (h *BlogHandler) grantRole(ctx context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[MembershipRequest](env)
	if err != nil {
		return nil, err
	}
	return nil, h.engine.GrantRole(ctx, env.From, req.Role, req.Account)
}

func (h *BlogHandler) revokeRole(ctx context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[MembershipRequest](env)
	if err != nil {
		return nil, err
	}
	return nil, h.engine.RevokeRole(ctx, env.From, req.Role, req.Account)
}

func (h *BlogHandler) renounceRole(ctx context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[RoleRequest](env)
	if err != nil {
		return nil, err
	}
	return nil, h.engine.RenounceRole(ctx, env.From, req.Role)
}

func (h *BlogHandler) setRoleAdmin(ctx context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[RoleRequest](env)
	if err != nil {
		return nil, err
	}
	return nil, h.engine.SetRoleAdmin(ctx, env.From, req.Role, req.AdminRole)
}

func (h *BlogHandler) bulkGrantRole(ctx context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[BulkRequest](env)
	if err != nil {
		return nil, err
	}
	return h.engine.BulkGrantRole(ctx, env.From, req.Role, req.Accounts)
}

func (h *BlogHandler) bulkRevokeRole(ctx context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[BulkRequest](env)
	if err != nil {
		return nil, err
	}
	return h.engine.BulkRevokeRole(ctx, env.From, req.Role, req.Accounts)
}

// addEditors is gated on the root role. The editor role is declared on
// first use.
func (h *BlogHandler) addEditors(ctx context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[EditorsRequest](env)
	if err != nil {
		return nil, err
	}
	if ok, err := h.engine.OnlyRole(env.From, quill.RootRole); !ok {
		return nil, err
	}
	if !h.engine.RoleExists(quill.EditorRole) {
		if err := h.engine.CreateRole(ctx, env.From, quill.EditorRole, quill.RootRole); err != nil {
			return nil, err
		}
	}
	return h.engine.BulkGrantRole(ctx, env.From, quill.EditorRole, req.Accounts)
}

func (h *BlogHandler) removeEditors(ctx context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[EditorsRequest](env)
	if err != nil {
		return nil, err
	}
	if ok, err := h.engine.OnlyRole(env.From, quill.RootRole); !ok {
		return nil, err
	}
	return h.engine.BulkRevokeRole(ctx, env.From, quill.EditorRole, req.Accounts)
}

func (h *BlogHandler) clearEvents(ctx context.Context, env *bus.Envelope) (any, error) {
	n, err := h.engine.ClearEvents(ctx, env.From)
	if err != nil {
		return nil, err
	}
	return ClearEventsResponse{Cleared: n}, nil
}

func (h *BlogHandler) resyncAll(ctx context.Context, env *bus.Envelope) (any, error) {
	if ok, err := h.engine.OnlyRole(env.From, quill.RootRole); !ok {
		return nil, err
	}
	if h.syncer == nil {
		return nil, fmt.Errorf("%w: registry sync is not configured", quill.ErrInternal)
	}
	n, err := h.syncer.ResyncAll(ctx)
	resp := ResyncResponse{Pushed: n}
	if err != nil {
		resp.Errors = err.Error()
	}
	return resp, nil
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

func (h *BlogHandler) hasRole(_ context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[MembershipRequest](env)
	if err != nil {
		return nil, err
	}
	ok, err := h.engine.HasRole(req.Account, req.Role)
	if err != nil {
		return nil, err
	}
	return HasRoleResponse{HasRole: ok}, nil
}

func (h *BlogHandler) getRoleAdmin(_ context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[RoleRequest](env)
	if err != nil {
		return nil, err
	}
	admin, err := h.engine.GetRoleAdmin(req.Role)
	if err != nil {
		return nil, err
	}
	return RoleAdminResponse{Role: req.Role, AdminRole: admin}, nil
}

func (h *BlogHandler) getRoleMembers(_ context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[RoleRequest](env)
	if err != nil {
		return nil, err
	}
	return h.engine.GetRoleMembers(req.Role)
}

func (h *BlogHandler) getUserRoles(_ context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[AccountRequest](env)
	if err != nil {
		return nil, err
	}
	return h.engine.GetUserRoles(req.Account)
}

func (h *BlogHandler) getAllRoles(_ context.Context, _ *bus.Envelope) (any, error) {
	return h.engine.GetAllRoles()
}

func (h *BlogHandler) getEvents(_ context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[EventsRequest](env)
	if err != nil {
		return nil, err
	}
	filter := req.Filter
	if filter == nil {
		filter = &event.QueryFilter{}
	}
	total := h.engine.CountEvents(filter)
	return EventsResponse{Events: h.engine.Events(filter), Total: total}, nil
}
