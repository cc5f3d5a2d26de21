package process

import (
	"context"
	"log/slog"

	"github.com/xraph/quill/bus"
	"github.com/xraph/quill/registry"
)

// RegistryHandler serves the registry process. Writes always take the blog
// from env.From; any blog named in the payload is ignored.
type RegistryHandler struct {
	*table
	reg *registry.Registry
}

// NewRegistryHandler creates the registry process handler.
func NewRegistryHandler(reg *registry.Registry, logger *slog.Logger) *RegistryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &RegistryHandler{reg: reg}
	h.table = &table{
		name:   "registry",
		logger: logger,
		actions: map[string]actionFunc{
			registry.ActionInfo:                      h.info,
			registry.ActionGetWalletBlogs:            h.walletBlogs,
			registry.ActionGetBlogWallets:            h.blogWallets,
			registry.ActionCheckWalletRole:           h.checkWalletRole,
			registry.ActionGetRegistryStats:          h.stats,
			registry.ActionGetAdminBlogs:             h.adminBlogs,
			registry.ActionGetEditableBlogs:          h.editableBlogs,
			registry.ActionRegisterWalletPermissions: h.register,
			registry.ActionRemoveWalletPermissions:   h.remove,
			registry.ActionUpdateWalletRoles:         h.update,
		},
	}
	return h
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

func (h *RegistryHandler) info(ctx context.Context, _ *bus.Envelope) (any, error) {
	return h.reg.Info(ctx)
}

func (h *RegistryHandler) stats(ctx context.Context, _ *bus.Envelope) (any, error) {
	return h.reg.Stats(ctx)
}

func (h *RegistryHandler) walletBlogs(ctx context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[registry.WalletRequest](env)
	if err != nil {
		return nil, err
	}
	return h.reg.WalletBlogs(ctx, req.Wallet)
}

func (h *RegistryHandler) blogWallets(ctx context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[registry.BlogRequest](env)
	if err != nil {
		return nil, err
	}
	return h.reg.BlogWallets(ctx, req.BlogID)
}

func (h *RegistryHandler) checkWalletRole(ctx context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[registry.CheckRequest](env)
	if err != nil {
		return nil, err
	}
	ok, err := h.reg.HasRole(ctx, req.Wallet, req.BlogID, req.Role)
	if err != nil {
		return nil, err
	}
	return registry.CheckResponse{HasRole: ok}, nil
}

func (h *RegistryHandler) adminBlogs(ctx context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[registry.WalletRequest](env)
	if err != nil {
		return nil, err
	}
	return h.reg.AdminBlogs(ctx, req.Wallet)
}

func (h *RegistryHandler) editableBlogs(ctx context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[registry.WalletRequest](env)
	if err != nil {
		return nil, err
	}
	return h.reg.EditableBlogs(ctx, req.Wallet)
}

// ──────────────────────────────────────────────────
// Writes (blog = sender)
// ──────────────────────────────────────────────────

func (h *RegistryHandler) register(ctx context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[registry.RolesRequest](env)
	if err != nil {
		return nil, err
	}
	return nil, h.reg.Register(ctx, req.Wallet, env.From, req.Roles)
}

func (h *RegistryHandler) remove(ctx context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[registry.WalletRequest](env)
	if err != nil {
		return nil, err
	}
	return nil, h.reg.Remove(ctx, req.Wallet, env.From)
}

func (h *RegistryHandler) update(ctx context.Context, env *bus.Envelope) (any, error) {
	req, err := decode[registry.RolesRequest](env)
	if err != nil {
		return nil, err
	}
	return nil, h.reg.Update(ctx, req.Wallet, env.From, req.Roles)
}
