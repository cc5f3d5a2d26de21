package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/quill/registry"
)

func (a *API) registerRegistryRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("registry"))

	if err := g.GET("/registry", a.registryInfo,
		forge.WithSummary("Registry info"),
		forge.WithDescription("Returns the registry name, author and stats."),
		forge.WithOperationID("registryInfo"),
		forge.WithResponseSchema(http.StatusOK, "Registry info", &registry.Info{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/registry/stats", a.registryStats,
		forge.WithSummary("Registry stats"),
		forge.WithDescription("Counts distinct wallets, blogs and pairs."),
		forge.WithOperationID("registryStats"),
		forge.WithResponseSchema(http.StatusOK, "Registry stats", &registry.Stats{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/registry/check", a.checkWalletRole,
		forge.WithSummary("Check wallet role"),
		forge.WithDescription("Reports whether the registry lists a role for a wallet on a blog."),
		forge.WithOperationID("checkWalletRole"),
		forge.WithRequestSchema(CheckWalletRoleRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check result", &registry.CheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/blogs/:blogId/wallets", a.blogWallets,
		forge.WithSummary("List blog wallets"),
		forge.WithDescription("Lists the wallets the registry holds for a blog."),
		forge.WithOperationID("blogWallets"),
		forge.WithResponseSchema(http.StatusOK, "Wallets", []registry.WalletPermissionEntry{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/wallets/:wallet/blogs", a.walletBlogs,
		forge.WithSummary("List wallet blogs"),
		forge.WithDescription("Lists the blogs the registry holds for a wallet."),
		forge.WithOperationID("walletBlogs"),
		forge.WithResponseSchema(http.StatusOK, "Blogs", []registry.BlogPermissionEntry{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/wallets/:wallet/admin-blogs", a.adminBlogs,
		forge.WithSummary("List admin blogs"),
		forge.WithDescription("Lists blogs where the wallet holds DEFAULT_ADMIN_ROLE."),
		forge.WithOperationID("adminBlogs"),
		forge.WithResponseSchema(http.StatusOK, "Blogs", []registry.BlogPermissionEntry{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/wallets/:wallet/editable-blogs", a.editableBlogs,
		forge.WithSummary("List editable blogs"),
		forge.WithDescription("Lists blogs where the wallet holds DEFAULT_ADMIN_ROLE or EDITOR_ROLE."),
		forge.WithOperationID("editableBlogs"),
		forge.WithResponseSchema(http.StatusOK, "Blogs", []registry.BlogPermissionEntry{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) registryInfo(ctx forge.Context, _ *struct{}) (*registry.Info, error) {
	info, err := send[registry.Info](a, ctx, false, a.host.RegistryID(), registry.ActionInfo, nil)
	if err != nil {
		return nil, err
	}
	return &info, ctx.JSON(http.StatusOK, info)
}

func (a *API) registryStats(ctx forge.Context, _ *struct{}) (*registry.Stats, error) {
	st, err := send[registry.Stats](a, ctx, false, a.host.RegistryID(), registry.ActionGetRegistryStats, nil)
	if err != nil {
		return nil, err
	}
	return &st, ctx.JSON(http.StatusOK, st)
}

func (a *API) checkWalletRole(ctx forge.Context, req *CheckWalletRoleRequest) (*registry.CheckResponse, error) {
	if req.Wallet == "" || req.BlogID == "" || req.Role == "" {
		return nil, forge.BadRequest("wallet, blog_id and role are required")
	}
	resp, err := send[registry.CheckResponse](a, ctx, false, a.host.RegistryID(), registry.ActionCheckWalletRole,
		registry.CheckRequest{Wallet: req.Wallet, BlogID: req.BlogID, Role: req.Role})
	if err != nil {
		return nil, err
	}
	return &resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) blogWallets(ctx forge.Context, _ *BlogPathRequest) ([]registry.WalletPermissionEntry, error) {
	out, err := send[[]registry.WalletPermissionEntry](a, ctx, false, a.host.RegistryID(), registry.ActionGetBlogWallets,
		registry.BlogRequest{BlogID: ctx.Param("blogId")})
	if err != nil {
		return nil, err
	}
	return out, ctx.JSON(http.StatusOK, out)
}

func (a *API) walletBlogs(ctx forge.Context, _ *WalletPathRequest) ([]registry.BlogPermissionEntry, error) {
	return a.walletQuery(ctx, registry.ActionGetWalletBlogs)
}

func (a *API) adminBlogs(ctx forge.Context, _ *WalletPathRequest) ([]registry.BlogPermissionEntry, error) {
	return a.walletQuery(ctx, registry.ActionGetAdminBlogs)
}

func (a *API) editableBlogs(ctx forge.Context, _ *WalletPathRequest) ([]registry.BlogPermissionEntry, error) {
	return a.walletQuery(ctx, registry.ActionGetEditableBlogs)
}

func (a *API) walletQuery(ctx forge.Context, action string) ([]registry.BlogPermissionEntry, error) {
	out, err := send[[]registry.BlogPermissionEntry](a, ctx, false, a.host.RegistryID(), action,
		registry.WalletRequest{Wallet: ctx.Param("wallet")})
	if err != nil {
		return nil, err
	}
	return out, ctx.JSON(http.StatusOK, out)
}
