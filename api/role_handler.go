package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/quill"
	"github.com/xraph/quill/process"
	"github.com/xraph/quill/role"
)

func (a *API) registerRoleRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("roles"))

	if err := g.POST("/blogs/:blogId/roles", a.createRole,
		forge.WithSummary("Create role"),
		forge.WithDescription("Declares a role administered by admin_role."),
		forge.WithOperationID("createRole"),
		forge.WithRequestSchema(CreateRoleRequest{}),
		forge.WithCreatedResponse(&StatusResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/blogs/:blogId/roles", a.listRoles,
		forge.WithSummary("List roles"),
		forge.WithDescription("Lists every declared role with its admin role."),
		forge.WithOperationID("listRoles"),
		forge.WithResponseSchema(http.StatusOK, "Role list", []*role.Definition{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/blogs/:blogId/roles/:role/admin", a.getRoleAdmin,
		forge.WithSummary("Get role admin"),
		forge.WithDescription("Returns the role that administers a role."),
		forge.WithOperationID("getRoleAdmin"),
		forge.WithResponseSchema(http.StatusOK, "Role admin", &process.RoleAdminResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/blogs/:blogId/roles/:role/admin", a.setRoleAdmin,
		forge.WithSummary("Set role admin"),
		forge.WithDescription("Rebinds the role that administers a role."),
		forge.WithOperationID("setRoleAdmin"),
		forge.WithRequestSchema(SetRoleAdminRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Status", &StatusResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/blogs/:blogId/roles/:role/members", a.getRoleMembers,
		forge.WithSummary("List role members"),
		forge.WithDescription("Lists the holders of a role."),
		forge.WithOperationID("getRoleMembers"),
		forge.WithResponseSchema(http.StatusOK, "Members", []string{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/blogs/:blogId/roles/:role/members", a.grantRole,
		forge.WithSummary("Grant role"),
		forge.WithDescription("Grants a role to an account."),
		forge.WithOperationID("grantRole"),
		forge.WithRequestSchema(GrantRoleRequest{}),
		forge.WithCreatedResponse(&StatusResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/blogs/:blogId/roles/:role/members/:account", a.hasRole,
		forge.WithSummary("Check role"),
		forge.WithDescription("Reports whether an account holds a role."),
		forge.WithOperationID("hasRole"),
		forge.WithResponseSchema(http.StatusOK, "Check result", &process.HasRoleResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/blogs/:blogId/roles/:role/members/:account", a.revokeRole,
		forge.WithSummary("Revoke role"),
		forge.WithDescription("Revokes a role from an account."),
		forge.WithOperationID("revokeRole"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/blogs/:blogId/roles/:role/renounce", a.renounceRole,
		forge.WithSummary("Renounce role"),
		forge.WithDescription("Drops the caller's own membership of a role."),
		forge.WithOperationID("renounceRole"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/blogs/:blogId/roles/:role/bulk-grant", a.bulkGrantRole,
		forge.WithSummary("Bulk grant role"),
		forge.WithDescription("Grants a role to each account; failures are reported per account."),
		forge.WithOperationID("bulkGrantRole"),
		forge.WithRequestSchema(BulkRoleRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Outcomes", []quill.BulkOutcome{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/blogs/:blogId/roles/:role/bulk-revoke", a.bulkRevokeRole,
		forge.WithSummary("Bulk revoke role"),
		forge.WithDescription("Revokes a role from each account; failures are reported per account."),
		forge.WithOperationID("bulkRevokeRole"),
		forge.WithRequestSchema(BulkRoleRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Outcomes", []quill.BulkOutcome{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/blogs/:blogId/accounts/:account/roles", a.getUserRoles,
		forge.WithSummary("List account roles"),
		forge.WithDescription("Lists the roles an account holds on the blog."),
		forge.WithOperationID("getUserRoles"),
		forge.WithResponseSchema(http.StatusOK, "Roles", []string{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createRole(ctx forge.Context, req *CreateRoleRequest) (*StatusResponse, error) {
	if req.Role == "" {
		return nil, forge.BadRequest("role is required")
	}
	if _, err := send[any](a, ctx, true, ctx.Param("blogId"), process.ActionCreateRole,
		process.RoleRequest{Role: req.Role, AdminRole: req.AdminRole}); err != nil {
		return nil, err
	}
	resp := &StatusResponse{Success: true}
	return resp, ctx.JSON(http.StatusCreated, resp)
}

func (a *API) listRoles(ctx forge.Context, _ *BlogPathRequest) ([]*role.Definition, error) {
	defs, err := send[[]*role.Definition](a, ctx, false, ctx.Param("blogId"), process.ActionGetAllRoles, nil)
	if err != nil {
		return nil, err
	}
	return defs, ctx.JSON(http.StatusOK, defs)
}

func (a *API) getRoleAdmin(ctx forge.Context, _ *RolePathRequest) (*process.RoleAdminResponse, error) {
	resp, err := send[process.RoleAdminResponse](a, ctx, false, ctx.Param("blogId"), process.ActionGetRoleAdmin,
		process.RoleRequest{Role: ctx.Param("role")})
	if err != nil {
		return nil, err
	}
	return &resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) setRoleAdmin(ctx forge.Context, req *SetRoleAdminRequest) (*StatusResponse, error) {
	if req.AdminRole == "" {
		return nil, forge.BadRequest("admin_role is required")
	}
	if _, err := send[any](a, ctx, true, ctx.Param("blogId"), process.ActionSetRoleAdmin,
		process.RoleRequest{Role: ctx.Param("role"), AdminRole: req.AdminRole}); err != nil {
		return nil, err
	}
	resp := &StatusResponse{Success: true}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) getRoleMembers(ctx forge.Context, _ *RolePathRequest) ([]string, error) {
	members, err := send[[]string](a, ctx, false, ctx.Param("blogId"), process.ActionGetRoleMembers,
		process.RoleRequest{Role: ctx.Param("role")})
	if err != nil {
		return nil, err
	}
	return members, ctx.JSON(http.StatusOK, members)
}

func (a *API) grantRole(ctx forge.Context, req *GrantRoleRequest) (*StatusResponse, error) {
	if req.Account == "" {
		return nil, forge.BadRequest("account is required")
	}
	if _, err := send[any](a, ctx, true, ctx.Param("blogId"), process.ActionGrantRole,
		process.MembershipRequest{Role: ctx.Param("role"), Account: req.Account}); err != nil {
		return nil, err
	}
	resp := &StatusResponse{Success: true}
	return resp, ctx.JSON(http.StatusCreated, resp)
}

func (a *API) hasRole(ctx forge.Context, _ *MemberPathRequest) (*process.HasRoleResponse, error) {
	resp, err := send[process.HasRoleResponse](a, ctx, false, ctx.Param("blogId"), process.ActionHasRole,
		process.MembershipRequest{Role: ctx.Param("role"), Account: ctx.Param("account")})
	if err != nil {
		return nil, err
	}
	return &resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) revokeRole(ctx forge.Context, _ *MemberPathRequest) (*struct{}, error) {
	if _, err := send[any](a, ctx, true, ctx.Param("blogId"), process.ActionRevokeRole,
		process.MembershipRequest{Role: ctx.Param("role"), Account: ctx.Param("account")}); err != nil {
		return nil, err
	}
	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) renounceRole(ctx forge.Context, _ *RolePathRequest) (*struct{}, error) {
	if _, err := send[any](a, ctx, true, ctx.Param("blogId"), process.ActionRenounceRole,
		process.RoleRequest{Role: ctx.Param("role")}); err != nil {
		return nil, err
	}
	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) bulkGrantRole(ctx forge.Context, req *BulkRoleRequest) ([]quill.BulkOutcome, error) {
	return a.bulk(ctx, process.ActionBulkGrantRole, req)
}

func (a *API) bulkRevokeRole(ctx forge.Context, req *BulkRoleRequest) ([]quill.BulkOutcome, error) {
	return a.bulk(ctx, process.ActionBulkRevokeRole, req)
}

func (a *API) bulk(ctx forge.Context, action string, req *BulkRoleRequest) ([]quill.BulkOutcome, error) {
	outcomes, err := send[[]quill.BulkOutcome](a, ctx, true, ctx.Param("blogId"), action,
		process.BulkRequest{Role: ctx.Param("role"), Accounts: req.Accounts})
	if err != nil {
		return nil, err
	}
	return outcomes, ctx.JSON(http.StatusOK, outcomes)
}

func (a *API) getUserRoles(ctx forge.Context, _ *AccountRolesRequest) ([]string, error) {
	roles, err := send[[]string](a, ctx, false, ctx.Param("blogId"), process.ActionGetUserRoles,
		process.AccountRequest{Account: ctx.Param("account")})
	if err != nil {
		return nil, err
	}
	return roles, ctx.JSON(http.StatusOK, roles)
}
