package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/quill"
	"github.com/xraph/quill/process"
)

func (a *API) registerEditorRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("editors"))

	if err := g.POST("/blogs/:blogId/editors", a.addEditors,
		forge.WithSummary("Add editors"),
		forge.WithDescription("Grants EDITOR_ROLE to each account, declaring the role on first use."),
		forge.WithOperationID("addEditors"),
		forge.WithRequestSchema(EditorsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Outcomes", []quill.BulkOutcome{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/blogs/:blogId/editors/remove", a.removeEditors,
		forge.WithSummary("Remove editors"),
		forge.WithDescription("Revokes EDITOR_ROLE from each account."),
		forge.WithOperationID("removeEditors"),
		forge.WithRequestSchema(EditorsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Outcomes", []quill.BulkOutcome{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) addEditors(ctx forge.Context, req *EditorsRequest) ([]quill.BulkOutcome, error) {
	return a.editors(ctx, process.ActionAddEditors, req)
}

func (a *API) removeEditors(ctx forge.Context, req *EditorsRequest) ([]quill.BulkOutcome, error) {
	return a.editors(ctx, process.ActionRemoveEditors, req)
}

func (a *API) editors(ctx forge.Context, action string, req *EditorsRequest) ([]quill.BulkOutcome, error) {
	outcomes, err := send[[]quill.BulkOutcome](a, ctx, true, ctx.Param("blogId"), action,
		process.EditorsRequest{Accounts: req.Accounts})
	if err != nil {
		return nil, err
	}
	return outcomes, ctx.JSON(http.StatusOK, outcomes)
}
