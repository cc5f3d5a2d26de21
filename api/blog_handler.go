package api

import (
	"errors"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/quill"
	"github.com/xraph/quill/middleware"
	"github.com/xraph/quill/process"
)

func (a *API) registerBlogRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("blogs"))

	if err := g.GET("/blogs", a.listBlogs,
		forge.WithSummary("List blogs"),
		forge.WithDescription("Lists the blog processes running on this host."),
		forge.WithOperationID("listBlogs"),
		forge.WithResponseSchema(http.StatusOK, "Blog list", &BlogListResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/blogs/:blogId/initialize", a.initializeBlog,
		forge.WithSummary("Initialize blog"),
		forge.WithDescription("Starts the blog process if needed and grants DEFAULT_ADMIN_ROLE to the owner."),
		forge.WithOperationID("initializeBlog"),
		forge.WithRequestSchema(InitializeBlogRequest{}),
		forge.WithCreatedResponse(&StatusResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/blogs/:blogId/resync", a.resyncBlog,
		forge.WithSummary("Resync registry"),
		forge.WithDescription("Pushes every account of the blog to the permission registry."),
		forge.WithOperationID("resyncBlog"),
		forge.WithResponseSchema(http.StatusOK, "Resync result", &process.ResyncResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) listBlogs(ctx forge.Context, _ *struct{}) (*BlogListResponse, error) {
	resp := &BlogListResponse{Blogs: a.host.Blogs()}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) initializeBlog(ctx forge.Context, req *InitializeBlogRequest) (*StatusResponse, error) {
	blogID := ctx.Param("blogId")
	if middleware.Caller(ctx) == "" {
		return nil, forge.Forbidden("authentication required")
	}
	_, existed := a.host.Blog(blogID)
	if _, err := a.host.Spawn(blogID); err != nil {
		if errors.Is(err, quill.ErrValidation) {
			return nil, forge.BadRequest(err.Error())
		}
		return nil, err
	}

	if _, err := send[any](a, ctx, true, blogID, process.ActionInitialize,
		process.InitializeRequest{Owner: req.Owner}); err != nil {
		if !existed {
			a.host.Discard(ctx.Context(), blogID)
		}
		return nil, err
	}

	resp := &StatusResponse{Success: true}
	return resp, ctx.JSON(http.StatusCreated, resp)
}

func (a *API) resyncBlog(ctx forge.Context, _ *BlogPathRequest) (*process.ResyncResponse, error) {
	blogID := ctx.Param(middleware.BlogParam)
	if err := a.authorize(ctx, blogID, middleware.HoldsRole(quill.RootRole)); err != nil {
		return nil, err
	}
	resp, err := send[process.ResyncResponse](a, ctx, true, blogID, process.ActionResyncAll, nil)
	if err != nil {
		return nil, err
	}
	return &resp, ctx.JSON(http.StatusOK, resp)
}
