package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/quill/event"
	"github.com/xraph/quill/process"
)

func (a *API) registerEventRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("events"))

	if err := g.GET("/blogs/:blogId/events", a.listEvents,
		forge.WithSummary("List audit events"),
		forge.WithDescription("Lists role events of a blog, oldest first."),
		forge.WithOperationID("listEvents"),
		forge.WithRequestSchema(ListEventsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Event list", &EventListResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.DELETE("/blogs/:blogId/events", a.clearEvents,
		forge.WithSummary("Clear audit events"),
		forge.WithDescription("Empties the audit log. Requires DEFAULT_ADMIN_ROLE."),
		forge.WithOperationID("clearEvents"),
		forge.WithResponseSchema(http.StatusOK, "Cleared", &process.ClearEventsResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) listEvents(ctx forge.Context, req *ListEventsRequest) (*EventListResponse, error) {
	filter := &event.QueryFilter{
		Type:    event.Type(req.Type),
		Role:    req.Role,
		Account: req.Account,
		Caller:  req.Caller,
		Limit:   defaultLimit(req.Limit),
		Offset:  req.Offset,
	}

	page, err := send[process.EventsResponse](a, ctx, false, ctx.Param("blogId"), process.ActionGetEvents,
		process.EventsRequest{Filter: filter})
	if err != nil {
		return nil, err
	}

	resp := &EventListResponse{
		Items:  page.Events,
		Total:  page.Total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) clearEvents(ctx forge.Context, _ *BlogPathRequest) (*process.ClearEventsResponse, error) {
	resp, err := send[process.ClearEventsResponse](a, ctx, true, ctx.Param("blogId"), process.ActionClearEvents, nil)
	if err != nil {
		return nil, err
	}
	return &resp, ctx.JSON(http.StatusOK, resp)
}
