package api

import "github.com/xraph/quill/event"

// BlogListResponse lists the blogs running on this host.
type BlogListResponse struct {
	Blogs []string `json:"blogs" description:"Blog process IDs"`
}

// StatusResponse acknowledges a write.
type StatusResponse struct {
	Success bool `json:"success" description:"Whether the operation succeeded"`
}

// ListResponse wraps a list of items with pagination metadata.
type ListResponse[T any] struct {
	Items  []T `json:"items" description:"List of items"`
	Total  int `json:"total" description:"Total count"`
	Limit  int `json:"limit" description:"Page size"`
	Offset int `json:"offset" description:"Page offset"`
}

// EventListResponse is the audit event page.
type EventListResponse = ListResponse[*event.Event]
