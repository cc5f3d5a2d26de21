// Package api exposes blog and registry processes over HTTP. Every request
// becomes an envelope sent from the authenticated wallet.
package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/quill/process"
)

// API wires all quill HTTP handlers together.
type API struct {
	host   *process.Host
	router forge.Router
}

// New creates an API over a process host and a Forge router.
func New(host *process.Host, router forge.Router) *API {
	return &API{host: host, router: router}
}

// Handler returns the fully assembled http.Handler with all routes.
func (a *API) Handler() http.Handler {
	if a.router == nil {
		a.router = forge.NewRouter()
	}
	if err := a.RegisterRoutes(a.router); err != nil {
		panic("quill: register routes: " + err.Error())
	}
	return a.router.Handler()
}

// RegisterRoutes registers all API routes into the given Forge router.
func (a *API) RegisterRoutes(router forge.Router) error {
	registerers := []func(forge.Router) error{
		a.registerBlogRoutes,
		a.registerRoleRoutes,
		a.registerEditorRoutes,
		a.registerEventRoutes,
		a.registerRegistryRoutes,
	}
	for _, fn := range registerers {
		if err := fn(router); err != nil {
			return err
		}
	}
	return nil
}
