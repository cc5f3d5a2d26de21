// Package middleware provides HTTP guards backed by blog AccessControl
// engines.
package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/quill"
)

// BlogParam is the route parameter naming the blog a request targets.
const BlogParam = "blogId"

// Engines resolves the engine of a running blog.
type Engines interface {
	Engine(blogID string) (*quill.Engine, bool)
}

// Check decides whether caller passes on a blog engine.
type Check func(eng *quill.Engine, caller string) error

// HoldsRole passes when the caller holds roleName.
func HoldsRole(roleName string) Check {
	return func(eng *quill.Engine, caller string) error {
		_, err := eng.OnlyRole(caller, roleName)
		return err
	}
}

// AdministersRole passes when the caller can administer roleName.
func AdministersRole(roleName string) Check {
	return func(eng *quill.Engine, caller string) error {
		_, err := eng.OnlyRoleAdmin(caller, roleName)
		return err
	}
}

// HoldsAnyRole passes when the caller holds ANY of roles. An empty list
// never passes.
func HoldsAnyRole(roles ...string) Check {
	return func(eng *quill.Engine, caller string) error {
		last := quill.ErrLacksRole
		for _, r := range roles {
			_, err := eng.OnlyRole(caller, r)
			if err == nil {
				return nil
			}
			last = err
		}
		return last
	}
}

// RequireRole allows the request only when the caller holds roleName on the
// blog named by the route.
func RequireRole(engines Engines, roleName string) forge.Middleware {
	return guard(engines, HoldsRole(roleName))
}

// RequireRoleAdmin allows the request only when the caller can administer
// roleName on the blog named by the route.
func RequireRoleAdmin(engines Engines, roleName string) forge.Middleware {
	return guard(engines, AdministersRole(roleName))
}

// RequireAnyRole allows the request if the caller holds ANY of roles.
func RequireAnyRole(engines Engines, roles ...string) forge.Middleware {
	return guard(engines, HoldsAnyRole(roles...))
}

func guard(engines Engines, check Check) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			if status, msg := Authorize(engines, ctx.Param(BlogParam), Caller(ctx), check); status != http.StatusOK {
				return deny(ctx, status, msg)
			}
			return next(ctx)
		}
	}
}

// Authorize runs check for caller against the engine of blogID. It returns
// http.StatusOK on success, otherwise the status and message to deny with.
func Authorize(engines Engines, blogID, caller string, check Check) (int, string) {
	if caller == "" {
		return http.StatusForbidden, "access denied"
	}
	eng, ok := engines.Engine(blogID)
	if !ok {
		return http.StatusNotFound, "blog not found"
	}
	if err := check(eng, caller); err != nil {
		return http.StatusForbidden, "access denied"
	}
	return http.StatusOK, ""
}

// Caller returns the wallet authenticated on the request, or "" when the
// request is anonymous.
func Caller(ctx forge.Context) string {
	return forge.UserIDFromContext(ctx.Context())
}

func deny(ctx forge.Context, status int, msg string) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(status)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": msg})
}
